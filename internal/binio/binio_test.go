package binio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// TestWriter_Layout checks the byte layout against the .NET BinaryWriter conventions
func TestWriter_Layout(t *testing.T) {
	w := NewWriter(32)
	if err := w.WriteString("ab"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	w.WriteBool(true)
	w.WriteInt32(-2)
	w.WriteFloat64(1.5)

	want := []byte{
		0x02, 'a', 'b', // 7-bit length + bytes
		0x01,                   // bool
		0xFE, 0xFF, 0xFF, 0xFF, // int32 -2 little-endian
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF8, 0x3F, // 1.5
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("unexpected bytes:\n got  % X\n want % X", w.Bytes(), want)
	}
}

// TestWriter_LongStringPrefix checks multi-byte length prefixes
func TestWriter_LongStringPrefix(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteString(strings.Repeat("x", 200)); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	// 200 = 0b1100_1000 -> 0xC8 0x01
	if got := w.Bytes()[:2]; got[0] != 0xC8 || got[1] != 0x01 {
		t.Errorf("expected prefix C8 01, got % X", got)
	}
	if w.Len() != 202 {
		t.Errorf("expected 202 bytes, got %d", w.Len())
	}

	if err := w.WriteString(strings.Repeat("y", MaxStringLen+1)); err == nil {
		t.Error("expected error for oversized string")
	}
}

func TestWriter_WriteIntRange(t *testing.T) {
	w := NewWriter(0)
	if err := w.WriteInt(1 << 40); err == nil {
		t.Error("expected error for value outside int32")
	}
	if err := w.WriteInt(-5); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestRoundTrip writes a mix of values and reads them back
func TestRoundTrip(t *testing.T) {
	w := NewWriter(0)
	_ = w.WriteString("héllo")
	_ = w.WriteString("")
	w.WriteBool(false)
	w.WriteInt32(123456)
	w.WriteFloat64(-0.25)

	var buf bytes.Buffer
	if err := w.Flush(&buf); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expected empty buffer after Flush, got %d bytes", w.Len())
	}
	total := int64(buf.Len())

	r := NewReader(&buf)
	s1, err := r.ReadString()
	if err != nil || s1 != "héllo" {
		t.Errorf("ReadString: got %q, %v", s1, err)
	}
	s2, err := r.ReadString()
	if err != nil || s2 != "" {
		t.Errorf("ReadString empty: got %q, %v", s2, err)
	}
	b, err := r.ReadBool()
	if err != nil || b {
		t.Errorf("ReadBool: got %v, %v", b, err)
	}
	i, err := r.ReadInt32()
	if err != nil || i != 123456 {
		t.Errorf("ReadInt32: got %d, %v", i, err)
	}
	f, err := r.ReadFloat64()
	if err != nil || f != -0.25 {
		t.Errorf("ReadFloat64: got %v, %v", f, err)
	}
	if r.Offset() != total {
		t.Errorf("expected offset %d, got %d", total, r.Offset())
	}
}

// TestReader_Truncated verifies every premature end is io.ErrUnexpectedEOF
func TestReader_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{"empty string prefix", nil, func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"short string body", []byte{0x05, 'a'}, func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"unterminated prefix", []byte{0x80}, func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"empty bool", nil, func(r *Reader) error { _, err := r.ReadBool(); return err }},
		{"short int32", []byte{1, 2}, func(r *Reader) error { _, err := r.ReadInt32(); return err }},
		{"short float64", []byte{1, 2, 3, 4, 5}, func(r *Reader) error { _, err := r.ReadFloat64(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(bytes.NewReader(tt.data)))
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
			}
		})
	}
}

// TestReader_Malformed covers values that are present but invalid
func TestReader_Malformed(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x02}))
	if _, err := r.ReadBool(); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("expected ErrInvalidBool, got %v", err)
	}

	r = NewReader(bytes.NewReader([]byte{0x02, 0xFF, 0xFE}))
	if _, err := r.ReadString(); err == nil {
		t.Error("expected error for invalid UTF-8")
	}

	// length prefix of 1 MiB
	r = NewReader(bytes.NewReader([]byte{0x80, 0x80, 0x40}))
	if _, err := r.ReadString(); err == nil {
		t.Error("expected error for oversized length prefix")
	}
}
