// Package binio reads and writes the primitive values of the sprite-animation
// binary formats.
//
// The encoding matches the conventions of the .NET BinaryWriter/BinaryReader
// pair the formats were first written with:
//   - int32 and float64 are little-endian, float64 as IEEE-754 bits
//   - bool is a single byte, 0 or 1
//   - strings are a 7-bit encoded (uvarint) byte length followed by UTF-8 bytes
package binio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxStringLen bounds the length prefix accepted by the reader and produced by
// the writer.
const MaxStringLen = 64 * 1024

// Writer accumulates encoded values in memory. Nothing reaches the underlying
// stream until Flush, so a failed encode never leaves a partial record behind.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded bytes so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of encoded bytes so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteString appends a length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("string of %d bytes exceeds limit of %d", len(s), MaxStringLen)
	}
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBool appends a one-byte boolean.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteInt32 appends a little-endian int32.
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt appends v as an int32, failing if it does not fit.
func (w *Writer) WriteInt(v int) error {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return fmt.Errorf("value %d does not fit in int32", v)
	}
	w.WriteInt32(int32(v))
	return nil
}

// WriteFloat64 appends a little-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// Flush writes the accumulated bytes to dst and resets the buffer.
func (w *Writer) Flush(dst io.Writer) error {
	n, err := dst.Write(w.buf)
	if err != nil {
		return err
	}
	if n != len(w.buf) {
		return io.ErrShortWrite
	}
	w.buf = w.buf[:0]
	return nil
}
