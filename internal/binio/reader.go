package binio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// ErrInvalidBool is returned when a bool byte is neither 0 nor 1.
var ErrInvalidBool = errors.New("bool value must be 0 or 1")

// Reader decodes primitive values from a stream and tracks how many bytes it
// has consumed. Every premature end of stream is reported as
// io.ErrUnexpectedEOF, including an end before the first byte.
type Reader struct {
	src    *bufio.Reader
	offset int64
	tmp    [8]byte
}

// NewReader wraps src. The reader may buffer past the last value it decodes.
func NewReader(src io.Reader) *Reader {
	if br, ok := src.(*bufio.Reader); ok {
		return &Reader{src: br}
	}
	return &Reader{src: bufio.NewReader(src)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

func (r *Reader) readFull(buf []byte) error {
	n, err := io.ReadFull(r.src, buf)
	r.offset += int64(n)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.src.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	r.offset++
	return b, nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("string length: %w", err)
	}
	if length > MaxStringLen {
		return "", fmt.Errorf("string length %d exceeds limit of %d", length, MaxStringLen)
	}

	buf := make([]byte, length)
	if err := r.readFull(buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errors.New("string is not valid UTF-8")
	}
	return string(buf), nil
}

// ReadBool reads a one-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, ErrInvalidBool
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.readFull(r.tmp[:4]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(r.tmp[:4])), nil
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.readFull(r.tmp[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.tmp[:8])), nil
}
