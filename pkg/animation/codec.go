package animation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/decker502/spriteanim/internal/binio"
	"github.com/decker502/spriteanim/internal/frames"
)

// maxFrames bounds the frame count accepted from a stream so a corrupt count
// cannot trigger a huge allocation.
const maxFrames = 1 << 16

// Binary layouts (see internal/binio for primitive encodings):
//
//	animation:    string key, string sprite_sheet_key, bool bounce,
//	              int32 n, n x (int32 sheet_index, float64 duration)
//	sprite sheet: string texture_name, string key, int32 frame_width,
//	              int32 frame_height, int32 offset_x, int32 offset_y
//
// The frame list of an animation is the forward pass only; bounce and n are
// derived from the ring when writing and fed back to the ring builder when
// reading.

// WriteAnimation encodes a to w.
func WriteAnimation(w io.Writer, a *Animation) error {
	if a == nil || a.Frames == nil {
		return errors.New("encode animation: no frames")
	}

	ring := a.Frames
	fs := frames.ForwardPass(ring, ring.Entry())

	bw := binio.NewWriter(64 + 12*len(fs))
	if err := bw.WriteString(a.Key); err != nil {
		return fmt.Errorf("encode animation key: %w", err)
	}
	if err := bw.WriteString(a.SpriteSheetKey); err != nil {
		return fmt.Errorf("encode animation %q sheet key: %w", a.Key, err)
	}
	bw.WriteBool(frames.Bounces(ring, ring.Entry()))
	if err := bw.WriteInt(len(fs)); err != nil {
		return fmt.Errorf("encode animation %q frame count: %w", a.Key, err)
	}
	for i, f := range fs {
		if err := bw.WriteInt(f.SheetIndex); err != nil {
			return fmt.Errorf("encode animation %q frame %d: %w", a.Key, i, err)
		}
		bw.WriteFloat64(f.Duration)
	}

	return bw.Flush(w)
}

// ReadAnimation decodes one animation from r. On any failure it returns a
// *DecodeError and no animation.
func ReadAnimation(r io.Reader) (*Animation, error) {
	br := binio.NewReader(r)
	fail := func(err error) (*Animation, error) {
		return nil, &DecodeError{What: "animation", Offset: br.Offset(), Err: err}
	}

	key, err := br.ReadString()
	if err != nil {
		return fail(fmt.Errorf("key: %w", err))
	}
	sheetKey, err := br.ReadString()
	if err != nil {
		return fail(fmt.Errorf("sprite sheet key: %w", err))
	}
	bounce, err := br.ReadBool()
	if err != nil {
		return fail(fmt.Errorf("bounce: %w", err))
	}
	count, err := br.ReadInt32()
	if err != nil {
		return fail(fmt.Errorf("frame count: %w", err))
	}
	if count < 0 || count > maxFrames {
		return fail(fmt.Errorf("frame count %d out of range", count))
	}

	fs := make([]frames.Frame, count)
	for i := range fs {
		index, err := br.ReadInt32()
		if err != nil {
			return fail(fmt.Errorf("frame %d index: %w", i, err))
		}
		duration, err := br.ReadFloat64()
		if err != nil {
			return fail(fmt.Errorf("frame %d duration: %w", i, err))
		}
		fs[i] = frames.Frame{SheetIndex: int(index), Duration: duration}
	}

	ring, err := frames.Build(bounce, fs)
	if err != nil {
		return fail(err)
	}
	return &Animation{Key: key, SpriteSheetKey: sheetKey, Frames: ring}, nil
}

// WriteSpriteSheet encodes the definition fields of s to w.
func WriteSpriteSheet(w io.Writer, s *SpriteSheet) error {
	if s == nil {
		return errors.New("encode sprite sheet: nil sheet")
	}

	bw := binio.NewWriter(64)
	if err := bw.WriteString(s.TextureName); err != nil {
		return fmt.Errorf("encode sprite sheet texture name: %w", err)
	}
	if err := bw.WriteString(s.Key); err != nil {
		return fmt.Errorf("encode sprite sheet key: %w", err)
	}
	for _, v := range []int{s.FrameWidth, s.FrameHeight, s.Offset.X, s.Offset.Y} {
		if err := bw.WriteInt(v); err != nil {
			return fmt.Errorf("encode sprite sheet %q: %w", s.Key, err)
		}
	}

	return bw.Flush(w)
}

// ReadSpriteSheet decodes one unresolved sprite sheet from r. A truncated or
// malformed stream yields a *DecodeError and no sheet; callers should treat
// that as "no definition available".
func ReadSpriteSheet(r io.Reader) (*SpriteSheet, error) {
	br := binio.NewReader(r)
	fail := func(err error) (*SpriteSheet, error) {
		return nil, &DecodeError{What: "sprite sheet", Offset: br.Offset(), Err: err}
	}

	textureName, err := br.ReadString()
	if err != nil {
		return fail(fmt.Errorf("texture name: %w", err))
	}
	key, err := br.ReadString()
	if err != nil {
		return fail(fmt.Errorf("key: %w", err))
	}

	var fields [4]int32
	names := [4]string{"frame width", "frame height", "offset x", "offset y"}
	for i := range fields {
		if fields[i], err = br.ReadInt32(); err != nil {
			return fail(fmt.Errorf("%s: %w", names[i], err))
		}
	}

	sheet, err := NewSpriteSheet(key, textureName, int(fields[0]), int(fields[1]), image.Pt(int(fields[2]), int(fields[3])))
	if err != nil {
		return fail(err)
	}
	return sheet, nil
}

// MarshalAnimation returns the binary encoding of a.
func MarshalAnimation(a *Animation) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAnimation(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalAnimation decodes an animation from data.
func UnmarshalAnimation(data []byte) (*Animation, error) {
	return ReadAnimation(bytes.NewReader(data))
}

// MarshalSpriteSheet returns the binary encoding of s.
func MarshalSpriteSheet(s *SpriteSheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSpriteSheet(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSpriteSheet decodes a sprite sheet from data.
func UnmarshalSpriteSheet(data []byte) (*SpriteSheet, error) {
	return ReadSpriteSheet(bytes.NewReader(data))
}
