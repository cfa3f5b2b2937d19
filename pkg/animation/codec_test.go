package animation

import (
	"bytes"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/decker502/spriteanim/internal/frames"
)

// TestWriteAnimation_Layout 验证动画的二进制布局
func TestWriteAnimation_Layout(t *testing.T) {
	anim, err := NewAnimation("a", "s", true, []frames.Frame{{1, 0.5}, {2, 0.5}, {3, 0.5}})
	if err != nil {
		t.Fatalf("NewAnimation failed: %v", err)
	}

	data, err := MarshalAnimation(anim)
	if err != nil {
		t.Fatalf("MarshalAnimation failed: %v", err)
	}

	half := []byte{0, 0, 0, 0, 0, 0, 0xE0, 0x3F} // 0.5
	want := []byte{0x01, 'a', 0x01, 's', 0x01, 0x03, 0, 0, 0}
	for i := int32(1); i <= 3; i++ {
		want = append(want, byte(i), 0, 0, 0)
		want = append(want, half...)
	}
	if !bytes.Equal(data, want) {
		t.Errorf("unexpected encoding:\n got  % X\n want % X", data, want)
	}
}

// TestAnimationRoundTrip 验证编码后解码得到拓扑等价的帧环
func TestAnimationRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		bounce bool
		frames []frames.Frame
	}{
		{"single", false, []frames.Frame{{7, 0.25}}},
		{"single bounce", true, []frames.Frame{{7, 0.25}}},
		{"two bounce", true, []frames.Frame{{1, 0.1}, {2, 0.2}}},
		{"loop", false, []frames.Frame{{0, 0.1}, {1, 0.2}, {2, 0.3}, {1, 0.4}}},
		{"bounce", true, []frames.Frame{{4, 0.05}, {5, 0.1}, {6, 0.15}, {7, 0.2}, {8, 1.0 / 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := NewAnimation("anim_"+tt.name, "sheet_"+tt.name, tt.bounce, tt.frames)
			if err != nil {
				t.Fatalf("NewAnimation failed: %v", err)
			}

			var buf bytes.Buffer
			if err := WriteAnimation(&buf, orig); err != nil {
				t.Fatalf("WriteAnimation failed: %v", err)
			}
			got, err := ReadAnimation(&buf)
			if err != nil {
				t.Fatalf("ReadAnimation failed: %v", err)
			}

			if got.Key != orig.Key || got.SpriteSheetKey != orig.SpriteSheetKey {
				t.Errorf("keys: got (%q, %q), want (%q, %q)", got.Key, got.SpriteSheetKey, orig.Key, orig.SpriteSheetKey)
			}
			if got.Bounce() != orig.Bounce() {
				t.Errorf("bounce: got %v, want %v", got.Bounce(), orig.Bounce())
			}
			if got.FrameCount() != orig.FrameCount() {
				t.Errorf("frame count: got %d, want %d", got.FrameCount(), orig.FrameCount())
			}

			gf, of := got.ForwardFrames(), orig.ForwardFrames()
			if len(gf) != len(of) {
				t.Fatalf("forward pass length: got %d, want %d", len(gf), len(of))
			}
			for i := range of {
				if gf[i] != of[i] {
					t.Errorf("frame %d: got %+v, want %+v", i, gf[i], of[i])
				}
			}

			// 两个环的完整播放序列一致
			a, b := got.Frames.Entry(), orig.Frames.Entry()
			for i := 0; i < 3*orig.FrameCount(); i++ {
				if got.Frames.Frame(a) != orig.Frames.Frame(b) {
					t.Fatalf("playback diverges at step %d", i)
				}
				a, b = got.Frames.Next(a), orig.Frames.Next(b)
			}

			if got.Initialized() {
				t.Error("decoded animation must start uninitialized")
			}
		})
	}
}

// TestReadAnimation_Malformed 验证截断或非法数据返回 DecodeError 且无结果
func TestReadAnimation_Malformed(t *testing.T) {
	anim, _ := NewAnimation("walk", "hero", false, []frames.Frame{{0, 0.1}, {1, 0.1}})
	full, _ := MarshalAnimation(anim)

	// 每一个前缀截断都必须失败
	for n := 0; n < len(full); n++ {
		got, err := UnmarshalAnimation(full[:n])
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("prefix %d: expected *DecodeError, got %v", n, err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("prefix %d: expected unexpected EOF, got %v", n, err)
		}
		if got != nil {
			t.Errorf("prefix %d: expected nil animation", n)
		}
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"zero frames", []byte{0, 0, 0, 0, 0, 0, 0}, ErrNoFrames},
		{"negative count", []byte{0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}, nil},
		{"bad bool", []byte{0, 0, 7, 1, 0, 0, 0}, nil},
		{"zero duration", append([]byte{0, 0, 0, 1, 0, 0, 0, 3, 0, 0, 0}, make([]byte, 8)...), ErrInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalAnimation(tt.data)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if got != nil {
				t.Error("expected nil animation")
			}
		})
	}
}

// TestSpriteSheetRoundTrip 验证精灵表编解码
func TestSpriteSheetRoundTrip(t *testing.T) {
	orig, err := NewSpriteSheet("asteroid", "textures/asteroid", 32, 24, image.Pt(4, -2))
	if err != nil {
		t.Fatalf("NewSpriteSheet failed: %v", err)
	}

	data, err := MarshalSpriteSheet(orig)
	if err != nil {
		t.Fatalf("MarshalSpriteSheet failed: %v", err)
	}

	// 纹理名在前，键在后
	if data[0] != byte(len(orig.TextureName)) || string(data[1:1+len(orig.TextureName)]) != orig.TextureName {
		t.Errorf("texture name must be encoded first, got % X", data[:8])
	}

	got, err := UnmarshalSpriteSheet(data)
	if err != nil {
		t.Fatalf("UnmarshalSpriteSheet failed: %v", err)
	}
	if got.Key != orig.Key || got.TextureName != orig.TextureName ||
		got.FrameWidth != 32 || got.FrameHeight != 24 || got.Offset != image.Pt(4, -2) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Initialized() {
		t.Error("decoded sheet must start unresolved")
	}
}

// TestReadSpriteSheet_Truncated 验证截断的精灵表流得到“无定义”
func TestReadSpriteSheet_Truncated(t *testing.T) {
	sheet, _ := NewSpriteSheet("k", "tex", 8, 8, image.Point{})
	full, _ := MarshalSpriteSheet(sheet)

	for n := 0; n < len(full); n++ {
		got, err := ReadSpriteSheet(bytes.NewReader(full[:n]))
		if got != nil {
			t.Fatalf("prefix %d: expected no definition, got %+v", n, got)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.What != "sprite sheet" {
			t.Errorf("prefix %d: expected sprite sheet DecodeError, got %v", n, err)
		}
	}

	// 非法帧尺寸同样视为解码失败
	bad, _ := NewSpriteSheet("k", "tex", 8, 8, image.Point{})
	bad.FrameWidth = 0
	data, _ := MarshalSpriteSheet(bad)
	if got, err := UnmarshalSpriteSheet(data); got != nil || !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry decode failure, got %v, %v", got, err)
	}
}

func TestWrite_NilInput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnimation(&buf, nil); err == nil {
		t.Error("expected error for nil animation")
	}
	if err := WriteSpriteSheet(&buf, nil); err == nil {
		t.Error("expected error for nil sheet")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on error, got %d bytes", buf.Len())
	}
}
