// Package authoring reads human-written YAML descriptions of sprite sheets and
// animations and converts them into pkg/animation definitions.
//
// A document looks like:
//
//	sheets:
//	  - key: asteroid
//	    texture: asteroid
//	    frame_width: 32
//	    frame_height: 32
//	    offset: [0, 0]
//	animations:
//	  - key: asteroid_spin
//	    sheet: asteroid
//	    bounce: false
//	    frames: [[0, 0.08], [1, 0.08], [2, 0.08]]
//	  - key: asteroid_pulse
//	    sheet: asteroid
//	    bounce: true
//	    frame_duration: 0.1     # used by frames that omit a duration
//	    frames: [4, 5, 6, {index: 7, duration: 0.3}]
//
// cmd/animpack packs documents into the binary .sheet/.anim format; the
// viewer can also load them directly.
package authoring

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/decker502/spriteanim/internal/frames"
	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// Document is one authoring file.
type Document struct {
	Sheets     []SheetEntry     `yaml:"sheets"`
	Animations []AnimationEntry `yaml:"animations"`
}

// SheetEntry describes a sprite sheet.
type SheetEntry struct {
	Key         string `yaml:"key"`
	Texture     string `yaml:"texture"`
	FrameWidth  int    `yaml:"frame_width"`
	FrameHeight int    `yaml:"frame_height"`
	Offset      []int  `yaml:"offset,omitempty"`
}

// AnimationEntry describes an animation over one sheet.
type AnimationEntry struct {
	Key           string      `yaml:"key"`
	Sheet         string      `yaml:"sheet"`
	Bounce        bool        `yaml:"bounce"`
	FrameDuration float64     `yaml:"frame_duration,omitempty"`
	Frames        []FrameEntry `yaml:"frames"`
}

// FrameEntry is one authored frame. It accepts three YAML shapes:
// a bare index, an [index, seconds] pair, or an {index, duration} mapping.
// A zero Duration means "use the animation's frame_duration".
type FrameEntry struct {
	Index    int     `yaml:"index"`
	Duration float64 `yaml:"duration,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FrameEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&f.Index)

	case yaml.SequenceNode:
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: frame pair needs [index, seconds], got %d values", node.Line, len(pair))
		}
		if pair[0] != math.Trunc(pair[0]) {
			return fmt.Errorf("line %d: frame index %v is not an integer", node.Line, pair[0])
		}
		f.Index, f.Duration = int(pair[0]), pair[1]
		return nil

	case yaml.MappingNode:
		type plain FrameEntry
		return node.Decode((*plain)(f))
	}
	return fmt.Errorf("line %d: unsupported frame value", node.Line)
}

// MarshalYAML writes frames back in the compact pair form.
func (f FrameEntry) MarshalYAML() (any, error) {
	node := &yaml.Node{}
	if err := node.Encode([]float64{float64(f.Index), f.Duration}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return node, nil
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse authoring document: %w", err)
	}
	return &doc, nil
}

// LoadFile reads and parses an authoring file, embedded first then on disk.
func LoadFile(path string) (*Document, error) {
	data, err := embedded.ReadFileWithFallback(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SpriteSheet converts the entry into an unresolved sheet.
func (s SheetEntry) SpriteSheet() (*animation.SpriteSheet, error) {
	if s.Key == "" {
		return nil, errors.New("sheet without key")
	}
	texture := s.Texture
	if texture == "" {
		texture = s.Key
	}

	var offset image.Point
	switch len(s.Offset) {
	case 0:
	case 2:
		offset = image.Pt(s.Offset[0], s.Offset[1])
	default:
		return nil, fmt.Errorf("sheet %q: offset needs [x, y], got %d values", s.Key, len(s.Offset))
	}

	return animation.NewSpriteSheet(s.Key, texture, s.FrameWidth, s.FrameHeight, offset)
}

// Animation converts the entry into an uninitialized animation.
func (a AnimationEntry) Animation() (*animation.Animation, error) {
	if a.Key == "" {
		return nil, errors.New("animation without key")
	}
	if a.Sheet == "" {
		return nil, fmt.Errorf("animation %q: no sheet", a.Key)
	}

	fs := make([]frames.Frame, len(a.Frames))
	for i, f := range a.Frames {
		d := f.Duration
		if d == 0 {
			d = a.FrameDuration
		}
		fs[i] = frames.Frame{SheetIndex: f.Index, Duration: d}
	}
	return animation.NewAnimation(a.Key, a.Sheet, a.Bounce, fs)
}

// Build converts every entry in the document. Invalid entries are skipped and
// reported together in the returned error; valid ones are still returned.
func (d *Document) Build() ([]*animation.SpriteSheet, []*animation.Animation, error) {
	var errs []error

	sheets := make([]*animation.SpriteSheet, 0, len(d.Sheets))
	for i, entry := range d.Sheets {
		sheet, err := entry.SpriteSheet()
		if err != nil {
			errs = append(errs, fmt.Errorf("sheets[%d]: %w", i, err))
			continue
		}
		sheets = append(sheets, sheet)
	}

	anims := make([]*animation.Animation, 0, len(d.Animations))
	for i, entry := range d.Animations {
		anim, err := entry.Animation()
		if err != nil {
			errs = append(errs, fmt.Errorf("animations[%d]: %w", i, err))
			continue
		}
		anims = append(anims, anim)
	}

	return sheets, anims, errors.Join(errs...)
}

// FromAnimation returns the authoring form of a definition.
func FromAnimation(a *animation.Animation) AnimationEntry {
	entry := AnimationEntry{Key: a.Key, Sheet: a.SpriteSheetKey, Bounce: a.Bounce()}
	for _, f := range a.ForwardFrames() {
		entry.Frames = append(entry.Frames, FrameEntry{Index: f.SheetIndex, Duration: f.Duration})
	}
	return entry
}

// FromSpriteSheet returns the authoring form of a sheet definition.
func FromSpriteSheet(s *animation.SpriteSheet) SheetEntry {
	entry := SheetEntry{Key: s.Key, Texture: s.TextureName, FrameWidth: s.FrameWidth, FrameHeight: s.FrameHeight}
	if s.Offset != (image.Point{}) {
		entry.Offset = []int{s.Offset.X, s.Offset.Y}
	}
	return entry
}
