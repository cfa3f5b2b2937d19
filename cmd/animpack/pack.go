package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/decker502/spriteanim/pkg/animation"
	"github.com/decker502/spriteanim/pkg/authoring"
	"github.com/decker502/spriteanim/pkg/remote"
	"gopkg.in/yaml.v3"
)

const (
	sheetExt     = ".sheet"
	animationExt = ".anim"
)

// packer runs pack jobs on a bounded worker pool.
type packer struct {
	pool   worker.DynamicWorkerPool
	nextID int
}

func newPacker(workers int) *packer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &packer{pool: worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)}
}

func (p *packer) close() {
	p.pool.Stop()
}

// run calls fn(i) for i in [0, n) on the pool and waits for all of them.
// pool.Wait() only returns once workers idle out, so a WaitGroup is the
// barrier.
func (p *packer) run(n int, fn func(i int) error) error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		p.nextID++
		p.pool.SubmitTask(worker.Task{
			ID: p.nextID,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = fn(i)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// packed is the outcome of a pack run. Definitions are in input order.
type packed struct {
	Sheets     []*animation.SpriteSheet
	Animations []*animation.Animation
	Written    []string
}

// validKey rejects keys that cannot be used as a file name or topic level.
func validKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if strings.ContainsAny(key, `/\+#`) || key == "." || key == ".." {
		return fmt.Errorf("key %q must not contain path separators or topic wildcards", key)
	}
	return nil
}

// pack parses the authoring files, merges their definitions and writes one
// binary file per definition into outDir. Invalid entries and duplicate keys
// are reported in the returned error; every valid definition is still
// written.
func (p *packer) pack(files []string, outDir string) (*packed, error) {
	var errs []error

	docs := make([]*authoring.Document, len(files))
	if err := p.run(len(files), func(i int) error {
		doc, err := authoring.LoadFile(files[i])
		docs[i] = doc
		return err
	}); err != nil {
		errs = append(errs, err)
	}

	result := &packed{}
	sheetFrom := make(map[string]string)
	animFrom := make(map[string]string)
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		file := files[i]
		sheets, anims, err := doc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}

		for _, s := range sheets {
			if err := validKey(s.Key); err != nil {
				errs = append(errs, fmt.Errorf("%s: sprite sheet: %w", file, err))
				continue
			}
			if prev, dup := sheetFrom[s.Key]; dup {
				errs = append(errs, fmt.Errorf("%s: sprite sheet %q already defined in %s", file, s.Key, prev))
				continue
			}
			sheetFrom[s.Key] = file
			result.Sheets = append(result.Sheets, s)
		}
		for _, a := range anims {
			if err := validKey(a.Key); err != nil {
				errs = append(errs, fmt.Errorf("%s: animation: %w", file, err))
				continue
			}
			if prev, dup := animFrom[a.Key]; dup {
				errs = append(errs, fmt.Errorf("%s: animation %q already defined in %s", file, a.Key, prev))
				continue
			}
			animFrom[a.Key] = file
			result.Animations = append(result.Animations, a)
		}
	}

	if len(result.Sheets)+len(result.Animations) == 0 {
		return result, errors.Join(errs...)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, errors.Join(append(errs, err)...)
	}

	written := make([]string, len(result.Sheets)+len(result.Animations))
	if err := p.run(len(written), func(i int) error {
		path, data, err := result.encode(i, outDir)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written[i] = path
		return nil
	}); err != nil {
		errs = append(errs, err)
	}
	for _, path := range written {
		if path != "" {
			result.Written = append(result.Written, path)
		}
	}

	return result, errors.Join(errs...)
}

// encode returns the output path and encoding of the i-th definition,
// sheets first.
func (r *packed) encode(i int, outDir string) (string, []byte, error) {
	if i < len(r.Sheets) {
		s := r.Sheets[i]
		data, err := animation.MarshalSpriteSheet(s)
		return filepath.Join(outDir, s.Key+sheetExt), data, err
	}
	a := r.Animations[i-len(r.Sheets)]
	data, err := animation.MarshalAnimation(a)
	return filepath.Join(outDir, a.Key+animationExt), data, err
}

// publish sends every packed definition, sheets first so receivers can
// initialize the animations as they arrive.
func publish(pub *remote.Publisher, r *packed) error {
	var errs []error
	for _, s := range r.Sheets {
		if err := pub.PublishSpriteSheet(s); err != nil {
			errs = append(errs, err)
		}
	}
	for _, a := range r.Animations {
		if err := pub.Publish(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dump decodes a packed .anim or .sheet file and writes it as authoring YAML.
func dump(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc authoring.Document
	switch ext := filepath.Ext(path); ext {
	case animationExt:
		a, err := animation.UnmarshalAnimation(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		doc.Animations = append(doc.Animations, authoring.FromAnimation(a))
	case sheetExt:
		s, err := animation.UnmarshalSpriteSheet(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		doc.Sheets = append(doc.Sheets, authoring.FromSpriteSheet(s))
	default:
		return fmt.Errorf("%s: unknown extension %q (want %s or %s)", path, ext, animationExt, sheetExt)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
