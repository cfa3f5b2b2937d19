package frames

import (
	"fmt"
	"math"
)

// Build constructs a frame ring from an ordered list of frames.
//
// Without bounce the ring is a plain forward cycle: node i links to node i+1
// and the last node links back to the entry. Its length is len(frames).
//
// With bounce the forward pass is followed by a mirrored reverse pass that
// omits both endpoints, so playback runs 0,1,...,n-1,n-2,...,1 and then wraps
// to 0. The ring length is 2*len(frames)-2. Reverse nodes reuse the frame
// slots of the forward nodes they mirror.
//
// A single frame always yields a self-cycle. Two frames with bounce yield the
// plain two-node cycle, since the mirrored pass between the endpoints is empty.
//
// Parameters:
//   - bounce: whether playback should reverse at the end instead of restarting
//   - frames: forward-pass frames; must be non-empty with finite durations > 0
//
// Returns:
//   - *Ring: the built ring, entry at node 0
//   - error: ErrNoFrames or ErrInvalidDuration (wrapped with the frame index)
func Build(bounce bool, frames []Frame) (*Ring, error) {
	n := len(frames)
	if n == 0 {
		return nil, ErrNoFrames
	}
	for i, f := range frames {
		if !(f.Duration > 0) || math.IsInf(f.Duration, 0) {
			return nil, fmt.Errorf("frame %d (duration %v): %w", i, f.Duration, ErrInvalidDuration)
		}
	}

	table := make([]Frame, n)
	copy(table, frames)

	size := n
	if bounce && n > 2 {
		size = 2*n - 2
	}
	nodes := make([]Node, size)

	// forward pass
	for i := 0; i < n; i++ {
		nodes[i] = Node{Slot: i, Next: NodeID(i + 1)}
	}

	if size == n {
		nodes[n-1].Next = 0
		return &Ring{Frames: table, Nodes: nodes}, nil
	}

	// mirrored pass: node n mirrors slot n-2, node 2n-3 mirrors slot 1
	for k := 0; k < n-2; k++ {
		id := n + k
		nodes[id] = Node{Slot: n - 2 - k, Next: NodeID(id + 1)}
	}
	nodes[size-1].Next = 0

	return &Ring{Frames: table, Nodes: nodes}, nil
}

// MustBuild is like Build but panics on invalid input. Intended for
// package-level fixtures and tests.
func MustBuild(bounce bool, frames []Frame) *Ring {
	r, err := Build(bounce, frames)
	if err != nil {
		panic(err)
	}
	return r
}
