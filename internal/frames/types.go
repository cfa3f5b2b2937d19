// Package frames implements the frame ring used by sprite animations.
//
// A ring is a cyclic sequence of frame nodes. Playback follows the Next edge of
// the current node forever; there is no terminal node. Rings are stored as an
// arena (a slice of nodes addressed by NodeID) instead of pointer cycles, which
// keeps them trivially copyable and lets the binary codec flatten them without
// chasing references.
package frames

import "errors"

// Frame is one forward-pass sample: the sprite-sheet cell to show and how long
// to show it, in seconds.
type Frame struct {
	// SheetIndex is the linear cell index into the sprite sheet
	SheetIndex int

	// Duration is the display time in seconds, always > 0
	Duration float64
}

// NodeID addresses a node in a Ring's arena.
type NodeID int

// Node is one link of the ring.
type Node struct {
	// Slot indexes Ring.Frames. Mirrored nodes of a bounce ring share the slot
	// of the forward node they mirror.
	Slot int

	// Next is the node shown after this one
	Next NodeID
}

// Ring is a built frame cycle. The entry node is always node 0, the first node
// of the forward pass. A Ring is immutable after Build and safe to share
// between any number of playback cursors.
type Ring struct {
	// Frames is the forward-pass frame table, in authoring order
	Frames []Frame

	// Nodes is the cyclic arena
	Nodes []Node
}

var (
	// ErrNoFrames is returned by Build when the frame list is empty.
	ErrNoFrames = errors.New("frames: frame list is empty")

	// ErrInvalidDuration is returned by Build when a duration is not a finite
	// positive number.
	ErrInvalidDuration = errors.New("frames: frame duration must be finite and > 0")

	// ErrBrokenRing is returned by Validate when a ring is not a closed cycle.
	ErrBrokenRing = errors.New("frames: ring is not a closed cycle")
)

// Entry returns the first node of the forward pass.
func (r *Ring) Entry() NodeID {
	return 0
}

// Len returns the number of nodes in the arena.
func (r *Ring) Len() int {
	return len(r.Nodes)
}

// Node returns the node stored at id.
func (r *Ring) Node(id NodeID) Node {
	return r.Nodes[id]
}

// Next returns the successor of id.
func (r *Ring) Next(id NodeID) NodeID {
	return r.Nodes[id].Next
}

// Frame returns the frame data displayed by node id.
func (r *Ring) Frame(id NodeID) Frame {
	return r.Frames[r.Nodes[id].Slot]
}

// SheetIndex returns the sprite-sheet cell displayed by node id.
func (r *Ring) SheetIndex(id NodeID) int {
	return r.Frame(id).SheetIndex
}

// Duration returns the display time of node id, in seconds.
func (r *Ring) Duration(id NodeID) float64 {
	return r.Frame(id).Duration
}
