package frames

import "fmt"

// FrameCount returns the number of distinct nodes reachable from entry, which
// for a ring built by Build is the cycle length. The walk stops as soon as it
// reaches a node it has already visited, so it terminates on any arena.
func FrameCount(r *Ring, entry NodeID) int {
	if r == nil || len(r.Nodes) == 0 {
		return 0
	}

	visited := make([]bool, len(r.Nodes))
	count := 0
	for id := entry; inRange(r, id) && !visited[id]; id = r.Nodes[id].Next {
		visited[id] = true
		count++
	}
	return count
}

// Bounces reports whether the ring starting at entry was built with bounce.
//
// The walk records the frame slot of every node it passes and stops at the
// first node whose slot has already been seen. On a plain ring that node is
// entry itself (the ring closes without repeating a frame). On a bounce ring
// the mirrored pass repeats slot n-2 first, so the walk stops before it gets
// back to entry.
//
// The result is only meaningful for rings produced by Build. A two-frame bounce
// ring has no mirrored nodes and reports false.
func Bounces(r *Ring, entry NodeID) bool {
	if r == nil || !inRange(r, entry) {
		return false
	}

	seenSlots := make(map[int]bool, len(r.Frames))
	visited := make([]bool, len(r.Nodes))
	id := entry
	for inRange(r, id) && !visited[id] {
		slot := r.Nodes[id].Slot
		if seenSlots[slot] {
			break
		}
		seenSlots[slot] = true
		visited[id] = true
		id = r.Nodes[id].Next
	}
	return id != entry
}

// ForwardPass flattens the ring back into the frame list Build would need to
// reproduce it: FrameCount frames for a plain ring, FrameCount/2+1 frames for
// a bounce ring.
func ForwardPass(r *Ring, entry NodeID) []Frame {
	count := FrameCount(r, entry)
	if count == 0 {
		return nil
	}
	if Bounces(r, entry) {
		count = count/2 + 1
	}

	out := make([]Frame, 0, count)
	id := entry
	for i := 0; i < count; i++ {
		out = append(out, r.Frame(id))
		id = r.Nodes[id].Next
	}
	return out
}

// Validate checks that every Next edge and frame slot is in range and that
// following Next from any node eventually returns to it.
func Validate(r *Ring) error {
	if r == nil || len(r.Nodes) == 0 {
		return ErrNoFrames
	}
	for i, n := range r.Nodes {
		if !inRange(r, n.Next) {
			return fmt.Errorf("node %d links to %d: %w", i, n.Next, ErrBrokenRing)
		}
		if n.Slot < 0 || n.Slot >= len(r.Frames) {
			return fmt.Errorf("node %d uses frame slot %d: %w", i, n.Slot, ErrBrokenRing)
		}
	}

	// in a functional graph every node lies on a cycle iff Next is a permutation
	indegree := make([]int, len(r.Nodes))
	for _, n := range r.Nodes {
		indegree[n.Next]++
	}
	for i, d := range indegree {
		if d != 1 {
			return fmt.Errorf("node %d has %d predecessors: %w", i, d, ErrBrokenRing)
		}
	}

	if FrameCount(r, r.Entry()) != len(r.Nodes) {
		return fmt.Errorf("entry cycle does not cover the arena: %w", ErrBrokenRing)
	}
	return nil
}

func inRange(r *Ring, id NodeID) bool {
	return id >= 0 && int(id) < len(r.Nodes)
}
