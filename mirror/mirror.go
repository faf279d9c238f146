// Package mirror publishes small, frequently-read scalars (a viewport
// resolution, a camera transform) from one thread to another without a
// mutex: a single producer publishes into the cell its last publish
// didn't leave exposed, then bumps a generation counter; a single
// consumer compares generations and copies only when it changed.
//
// The spec this mirrors the intent of describes it simply as "a
// generation counter plus a two-cell double buffer" — there is no
// literal source file for it, so this is grounded on the atomic lock-
// word idiom used throughout gpu.SyncState and the two-cell swap shape
// of original_source/src/state/buffer.rs's DoubleBuffer, adapted from a
// single-threaded front/back swap to a cross-thread generation-gated
// publish.
package mirror

import "sync/atomic"

// Cell holds one mirrored value of type T. The zero value is ready to
// use; T should be cheap to copy, since both Publish and Sync copy it by
// value.
type Cell[T any] struct {
	cells      [2]T
	generation atomic.Uint64
	lastSeen   uint64
}

// Publish writes value into the cell not currently exposed to the
// consumer and makes it visible by bumping the generation counter.
// Publish must only ever be called from the single producer thread.
func (c *Cell[T]) Publish(value T) {
	gen := c.generation.Load()
	writeIdx := (gen + 1) % 2
	c.cells[writeIdx] = value
	c.generation.Store(gen + 1)
}

// Sync returns the most recently published value and whether it is new
// since the last call to Sync from this consumer. Sync must only ever
// be called from the single consumer thread.
func (c *Cell[T]) Sync() (value T, changed bool) {
	gen := c.generation.Load()
	if gen == c.lastSeen {
		return c.cells[gen%2], false
	}
	c.lastSeen = gen
	return c.cells[gen%2], true
}

// Peek returns the most recently published value without affecting the
// change-tracking Sync relies on. Safe to call from either thread for
// diagnostics, but the value it returns may already be stale by the time
// the caller reads it.
func (c *Cell[T]) Peek() T {
	gen := c.generation.Load()
	return c.cells[gen%2]
}
