// Package column implements a stable-handle sparse structure-of-arrays.
//
// A Column stores values of one type contiguously (cache-friendly) while
// handing callers a handle that survives arbitrary Put/Free sequences. This
// is the shape the logic thread uses to hold per-entity attributes (mesh
// assignment, position, rotation) so that other systems can keep a handle
// around across compactions without re-resolving it every frame.
package column

// Handle is a stable external index naming a logical element. Zero is
// reserved for the nil/degenerate slot and is never returned by Put.
type Handle uint32

// Column is a sparse SoA with an indirection map and free-list. The dense
// array and its parallel owner array are swap-compacted on Free; the
// indirection map is patched so every live Handle always resolves to the
// same logical value.
//
// This is the parallel-owner-array shape: the original implementation this
// was ported from also had an ArrayColumn variant that performed
// swap_remove without patching the map for the moved element, which
// silently breaks the round-trip invariant (P2) the first time a
// non-trailing slot is freed. That variant is not reproduced here —
// Column always patches the owner's map entry, the way ParallelIndexArrayColumn
// did in the reference implementation.
// index[h] holds the dense slot currently owned by h, or 0 if h is not
// live. This overload is safe because dense slot 0 is the permanent
// degenerate element: Put never assigns it and Free never frees handle 0,
// so no live non-zero handle ever legitimately maps to 0.
type Column[T any] struct {
	dense []T
	owner []Handle
	index []uint32
	free  []Handle
}

// New creates an empty Column containing only the reserved degenerate
// element at dense index 0.
func New[T any]() *Column[T] {
	return WithCapacity[T](0)
}

// WithCapacity creates an empty Column, pre-reserving room for n elements
// in addition to the reserved degenerate slot.
func WithCapacity[T any](n int) *Column[T] {
	c := &Column[T]{
		dense: make([]T, 1, n+1),
		owner: make([]Handle, 1, n+1),
		index: make([]uint32, 1, n+1),
		free:  make([]Handle, 0),
	}
	return c
}

// Len reports the number of live elements, including the reserved
// degenerate slot at index 0 (so an empty Column reports Len() == 1).
func (c *Column[T]) Len() int {
	return len(c.dense)
}

// Put inserts v and returns a stable handle for it. The handle is recycled
// from the free-list when available, otherwise the indirection map grows
// by one.
func (c *Column[T]) Put(v T) Handle {
	var h Handle
	if n := len(c.free); n > 0 {
		h = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		h = Handle(len(c.index))
		c.index = append(c.index, 0)
	}

	slot := uint32(len(c.dense))
	c.dense = append(c.dense, v)
	c.owner = append(c.owner, h)
	c.index[h] = slot

	return h
}

// Free releases h back to the free-list. Freeing handle 0, or a handle Put
// never returned, panics — both name a precondition violation rather than
// a legitimate double-free. Freeing an already-free, in-range handle is a
// silent no-op.
//
// The moved-owner patch only happens when the freed slot isn't already the
// last dense slot: patching unconditionally (the way a naive swap_remove
// port would) re-writes index[h] right after it was cleared whenever h
// itself owns the last slot, silently un-freeing it. That ordering bug is
// the one spec'd edge case this type exists to avoid.
func (c *Column[T]) Free(h Handle) {
	if h == 0 {
		panic("column: handle 0 is reserved and cannot be freed")
	}
	if int(h) >= len(c.index) {
		panic("column: handle out of range")
	}
	if c.index[h] == 0 {
		return
	}

	slot := c.index[h]
	c.index[h] = 0

	last := uint32(len(c.dense) - 1)
	if slot != last {
		movedOwner := c.owner[last]
		c.index[movedOwner] = slot
	}

	c.dense[slot] = c.dense[last]
	c.dense = c.dense[:last]
	c.owner[slot] = c.owner[last]
	c.owner = c.owner[:last]

	c.free = append(c.free, h)
}

// GetByHandle resolves h to its current element. It panics if h does not
// name a live element — callers that cannot guarantee liveness should track
// it themselves (e.g. via an entity mapping record) before dereferencing.
func (c *Column[T]) GetByHandle(h Handle) *T {
	if int(h) >= len(c.index) || c.index[h] == 0 {
		panic("column: handle does not name a live element")
	}
	return &c.dense[c.index[h]]
}

// Lookup is the non-panicking counterpart of GetByHandle.
func (c *Column[T]) Lookup(h Handle) (*T, bool) {
	if int(h) >= len(c.index) || c.index[h] == 0 {
		return nil, false
	}
	return &c.dense[c.index[h]], true
}

// GetByDense returns the element at the given dense slot directly, with no
// indirection through the handle map. i must be in [0, Len()).
func (c *Column[T]) GetByDense(i int) *T {
	return &c.dense[i]
}

// HandleAt returns the handle currently owning dense slot i.
func (c *Column[T]) HandleAt(i int) Handle {
	return c.owner[i]
}

// Dense exposes the contiguous backing array, including the reserved
// degenerate element at index 0. Callers that want to skip it should use
// Each instead.
func (c *Column[T]) Dense() []T {
	return c.dense
}

// Each iterates live elements in dense order, skipping the reserved
// degenerate slot at index 0. The callback receives the handle currently
// owning each element alongside its value.
func (c *Column[T]) Each(fn func(h Handle, v *T)) {
	for i := 1; i < len(c.dense); i++ {
		fn(c.owner[i], &c.dense[i])
	}
}

// IsFree reports whether h is currently in the free-list (or was never
// allocated and is not the degenerate handle).
func (c *Column[T]) IsFree(h Handle) bool {
	if h == 0 {
		return false
	}
	return int(h) >= len(c.index) || c.index[h] == 0
}
