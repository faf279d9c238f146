package mesh

import "sync/atomic"

// DrawArraysIndirectCommand is the non-indexed indirect draw record, bit-
// exact C-ABI layout: 16 bytes.
type DrawArraysIndirectCommand struct {
	Count         uint32
	InstanceCount uint32
	FirstVertex   uint32
	BaseInstance  uint32
}

// DrawElementsIndirectCommand is the indexed indirect draw record: 20
// bytes, BaseVertex signed to allow negative vertex-offset addressing.
type DrawElementsIndirectCommand struct {
	Count         uint32
	InstanceCount uint32
	FirstVertex   uint32
	BaseVertex    int32
	BaseInstance  uint32
}

// GpuCommandQueue accumulates draw commands on the host and hands them
// out to a fixed-size device command buffer in chunks no larger than
// that buffer's capacity. Capacity is fixed at construction to match the
// device-side buffer it feeds.
//
// Grounded on original_source/src/render/command.rs's GpuCommandQueue;
// the DrawCmd trait's associated C::call dispatch is left to the caller
// (a frame orchestrator decides TRIANGLES vs indexed draw, not this
// type) since Go has no static-dispatch equivalent worth forcing here.
type GpuCommandQueue[C any] struct {
	queue      []C
	uploadHead atomic.Uint64
	capacity   int
}

// NewGpuCommandQueue returns an empty queue whose Upload calls never
// move more than capacity commands per call.
func NewGpuCommandQueue[C any](capacity int) *GpuCommandQueue[C] {
	return &GpuCommandQueue[C]{queue: make([]C, 0, capacity), capacity: capacity}
}

// Clear empties the queue and resets the upload cursor, ending the
// current frame's command batch. Per the capacity-overflow contract,
// any commands left over from a prior surplus are dropped here, never
// carried into the next frame.
func (q *GpuCommandQueue[C]) Clear() {
	q.uploadHead.Store(0)
	q.queue = q.queue[:0]
}

// Push appends command to the queue.
func (q *GpuCommandQueue[C]) Push(command C) {
	q.queue = append(q.queue, command)
}

// Len returns the number of commands currently queued.
func (q *GpuCommandQueue[C]) Len() int {
	return len(q.queue)
}

// Upload copies up to len(buffer) not-yet-uploaded commands into buffer,
// advancing the internal upload cursor past what it copies so a second
// call within the same frame continues where the last one left off.
// Returns the number of commands still queued past the capacity this
// queue was constructed with — callers drop that surplus rather than
// attempt to carry it into the next frame.
func (q *GpuCommandQueue[C]) Upload(buffer []C) (surplus int) {
	count := len(q.queue)
	head := int(q.uploadHead.Load())
	remaining := count - head
	uploadSize := min(remaining, len(buffer), q.capacity)

	for i := 0; i < uploadSize; i++ {
		buffer[i] = q.queue[head+i]
	}
	q.uploadHead.Store(uint64(head + uploadSize))

	exceed := count - q.capacity
	if exceed < 0 {
		exceed = 0
	}
	return exceed
}
