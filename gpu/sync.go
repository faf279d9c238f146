package gpu

import (
	"sync/atomic"

	vk "github.com/goki/vulkan"
)

// SyncState is the lock-bit word the producer consults before writing a
// section. Bits are set and cleared with release semantics by SyncBarrier
// and read with acquire semantics by HasLock; there is no mutex involved,
// matching the single-word-atomic design the rest of Cross relies on.
type SyncState struct {
	locks atomic.Uint32
}

// HasLock reports whether section is still considered in use by the GPU as
// of the last SyncBarrier.Fetch.
func (s *SyncState) HasLock(section Section) bool {
	bit := uint32(section)
	return s.locks.Load()&bit == bit
}

// Store replaces the lock word wholesale, with release semantics. Fetch
// is the only ordinary caller; exposed for callers that persist or
// synthesize a lock word directly (tests, replay of a captured state).
func (s *SyncState) Store(bits uint32) {
	s.locks.Store(bits)
}

// SyncBarrier is the render-thread-side fence table: up to one fence per
// section, polled non-blockingly and deleted once signalled. It is
// grounded directly on voodoo_vulkan.go's createFence/destroyFence pair,
// generalized from the single always-reused fence there to one fence per
// triple-buffer section.
type SyncBarrier struct {
	device vk.Device
	fences [3]vk.Fence
}

// NewSyncBarrier creates an empty barrier bound to device. device must
// outlive the barrier.
func NewSyncBarrier(device vk.Device) *SyncBarrier {
	return &SyncBarrier{device: device}
}

// Set installs fence as the completion marker for section, called by the
// render thread immediately after submitting the command buffer that read
// the section. Any previously installed fence for the same section is
// leaked if it hadn't already been polled clear — callers are expected to
// Fetch between successive Set calls on the same section, which Cross's
// Consumer.Cross does on every frame.
func (b *SyncBarrier) Set(section Section, fence vk.Fence) {
	b.fences[section.Index()] = fence
}

// Fetch polls every installed fence with a zero timeout. A signalled fence
// is destroyed and its slot cleared; an unsignalled one leaves its section
// bit set in the new lock word. The result is stored into state with
// release semantics.
func (b *SyncBarrier) Fetch(state *SyncState) {
	var bits uint32
	sections := [3]Section{Front, Back, Spare}

	for i, fence := range b.fences {
		if fence == vk.NullFence {
			continue
		}

		status := vk.GetFenceStatus(b.device, fence)
		if status == vk.Success {
			vk.DestroyFence(b.device, fence, nil)
			b.fences[i] = vk.NullFence
			continue
		}

		// Not ready (vk.NotReady) or a query error: treat the section as
		// still locked for this poll and retry on the next Fetch, per the
		// "fence allocation/poll failure is rare, treated as still
		// locked" failure semantics.
		bits |= uint32(sections[i])
	}

	state.Store(bits)
}

// Close destroys any fences still outstanding. Safe to call more than
// once.
func (b *SyncBarrier) Close() {
	for i, fence := range b.fences {
		if fence != vk.NullFence {
			vk.DestroyFence(b.device, fence, nil)
			b.fences[i] = vk.NullFence
		}
	}
}
