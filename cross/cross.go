// Package cross coordinates a single CPU producer and a single GPU
// consumer over one shared triple-buffered storage, without a mutex. The
// producer always writes the section the consumer is not currently
// reading and never blocks: if that section is still locked by an
// outstanding GPU fence, the write is silently dropped for that frame.
//
// Grounded on original_source/src/state/cross.rs: Boundary tracks the
// working section and a cached lock word; Producer and Consumer are
// generic operators over that boundary rather than methods on it
// directly, so the same storage can be crossed from either role.
package cross

import (
	"sync/atomic"

	"github.com/intuitionamiga/ethelcore/gpu"
)

// Boundary is the storage shared between a Producer and a Consumer: the
// payload itself, an atomically-updated pointer to the section currently
// designated "current", and the last fence poll result.
type Boundary[Storage any] struct {
	storage        Storage
	workingSection atomic.Uint32
	syncCache      gpu.SyncState
}

// NewBoundary wraps storage for cross-thread access, with Spare as the
// initial current section — matching the original's choice, so that the
// very first producer write lands in Front without first colliding with
// whatever the consumer reads before any frame has been produced.
func NewBoundary[Storage any](storage Storage) *Boundary[Storage] {
	b := &Boundary[Storage]{storage: storage}
	b.workingSection.Store(uint32(gpu.Spare))
	return b
}

// Storage returns the wrapped payload. Callers are expected to only
// touch it from within a Cross closure.
func (b *Boundary[Storage]) Storage() *Storage {
	return &b.storage
}

// CurrentSection returns the section currently designated as the
// consumer's read target.
func (b *Boundary[Storage]) CurrentSection() gpu.Section {
	return gpu.Section(b.workingSection.Load())
}

func (b *Boundary[Storage]) advanceSection() {
	for {
		old := b.workingSection.Load()
		next := uint32(gpu.Section(old).Next())
		if b.workingSection.CompareAndSwap(old, next) {
			return
		}
	}
}

// SyncCache returns the lock word most recently populated by sync.
func (b *Boundary[Storage]) SyncCache() *gpu.SyncState {
	return &b.syncCache
}

func (b *Boundary[Storage]) sync(barrier *gpu.SyncBarrier) {
	barrier.Fetch(&b.syncCache)
}

// Producer is the write-side operator over a Boundary: it always targets
// the section following the current one, and only ever writes if that
// section is unlocked.
type Producer[Storage any] struct {
	boundary *Boundary[Storage]
}

// Cross executes op against the next section's storage, but only if that
// section is not still locked by an outstanding GPU fence as of the last
// Consumer.Cross sync. If the section is locked, the write is skipped
// for this call and the current section is left unchanged — there is no
// retry and no blocking.
//
// On a successful write, the boundary's current section is advanced to
// the one op just wrote, handing it to the next Consumer.Cross call.
func (p Producer[Storage]) Cross(op func(section gpu.Section, storage *Storage)) {
	section := p.boundary.CurrentSection().Next()
	if p.boundary.SyncCache().HasLock(section) {
		return
	}
	op(section, p.boundary.Storage())
	p.boundary.advanceSection()
}

// Consumer is the read-side operator over a Boundary: it always operates
// on the current section, and is responsible for driving the boundary's
// fence-poll cache both before and after its operation.
type Consumer[Storage any] struct {
	boundary *Boundary[Storage]
}

// Cross executes op against the current section's storage. barrier is
// polled for newly-signalled fences both before and after op runs, so
// that a fence placed by op itself is visible to the very next Producer
// write as soon as the device reports completion, without waiting for
// the following Consumer.Cross call.
func (c Consumer[Storage]) Cross(barrier *gpu.SyncBarrier, op func(section gpu.Section, storage *Storage)) {
	section := c.boundary.CurrentSection()
	c.boundary.sync(barrier)
	op(section, c.boundary.Storage())
	c.boundary.sync(barrier)
}

// Create wraps storage in a shared Boundary and returns the Producer and
// Consumer operators over it. Both share the same underlying storage and
// synchronise purely through atomics — no locks are taken on the hot
// path in either direction.
func Create[Storage any](storage Storage) (Producer[Storage], Consumer[Storage]) {
	boundary := NewBoundary(storage)
	return Producer[Storage]{boundary: boundary}, Consumer[Storage]{boundary: boundary}
}
