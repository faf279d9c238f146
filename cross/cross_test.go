package cross

import (
	"testing"

	"github.com/intuitionamiga/ethelcore/gpu"
)

func TestCreateStartsAtSpareCurrent(t *testing.T) {
	_, consumer := Create(0)
	if got := consumer.boundary.CurrentSection(); got != gpu.Spare {
		t.Fatalf("initial current section = %s, want Spare", got)
	}
}

// TestProducerWritesNextSectionAndAdvances mirrors the happy path: the
// producer targets Spare.Next() == Front, writes it, and the boundary's
// current section moves to Front for the following consumer read.
func TestProducerWritesNextSectionAndAdvances(t *testing.T) {
	producer, consumer := Create(0)

	var wroteSection gpu.Section
	producer.Cross(func(section gpu.Section, storage *int) {
		wroteSection = section
		*storage = 42
	})

	if wroteSection != gpu.Front {
		t.Fatalf("producer wrote section %s, want Front", wroteSection)
	}
	if got := consumer.boundary.CurrentSection(); got != gpu.Front {
		t.Fatalf("current section after write = %s, want Front", got)
	}
	if *consumer.boundary.Storage() != 42 {
		t.Fatalf("storage = %d, want 42", *consumer.boundary.Storage())
	}
}

// TestProducerSkipsWhenSectionLocked confirms the producer silently
// drops a frame rather than writing or advancing when the target section
// is still locked.
func TestProducerSkipsWhenSectionLocked(t *testing.T) {
	producer, consumer := Create(0)
	consumer.boundary.syncCache.Store(uint32(gpu.Front))

	ran := false
	producer.Cross(func(section gpu.Section, storage *int) {
		ran = true
	})

	if ran {
		t.Fatalf("producer op ran despite locked target section")
	}
	if got := consumer.boundary.CurrentSection(); got != gpu.Spare {
		t.Fatalf("current section advanced despite skipped write: %s", got)
	}
}

// TestConsumerReadsCurrentSection checks the consumer always targets
// CurrentSection, never Next, unlike the producer.
func TestConsumerReadsCurrentSection(t *testing.T) {
	producer, consumer := Create(0)
	producer.Cross(func(section gpu.Section, storage *int) { *storage = 7 })

	barrier := gpu.NewSyncBarrier(nil)
	var readSection gpu.Section
	consumer.Cross(barrier, func(section gpu.Section, storage *int) {
		readSection = section
	})

	if readSection != gpu.Front {
		t.Fatalf("consumer read section %s, want Front", readSection)
	}
}

// TestSectionRotationSequence mirrors spec scenario S5: starting at
// Spare, producer A writes Front, producer B writes Back, and producer C
// is skipped because Spare is still locked — current stays at Back.
func TestSectionRotationSequence(t *testing.T) {
	producer, consumer := Create(0)

	producer.Cross(func(section gpu.Section, storage *int) {})
	if got := consumer.boundary.CurrentSection(); got != gpu.Front {
		t.Fatalf("after producer A, current = %s, want Front", got)
	}

	producer.Cross(func(section gpu.Section, storage *int) {})
	if got := consumer.boundary.CurrentSection(); got != gpu.Back {
		t.Fatalf("after producer B, current = %s, want Back", got)
	}

	consumer.boundary.syncCache.Store(uint32(gpu.Spare))
	producer.Cross(func(section gpu.Section, storage *int) {})
	if got := consumer.boundary.CurrentSection(); got != gpu.Back {
		t.Fatalf("producer C should have been skipped, current = %s, want still Back", got)
	}
}
