package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// TriBuffer is the single-type counterpart to PartitionedTriBuffer: three
// independent device buffers, each sized for count elements of T, rather
// than three sections of one shared allocation. It exists for data that
// has no sibling parts to co-locate with — a mesh's index buffer, for
// instance — where a dedicated descriptor per section is preferable to
// carving one allocation into thirds.
type TriBuffer[T any] struct {
	device *Device

	buffers [3]vk.Buffer
	memory  [3]vk.DeviceMemory
	bases   [3]unsafe.Pointer
	count   int
}

// NewTriBuffer allocates three independent host-coherent buffers, each
// holding count elements of T, with the given usage flags.
func NewTriBuffer[T any](device *Device, count int, usage vk.BufferUsageFlagBits) (*TriBuffer[T], error) {
	var zero T
	elemSize := vk.DeviceSize(unsafe.Sizeof(zero))
	size := elemSize * vk.DeviceSize(count)

	tb := &TriBuffer[T]{device: device, count: count}

	for i := 0; i < 3; i++ {
		buffer, memory, err := device.createHostCoherentBuffer(size, usage)
		if err != nil {
			tb.closePartial(i)
			return nil, fmt.Errorf("gpu: allocating tri-buffer section %d: %w", i, err)
		}

		base, err := device.mapPersistent(memory, size)
		if err != nil {
			vk.FreeMemory(device.Logical, memory, nil)
			vk.DestroyBuffer(device.Logical, buffer, nil)
			tb.closePartial(i)
			return nil, fmt.Errorf("gpu: mapping tri-buffer section %d: %w", i, err)
		}

		tb.buffers[i] = buffer
		tb.memory[i] = memory
		tb.bases[i] = base
	}

	return tb, nil
}

func (t *TriBuffer[T]) closePartial(upTo int) {
	for i := 0; i < upTo; i++ {
		vk.UnmapMemory(t.device.Logical, t.memory[i])
		vk.DestroyBuffer(t.device.Logical, t.buffers[i], nil)
		vk.FreeMemory(t.device.Logical, t.memory[i], nil)
	}
}

// BufferOf returns the device buffer object backing section, for binding
// as a whole resource (a vertex or index buffer, say) rather than a
// sub-range.
func (t *TriBuffer[T]) BufferOf(section int) vk.Buffer {
	checkSection(section)
	return t.buffers[section]
}

// View returns a typed window over section's full element count.
func (t *TriBuffer[T]) View(section int) []T {
	checkSection(section)
	return unsafe.Slice((*T)(t.bases[section]), t.count)
}

// Blit copies src into section, truncated at the section's element count.
func (t *TriBuffer[T]) Blit(section int, src []T) {
	dst := t.View(section)
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])
}

// Close unmaps and destroys all three underlying device buffers.
func (t *TriBuffer[T]) Close() {
	t.closePartial(3)
	t.bases = [3]unsafe.Pointer{}
}
