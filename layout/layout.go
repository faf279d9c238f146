// Package layout describes the typed partition plan for one section of a
// PartitionedTriBuffer: where each part's bytes start, how long they run,
// and which shader-storage binding (if any) they're bound to.
package layout

// ssboAlignment is the minimum shader-storage-buffer offset alignment a
// conforming Vulkan implementation guarantees (VkPhysicalDeviceLimits.
// minStorageBufferOffsetAlignment is required to be <= 256, and 16 covers
// every part type this module deals with — 4-byte scalars up through
// 16-byte vectors). The device's actual limit is not queried:
// gpu.NewPartitionedTriBuffer uses offsets aligned to this constant on any
// device, including one whose limit is larger.
const ssboAlignment = 16

// NoBinding marks a part that is not bound to any shader-storage slot.
const NoBinding = ^uint32(0)

// part holds one partition's placement inside a section.
type part struct {
	offset  uintptr
	length  uintptr
	binding uint32
}

// Layout is a fixed-length description of the PARTS typed partitions
// living inside one section of a PartitionedTriBuffer. Parts are added in
// order with Partition; offsets are aligned up to ssboAlignment as each
// part is appended.
type Layout struct {
	parts    []part
	cursor   uintptr
	capacity int
}

// New creates an empty Layout that will hold up to capacity parts.
// Capacity must be greater than zero.
func New(capacity int) *Layout {
	if capacity <= 0 {
		panic("layout: capacity must be greater than zero")
	}
	return &Layout{
		parts:    make([]part, 0, capacity),
		capacity: capacity,
	}
}

// alignUp rounds v up to the next multiple of align, where align is a
// power of two.
func alignUp(v uintptr, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}

// Partition appends a new partition holding count elements of byte size
// elemSize, aligning its offset up to the shader-storage alignment, and
// returns its part index. It panics if the layout is already at capacity.
func (l *Layout) Partition(elemSize, count int) int {
	if len(l.parts) >= l.capacity {
		panic("layout: partition count exceeds declared capacity")
	}

	length := uintptr(elemSize) * uintptr(count)
	offset := alignUp(l.cursor, ssboAlignment)

	l.parts = append(l.parts, part{offset: offset, length: length, binding: NoBinding})
	l.cursor = offset + length

	return len(l.parts) - 1
}

// WithShaderStorage records a shader-storage binding index for the most
// recently added partition. It panics if called before any Partition call.
func (l *Layout) WithShaderStorage(binding uint32) *Layout {
	if len(l.parts) == 0 {
		panic("layout: WithShaderStorage called before any Partition")
	}
	l.parts[len(l.parts)-1].binding = binding
	return l
}

// PartCount reports how many partitions have been declared so far.
func (l *Layout) PartCount() int {
	return len(l.parts)
}

// OffsetAt returns the byte offset of part i within a section.
func (l *Layout) OffsetAt(i int) uintptr {
	return l.parts[i].offset
}

// LengthAt returns the byte length of part i.
func (l *Layout) LengthAt(i int) uintptr {
	return l.parts[i].length
}

// SSBOOf returns the shader-storage binding for part i, and false if none
// was set.
func (l *Layout) SSBOOf(i int) (uint32, bool) {
	b := l.parts[i].binding
	return b, b != NoBinding
}

// SectionLength returns the aligned total length in bytes of one section:
// the sum of all partitions, rounded up to the shader-storage alignment.
func (l *Layout) SectionLength() uintptr {
	return alignUp(l.cursor, ssboAlignment)
}

// PartSpec describes one named partition for Build. Go has no hygienic
// macro system to generate the accessor enum the original layout_buffer!
// macro produced at compile time, so this is the init-time stand-in: a
// declarative slice of tuples that Build turns into a Layout plus a
// name-to-index table, the way the design notes call for.
type PartSpec struct {
	Name     string
	ElemSize int
	Count    int
	Binding  uint32 // layout.NoBinding if this part isn't shader-storage bound
}

// Build constructs a Layout from an ordered slice of PartSpec and returns
// it alongside a name -> part-index table for use as the generated enum's
// runtime replacement.
func Build(specs []PartSpec) (*Layout, map[string]int) {
	l := New(len(specs))
	index := make(map[string]int, len(specs))
	for _, s := range specs {
		i := l.Partition(s.ElemSize, s.Count)
		if s.Binding != NoBinding {
			l.WithShaderStorage(s.Binding)
		}
		index[s.Name] = i
	}
	return l, index
}
