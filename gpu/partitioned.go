package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/intuitionamiga/ethelcore/layout"
)

// InitMode selects how a PartitionedTriBuffer initialises a newly declared
// partition across all three sections.
type InitMode int

const (
	// InitZero clears the partition's bytes via a device-side clear
	// command, on all three sections.
	InitZero InitMode = iota
	// InitFill constructs the partition's contents in place by repeatedly
	// invoking a supplied factory, once per element per section.
	InitFill
)

// InitStrategy pairs an InitMode with the factory InitFill needs. Fill is
// ignored when Mode is InitZero.
type InitStrategy[T any] struct {
	Mode InitMode
	Fill func() T
}

// PartitionedTriBuffer is a single device-buffer allocation of
// 3*layout.SectionLength() bytes, host-mapped persistent+coherent+write,
// carved into three logically-independent sections by the embedded
// Layout. It exclusively owns the device buffer object and the host
// mapping; the raw pointer is never exposed — every accessor returns a
// borrow-scoped view instead.
//
// Grounded on voodoo_vulkan.go's createVertexBuffer/createStagingBuffer
// (host-coherent allocation pattern) generalized to a persistent mapping
// sized for three sections of an arbitrary multi-part layout.
type PartitionedTriBuffer struct {
	device *Device
	layout *layout.Layout

	buffer vk.Buffer
	memory vk.DeviceMemory
	base   unsafe.Pointer
	size   vk.DeviceSize
}

// NewPartitionedTriBuffer allocates and maps a device buffer sized for
// three sections of l.
func NewPartitionedTriBuffer(device *Device, l *layout.Layout) (*PartitionedTriBuffer, error) {
	sectionLen := vk.DeviceSize(l.SectionLength())
	total := sectionLen * 3

	buffer, memory, err := device.createHostCoherentBuffer(total,
		vk.BufferUsageStorageBufferBit|vk.BufferUsageTransferDstBit)
	if err != nil {
		return nil, fmt.Errorf("gpu: allocating partitioned tri-buffer: %w", err)
	}

	base, err := device.mapPersistent(memory, total)
	if err != nil {
		vk.FreeMemory(device.Logical, memory, nil)
		vk.DestroyBuffer(device.Logical, buffer, nil)
		return nil, fmt.Errorf("gpu: mapping partitioned tri-buffer: %w", err)
	}

	return &PartitionedTriBuffer{
		device: device,
		layout: l,
		buffer: buffer,
		memory: memory,
		base:   base,
		size:   total,
	}, nil
}

// newPartitionedTriBufferOverHost builds a PartitionedTriBuffer directly
// over an already-host-allocated backing store, bypassing device
// allocation and mapping entirely. It exists so the section/part
// arithmetic (ViewSection, ViewPart, BlitPart, InitialisePart) can be
// exercised without a real Vulkan device; production callers go through
// NewPartitionedTriBuffer instead.
func newPartitionedTriBufferOverHost(l *layout.Layout, host []byte) *PartitionedTriBuffer {
	want := l.SectionLength() * 3
	if uintptr(len(host)) < want {
		panic(fmt.Sprintf("gpu: host backing store has %d bytes, need %d", len(host), want))
	}
	return &PartitionedTriBuffer{
		layout: l,
		base:   unsafe.Pointer(&host[0]),
		size:   vk.DeviceSize(want),
	}
}

// Layout returns the buffer's partition layout.
func (p *PartitionedTriBuffer) Layout() *layout.Layout {
	return p.layout
}

func checkSection(section int) {
	if section < 0 || section >= 3 {
		panic(fmt.Sprintf("gpu: section %d out of range [0,3)", section))
	}
}

func (p *PartitionedTriBuffer) checkPart(part int) {
	if part < 0 || part >= p.layout.PartCount() {
		panic(fmt.Sprintf("gpu: part %d out of range [0,%d)", part, p.layout.PartCount()))
	}
}

// BindShaderStorage binds each part of section that declared a shader
// binding to its SSBO slot, as a range over this buffer's single device
// object.
func (p *PartitionedTriBuffer) BindShaderStorage(section int, bind func(binding uint32, buffer vk.Buffer, offset, length vk.DeviceSize)) {
	checkSection(section)

	base := vk.DeviceSize(p.layout.SectionLength()) * vk.DeviceSize(section)
	for part := 0; part < p.layout.PartCount(); part++ {
		binding, ok := p.layout.SSBOOf(part)
		if !ok {
			continue
		}
		offset := base + vk.DeviceSize(p.layout.OffsetAt(part))
		length := vk.DeviceSize(p.layout.LengthAt(part))
		bind(binding, p.buffer, offset, length)
	}
}

// ViewSection returns a byte window over section.
func (p *PartitionedTriBuffer) ViewSection(section int) []byte {
	checkSection(section)
	length := p.layout.SectionLength()
	offset := length * uintptr(section)
	return unsafe.Slice((*byte)(unsafe.Add(p.base, offset)), length)
}

// ViewPart returns a typed window over part within section. The caller
// must ensure T matches the element type part was declared for: the
// layout records only byte sizes, so nothing here or in layout.Build
// checks T against it.
func ViewPart[T any](p *PartitionedTriBuffer, section, part int) []T {
	checkSection(section)
	p.checkPart(part)

	base := p.layout.SectionLength() * uintptr(section)
	offset := base + p.layout.OffsetAt(part)
	length := p.layout.LengthAt(part)

	var zero T
	elemSize := unsafe.Sizeof(zero)
	count := int(length / elemSize)

	return unsafe.Slice((*T)(unsafe.Add(p.base, offset)), count)
}

// BlitSection copies data into section, truncated at the section length.
func (p *PartitionedTriBuffer) BlitSection(section int, data []byte) {
	checkSection(section)
	dst := p.ViewSection(section)
	n := min(len(dst), len(data))
	copy(dst[:n], data[:n])
}

// BlitPart copies src into part within section, truncated at the part's
// declared length.
func BlitPart[T any](p *PartitionedTriBuffer, section, part int, src []T) {
	dst := ViewPart[T](p, section, part)
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])
}

// InitialisePart applies strategy to part across all three sections: a
// device-side clear for InitZero, or repeated in-place construction via
// Fill for InitFill.
func InitialisePart[T any](p *PartitionedTriBuffer, part int, strategy InitStrategy[T], clear func(buffer vk.Buffer, offset, length vk.DeviceSize)) {
	p.checkPart(part)

	offset := p.layout.OffsetAt(part)
	length := p.layout.LengthAt(part)

	switch strategy.Mode {
	case InitZero:
		for section := 0; section < 3; section++ {
			base := p.layout.SectionLength() * uintptr(section)
			clear(p.buffer, vk.DeviceSize(base+offset), vk.DeviceSize(length))
		}
	case InitFill:
		for section := 0; section < 3; section++ {
			dst := ViewPart[T](p, section, part)
			for i := range dst {
				dst[i] = strategy.Fill()
			}
		}
	}
}

// Close unmaps and destroys the underlying device buffer. The host
// pointer is never valid after Close returns.
func (p *PartitionedTriBuffer) Close() {
	vk.UnmapMemory(p.device.Logical, p.memory)
	vk.DestroyBuffer(p.device.Logical, p.buffer, nil)
	vk.FreeMemory(p.device.Logical, p.memory, nil)
	p.base = nil
}
