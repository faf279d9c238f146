// Package gpu lays out heterogeneous typed "parts" inside host-mapped
// device buffers and rotates three logically-independent sections between
// a CPU producer and a GPU consumer. It is the Vulkan-backed half of the
// cross-thread frame pipeline: PartitionedTriBuffer and TriBuffer decide
// where the shape lives, SyncBarrier/SyncState decide when it is safe to
// touch it.
//
// This package performs no draw-call dispatch, shader compilation, or
// camera math — it only guarantees that a section is mapped, aligned, and
// bindable. Grounded on voodoo_vulkan.go's buffer/memory/fence helpers
// (findMemoryType, createVertexBuffer, createStagingBuffer, createFence).
package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Device is the minimal slice of a Vulkan logical device this package
// needs: enough to allocate host-coherent persistent buffers and poll
// fences. The rest of the rendering context (instance, swapchain,
// pipelines, shader modules) is an external collaborator outside this
// package's scope.
type Device struct {
	Physical vk.PhysicalDevice
	Logical  vk.Device
}

// findMemoryType finds a memory type index satisfying typeFilter (the bit
// mask from vk.MemoryRequirements.MemoryTypeBits) and the requested
// property flags.
func (d *Device) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.Physical, &memProps)
	memProps.Deref()

	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memType := memProps.MemoryTypes[i]
		memType.Deref()
		if typeFilter&(1<<i) != 0 && memType.PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("gpu: no memory type satisfies filter 0x%x with properties 0x%x", typeFilter, properties)
}

// createHostCoherentBuffer allocates a device buffer of size bytes with
// the given usage flags, backed by host-visible, host-coherent memory, and
// binds the memory to the buffer. It does not map the memory.
func (d *Device) createHostCoherentBuffer(size vk.DeviceSize, usage vk.BufferUsageFlagBits) (vk.Buffer, vk.DeviceMemory, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	if res := vk.CreateBuffer(d.Logical, &bufferInfo, nil, &buffer); res != vk.Success {
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("gpu: vkCreateBuffer failed: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.Logical, buffer, &memReqs)
	memReqs.Deref()

	memTypeIndex, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.Logical, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("gpu: finding host-coherent memory type: %w", err)
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(d.Logical, &allocInfo, nil, &memory); res != vk.Success {
		vk.DestroyBuffer(d.Logical, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("gpu: vkAllocateMemory failed: %d", res)
	}

	if res := vk.BindBufferMemory(d.Logical, buffer, memory, 0); res != vk.Success {
		vk.FreeMemory(d.Logical, memory, nil)
		vk.DestroyBuffer(d.Logical, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("gpu: vkBindBufferMemory failed: %d", res)
	}

	return buffer, memory, nil
}

// mapPersistent maps the full extent of memory and leaves it mapped for
// the buffer's lifetime — the host pointer this returns remains valid
// until the owning buffer is destroyed; the Vulkan HOST_COHERENT property
// means no explicit flush is needed to make producer writes visible to the
// device.
func (d *Device) mapPersistent(memory vk.DeviceMemory, size vk.DeviceSize) (unsafe.Pointer, error) {
	var data unsafe.Pointer
	if res := vk.MapMemory(d.Logical, memory, 0, size, 0, &data); res != vk.Success {
		return nil, fmt.Errorf("gpu: vkMapMemory failed: %d", res)
	}
	return data, nil
}

// CreateFence creates a new, initially-unsignalled fence for installation
// into a SyncBarrier after a command-buffer submission.
func (d *Device) CreateFence() (vk.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if res := vk.CreateFence(d.Logical, &info, nil, &fence); res != vk.Success {
		return vk.NullFence, fmt.Errorf("gpu: vkCreateFence failed: %d", res)
	}
	return fence, nil
}
