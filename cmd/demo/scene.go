package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync/atomic"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"

	"github.com/intuitionamiga/ethelcore/cross"
	"github.com/intuitionamiga/ethelcore/frame"
	"github.com/intuitionamiga/ethelcore/gpu"
	"github.com/intuitionamiga/ethelcore/layout"
	"github.com/intuitionamiga/ethelcore/mesh"
	"github.com/intuitionamiga/ethelcore/mirror"
)

const (
	partEntities  = "entities"
	partPositions = "positions"
	partRotations = "rotations"

	demoEntityCount   = 6
	drawQueueCapacity = mesh.MeshCount
)

// vec3 is the host-side shape of a position or rotation as it crosses
// between the logic and render threads; it matches the 12-byte element
// size builtinLayoutSpecs declares for the positions and rotations parts.
type vec3 struct{ X, Y, Z float32 }

// sceneStorage is the Boundary payload this demo crosses: the host
// mirror of every per-entity part its layout declares. The logic thread
// writes it through a Producer, the render thread reads it through a
// Consumer and blits each field into its matching PartitionedTriBuffer
// part.
type sceneStorage struct {
	entities  [demoEntityCount]mesh.EntityMapping
	positions [demoEntityCount]vec3
	rotations [demoEntityCount]vec3
}

// scene wires every frame-pipeline package into one runnable ebiten.Game:
// a small orbiting-entity demo that exercises the full logic -> cross ->
// render path on real (if minimally used) Vulkan-backed buffers.
type scene struct {
	verbose bool

	instance vk.Instance
	device   *gpu.Device

	layout    *layout.Layout
	partIndex map[string]int

	buf      *gpu.PartitionedTriBuffer
	commands *gpu.TriBuffer[mesh.DrawArraysIndirectCommand]
	barrier  *gpu.SyncBarrier

	producer cross.Producer[sceneStorage]
	consumer cross.Consumer[sceneStorage]

	meshes   *mesh.Staging
	demoMesh mesh.ID
	queue    *mesh.GpuCommandQueue[mesh.DrawArraysIndirectCommand]

	resolution mirror.Cell[frame.Resolution]
	projection mirror.Cell[frame.Mat4]

	elapsed time.Duration
	frames  atomic.Uint64
	dump    atomic.Value // string

	placeholder  *image.NRGBA
	textureImage *ebiten.Image

	width, height int
}

// newScene opens a Vulkan device, builds the demo layout (from manifestPath
// if given, otherwise the built-in default), allocates the partitioned and
// command tri-buffers over it, and seeds a handful of orbiting entities.
func newScene(manifestPath string, windowW, windowH int) (*scene, error) {
	instance, device, err := bootstrapVulkan()
	if err != nil {
		return nil, fmt.Errorf("demo: initialising vulkan: %w", err)
	}

	var l *layout.Layout
	var index map[string]int
	if manifestPath != "" {
		manifest, err := frame.LoadLayoutManifest(manifestPath)
		if err != nil {
			vk.DestroyInstance(instance, nil)
			return nil, err
		}
		l, index = manifest.Build()
	} else {
		l, index = layout.Build(builtinLayoutSpecs())
	}

	buf, err := gpu.NewPartitionedTriBuffer(device, l)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("demo: allocating partitioned tri-buffer: %w", err)
	}

	commands, err := gpu.NewTriBuffer[mesh.DrawArraysIndirectCommand](device, drawQueueCapacity, vk.BufferUsageIndirectBufferBit)
	if err != nil {
		buf.Close()
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("demo: allocating command tri-buffer: %w", err)
	}

	staging := mesh.NewStaging()
	demoMesh := staging.Stage(placeholderQuadVertices())

	var storage sceneStorage
	for i := range storage.entities {
		storage.entities[i] = mesh.EntityMapping{
			MeshHandle:     uint32(demoMesh),
			PositionHandle: uint32(i),
			RotationHandle: uint32(i),
		}
	}
	producer, consumer := cross.Create(storage)

	s := &scene{
		instance:    instance,
		device:      device,
		layout:      l,
		partIndex:   index,
		buf:         buf,
		commands:    commands,
		barrier:     gpu.NewSyncBarrier(device.Logical),
		producer:    producer,
		consumer:    consumer,
		meshes:      staging,
		demoMesh:    demoMesh,
		queue:       mesh.NewGpuCommandQueue[mesh.DrawArraysIndirectCommand](drawQueueCapacity),
		placeholder: placeholderMeshTexture(),
		width:       windowW,
		height:      windowH,
	}
	s.dump.Store("(no frame rendered yet)")
	s.resolution.Publish(frame.Resolution{Width: float32(windowW), Height: float32(windowH)})
	s.projection.Publish(frame.Orthographic(float32(windowW), float32(windowH)))

	return s, nil
}

// builtinLayoutSpecs is the default demo layout used when no manifest is
// given on the command line: one entity-mapping part and two vec3 parts,
// each bound to its own shader-storage slot.
func builtinLayoutSpecs() []layout.PartSpec {
	return []layout.PartSpec{
		{Name: partEntities, ElemSize: 16, Count: demoEntityCount, Binding: 0},
		{Name: partPositions, ElemSize: 12, Count: demoEntityCount, Binding: 1},
		{Name: partRotations, ElemSize: 12, Count: demoEntityCount, Binding: 2},
	}
}

func placeholderQuadVertices() []mesh.Vertex {
	return []mesh.Vertex{
		{Position: [3]float32{-0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{-0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{-0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}},
	}
}

// placeholderMeshTexture builds a small checkerboard standing in for a
// loaded mesh texture; Draw scales it to the current resolution with
// golang.org/x/image/draw rather than baking a fixed-size ebiten.Image.
func placeholderMeshTexture() *image.NRGBA {
	const n = 16
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c := color.NRGBA{A: 255}
			if (x/4+y/4)%2 == 0 {
				c.R, c.G, c.B = 90, 140, 210
			} else {
				c.R, c.G, c.B = 20, 30, 50
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// stateStep runs on the logic thread: it advances a simple orbital motion
// for every entity and publishes the result through the Producer.
func (s *scene) stateStep(delta time.Duration) {
	s.elapsed += delta
	t := s.elapsed.Seconds()

	s.producer.Cross(func(_ gpu.Section, storage *sceneStorage) {
		n := len(storage.positions)
		for i := range storage.positions {
			angle := t + float64(i)*(2*math.Pi/float64(n))
			const radius = 0.6
			storage.positions[i] = vec3{
				X: float32(radius * math.Cos(angle)),
				Y: float32(radius * math.Sin(angle)),
			}
			storage.rotations[i] = vec3{Z: float32(angle)}
		}
	})
}

// renderPreFrame runs on the render thread, once per frame, before
// renderFrame: it re-derives the projection matrix whenever ebiten's
// Layout callback has published a new resolution.
func (s *scene) renderPreFrame() {
	if res, changed := s.resolution.Sync(); changed {
		s.projection.Publish(frame.Orthographic(res.Width, res.Height))
	}
}

// renderFrame runs on the render thread: it blits the current section's
// entity/position/rotation storage into the partitioned tri-buffer,
// rebuilds the indirect draw-command batch, and uploads it to the
// matching command tri-buffer section. This demo issues no actual
// device-side dispatch, so it never installs a fence on barrier — every
// section stays unlocked and available to the next Producer.Cross call.
func (s *scene) renderFrame(barrier *gpu.SyncBarrier) {
	s.consumer.Cross(barrier, func(section gpu.Section, storage *sceneStorage) {
		idx := section.Index()

		gpu.BlitPart(s.buf, idx, s.partIndex[partEntities], storage.entities[:])
		gpu.BlitPart(s.buf, idx, s.partIndex[partPositions], storage.positions[:])
		gpu.BlitPart(s.buf, idx, s.partIndex[partRotations], storage.rotations[:])

		s.queue.Clear()
		for i, entity := range storage.entities {
			meta := s.meshes.Metadata().Get(mesh.ID(entity.MeshHandle))
			s.queue.Push(mesh.DrawArraysIndirectCommand{
				Count:         meta.Length,
				InstanceCount: 1,
				FirstVertex:   meta.Offset,
				BaseInstance:  uint32(i),
			})
		}

		var batch [drawQueueCapacity]mesh.DrawArraysIndirectCommand
		if surplus := s.queue.Upload(batch[:]); surplus > 0 && s.verbose {
			fmt.Printf("demo: dropped %d draw commands past capacity\n", surplus)
		}
		s.commands.Blit(idx, batch[:len(storage.entities)])

		s.frames.Add(1)
		s.dump.Store(s.formatEntityDump(storage))
	})

	// Stands in for the swapchain present call a real render thread would
	// block on; without it this loop spins unpaced, per orchestrator.go's
	// runRenderThread doc comment.
	time.Sleep(time.Millisecond)
}

func (s *scene) formatEntityDump(storage *sceneStorage) string {
	proj := s.projection.Peek()
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d, %d entities, projection x-scale %.4f\n", s.frames.Load(), len(storage.entities), proj[0])
	for i, e := range storage.entities {
		p := storage.positions[i]
		fmt.Fprintf(&b, "  entity %d: mesh=%d pos=(%.2f, %.2f, %.2f)\n", i, e.MeshHandle, p.X, p.Y, p.Z)
	}
	return b.String()
}

// entityDump returns the last frame's entity/position snapshot, for the
// clipboard debug command.
func (s *scene) entityDump() string {
	if v := s.dump.Load(); v != nil {
		return v.(string)
	}
	return "(no frame rendered yet)"
}

// Update is a no-op: simulation state lives on the logic thread the
// Orchestrator drives, not on ebiten's own update callback.
func (s *scene) Update() error {
	return nil
}

// Draw renders the placeholder mesh texture scaled to the window's
// current resolution. It reads the resolution mirror cell with Peek
// rather than Sync, since ebiten's game loop is a third thread distinct
// from the single render-thread consumer renderPreFrame/renderFrame run
// on.
func (s *scene) Draw(screen *ebiten.Image) {
	res := s.resolution.Peek()
	w, h := int(res.Width), int(res.Height)
	if w <= 0 || h <= 0 {
		w, h = s.width, s.height
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), s.placeholder, s.placeholder.Bounds(), draw.Over, nil)

	if s.textureImage == nil || s.textureImage.Bounds().Dx() != w || s.textureImage.Bounds().Dy() != h {
		s.textureImage = ebiten.NewImage(w, h)
	}
	s.textureImage.WritePixels(scaled.Pix)
	screen.DrawImage(s.textureImage, nil)

	if s.verbose {
		ebiten.SetWindowTitle(fmt.Sprintf("ethelcore frame pipeline demo — frame %d", s.frames.Load()))
	}
}

// Layout publishes the window's current size to the resolution mirror
// cell and reports it back unchanged; this callback is the cell's single
// producer thread, renderPreFrame its single consumer.
func (s *scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.resolution.Publish(frame.Resolution{Width: float32(outsideWidth), Height: float32(outsideHeight)})
	return outsideWidth, outsideHeight
}

// Close tears down the device buffers, the sync barrier's outstanding
// fences, and the Vulkan instance, in the reverse order newScene
// acquired them.
func (s *scene) Close() {
	s.barrier.Close()
	s.commands.Close()
	s.buf.Close()
	vk.DestroyDevice(s.device.Logical, nil)
	vk.DestroyInstance(s.instance, nil)
}

// bootstrapVulkan creates the minimal instance/physical-device/logical-
// device chain this demo needs: no swapchain, render pass, or pipeline,
// since it exercises the data pipeline rather than issuing real draws.
// Grounded on voodoo_vulkan.go's initVulkan/createInstance/
// selectPhysicalDevice/createDevice.
func bootstrapVulkan() (vk.Instance, *gpu.Device, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, nil, fmt.Errorf("loading vulkan library: %w", err)
	}
	if err := vk.Init(); err != nil {
		return nil, nil, fmt.Errorf("initialising vulkan loader: %w", err)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString("ethelcore demo"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeString("ethelcore"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return nil, nil, fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	vk.InitInstance(instance)

	physical, queueFamily, err := pickGraphicsDevice(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, nil, err
	}

	logical, err := createLogicalDevice(physical, queueFamily)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, nil, err
	}

	return instance, &gpu.Device{Physical: physical, Logical: logical}, nil
}

func pickGraphicsDevice(instance vk.Instance) (vk.PhysicalDevice, uint32, error) {
	var count uint32
	vk.EnumeratePhysicalDevices(instance, &count, nil)
	if count == 0 {
		return nil, 0, fmt.Errorf("demo: no vulkan-capable GPUs found")
	}

	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(instance, &count, devices)

	for _, device := range devices {
		var qfCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, nil)
		families := make([]vk.QueueFamilyProperties, qfCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, families)

		for i, qf := range families {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				return device, uint32(i), nil
			}
		}
	}
	return nil, 0, fmt.Errorf("demo: no GPU with a graphics queue found")
}

func createLogicalDevice(physical vk.PhysicalDevice, queueFamily uint32) (vk.Device, error) {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}

	var device vk.Device
	if res := vk.CreateDevice(physical, &deviceInfo, nil, &device); res != vk.Success {
		return nil, fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	return device, nil
}

func safeString(s string) string {
	return s + "\x00"
}
