// Package mesh holds the small, fixed-layout records that describe
// where a mesh's vertices live in GPU memory and how an entity is bound
// to one, plus the host-side staging area that accumulates vertex data
// before it is uploaded.
//
// Grounded on original_source/src/mesh.rs (Id, Metadata, Meshadata,
// MeshStaging, the vertex/metadata layout_buffer! declaration).
package mesh

// ID identifies a mesh uploaded to GPU memory, looked up through
// Table.Get to find its Metadata.
type ID uint32

// Metadata is the only per-mesh-instance information that crosses onto
// the GPU: the starting index into the vertex storage partition and the
// vertex count to draw. 8 bytes, matching the EXTERNAL INTERFACES mesh
// metadata layout.
type Metadata struct {
	Offset uint32
	Length uint32
}

// EntityMapping binds one renderable entity to the three column handles
// it needs at draw time. 16 bytes, 16-byte aligned so an array of these
// can sit directly in a shader-storage partition without per-element
// padding.
type EntityMapping struct {
	MeshHandle     uint32
	PositionHandle uint32
	RotationHandle uint32
	_              uint32
}

// VertexStorageAllocation and MeshCount size the host-side staging
// buffers; they mirror the GPU-side partition capacities a caller
// declares through layout.Build for the mesh storage buffer.
const (
	VertexStorageAllocation = 512
	MeshCount               = 128
)

// Vertex is the per-vertex payload staged into the mesh storage
// partition.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Table accumulates Metadata records in upload order, tracking the
// running vertex offset so each new entry's Offset is correct without
// the caller computing it.
type Table struct {
	metadata []Metadata
	head     uint32
}

// NewTable returns an empty table pre-sized for MeshCount entries.
func NewTable() *Table {
	return &Table{metadata: make([]Metadata, 0, MeshCount)}
}

// Clear empties the table and resets the running offset to zero.
func (t *Table) Clear() {
	t.metadata = t.metadata[:0]
	t.head = 0
}

// Add records a new mesh of the given vertex length at the current
// running offset and returns its ID.
func (t *Table) Add(length uint32) ID {
	id := ID(len(t.metadata))
	t.metadata = append(t.metadata, Metadata{Offset: t.head, Length: length})
	t.head += length
	return id
}

// Get returns the Metadata for id.
func (t *Table) Get(id ID) Metadata {
	return t.metadata[id]
}

// Head returns the running vertex offset: the offset the next Add call
// would assign.
func (t *Table) Head() uint32 {
	return t.head
}

// All returns the table's records in insertion order.
func (t *Table) All() []Metadata {
	return t.metadata
}

// Staging accumulates vertex data and mesh metadata on the host before a
// frame packs it into a PartitionedTriBuffer section.
type Staging struct {
	metadata *Table
	vertices []Vertex
}

// NewStaging returns an empty staging area pre-sized for
// VertexStorageAllocation vertices.
func NewStaging() *Staging {
	return &Staging{
		metadata: NewTable(),
		vertices: make([]Vertex, 0, VertexStorageAllocation),
	}
}

// Stage appends vertices to the staging area and records their metadata,
// returning the new mesh's ID.
func (s *Staging) Stage(vertices []Vertex) ID {
	s.vertices = append(s.vertices, vertices...)
	return s.metadata.Add(uint32(len(vertices)))
}

// Metadata returns the table of mesh records staged so far.
func (s *Staging) Metadata() *Table {
	return s.metadata
}

// Vertices returns the staged vertex data.
func (s *Staging) Vertices() []Vertex {
	return s.vertices
}

// Close returns the final mesh table, ending the staging session.
func (s *Staging) Close() *Table {
	return s.metadata
}
