package frame

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/intuitionamiga/ethelcore/layout"
)

// PartManifest describes one partition of a LayoutManifest, the JSON
// counterpart of layout.PartSpec.
type PartManifest struct {
	Name     string `json:"name"`
	ElemSize int    `json:"elemSize"`
	Count    int    `json:"count"`
	Binding  uint32 `json:"binding,omitempty"`
	NoBind   bool   `json:"noBind,omitempty"`
}

// LayoutManifest is an on-disk description of a PartitionedTriBuffer's
// partitions, read once at startup instead of hard-coding layout.Build
// calls in Go — grounded on runtime_ipc.go's json.Marshal/Unmarshal
// request framing, generalized from a wire protocol to a startup config
// file.
type LayoutManifest struct {
	Parts []PartManifest `json:"parts"`
}

// LoadLayoutManifest reads and parses a LayoutManifest from path.
func LoadLayoutManifest(path string) (*LayoutManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frame: reading layout manifest %q: %w", path, err)
	}

	var manifest LayoutManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("frame: parsing layout manifest %q: %w", path, err)
	}
	return &manifest, nil
}

// Build converts the manifest into a layout.Layout and the name->index
// table layout.Build produces.
func (m *LayoutManifest) Build() (*layout.Layout, map[string]int) {
	specs := make([]layout.PartSpec, len(m.Parts))
	for i, part := range m.Parts {
		binding := part.Binding
		if part.NoBind {
			binding = layout.NoBinding
		}
		specs[i] = layout.PartSpec{
			Name:     part.Name,
			ElemSize: part.ElemSize,
			Count:    part.Count,
			Binding:  binding,
		}
	}
	return layout.Build(specs)
}
