package frame

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLayoutManifestBuildsLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	const doc = `{
		"parts": [
			{"name": "positions", "elemSize": 16, "count": 512, "binding": 4},
			{"name": "rotations", "elemSize": 16, "count": 512, "noBind": true}
		]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	manifest, err := LoadLayoutManifest(path)
	if err != nil {
		t.Fatalf("LoadLayoutManifest: %v", err)
	}

	l, index := manifest.Build()
	if idx, ok := index["positions"]; !ok || idx != 0 {
		t.Fatalf("positions index = (%d,%v), want (0,true)", idx, ok)
	}
	if b, ok := l.SSBOOf(index["positions"]); !ok || b != 4 {
		t.Fatalf("positions binding = (%d,%v), want (4,true)", b, ok)
	}
	if _, ok := l.SSBOOf(index["rotations"]); ok {
		t.Fatalf("rotations should have no binding")
	}
}
