package layout

import "testing"

// TestLayoutOffsetsAndLengths mirrors spec scenario S3: four parts of
// sizes (u32*4, f32*8, vec4*2, vec4*2) with 16-byte shader-storage
// alignment produce offsets {0,16,48,80} and section length 112 -> 128.
func TestLayoutOffsetsAndLengths(t *testing.T) {
	l := New(4)

	l.Partition(4, 4)  // u32 * 4 = 16 bytes
	l.Partition(4, 8)  // f32 * 8 = 32 bytes
	l.Partition(16, 2) // vec4 * 2 = 32 bytes
	l.Partition(16, 2) // vec4 * 2 = 32 bytes

	wantOffsets := []uintptr{0, 16, 48, 80}
	wantLengths := []uintptr{16, 32, 32, 32}

	for i, want := range wantOffsets {
		if got := l.OffsetAt(i); got != want {
			t.Errorf("part %d offset = %d, want %d", i, got, want)
		}
	}
	for i, want := range wantLengths {
		if got := l.LengthAt(i); got != want {
			t.Errorf("part %d length = %d, want %d", i, got, want)
		}
	}

	if got := l.SectionLength(); got != 128 {
		t.Fatalf("section length = %d, want 128", got)
	}
}

func TestLayoutInvariant(t *testing.T) {
	l := New(3)
	l.Partition(4, 4)
	l.Partition(16, 2)
	l.Partition(4, 1)

	for i := 1; i < l.PartCount(); i++ {
		prevEnd := l.OffsetAt(i - 1) + l.LengthAt(i - 1)
		if l.OffsetAt(i) < prevEnd {
			t.Fatalf("part %d offset %d overlaps previous part ending at %d", i, l.OffsetAt(i), prevEnd)
		}
	}
	if l.SectionLength()%16 != 0 {
		t.Fatalf("section length %d is not 16-byte aligned", l.SectionLength())
	}
}

func TestPartitionPanicsPastCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when exceeding declared PARTS")
		}
	}()
	l := New(1)
	l.Partition(4, 1)
	l.Partition(4, 1)
}

func TestSSBOOf(t *testing.T) {
	l := New(2)
	l.Partition(4, 1)
	l.WithShaderStorage(2)
	l.Partition(4, 1)

	if b, ok := l.SSBOOf(0); !ok || b != 2 {
		t.Fatalf("part 0 binding = (%d,%v), want (2,true)", b, ok)
	}
	if _, ok := l.SSBOOf(1); ok {
		t.Fatalf("part 1 should have no binding")
	}
}

func TestBuildFromSpecs(t *testing.T) {
	l, idx := Build([]PartSpec{
		{Name: "positions", ElemSize: 16, Count: 512, Binding: 4},
		{Name: "rotations", ElemSize: 16, Count: 512, Binding: NoBinding},
	})

	if idx["positions"] != 0 || idx["rotations"] != 1 {
		t.Fatalf("unexpected index table: %+v", idx)
	}
	if b, ok := l.SSBOOf(idx["positions"]); !ok || b != 4 {
		t.Fatalf("positions binding = (%d,%v), want (4,true)", b, ok)
	}
	if _, ok := l.SSBOOf(idx["rotations"]); ok {
		t.Fatalf("rotations should have no binding")
	}
}
