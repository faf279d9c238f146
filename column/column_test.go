package column

import "testing"

func TestPutAssignsSequentialHandles(t *testing.T) {
	c := New[uint32]()

	h1 := c.Put(10)
	h2 := c.Put(20)
	h3 := c.Put(30)

	if h1 != 1 || h2 != 2 || h3 != 3 {
		t.Fatalf("got handles %d,%d,%d want 1,2,3", h1, h2, h3)
	}
	if got := *c.GetByHandle(h2); got != 20 {
		t.Fatalf("GetByHandle(h2) = %d, want 20", got)
	}
}

func TestFreeAndRecycle(t *testing.T) {
	c := New[uint32]()
	h1 := c.Put(10)
	h2 := c.Put(20)
	h3 := c.Put(30)

	c.Free(h2)

	if !c.IsFree(h2) {
		t.Fatalf("h2 should be free")
	}
	if got := *c.GetByHandle(h3); got != 30 {
		t.Fatalf("h3 should still resolve to 30, got %d", got)
	}
	if got := *c.GetByHandle(h1); got != 10 {
		t.Fatalf("h1 should still resolve to 10, got %d", got)
	}

	recycled := c.Put(40)
	if recycled != h2 {
		t.Fatalf("expected recycled handle %d, got %d", h2, recycled)
	}
	if got := *c.GetByHandle(recycled); got != 40 {
		t.Fatalf("recycled handle should resolve to 40, got %d", got)
	}
}

func TestFreeZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Free(0) to panic")
		}
	}()
	c := New[uint32]()
	c.Free(0)
}

func TestFreeAlreadyFreedIsNoop(t *testing.T) {
	c := New[uint32]()
	h := c.Put(1)
	c.Free(h)
	c.Free(h) // must not panic
}

// TestFreeOutOfRangePanics distinguishes an unknown/never-allocated handle
// from an already-freed in-range one: the former is a precondition
// violation and must panic, not silently no-op.
func TestFreeOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Free of an out-of-range handle to panic")
		}
	}()
	c := New[uint32]()
	c.Put(1)
	c.Free(Handle(99))
}

// TestFreeLastDenseSlot exercises the boundary case where the freed handle
// owns the very last dense slot: the naive swap_remove port re-writes
// index[h] right after clearing it, because the "moved" owner is h itself.
func TestFreeLastDenseSlot(t *testing.T) {
	c := New[uint32]()
	var handles []Handle
	for i := range uint32(50) {
		handles = append(handles, c.Put(i))
	}

	for _, h := range []Handle{37, 14, 32, 45, 24, 3, 7, 35} {
		c.Free(h)
	}

	last := c.Put(100)
	c.Free(last)

	if !c.IsFree(last) {
		t.Fatalf("freeing the last dense slot did not take effect")
	}
	assertRoundTrip(t, c)
}

func assertRoundTrip(t *testing.T, c *Column[uint32]) {
	t.Helper()
	for i := 1; i < c.Len(); i++ {
		h := c.HandleAt(i)
		got, ok := c.Lookup(h)
		if !ok {
			t.Fatalf("dense slot %d's owner %d is not live", i, h)
		}
		if *got != c.dense[i] {
			t.Fatalf("round-trip mismatch at dense slot %d", i)
		}
	}
}

func TestRoundTripAfterRandomSequence(t *testing.T) {
	c := New[uint32]()
	var live []Handle
	for i := range uint32(64) {
		live = append(live, c.Put(i))
	}

	for _, i := range []int{3, 40, 10, 60, 0, 55} {
		c.Free(live[i])
	}

	assertRoundTrip(t, c)
}

func TestEachSkipsDegenerateElement(t *testing.T) {
	c := New[uint32]()
	c.Put(1)
	c.Put(2)

	seen := 0
	c.Each(func(h Handle, v *uint32) {
		seen++
		if h == 0 {
			t.Fatalf("Each must not yield the degenerate handle")
		}
	})
	if seen != 2 {
		t.Fatalf("expected 2 elements, got %d", seen)
	}
}
