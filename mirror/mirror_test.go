package mirror

import "testing"

func TestSyncReportsUnchangedBeforeFirstPublish(t *testing.T) {
	var c Cell[int]
	if _, changed := c.Sync(); changed {
		t.Fatalf("expected no change before any Publish")
	}
}

func TestPublishThenSyncReportsChangeOnce(t *testing.T) {
	var c Cell[int]
	c.Publish(7)

	v, changed := c.Sync()
	if !changed || v != 7 {
		t.Fatalf("first sync = (%d,%v), want (7,true)", v, changed)
	}

	v, changed = c.Sync()
	if changed || v != 7 {
		t.Fatalf("second sync = (%d,%v), want (7,false)", v, changed)
	}
}

func TestPublishTwiceSkipsIntermediateValue(t *testing.T) {
	var c Cell[int]
	c.Publish(1)
	c.Publish(2)

	v, changed := c.Sync()
	if !changed || v != 2 {
		t.Fatalf("sync after two publishes = (%d,%v), want (2,true)", v, changed)
	}
}

func TestPeekDoesNotAffectSyncChangeTracking(t *testing.T) {
	var c Cell[int]
	c.Publish(5)

	if got := c.Peek(); got != 5 {
		t.Fatalf("peek = %d, want 5", got)
	}

	_, changed := c.Sync()
	if !changed {
		t.Fatalf("expected Sync to still report the change after an interleaved Peek")
	}
}
