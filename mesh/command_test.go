package mesh

import "testing"

// TestGpuCommandQueueUploadOverflow mirrors spec scenario S6: capacity
// 4, push 6 commands, upload into a 4-slot buffer. Expect surplus 2;
// after Clear, the next upload moves nothing and reports surplus 0.
func TestGpuCommandQueueUploadOverflow(t *testing.T) {
	q := NewGpuCommandQueue[DrawArraysIndirectCommand](4)
	for i := uint32(0); i < 6; i++ {
		q.Push(DrawArraysIndirectCommand{Count: i})
	}

	buf := make([]DrawArraysIndirectCommand, 4)
	surplus := q.Upload(buf)
	if surplus != 2 {
		t.Fatalf("surplus = %d, want 2", surplus)
	}
	for i, cmd := range buf {
		if cmd.Count != uint32(i) {
			t.Errorf("buf[%d].Count = %d, want %d", i, cmd.Count, i)
		}
	}

	q.Clear()
	surplus = q.Upload(buf)
	if surplus != 0 {
		t.Fatalf("surplus after clear = %d, want 0", surplus)
	}
}

// TestGpuCommandQueueUploadContinuesWithinFrame checks that a second
// Upload call before Clear picks up where the first left off, for the
// case where the caller drains the queue across multiple dispatches in
// one frame.
func TestGpuCommandQueueUploadContinuesWithinFrame(t *testing.T) {
	q := NewGpuCommandQueue[DrawArraysIndirectCommand](4)
	for i := uint32(0); i < 6; i++ {
		q.Push(DrawArraysIndirectCommand{Count: i})
	}

	buf := make([]DrawArraysIndirectCommand, 4)
	q.Upload(buf)

	second := make([]DrawArraysIndirectCommand, 4)
	q.Upload(second)
	if second[0].Count != 4 || second[1].Count != 5 {
		t.Fatalf("second upload = %+v, want commands 4 and 5 first", second[:2])
	}
}

func TestGpuCommandQueueUploadUnderCapacity(t *testing.T) {
	q := NewGpuCommandQueue[DrawArraysIndirectCommand](4)
	q.Push(DrawArraysIndirectCommand{Count: 1})

	buf := make([]DrawArraysIndirectCommand, 4)
	if surplus := q.Upload(buf); surplus != 0 {
		t.Fatalf("surplus = %d, want 0", surplus)
	}
	if buf[0].Count != 1 {
		t.Fatalf("buf[0].Count = %d, want 1", buf[0].Count)
	}
}
