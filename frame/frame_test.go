package frame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/intuitionamiga/ethelcore/gpu"
)

func TestResolutionScaling(t *testing.T) {
	r := Resolution{Width: 1920, Height: 1080}

	if got := r.Half(); got != (Resolution{960, 540}) {
		t.Fatalf("Half() = %+v", got)
	}
	if got := r.Double(); got != (Resolution{3840, 2160}) {
		t.Fatalf("Double() = %+v", got)
	}
	if got := r.Quarter(); got != (Resolution{480, 270}) {
		t.Fatalf("Quarter() = %+v", got)
	}
}

func TestOrthographicScalesXAndFlipsY(t *testing.T) {
	m := Orthographic(800, 600)
	if m[0] <= 0 || m[5] >= 0 {
		t.Fatalf("expected positive x scale and negative y scale (GL-style flip), got %+v", m)
	}
	if m[15] != 1 {
		t.Fatalf("expected homogeneous row to be 1, got %v", m[15])
	}
}

func TestDoubleBufferSwap(t *testing.T) {
	db := NewDoubleBuffer(func() int { return 0 })
	*db.Next() = 5
	db.Swap()

	if *db.Current() != 5 {
		t.Fatalf("current after swap = %d, want 5", *db.Current())
	}
	if *db.Next() != 0 {
		t.Fatalf("next after swap = %d, want 0", *db.Next())
	}
}

func TestOrchestratorRunsBothThreadsAndStopsOnCancel(t *testing.T) {
	var stateCalls, preFrameCalls, frameCalls int

	o := NewOrchestrator(time.Millisecond,
		func(delta time.Duration) { stateCalls++ },
		func() { preFrameCalls++ },
		func(barrier *gpu.SyncBarrier) { frameCalls++ },
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := o.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.DeadlineExceeded or Canceled", err)
	}
	if stateCalls == 0 {
		t.Fatalf("expected at least one StateStep call")
	}
	if preFrameCalls == 0 || frameCalls == 0 {
		t.Fatalf("expected render thread to run: preFrameCalls=%d frameCalls=%d", preFrameCalls, frameCalls)
	}
}
