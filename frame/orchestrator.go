package frame

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/intuitionamiga/ethelcore/gpu"
)

// StateStep advances the simulation by delta and publishes the result
// through a Producer.Cross call of its own; it is the only handler that
// runs on the logic thread.
type StateStep func(delta time.Duration)

// RenderPreFrame reads resolution/viewpoint mirror cells and sets
// per-frame uniforms; it runs on the render thread, once per frame,
// before RenderFrame.
type RenderPreFrame func()

// RenderFrame performs a Consumer.Cross call: bind buffers, dispatch,
// and place a new fence on barrier for the section it just read. It runs
// on the render thread.
type RenderFrame func(barrier *gpu.SyncBarrier)

// Orchestrator couples a StateStep, RenderPreFrame, and RenderFrame into
// the module's two-OS-thread lifecycle: exactly one goroutine locked to
// the logic thread runs StateStep on a fixed tick, and exactly one
// goroutine locked to the render thread runs RenderPreFrame/RenderFrame
// in a tight loop. Neither thread touches the other's state directly —
// all coordination happens through the Cross/Boundary pair and mirror
// cells the caller's handlers close over.
type Orchestrator struct {
	tick     time.Duration
	state    StateStep
	preFrame RenderPreFrame
	frame    RenderFrame
	barrier  *gpu.SyncBarrier
}

// NewOrchestrator builds an Orchestrator. tick is the logic thread's
// fixed simulation step; barrier is handed to every RenderFrame call so
// the render thread can place fences after each dispatch.
func NewOrchestrator(tick time.Duration, state StateStep, preFrame RenderPreFrame, frame RenderFrame, barrier *gpu.SyncBarrier) *Orchestrator {
	return &Orchestrator{tick: tick, state: state, preFrame: preFrame, frame: frame, barrier: barrier}
}

// Run starts the logic and render threads and blocks until ctx is
// cancelled or either thread returns a non-nil error, whichever comes
// first — matching errgroup's first-error-wins cancellation, the same
// pattern a two-subsystem startup (audio + video) in the teacher would
// use if it needed one goroutine's failure to stop the other.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return o.runLogicThread(ctx) })
	g.Go(func() error { return o.runRenderThread(ctx) })

	return g.Wait()
}

func (o *Orchestrator) runLogicThread(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			o.state(delta)
		}
	}
}

// runRenderThread has no pacing of its own; it relies on the caller's
// RenderFrame closure blocking on a swapchain present call the way a
// real Vulkan frame loop does. Without that, this spins as fast as the
// CPU allows.
func (o *Orchestrator) runRenderThread(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		o.preFrame()
		o.frame(o.barrier)
	}
}
