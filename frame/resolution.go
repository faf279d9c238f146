// Package frame couples the state step, render pre-frame, and render
// frame handlers into the two-OS-thread pipeline the rest of this
// module's packages only provide the plumbing for. It owns no GPU state
// itself; it only calls the caller's handlers at the right point in the
// loop, and those handlers call into column/gpu/cross/mesh/mirror.
//
// Grounded on original_source/src/render/mod.rs for Resolution and the
// projection helpers, and on spec.md §4.G/§5 for the two-thread
// lifecycle original_source leaves to its external janus::run driver.
package frame

// Resolution is a viewport size in the render thread's mirrored scalar
// set, synced from window-resize events the caller observes.
type Resolution struct {
	Width  float32
	Height float32
}

// Half, Double and Quarter return scaled copies, used to pick a lower-
// resolution render target for a downsampled pass.
func (r Resolution) Half() Resolution {
	return Resolution{Width: r.Width / 2, Height: r.Height / 2}
}

func (r Resolution) Double() Resolution {
	return Resolution{Width: r.Width * 2, Height: r.Height * 2}
}

func (r Resolution) Quarter() Resolution {
	return Resolution{Width: r.Width / 4, Height: r.Height / 4}
}
