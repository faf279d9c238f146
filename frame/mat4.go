package frame

import "math"

// Mat4 is a column-major 4x4 matrix, laid out the way a shader-storage
// uniform expects it: Mat4[column*4+row].
type Mat4 [16]float32

const (
	orthoNear = 0.0
	orthoFar  = 2.0
	perspNear = 0.1
)

// Orthographic builds a right-handed, GL-style orthographic projection
// for the given viewport dimensions, matching
// original_source/src/render/mod.rs's projection_orthographic (glam's
// Mat4::orthographic_rh_gl) with a stdlib-only reimplementation — no
// linear-algebra dependency is justified in this module for three matrix
// helpers; see DESIGN.md.
func Orthographic(width, height float32) Mat4 {
	left, right := float32(0), width
	bottom, top := height, float32(0)
	near, far := float32(orthoNear), float32(orthoFar)

	var m Mat4
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = -2 / (far - near)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = -(far + near) / (far - near)
	m[15] = 1
	return m
}

// PerspectiveInfiniteReverse builds a right-handed, infinite-far-plane,
// reversed-depth perspective projection, matching
// original_source/src/render/mod.rs's projection_perspective (glam's
// Mat4::perspective_infinite_reverse_rh).
func PerspectiveInfiniteReverse(fovRadians, aspect, near float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovRadians)/2))

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = 0
	m[11] = -1
	m[14] = near
	return m
}

// Perspective is the viewport-dimension-taking wrapper matching the
// original's public projection_perspective signature: fixed near plane,
// field of view in degrees, aspect derived from width/height.
func Perspective(width, height, fovDegrees float32) Mat4 {
	return PerspectiveInfiniteReverse(fovDegrees*math.Pi/180, width/height, perspNear)
}
