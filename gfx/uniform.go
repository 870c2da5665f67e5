package gfx

import "image/color"

// Uniform is a value assignable to a shader uniform: Vec4 or Mat4.
type Uniform interface {
	// Floats returns the uniform's components in upload order.
	Floats() []float32
}

// Vec4 is a four-component float uniform.
type Vec4 [4]float32

// Floats implements Uniform.
func (v Vec4) Floats() []float32 { return v[:] }

// ColorVec4 converts c to straight-alpha RGBA components in [0, 1].
func ColorVec4(c color.Color) Vec4 {
	if c == nil {
		return Vec4{1, 1, 1, 1}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Vec4{
		float32(n.R) / 255,
		float32(n.G) / 255,
		float32(n.B) / 255,
		float32(n.A) / 255,
	}
}

// Mat4 is a 4x4 matrix in column-major order, the layout GLSL and WGSL
// expect for mat4 uniforms.
type Mat4 [16]float32

// Floats implements Uniform.
func (m Mat4) Floats() []float32 { return m[:] }

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns the orthographic projection mapping [left, right] x
// [bottom, top] onto clip space [-1, 1] x [-1, 1], with the depth range
// [-1, 1] inverted onto itself.
func Ortho(left, right, bottom, top float32) Mat4 {
	return Mat4{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -1, 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), 0, 1,
	}
}

// TransformPoint applies m to the point (x, y, 0, 1) and returns the
// resulting x and y after perspective division.
func (m Mat4) TransformPoint(x, y float32) (float32, float32) {
	tx := m[0]*x + m[4]*y + m[12]
	ty := m[1]*x + m[5]*y + m[13]
	tw := m[3]*x + m[7]*y + m[15]
	if tw != 0 && tw != 1 {
		tx /= tw
		ty /= tw
	}
	return tx, ty
}
