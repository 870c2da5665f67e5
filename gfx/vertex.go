package gfx

import (
	"encoding/binary"
	"math"
)

// QuadVertices is the number of vertices of one quad drawn as two triangles.
const QuadVertices = 6

// AttribComponents is the number of float32 components of every text
// program attribute (xy position, xy texcoord).
const AttribComponents = 2

// QuadAttribBytes is the byte size of one attribute buffer holding one quad.
const QuadAttribBytes = QuadVertices * AttribComponents * 4

// PutFloat32s writes vals into dst as little-endian float32 values and
// returns the number of bytes written. dst must hold 4*len(vals) bytes.
func PutFloat32s(dst []byte, vals ...float32) int {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return len(vals) * 4
}

// Float32s decodes little-endian float32 values from src.
// Trailing bytes that do not form a full value are ignored.
func Float32s(src []byte) []float32 {
	out := make([]float32, len(src)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}
