// Package opengl implements gfx.Device and gfx.ShaderManager on an OpenGL
// 3.3 core context through github.com/go-gl/gl.
//
// The backend needs cgo and the system GL headers, so it is only built
// with the "gl" build tag:
//
//	go build -tags gl ./...
//
// A context must be current on the calling goroutine (typically created
// with GLFW) before New is called, and every method must be called on that
// goroutine.
package opengl
