// Package gfx defines the GPU capabilities the text renderer draws through.
//
// The graphics APIs behind these interfaces keep process-wide binding state
// (bound texture, bound vertex array, current program). gfx models that state
// as capability objects passed by reference instead of ambient globals, and
// every caller in this module restores the bindings it changes.
//
// Two interfaces cover everything the renderer needs:
//
//   - Device: single-channel texture upload, dynamic vertex buffers,
//     vertex arrays, binding, depth-test state and triangle draws.
//   - ShaderManager: program selection, uniforms and vertex attribute
//     registration.
//
// Backends live in subpackages:
//
//   - recording: records every call, for tests and debugging
//   - software: CPU rasterization into an *image.RGBA
//   - wgpu: github.com/gogpu/wgpu/hal
//   - opengl: github.com/go-gl/gl (build tag "gl")
//
// Handle value 0 never names a live resource. Binding handle 0 unbinds.
package gfx
