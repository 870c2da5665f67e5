package glyphquad

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/glyphquad/fontraster"
)

// nopHandler discards every record. Enabled reports false, so disabled
// call sites never format their arguments.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger of glyphquad. It is forwarded to the fontraster
// backends, and the gfx/wgpu and gfx/opengl backends read it through
// Logger. Nothing is logged until SetLogger is called; nil restores that
// state.
//
// Levels:
//   - [slog.LevelDebug]: tables built and released, faces loaded, renderers
//     and GPU backends created
//   - [slog.LevelWarn]: glyphs that failed to rasterize, release errors
//
// For example:
//
//	glyphquad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		loggerPtr.Store(slog.New(nopHandler{}))
		fontraster.SetLogger(nil)
		return
	}
	loggerPtr.Store(l)
	fontraster.SetLogger(l.With("component", "fontraster"))
}

// Logger returns the logger set by SetLogger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
