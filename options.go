package glyphquad

import (
	"github.com/gogpu/glyphquad/fontraster"
	"github.com/gogpu/glyphquad/gfx"
)

// TableOption configures BuildTable.
type TableOption func(*tableConfig)

type tableConfig struct {
	rasterizer string
	backend    fontraster.Backend
	sampler    gfx.SamplerParams
}

func defaultTableConfig() tableConfig {
	return tableConfig{
		rasterizer: fontraster.DefaultBackend,
		sampler:    gfx.GlyphSampler(),
	}
}

// WithRasterizer selects a registered fontraster backend by name.
// The default is "ximage".
func WithRasterizer(name string) TableOption {
	return func(c *tableConfig) {
		c.rasterizer = name
	}
}

// WithRasterizerBackend uses b directly instead of a registered backend.
func WithRasterizerBackend(b fontraster.Backend) TableOption {
	return func(c *tableConfig) {
		c.backend = b
	}
}

// WithSampler overrides the sampling parameters of glyph textures.
// The default is clamp-to-edge with linear filtering.
func WithSampler(p gfx.SamplerParams) TableOption {
	return func(c *tableConfig) {
		c.sampler = p
	}
}

// UnknownGlyphPolicy controls layout of characters missing from the table.
// Measure, Render, AppendQuads and PenStart all apply the same policy, so
// measured and rendered extents agree.
type UnknownGlyphPolicy uint8

const (
	// UnknownGlyphFail fails the layout call with an *UnknownGlyphError.
	UnknownGlyphFail UnknownGlyphPolicy = iota

	// UnknownGlyphSkip ignores the character: no advance, no draw.
	UnknownGlyphSkip
)

// String returns the policy name.
func (p UnknownGlyphPolicy) String() string {
	if p == UnknownGlyphSkip {
		return "skip"
	}
	return "error"
}

// RendererOption configures NewRenderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	unknown UnknownGlyphPolicy
}

func defaultRendererConfig() rendererConfig {
	return rendererConfig{unknown: UnknownGlyphFail}
}

// WithUnknownGlyphPolicy sets the policy for characters missing from the
// table. The default is UnknownGlyphFail.
func WithUnknownGlyphPolicy(p UnknownGlyphPolicy) RendererOption {
	return func(c *rendererConfig) {
		c.unknown = p
	}
}
