// Package layout assigns canvas coordinates to flow nodes from connectivity alone.
//
// Nodes are grouped into levels (layers) by longest path from a root and
// spread horizontally within their level, centered on a fixed origin. The
// algorithm does no crossing minimization; it is deterministic, idempotent
// and linear in the size of the graph.
package layout

import (
	"math"

	"github.com/aretw0/plotline/pkg/domain"
)

// Config holds the spacing constants of the layout.
type Config struct {
	XSpacing  float64 `yaml:"x_spacing" json:"x_spacing" validate:"finite,gt=0"`
	YSpacing  float64 `yaml:"y_spacing" json:"y_spacing" validate:"finite,gt=0"`
	OriginX   float64 `yaml:"origin_x" json:"origin_x" validate:"finite"`
	TopMargin float64 `yaml:"top_margin" json:"top_margin" validate:"finite"`
}

// DefaultConfig returns the default spacing: 200 across, 120 down,
// centered on x=400 with a 50 unit top margin.
func DefaultConfig() Config {
	return Config{
		XSpacing:  200,
		YSpacing:  120,
		OriginX:   400,
		TopMargin: 50,
	}
}

// Option configures an Engine.
type Option func(*Config)

// WithConfig replaces the whole configuration. Spacings that are not
// positive and finite, and a non-finite origin or margin, keep their
// current values.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		setSpacing(&c.XSpacing, cfg.XSpacing)
		setSpacing(&c.YSpacing, cfg.YSpacing)
		setFinite(&c.OriginX, cfg.OriginX)
		setFinite(&c.TopMargin, cfg.TopMargin)
	}
}

// WithSpacing sets the horizontal and vertical distance between nodes.
func WithSpacing(x, y float64) Option {
	return func(c *Config) {
		setSpacing(&c.XSpacing, x)
		setSpacing(&c.YSpacing, y)
	}
}

// WithOrigin sets the horizontal center and the top margin.
func WithOrigin(x, top float64) Option {
	return func(c *Config) {
		setFinite(&c.OriginX, x)
		setFinite(&c.TopMargin, top)
	}
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func setSpacing(dst *float64, v float64) {
	if v > 0 && IsFinite(v) {
		*dst = v
	}
}

func setFinite(dst *float64, v float64) {
	if IsFinite(v) {
		*dst = v
	}
}

// Engine lays out flows. The zero value is not usable; call New.
type Engine struct {
	cfg Config
}

// New creates an Engine with the default configuration modified by opts.
func New(opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Apply returns a copy of flow with every node positioned.
// Only positions change; ids, types, data and edges are untouched.
// The only error is *domain.PreconditionError for edges that reference
// missing nodes, which a normalized flow never has.
func (e *Engine) Apply(flow domain.Flow) (domain.Flow, error) {
	_, groups, err := Levels(flow)
	if err != nil {
		return domain.Flow{}, err
	}

	out := flow.Clone()
	idx := out.NodeIndex()
	for level, group := range groups {
		n := float64(len(group))
		left := e.cfg.OriginX - (n-1)*e.cfg.XSpacing/2
		y := e.cfg.TopMargin + float64(level)*e.cfg.YSpacing
		for i, id := range group {
			out.Nodes[idx[id]].Position = &domain.Position{
				X: left + float64(i)*e.cfg.XSpacing,
				Y: y,
			}
		}
	}
	return out, nil
}

// Apply lays out flow with the default configuration.
func Apply(flow domain.Flow) (domain.Flow, error) {
	return New().Apply(flow)
}
