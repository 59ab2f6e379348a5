package render

import "time"

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithPoolGranularity sets the vertex count VertexPool slots are rounded up
// to. Values <= 0 select DefaultPoolGranularity.
func WithPoolGranularity(vertices int) ContextOption {
	return func(c *Context) { c.granularity = vertices }
}

// WithDebug enables validation of the current program before every draw.
// Validation is slow; leave it off in release builds.
func WithDebug(debug bool) ContextOption {
	return func(c *Context) { c.debug = debug }
}

// WithClock sets the time source used for frame timing.
func WithClock(clock func() time.Time) ContextOption {
	return func(c *Context) { c.clock = clock }
}

// WithSharedProgramState sets the initial shared uniform values.
func WithSharedProgramState(s *SharedProgramState) ContextOption {
	return func(c *Context) { c.shared = s }
}

// WithConfig applies the context settings of a Config.
func WithConfig(cfg Config) ContextOption {
	return func(c *Context) {
		c.granularity = cfg.Render.PoolGranularity
		c.debug = cfg.Render.Debug
	}
}
