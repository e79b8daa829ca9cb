package chart

// Default canvas size: a 10x6 inch figure at 100 dpi.
const (
	DefaultWidth  = 1000
	DefaultHeight = 600

	minWidth  = 200
	minHeight = 150
)

// Option applies a configuration option to a chart.
type Option func(*canvas)

// WithSize sets the canvas size in pixels. Sizes below 200x150 are ignored.
func WithSize(width, height int) Option {
	return func(c *canvas) {
		if width >= minWidth && height >= minHeight {
			c.width = width
			c.height = height
		}
	}
}

// WithTitle replaces the default chart title.
func WithTitle(title string) Option {
	return func(c *canvas) {
		if title != "" {
			c.title = title
		}
	}
}
