package paginate

import (
	"log/slog"
	"time"
)

// Options are the pagination tunables. Heights are CSS pixels.
type Options struct {
	// PageHeightThreshold is the height of one page. Passes insert breaks
	// when the document is taller.
	PageHeightThreshold float64

	// ShrinkRatio places the pruning threshold below the page height so
	// that documents near one page do not oscillate.
	ShrinkRatio float64

	FullMeasureDebounce time.Duration

	// LongPause is the quiet period after which a trigger is reported as
	// following a long pause.
	LongPause time.Duration

	// MinBreakGapChars is the minimum distance, in positions, between two
	// breaks. Zero disables the check.
	MinBreakGapChars int
}

// DefaultOptions returns A4 at 96 DPI with a 300ms debounce.
func DefaultOptions() Options {
	return Options{
		PageHeightThreshold: 1122,
		ShrinkRatio:         0.9,
		FullMeasureDebounce: 300 * time.Millisecond,
		LongPause:           1500 * time.Millisecond,
		MinBreakGapChars:    5,
	}
}

// ShrinkThreshold is the height below which all breaks are pruned.
func (o Options) ShrinkThreshold() float64 {
	return o.PageHeightThreshold * o.ShrinkRatio
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PageHeightThreshold <= 0 {
		o.PageHeightThreshold = def.PageHeightThreshold
	}
	if o.ShrinkRatio <= 0 || o.ShrinkRatio > 1 {
		o.ShrinkRatio = def.ShrinkRatio
	}
	if o.FullMeasureDebounce < 0 {
		o.FullMeasureDebounce = def.FullMeasureDebounce
	}
	if o.LongPause <= 0 {
		o.LongPause = def.LongPause
	}
	if o.MinBreakGapChars < 0 {
		o.MinBreakGapChars = 0
	}
	return o
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptions replaces all tunables at once.
func WithOptions(o Options) Option {
	return func(c *Controller) { c.opts = o }
}

func WithThreshold(px float64) Option {
	return func(c *Controller) { c.opts.PageHeightThreshold = px }
}

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.opts.FullMeasureDebounce = d }
}

func WithMinBreakGap(n int) Option {
	return func(c *Controller) { c.opts.MinBreakGapChars = n }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithPageContext numbers pages from pc instead of a fresh context.
func WithPageContext(pc *Context) Option {
	return func(c *Controller) { c.pages = pc }
}

// WithStats records every pass in stats.
func WithStats(stats *PassStats) Option {
	return func(c *Controller) { c.stats = stats }
}

// WithPassHook calls fn after every pass.
func WithPassHook(fn func(PassResult)) Option {
	return func(c *Controller) { c.onPass = fn }
}
