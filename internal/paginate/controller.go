package paginate

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Action is what a pass did to the document.
type Action string

const (
	ActionNone    Action = "none"
	ActionInsert  Action = "insert"
	ActionPrune   Action = "prune"
	ActionAborted Action = "aborted"
)

// PassResult describes one pagination pass.
type PassResult struct {
	Height     float64 `json:"height"`
	Action     Action  `json:"action"`
	Pages      []int   `json:"pages,omitempty"` // page numbers inserted
	Removed    int     `json:"removed,omitempty"`
	DurationMs float64 `json:"duration_ms"`
	Err        error   `json:"-"`
}

// Controller paginates one view. Events from an attached source are
// debounced into passes; at most one pass runs at a time.
type Controller struct {
	view     View
	measurer *Measurer
	sched    *Scheduler
	opts     Options
	pages    *Context
	stats    *PassStats
	log      *slog.Logger
	onPass   func(PassResult)

	mu          sync.Mutex
	unsubscribe func()
	lastTrigger time.Time
	longPauses  int
	passes      int
	last        PassResult
}

// NewController builds a controller for view. Without WithPageContext it
// numbers pages from 1.
func NewController(view View, opts ...Option) *Controller {
	c := &Controller{
		view: view,
		opts: DefaultOptions(),
	}
	for _, o := range opts {
		o(c)
	}
	c.opts = c.opts.withDefaults()
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.pages == nil {
		c.pages = BeginSession(1)
	}
	c.measurer = NewMeasurer(view, c.log)
	c.sched = NewScheduler(c.opts.FullMeasureDebounce, func() { c.RunPass() })
	return c
}

func (c *Controller) Options() Options { return c.opts }

// PageContext is the numbering context passes draw from.
func (c *Controller) PageContext() *Context { return c.pages }

func (c *Controller) State() State { return c.sched.State() }

// Attach subscribes to src. Any previous subscription is dropped.
func (c *Controller) Attach(src EventSource) {
	unsub := src.Subscribe(func(ev Event) { c.Trigger(ev.Kind) })
	c.mu.Lock()
	prev := c.unsubscribe
	c.unsubscribe = unsub
	c.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// Detach removes the event subscription. Pending passes still run.
func (c *Controller) Detach() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Close detaches, cancels any pending pass and waits for a running one.
func (c *Controller) Close() {
	c.Detach()
	c.sched.Stop()
}

// Trigger schedules a pass for an event of kind.
func (c *Controller) Trigger(kind EventKind) {
	now := time.Now()
	c.mu.Lock()
	quiet := now.Sub(c.lastTrigger)
	longPause := !c.lastTrigger.IsZero() && quiet > c.opts.LongPause
	if longPause {
		c.longPauses++
	}
	c.lastTrigger = now
	c.mu.Unlock()

	if longPause {
		c.log.Debug("pagination trigger after long pause", "kind", string(kind), "quiet_ms", quiet.Milliseconds())
	}
	if !c.sched.Trigger() {
		c.log.Debug("pagination trigger dropped", "kind", string(kind), "state", c.sched.State().String())
	}
}

// Flush runs a pass now instead of waiting for the debounce timer. It
// reports false if a pass was already running; Flush waits for it.
func (c *Controller) Flush() bool {
	return c.sched.Flush()
}

// LongPauses counts triggers that followed a quiet period longer than
// Options.LongPause.
func (c *Controller) LongPauses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.longPauses
}

// Passes counts completed passes.
func (c *Controller) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// LastResult is the result of the most recent pass.
func (c *Controller) LastResult() PassResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// RunPass measures the view and inserts or prunes breaks. Failures leave
// the document untouched and are reported in the result, never returned.
// Callers outside the scheduler must not run passes concurrently.
func (c *Controller) RunPass() PassResult {
	start := time.Now()
	res := c.pass()
	elapsed := time.Since(start)
	res.DurationMs = float64(elapsed) / float64(time.Millisecond)

	if c.stats != nil {
		c.stats.Record(elapsed, res.Action)
	}
	c.mu.Lock()
	c.passes++
	c.last = res
	c.mu.Unlock()
	if c.onPass != nil {
		c.onPass(res)
	}
	return res
}

func (c *Controller) pass() PassResult {
	if _, err := lookupMarkers(c.view.Schema()); err != nil {
		c.log.Warn("pagination pass aborted", "error", err)
		return PassResult{Action: ActionAborted, Err: err}
	}

	// One snapshot per pass: every position below refers to doc, and an
	// edit landing after this read makes the commit stale.
	doc := c.view.Document()
	height := c.measurer.MeasureTotal()
	res := PassResult{Height: height, Action: ActionNone}

	switch {
	case height > c.opts.PageHeightThreshold:
		var candidates []int
		for pos := range c.measurer.FindBreakPositions(doc, c.opts.PageHeightThreshold) {
			candidates = append(candidates, pos)
		}
		// Heights come from the live layout; they only describe doc if
		// nothing was committed while measuring.
		if c.view.Document() != doc {
			return c.abort(res, ErrStaleTransaction)
		}
		pages, err := InsertBreaks(c.view, doc, c.pages, candidates, c.opts.MinBreakGapChars)
		if err != nil {
			return c.abort(res, err)
		}
		if len(pages) > 0 {
			res.Action = ActionInsert
			res.Pages = pages
			c.log.Debug("page breaks inserted", "height", height, "pages", pages)
		}
	case height < c.opts.ShrinkThreshold():
		removed, err := PruneBreaks(c.view, doc)
		if err != nil {
			return c.abort(res, err)
		}
		if removed > 0 {
			res.Action = ActionPrune
			res.Removed = removed
			c.log.Debug("page breaks pruned", "height", height, "removed", removed)
		}
	}
	return res
}

func (c *Controller) abort(res PassResult, err error) PassResult {
	res.Action = ActionAborted
	res.Err = err
	if errors.Is(err, ErrStaleTransaction) {
		c.log.Debug("pagination pass discarded, document changed", "height", res.Height)
		return res
	}
	c.log.Warn("pagination pass failed", "height", res.Height, "error", err)
	return res
}

// InsertPageBreak adds a manual break after the top-level block holding pos,
// numbered from the controller's context.
func (c *Controller) InsertPageBreak(pos int) (bool, error) {
	return InsertPageBreak(c.view, c.pages, pos)
}
