package paginate

import "log/slog"

// Measurer reads heights from a view. It never fails: positions that cannot
// be resolved measure as zero.
type Measurer struct {
	view View
	log  *slog.Logger
}

func NewMeasurer(view View, log *slog.Logger) *Measurer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Measurer{view: view, log: log}
}

// MeasureTotal is the rendered height of the whole document.
func (m *Measurer) MeasureTotal() float64 {
	return m.view.RenderedHeight()
}

// MeasureUpTo is the rendered height from the document start through pos.
func (m *Measurer) MeasureUpTo(pos int) float64 {
	start, err := m.view.CoordsAt(0)
	if err != nil {
		m.log.Debug("measure: document start unresolved", "error", err)
		return 0
	}
	at, err := m.view.CoordsAt(pos)
	if err != nil {
		m.log.Debug("measure: position unresolved", "pos", pos, "error", err)
		return 0
	}
	return at.Bottom - start.Top
}
