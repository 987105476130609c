package paginate

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

func collect(v View, threshold float64) []int {
	return slices.Collect(FindBreakPositions(v, threshold))
}

func TestFindBreakPositions_Crossing(t *testing.T) {
	s := schema.New()
	v := newFakeView(s, block(s, 1000), block(s, 1500))
	if got := collect(v, 1122); !slices.Equal(got, []int{3}) {
		t.Errorf("expected [3], got %v", got)
	}
}

func TestFindBreakPositions_NeverYieldsDocumentStart(t *testing.T) {
	s := schema.New()
	// The first block alone exceeds a page; its height still counts.
	v := newFakeView(s, block(s, 2000), block(s, 100))
	if got := collect(v, 1122); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestFindBreakPositions_ExistingBreakResets(t *testing.T) {
	s := schema.New()
	blocks := append([]*doctree.Node{block(s, 1000)}, pair(s, 1)...)
	blocks = append(blocks, block(s, 1500))
	v := newFakeView(s, blocks...)
	if got := collect(v, 1122); len(got) != 0 {
		t.Errorf("expected already paginated document to yield nothing, got %v", got)
	}
}

func TestFindBreakPositions_DescendsIntoLists(t *testing.T) {
	s := schema.New()
	item := func(h float64) *doctree.Node {
		return s.Node(schema.ListItem).Create(nil, block(s, h))
	}
	list := s.Node(schema.BulletList).Create(nil, item(600), item(600))
	v := newFakeView(s, block(s, 100), list)

	// Hide the list's own extent so the crossing is first seen at the
	// second list item, which cannot hold a break directly.
	listEnd := 3 + list.NodeSize()
	v.unresolved = map[int]bool{listEnd: true}

	// block 0..3, list 3.., item 4..9, item 9..14 holding its paragraph at 10.
	if got := collect(v, 1122); !slices.Equal(got, []int{10}) {
		t.Errorf("expected the paragraph inside the second item [10], got %v", got)
	}
}

func TestFindBreakPositions_StopsEarly(t *testing.T) {
	s := schema.New()
	var blocks []*doctree.Node
	for range 10 {
		blocks = append(blocks, block(s, 400))
	}
	v := newFakeView(s, blocks...)
	var got []int
	for pos := range FindBreakPositions(v, 1122) {
		got = append(got, pos)
		break
	}
	if !slices.Equal(got, []int{6}) {
		t.Errorf("expected only the first candidate [6], got %v", got)
	}
}

func TestMeasurer_FailSoft(t *testing.T) {
	s := schema.New()
	v := newFakeView(s, block(s, 100), block(s, 200))
	m := NewMeasurer(v, nil)

	if got := m.MeasureUpTo(6); got != 300 {
		t.Errorf("expected 300, got %v", got)
	}
	if got := m.MeasureUpTo(3); got != 100 {
		t.Errorf("expected 100, got %v", got)
	}
	if got := m.MeasureUpTo(99); got != 0 {
		t.Errorf("expected unresolvable position to measure 0, got %v", got)
	}
	v.unresolved = map[int]bool{0: true}
	if got := m.MeasureUpTo(3); got != 0 {
		t.Errorf("expected unresolvable start to measure 0, got %v", got)
	}
	if got := m.MeasureTotal(); got != 300 {
		t.Errorf("expected total 300, got %v", got)
	}
}

func TestContext_Numbering(t *testing.T) {
	pc := BeginSession(1)
	if pc.Peek() != 1 {
		t.Errorf("expected peek 1, got %d", pc.Peek())
	}
	for want := 1; want <= 3; want++ {
		if got := pc.Next(); got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
	pc.Reset(10)
	if got := pc.Next(); got != 10 {
		t.Errorf("expected 10 after reset, got %d", got)
	}
	if got := BeginSession(0).Next(); got != 1 {
		t.Errorf("expected sessions to start at 1, got %d", got)
	}
}

func TestContext_ConcurrentNextUnique(t *testing.T) {
	pc := BeginSession(1)
	var (
		mu   sync.Mutex
		seen = make(map[int]bool)
		wg   sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				n := pc.Next()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 800 {
		t.Errorf("expected 800 distinct page numbers, got %d", len(seen))
	}
}

func TestPassStatsSnapshotPercentiles(t *testing.T) {
	stats := NewPassStats(time.Hour)
	for _, ms := range []time.Duration{100, 200, 300, 400, 500} {
		stats.Record(ms*time.Millisecond, ActionNone)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %v and %v", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.NoOps != 5 {
		t.Fatalf("expected 5 no-op passes, got %d", snap.NoOps)
	}
}

func TestPassStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewPassStats(10 * time.Millisecond)
	stats.Record(time.Millisecond, ActionInsert)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	stats.Record(2*time.Millisecond, ActionPrune)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.Prunes != 1 {
		t.Fatalf("expected one prune sample, got %+v", snap)
	}
}

func TestPassStatsClampsNegativeDuration(t *testing.T) {
	stats := NewPassStats(time.Hour)
	stats.Record(-time.Second, ActionAborted)
	snap := stats.Snapshot()
	if snap.MinMs != 0 || snap.Aborted != 1 {
		t.Fatalf("expected clamped 0ms aborted sample, got %+v", snap)
	}
}
