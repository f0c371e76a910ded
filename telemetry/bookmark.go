package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCaptureSurge  BookmarkType = "capture_surge"
	BookmarkOrbitCapture  BookmarkType = "orbit_capture"
	BookmarkFieldSaturate BookmarkType = "field_saturated"
	BookmarkSteadyState   BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// Thresholds for bookmark detection.
const (
	surgeFactor        = 2.0 // absorption rate vs rolling average
	surgeMinEvents     = 10
	orbitMinRays       = 3
	steadyWindows      = 5
	steadyMaxCV2       = 0.04 // squared coefficient of variation of absorbed_frac
	steadyMinFrac      = 0.01
	minSurgeHistoryLen = 3
)

// BookmarkDetector detects notable moments in the ray field.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	orbitHigh int  // highest orbit peak already bookmarked
	saturated bool // field currently at capacity
	steadyRun int  // consecutive windows with a stable absorbed fraction
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkCaptureSurge,
		bd.checkOrbitCapture,
		bd.checkFieldSaturated,
		bd.checkSteadyState,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// recent returns up to n of the newest history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	history := bd.getHistory()
	n = min(n, len(history))
	out := make([]WindowStats, 0, n)
	for i := n; i >= 1; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

// checkCaptureSurge fires when the absorption rate jumps above twice its rolling average.
func (bd *BookmarkDetector) checkCaptureSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < minSurgeHistoryLen {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h.AbsorptionRate
	}
	avg := sum / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.AbsorptionRate > avg*surgeFactor && stats.Absorptions >= surgeMinEvents {
		return &Bookmark{
			Type:        BookmarkCaptureSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Absorption rate %.2f/s is %.1fx average (%.2f/s)", stats.AbsorptionRate, stats.AbsorptionRate/avg, avg),
		}
	}
	return nil
}

// checkOrbitCapture fires each time the orbit peak exceeds the highest one seen.
func (bd *BookmarkDetector) checkOrbitCapture(stats WindowStats) *Bookmark {
	if stats.OrbitPeak < orbitMinRays || stats.OrbitPeak <= bd.orbitHigh {
		return nil
	}
	bd.orbitHigh = stats.OrbitPeak
	return &Bookmark{
		Type:        BookmarkOrbitCapture,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d rays held in a capture orbit", stats.OrbitPeak),
	}
}

// checkFieldSaturated fires when the field first reaches its ray cap.
func (bd *BookmarkDetector) checkFieldSaturated(stats WindowStats) *Bookmark {
	full := stats.MaxRays > 0 && stats.Rays >= stats.MaxRays
	defer func() { bd.saturated = full }()
	if !full || bd.saturated {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFieldSaturate,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Field reached its cap of %d rays", stats.MaxRays),
	}
}

// checkSteadyState fires once the absorbed fraction has been stable for steadyWindows windows.
func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	prev := bd.recent(steadyWindows - 1)
	if stats.AbsorbedFrac < steadyMinFrac || len(prev) < steadyWindows-1 {
		bd.steadyRun = 0
		return nil
	}

	fracs := make([]float64, 0, steadyWindows)
	for _, h := range prev {
		fracs = append(fracs, h.AbsorbedFrac)
	}
	fracs = append(fracs, stats.AbsorbedFrac)

	mean, variance := stat.PopMeanVariance(fracs, nil)
	if mean > 0 && variance/(mean*mean) < steadyMaxCV2 {
		bd.steadyRun++
	} else {
		bd.steadyRun = 0
	}

	if bd.steadyRun == steadyWindows { // trigger exactly once per stable run
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Absorbed fraction steady near %.3f over %d windows", mean, steadyWindows),
		}
	}
	return nil
}
