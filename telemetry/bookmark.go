package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkLatencySpike BookmarkType = "latency_spike"
	BookmarkStarved      BookmarkType = "starved"
	BookmarkRecovered    BookmarkType = "recovered"
	BookmarkOverBudget   BookmarkType = "over_budget"
	BookmarkBeaching     BookmarkType = "beaching"
	BookmarkCalmSea      BookmarkType = "calm_sea"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the engine's and the
// bodies' behavior from consecutive windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	starved          bool // last window harvested nothing
	overBudget       bool // last window had post failures
	recentGroundMin  int  // minimum grounded count in recent history
	groundMinSeen    bool
	calmWindowsCount int // consecutive windows with steady submersion
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for calm sea detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkLatencySpike,
			bd.checkStarvation,
			bd.checkOverBudget,
			bd.checkBeaching,
			bd.checkCalmSea,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	bd.starved = stats.Bodies > 0 && stats.Harvests == 0
	bd.overBudget = stats.PostFailures > 0
	if !bd.groundMinSeen || stats.Grounded < bd.recentGroundMin {
		bd.recentGroundMin = stats.Grounded
		bd.groundMinSeen = true
	}

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

// checkLatencySpike fires when readback latency doubles its rolling average.
func (bd *BookmarkDetector) checkLatencySpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Harvests == 0 {
		return nil
	}

	var sum float64
	var n int
	for _, h := range history {
		if h.Harvests > 0 {
			sum += h.LatencyMean
			n++
		}
	}
	if n == 0 || sum == 0 {
		return nil
	}
	avg := sum / float64(n)

	if stats.LatencyMean > avg*2 && stats.LatencyMean >= 2 {
		return &Bookmark{
			Type:        BookmarkLatencySpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Readback latency %.1f frames is %.1fx average (%.1f)", stats.LatencyMean, stats.LatencyMean/avg, avg),
		}
	}
	return nil
}

// checkStarvation fires on the edges of windows in which bodies got no data.
func (bd *BookmarkDetector) checkStarvation(stats WindowStats) *Bookmark {
	starved := stats.Bodies > 0 && stats.Harvests == 0
	switch {
	case starved && !bd.starved:
		return &Bookmark{
			Type:        BookmarkStarved,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("No readbacks completed for %d bodies (%d readback failures)", stats.Bodies, stats.ReadbackFailures),
		}
	case !starved && bd.starved:
		return &Bookmark{
			Type:        BookmarkRecovered,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Readbacks resumed with %d harvests", stats.Harvests),
		}
	}
	return nil
}

// checkOverBudget fires when queries start failing to post.
func (bd *BookmarkDetector) checkOverBudget(stats WindowStats) *Bookmark {
	if stats.PostFailures == 0 || bd.overBudget {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkOverBudget,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d queries failed to post, ring full %d times", stats.PostFailures, stats.RingFull),
	}
}

// checkBeaching fires when grounded bodies grow well past their recent low.
func (bd *BookmarkDetector) checkBeaching(stats WindowStats) *Bookmark {
	if !bd.groundMinSeen || stats.Bodies == 0 {
		return nil
	}
	rise := stats.Grounded - bd.recentGroundMin
	if rise >= 5 && float64(rise) > 0.3*float64(stats.Bodies) {
		oldMin := bd.recentGroundMin
		bd.recentGroundMin = stats.Grounded
		return &Bookmark{
			Type:        BookmarkBeaching,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Grounded bodies rose from %d to %d of %d", oldMin, stats.Grounded, stats.Bodies),
		}
	}
	return nil
}

// checkCalmSea fires once when mean submersion has held steady for five
// windows.
func (bd *BookmarkDetector) checkCalmSea(stats WindowStats) *Bookmark {
	if stats.Bodies == 0 {
		bd.calmWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}
	recent := make([]WindowStats, 0, 4)
	for i := 1; i <= 4; i++ {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		recent = append(recent, bd.history[idx])
	}

	var sum float64
	for _, h := range recent {
		sum += h.SubmersionMean
	}
	mean := sum / 4
	var variance float64
	for _, h := range recent {
		d := h.SubmersionMean - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.0025 means CV < 5%
	if mean > 0 && variance/(mean*mean) < 0.0025 {
		bd.calmWindowsCount++
	} else {
		bd.calmWindowsCount = 0
	}

	if bd.calmWindowsCount == 5 {
		return &Bookmark{
			Type:        BookmarkCalmSea,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean submersion steady at %.2f over 5+ windows", stats.SubmersionMean),
		}
	}
	return nil
}
