package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_LatencySpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Bodies: 10, Harvests: 20, LatencyMean: 1})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Bodies: 10, Harvests: 20, LatencyMean: 3})
	if !hasBookmark(bookmarks, BookmarkLatencySpike) {
		t.Error("expected latency_spike bookmark")
	}
}

func TestBookmarkDetector_StarvedAndRecovered(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 60, Bodies: 10, Harvests: 20, LatencyMean: 1})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 120, Bodies: 10, ReadbackFailures: 4})
	if !hasBookmark(bookmarks, BookmarkStarved) {
		t.Fatal("expected starved bookmark")
	}

	// Still starved: no repeat
	bookmarks = bd.Check(WindowStats{WindowEndTick: 180, Bodies: 10})
	if hasBookmark(bookmarks, BookmarkStarved) {
		t.Error("starved should only fire on the first empty window")
	}

	bookmarks = bd.Check(WindowStats{WindowEndTick: 240, Bodies: 10, Harvests: 5, LatencyMean: 1})
	if !hasBookmark(bookmarks, BookmarkRecovered) {
		t.Error("expected recovered bookmark")
	}
}

func TestBookmarkDetector_OverBudgetFiresOnEdge(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Bodies: 10, Harvests: 5})

	if !hasBookmark(bd.Check(WindowStats{Bodies: 10, Harvests: 5, PostFailures: 3}), BookmarkOverBudget) {
		t.Fatal("expected over_budget bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{Bodies: 10, Harvests: 5, PostFailures: 3}), BookmarkOverBudget) {
		t.Error("over_budget should not repeat while failures continue")
	}
}

func TestBookmarkDetector_Beaching(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Bodies: 20, Harvests: 5, Grounded: 2})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 180, Bodies: 20, Harvests: 5, Grounded: 12})
	if !hasBookmark(bookmarks, BookmarkBeaching) {
		t.Error("expected beaching bookmark")
	}

	bookmarks = bd.Check(WindowStats{WindowEndTick: 240, Bodies: 20, Harvests: 5, Grounded: 13})
	if hasBookmark(bookmarks, BookmarkBeaching) {
		t.Error("beaching should reset its baseline after firing")
	}
}

func TestBookmarkDetector_CalmSeaOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 15; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 60), Bodies: 10, Harvests: 5, SubmersionMean: 0.5})
		if hasBookmark(bookmarks, BookmarkCalmSea) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("calm_sea fired %d times, want 1", fired)
	}
}
