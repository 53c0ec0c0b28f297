package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/swell/config"
)

// csvWriter appends records to one CSV file, writing the header only once.
type csvWriter struct {
	name          string
	file          *os.File
	headerWritten bool
}

func openCSV(dir, name string) (*csvWriter, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvWriter{name: name, file: f}, nil
}

func (w *csvWriter) write(records any) error {
	var err error
	if w.headerWritten {
		err = gocsv.MarshalWithoutHeaders(records, w.file)
	} else {
		err = gocsv.Marshal(records, w.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", w.name, err)
	}
	w.headerWritten = true
	return nil
}

// OutputManager handles run output: the effective config plus telemetry and
// perf CSV files.
type OutputManager struct {
	dir       string
	telemetry *csvWriter
	perf      *csvWriter
	bookmarks *csvWriter
}

// NewOutputManager creates the output directory and its files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	telemetry, err := openCSV(dir, "telemetry.csv")
	if err != nil {
		return nil, err
	}
	perf, err := openCSV(dir, "perf.csv")
	if err != nil {
		telemetry.file.Close()
		return nil, err
	}
	bookmarks, err := openCSV(dir, "bookmarks.csv")
	if err != nil {
		telemetry.file.Close()
		perf.file.Close()
		return nil, err
	}
	return &OutputManager{dir: dir, telemetry: telemetry, perf: perf, bookmarks: bookmarks}, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats row to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats})
}

// WritePerf appends a perf row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, w := range []*csvWriter{om.telemetry, om.perf, om.bookmarks} {
		if err := w.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
