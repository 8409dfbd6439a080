package relation

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/divij-pawar/relcheck/internal/graph"
)

// LoadSummary reports what the read phase consumed.
type LoadSummary struct {
	// Lines is the number of lines read from the file.
	Lines int
	// Skipped is the number of malformed lines dropped without error.
	Skipped int
}

// Loader streams a relation file into a graph builder.
type Loader struct {
	log *zap.Logger

	// progressEvery is the record interval between progress log lines.
	progressEvery int
	// maxLineBytes caps the scanner buffer for a single line.
	maxLineBytes int
}

// NewLoader creates a loader. progressEvery and maxLineBytes fall back to
// sane values when non-positive.
func NewLoader(logger *zap.Logger, progressEvery, maxLineBytes int) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progressEvery <= 0 {
		progressEvery = 5_000_000
	}
	if maxLineBytes <= 0 {
		maxLineBytes = 1 << 20
	}
	return &Loader{
		log:           logger.Named("loader"),
		progressEvery: progressEvery,
		maxLineBytes:  maxLineBytes,
	}
}

// Load reads the file line by line, classifies each record and applies it
// to the builder. A missing or unreadable file is the one fatal input
// condition, surfaced before any parsing. Malformed lines are skipped.
func (l *Loader) Load(ctx context.Context, path string, builder *graph.Builder) (LoadSummary, error) {
	var summary LoadSummary

	file, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("cannot open input file %q: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), l.maxLineBytes)

	for scanner.Scan() {
		summary.Lines++
		if summary.Lines%l.progressEvery == 0 {
			select {
			case <-ctx.Done():
				return summary, fmt.Errorf("read phase cancelled: %w", ctx.Err())
			default:
			}
			l.log.Info("Reading relation records", zap.Int("records", summary.Lines))
		}

		fields := strings.Split(strings.TrimSpace(scanner.Text()), "|")
		rec, ok := Classify(fields)
		if !ok {
			summary.Skipped++
			continue
		}
		builder.Apply(rec)
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("error reading input file %q: %w", path, err)
	}

	l.log.Info("Finished reading relation records",
		zap.Int("records", summary.Lines),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
