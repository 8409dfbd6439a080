// Package results turns a completed audit envelope into tabular report
// artifacts.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/divij-pawar/relcheck/api/schemas"
)

// pathSeparator joins node sequences in cycle and witness-path columns.
const pathSeparator = " -> "

// Writer persists one timestamped CSV artifact per non-empty result
// category. Run statistics are always written.
type Writer struct {
	log *zap.Logger
	dir string

	// now is swapped in tests to pin the artifact timestamp.
	now func() time.Time
}

// NewWriter creates a writer targeting the given directory. The directory
// is created on first write.
func NewWriter(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		log: logger.Named("results"),
		dir: dir,
		now: time.Now,
	}
}

// Write persists the envelope and returns the paths written. Artifact
// names carry a YYYYMMDD_HHMMSS stamp so repeated runs never overwrite
// each other.
func (w *Writer) Write(envelope *schemas.ResultEnvelope) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create output directory %q: %w", w.dir, err)
	}
	stamp := w.now().Format("20060102_150405")

	var written []string
	record := func(path string, err error) error {
		if err != nil {
			return err
		}
		if path != "" {
			written = append(written, path)
		}
		return nil
	}

	if len(envelope.Cycles) > 0 {
		rows := make([][]string, len(envelope.Cycles))
		for i, c := range envelope.Cycles {
			rows[i] = []string{strconv.Itoa(i + 1), joinConcepts(c.Nodes)}
		}
		if err := record(w.writeCSV("parent_child_cycles", stamp, []string{"ID", "Cycle"}, rows)); err != nil {
			return written, err
		}
	}

	if len(envelope.Contradictions) > 0 {
		rows := make([][]string, len(envelope.Contradictions))
		for i, c := range envelope.Contradictions {
			rows[i] = []string{strconv.Itoa(i + 1), string(c.From), string(c.To), joinConcepts(c.Path)}
		}
		if err := record(w.writeCSV("broader_than_conflicts", stamp, []string{"ID", "Source", "Target", "Path"}, rows)); err != nil {
			return written, err
		}
	}

	if len(envelope.Duplicates) > 0 {
		rows := make([][]string, len(envelope.Duplicates))
		for i, d := range envelope.Duplicates {
			rows[i] = []string{string(d.From), string(d.To), strconv.Itoa(d.Count)}
		}
		if err := record(w.writeCSV("duplicate_edges", stamp, []string{"Source", "Target", "Occurrences"}, rows)); err != nil {
			return written, err
		}
	}

	if len(envelope.Reflexives) > 0 {
		rows := make([][]string, len(envelope.Reflexives))
		for i, r := range envelope.Reflexives {
			rows[i] = []string{string(r.Concept), string(r.Relation)}
		}
		if err := record(w.writeCSV("self_links", stamp, []string{"CUI", "Relation"}, rows)); err != nil {
			return written, err
		}
	}

	rows := make([][]string, len(envelope.Stats.Metrics))
	for i, m := range envelope.Stats.Metrics {
		rows[i] = []string{m.Name, m.Value}
	}
	if err := record(w.writeCSV("run_statistics", stamp, []string{"Metric", "Value"}, rows)); err != nil {
		return written, err
	}

	return written, nil
}

func (w *Writer) writeCSV(name, stamp string, headers []string, rows [][]string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.csv", name, stamp))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create report file %q: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(headers); err != nil {
		return "", fmt.Errorf("cannot write headers to %q: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("cannot write rows to %q: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("cannot flush report file %q: %w", path, err)
	}

	w.log.Debug("Report artifact written", zap.String("path", path), zap.Int("rows", len(rows)))
	return path, nil
}

func joinConcepts(nodes []schemas.ConceptID) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = string(n)
	}
	return strings.Join(parts, pathSeparator)
}
