package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divij-pawar/relcheck/api/schemas"
	"github.com/divij-pawar/relcheck/internal/config"
)

type capturingReporter struct {
	envelope *schemas.ResultEnvelope
	written  []string
}

func (r *capturingReporter) Write(envelope *schemas.ResultEnvelope) ([]string, error) {
	r.envelope = envelope
	return r.written, nil
}

type countingSink struct {
	calls int
	runID string
}

func (s *countingSink) PersistRun(ctx context.Context, envelope *schemas.ResultEnvelope) error {
	s.calls++
	s.runID = envelope.RunID
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{WorkerConcurrency: 2},
		Audit:  config.AuditConfig{ProgressInterval: 1000, MaxLineBytes: 1 << 16},
		Output: config.OutputConfig{Directory: "./output"},
	}
}

func writeInput(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MRREL.RRF")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

const sampleInput = "C1|x|y|PAR|C2|z\n" +
	"C2|x|y|PAR|C1|z\n" +
	"C3|x|y|RB|C4|z\n" +
	"C3|x|y|RB|C4|z\n" +
	"C4|x|y|RN|C3|z\n" +
	"C5|x|y|SY|C5|z\n" +
	"short|line\n" +
	"C6|x|y|XR|C7|z\n"

func metricValue(t *testing.T, stats schemas.RunStatistics, name string) string {
	t.Helper()
	for _, m := range stats.Metrics {
		if m.Name == name {
			return m.Value
		}
	}
	t.Fatalf("metric %q not found in %v", name, stats.Metrics)
	return ""
}

func TestRunBothModes(t *testing.T) {
	input := writeInput(t, sampleInput)
	reporter := &capturingReporter{}
	sink := &countingSink{}
	runner := NewRunner(testConfig(), nil, reporter, sink)

	envelope, err := runner.Run(context.Background(), Options{Input: input, Mode: schemas.ModeBoth})
	require.NoError(t, err)

	assert.NotEmpty(t, envelope.RunID)
	assert.Equal(t, schemas.ModeBoth, envelope.Mode)

	// The PAR pair forms a 2-node hierarchy cycle.
	require.Len(t, envelope.Cycles, 1)
	assert.ElementsMatch(t, []schemas.ConceptID{"C1", "C2"}, envelope.Cycles[0].Nodes)

	// RN C4->C3 normalizes to the same C3->C4 direction, so there is no
	// mutual pair in the broader graph.
	require.Len(t, envelope.Contradictions, 0)

	// The duplicated RB record plus the equivalent RN record give the
	// canonical edge C3->C4 a multiplicity of 3.
	require.Len(t, envelope.Duplicates, 1)
	assert.Equal(t, 3, envelope.Duplicates[0].Count)

	require.Len(t, envelope.Reflexives, 1)
	assert.Equal(t, schemas.ReflexiveLink{Concept: "C5", Relation: "SY"}, envelope.Reflexives[0])

	assert.Equal(t, "2", metricValue(t, envelope.Stats, "Total Child Links"))
	assert.Equal(t, "1", metricValue(t, envelope.Stats, "Total Broader Links"))
	assert.Equal(t, "4", metricValue(t, envelope.Stats, "Unique Relationship Types"))
	assert.Equal(t, "1", metricValue(t, envelope.Stats, "Reflexive Links Found"))
	assert.Equal(t, "1", metricValue(t, envelope.Stats, "Duplicate Links"))
	assert.Equal(t, "1", metricValue(t, envelope.Stats, "Parent-Child Cycles Found"))
	assert.Equal(t, "0", metricValue(t, envelope.Stats, "Broader-Than Violations Found"))
	metricValue(t, envelope.Stats, "Cycle Detection Time (s)")
	metricValue(t, envelope.Stats, "Broader Analysis Time (s)")
	metricValue(t, envelope.Stats, "Total Run Time (s)")

	assert.Same(t, envelope, reporter.envelope, "reporter receives the final envelope")
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, envelope.RunID, sink.runID)
}

func TestRunBroaderContradiction(t *testing.T) {
	// RB A->B and RB B->A are genuinely mutual.
	input := writeInput(t, "A|x|y|RB|B|z\nB|x|y|RB|A|z\n")
	runner := NewRunner(testConfig(), nil, nil, nil)

	envelope, err := runner.Run(context.Background(), Options{Input: input, Mode: schemas.ModeBroaderThan})
	require.NoError(t, err)
	require.Len(t, envelope.Contradictions, 2)
	assert.Equal(t, []schemas.ConceptID{"A", "B", "A"}, envelope.Contradictions[0].Path)
}

func TestRunModeGatesDetectorsAndMetrics(t *testing.T) {
	input := writeInput(t, sampleInput)
	runner := NewRunner(testConfig(), nil, nil, nil)

	envelope, err := runner.Run(context.Background(), Options{Input: input, Mode: schemas.ModeParentChild})
	require.NoError(t, err)

	assert.Len(t, envelope.Cycles, 1)
	assert.Empty(t, envelope.Contradictions)

	for _, m := range envelope.Stats.Metrics {
		assert.NotEqual(t, "Broader-Than Violations Found", m.Name)
		assert.NotEqual(t, "Broader Analysis Time (s)", m.Name)
	}
}

func TestRunMissingInputFailsBeforeParsing(t *testing.T) {
	reporter := &capturingReporter{}
	runner := NewRunner(testConfig(), nil, reporter, nil)

	_, err := runner.Run(context.Background(), Options{
		Input: filepath.Join(t.TempDir(), "absent.RRF"),
		Mode:  schemas.ModeBoth,
	})
	require.Error(t, err)
	assert.Nil(t, reporter.envelope, "no reports on a fatal input error")
}

func TestRunDeterministicResults(t *testing.T) {
	input := writeInput(t, sampleInput+"A|x|y|RB|B|z\nB|x|y|RB|A|z\n")
	runner := NewRunner(testConfig(), nil, nil, nil)

	first, err := runner.Run(context.Background(), Options{Input: input, Mode: schemas.ModeBoth})
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), Options{Input: input, Mode: schemas.ModeBoth})
	require.NoError(t, err)

	assert.Equal(t, first.Cycles, second.Cycles)
	assert.Equal(t, first.Contradictions, second.Contradictions)
	assert.Equal(t, first.Duplicates, second.Duplicates)
}
