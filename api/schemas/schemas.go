package schemas

import (
	"fmt"
	"time"
)

// ConceptID is the opaque identifier of a concept (a CUI in UMLS data).
// The auditor never inspects its structure; only equality matters.
type ConceptID string

// RelationType is the raw relation code from field 3 of a relation record.
type RelationType string

// The four codes that carry directional meaning. Every other code is
// counted for statistics but never produces a graph edge.
const (
	// RelChild: source is a child of target.
	RelChild RelationType = "CHD"
	// RelParent: source is a parent of target.
	RelParent RelationType = "PAR"
	// RelBroader: source is broader than target.
	RelBroader RelationType = "RB"
	// RelNarrower: source is narrower than target.
	RelNarrower RelationType = "RN"
)

// GraphKind identifies which of the two directed graphs owns an edge.
type GraphKind string

const (
	GraphHierarchy GraphKind = "hierarchy"
	GraphBroader   GraphKind = "broader"
)

// CheckMode selects which detectors a run executes.
type CheckMode string

const (
	ModeParentChild CheckMode = "parent-child"
	ModeBroaderThan CheckMode = "broader-than"
	ModeBoth        CheckMode = "both"
)

// ParseCheckMode validates a user-supplied mode string.
func ParseCheckMode(s string) (CheckMode, error) {
	switch CheckMode(s) {
	case ModeParentChild, ModeBroaderThan, ModeBoth:
		return CheckMode(s), nil
	}
	return "", fmt.Errorf("invalid check mode %q (expected parent-child, broader-than or both)", s)
}

// IncludesHierarchy reports whether the mode runs the cycle detector.
func (m CheckMode) IncludesHierarchy() bool {
	return m == ModeParentChild || m == ModeBoth
}

// IncludesBroader reports whether the mode runs the contradiction detector.
func (m CheckMode) IncludesBroader() bool {
	return m == ModeBroaderThan || m == ModeBoth
}

// RecordClass describes what a classified relation record contributes.
type RecordClass int

const (
	// ClassObservedOnly records carry an unrecognized relation code; only
	// the code itself is retained for statistics.
	ClassObservedOnly RecordClass = iota
	// ClassEdge records contribute a direction-normalized edge to one of
	// the two graphs.
	ClassEdge
	// ClassReflexive records relate a concept to itself and are diverted
	// to the reflexive-link set.
	ClassReflexive
)

// ClassifiedRecord is the normalized form of one raw relation record.
// For ClassEdge the From/To direction is already canonical: hierarchy
// edges run parent to child, broader edges run broader to narrower.
type ClassifiedRecord struct {
	Class    RecordClass
	Graph    GraphKind
	From     ConceptID
	To       ConceptID
	Relation RelationType
}

// Cycle is a closed walk in the hierarchy graph. The first node repeats
// implicitly at the end. Identity for deduplication is the unordered node
// set, so a reported cycle is the first-found representative of that set.
type Cycle struct {
	Nodes []ConceptID `json:"nodes"`
}

// Contradiction is an ordered pair of distinct concepts that are mutually
// reachable in the broader-than graph. Path is the witness walk From -> To
// -> From with the shared To node appearing exactly once at the junction.
// Every qualifying unordered pair is reported once per direction.
type Contradiction struct {
	From ConceptID   `json:"from"`
	To   ConceptID   `json:"to"`
	Path []ConceptID `json:"path"`
}

// DuplicateEdge is a canonical edge asserted by more than one record.
type DuplicateEdge struct {
	Graph GraphKind `json:"graph"`
	From  ConceptID `json:"from"`
	To    ConceptID `json:"to"`
	Count int       `json:"count"`
}

// ReflexiveLink is a record whose source and target identifiers match.
type ReflexiveLink struct {
	Concept  ConceptID    `json:"concept"`
	Relation RelationType `json:"relation"`
}

// Metric is one named statistic of a run.
type Metric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RunStatistics is an insertion-ordered list of metrics. Order is part of
// the report contract, so a map would not do.
type RunStatistics struct {
	Metrics []Metric `json:"metrics"`
}

// Add appends a metric, formatting the value with fmt.Sprint.
func (s *RunStatistics) Add(name string, value any) {
	s.Metrics = append(s.Metrics, Metric{Name: name, Value: fmt.Sprint(value)})
}

// AddSeconds appends a duration metric rounded to two decimal places.
func (s *RunStatistics) AddSeconds(name string, d time.Duration) {
	s.Metrics = append(s.Metrics, Metric{Name: name, Value: fmt.Sprintf("%.2f", d.Seconds())})
}

// ResultEnvelope is the container handed from the audit runner to the
// report writer and, optionally, the persistence sink.
type ResultEnvelope struct {
	RunID          string          `json:"run_id"`
	Mode           CheckMode       `json:"mode"`
	Input          string          `json:"input"`
	StartedAt      time.Time       `json:"started_at"`
	Cycles         []Cycle         `json:"cycles"`
	Contradictions []Contradiction `json:"contradictions"`
	Duplicates     []DuplicateEdge `json:"duplicates"`
	Reflexives     []ReflexiveLink `json:"reflexives"`
	Stats          RunStatistics   `json:"stats"`
}
