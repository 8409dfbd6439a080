package graph

import (
	"sort"

	"go.uber.org/zap"

	"github.com/divij-pawar/relcheck/api/schemas"
)

// edgeRef keys the multiplicity counter. Keying includes the owning graph
// so an identical concept pair asserted as both a hierarchy and a broader
// relation counts separately.
type edgeRef struct {
	kind schemas.GraphKind
	key  uint64
}

// Builder accumulates classified records into the two directed graphs plus
// the auxiliary multiplicity, reflexive-link and observed-type indexes. It
// exclusively owns all of them until Freeze hands out a read-only snapshot.
type Builder struct {
	log *zap.Logger

	interner  *Interner
	hierarchy *Directed
	broader   *Directed

	multiplicity map[edgeRef]int
	reflexiveSet map[schemas.ReflexiveLink]struct{}
	reflexives   []schemas.ReflexiveLink
	relTypes     map[schemas.RelationType]struct{}
}

// NewBuilder creates an empty builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		log:          logger.Named("builder"),
		interner:     NewInterner(),
		hierarchy:    NewDirected(),
		broader:      NewDirected(),
		multiplicity: make(map[edgeRef]int),
		reflexiveSet: make(map[schemas.ReflexiveLink]struct{}),
		relTypes:     make(map[schemas.RelationType]struct{}),
	}
}

// Apply folds one classified record into the indexes. Edge records bump
// the multiplicity counter once per contributing record and insert the
// adjacency entry at most once.
func (b *Builder) Apply(rec schemas.ClassifiedRecord) {
	b.relTypes[rec.Relation] = struct{}{}

	switch rec.Class {
	case schemas.ClassReflexive:
		link := schemas.ReflexiveLink{Concept: rec.From, Relation: rec.Relation}
		if _, seen := b.reflexiveSet[link]; !seen {
			b.reflexiveSet[link] = struct{}{}
			b.reflexives = append(b.reflexives, link)
		}
	case schemas.ClassEdge:
		from := b.interner.Intern(rec.From)
		to := b.interner.Intern(rec.To)
		b.multiplicity[edgeRef{kind: rec.Graph, key: packEdge(from, to)}]++
		if rec.Graph == schemas.GraphHierarchy {
			b.hierarchy.AddEdge(from, to)
		} else {
			b.broader.AddEdge(from, to)
		}
	}
}

// Snapshot is the frozen output of the build phase. Detectors receive it
// read-only; nothing in it is mutated after Freeze returns.
type Snapshot struct {
	Interner  *Interner
	Hierarchy *Directed
	Broader   *Directed

	// Duplicates holds every canonical edge contributed by more than one
	// record, in a stable sorted order.
	Duplicates []schemas.DuplicateEdge
	// Reflexives holds self-referential links in first-appearance order.
	Reflexives []schemas.ReflexiveLink
	// RelationTypes holds every observed relation code, sorted.
	RelationTypes []schemas.RelationType
}

// Freeze finalizes the build phase and returns the snapshot view.
func (b *Builder) Freeze() *Snapshot {
	duplicates := make([]schemas.DuplicateEdge, 0)
	for ref, count := range b.multiplicity {
		if count <= 1 {
			continue
		}
		from := int32(ref.key >> 32)
		to := int32(uint32(ref.key))
		duplicates = append(duplicates, schemas.DuplicateEdge{
			Graph: ref.kind,
			From:  b.interner.Name(from),
			To:    b.interner.Name(to),
			Count: count,
		})
	}
	sort.Slice(duplicates, func(i, j int) bool {
		a, c := duplicates[i], duplicates[j]
		if a.Graph != c.Graph {
			return a.Graph < c.Graph
		}
		if a.From != c.From {
			return a.From < c.From
		}
		return a.To < c.To
	})

	relTypes := make([]schemas.RelationType, 0, len(b.relTypes))
	for rt := range b.relTypes {
		relTypes = append(relTypes, rt)
	}
	sort.Slice(relTypes, func(i, j int) bool { return relTypes[i] < relTypes[j] })

	b.log.Debug("Build phase frozen",
		zap.Int("hierarchy_nodes", b.hierarchy.NodeCount()),
		zap.Int("hierarchy_edges", b.hierarchy.EdgeCount()),
		zap.Int("broader_nodes", b.broader.NodeCount()),
		zap.Int("broader_edges", b.broader.EdgeCount()),
		zap.Int("duplicate_edges", len(duplicates)),
		zap.Int("reflexive_links", len(b.reflexives)),
	)

	return &Snapshot{
		Interner:      b.interner,
		Hierarchy:     b.hierarchy,
		Broader:       b.broader,
		Duplicates:    duplicates,
		Reflexives:    b.reflexives,
		RelationTypes: relTypes,
	}
}
