package relation

import "github.com/divij-pawar/relcheck/api/schemas"

// Positional fields of a pipe-delimited relation record. Fields beyond the
// target identifier are ignored.
const (
	fieldSource   = 0
	fieldRelation = 3
	fieldTarget   = 4
	minFields     = 5
)

// Classify normalizes one raw record into a classified event. The second
// return value is false for malformed records (fewer than five fields),
// which are skipped without error.
//
// Direction normalization is the crux: after this step a hierarchy edge
// (p, c) always means p is the parent of c, and a broader edge (a, b)
// always means a is broader than b, regardless of which of the two inverse
// codes asserted it.
func Classify(fields []string) (schemas.ClassifiedRecord, bool) {
	if len(fields) < minFields {
		return schemas.ClassifiedRecord{}, false
	}

	src := schemas.ConceptID(fields[fieldSource])
	tgt := schemas.ConceptID(fields[fieldTarget])
	rel := schemas.RelationType(fields[fieldRelation])

	// Self-referential records never become graph edges.
	if src == tgt {
		return schemas.ClassifiedRecord{
			Class:    schemas.ClassReflexive,
			From:     src,
			To:       tgt,
			Relation: rel,
		}, true
	}

	rec := schemas.ClassifiedRecord{Relation: rel}
	switch rel {
	case schemas.RelChild:
		// Source is the child, so the canonical parent->child edge is inverted.
		rec.Class = schemas.ClassEdge
		rec.Graph = schemas.GraphHierarchy
		rec.From, rec.To = tgt, src
	case schemas.RelParent:
		rec.Class = schemas.ClassEdge
		rec.Graph = schemas.GraphHierarchy
		rec.From, rec.To = src, tgt
	case schemas.RelBroader:
		rec.Class = schemas.ClassEdge
		rec.Graph = schemas.GraphBroader
		rec.From, rec.To = src, tgt
	case schemas.RelNarrower:
		// Source is the narrower concept, so the broader->narrower edge is inverted.
		rec.Class = schemas.ClassEdge
		rec.Graph = schemas.GraphBroader
		rec.From, rec.To = tgt, src
	default:
		rec.Class = schemas.ClassObservedOnly
	}
	return rec, true
}
