package graph

import "github.com/divij-pawar/relcheck/api/schemas"

// Interner maps concept identifiers to dense int32 keys. The integer form
// is what every graph structure and detector operates on; the string form
// is recovered only at the reporting boundary. Indices are assigned in
// first-appearance order, which keeps traversal and report ordering
// deterministic for a given input file.
type Interner struct {
	index map[schemas.ConceptID]int32
	names []schemas.ConceptID
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{index: make(map[schemas.ConceptID]int32)}
}

// Intern returns the dense key for id, assigning the next one on first use.
func (in *Interner) Intern(id schemas.ConceptID) int32 {
	if key, ok := in.index[id]; ok {
		return key
	}
	key := int32(len(in.names))
	in.index[id] = key
	in.names = append(in.names, id)
	return key
}

// Name returns the original identifier for a dense key.
func (in *Interner) Name(key int32) schemas.ConceptID {
	return in.names[key]
}

// Names converts a slice of dense keys back to concept identifiers.
func (in *Interner) Names(keys []int32) []schemas.ConceptID {
	out := make([]schemas.ConceptID, len(keys))
	for i, k := range keys {
		out[i] = in.names[k]
	}
	return out
}

// Len is the number of distinct identifiers seen so far.
func (in *Interner) Len() int {
	return len(in.names)
}
