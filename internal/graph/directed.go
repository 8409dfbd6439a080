package graph

// Directed is a compact directed graph over interned node keys. Adjacency
// lists and the node list preserve insertion order, and a packed edge set
// keeps repeated insertions of the same edge from duplicating adjacency
// entries. Node keys come from a shared Interner, so slices indexed by key
// are grown on demand rather than sized up front.
type Directed struct {
	adj    [][]int32
	member []bool
	nodes  []int32
	edges  map[uint64]struct{}
}

// NewDirected creates an empty graph.
func NewDirected() *Directed {
	return &Directed{edges: make(map[uint64]struct{})}
}

func packEdge(from, to int32) uint64 {
	return uint64(uint32(from))<<32 | uint64(uint32(to))
}

func (g *Directed) touch(key int32) {
	if int(key) >= len(g.member) {
		// Doubling keeps growth amortized as interned keys climb.
		size := int(key) + 1
		if size < 2*len(g.member) {
			size = 2 * len(g.member)
		}
		grown := make([]bool, size)
		copy(grown, g.member)
		g.member = grown

		grownAdj := make([][]int32, size)
		copy(grownAdj, g.adj)
		g.adj = grownAdj
	}
	if !g.member[key] {
		g.member[key] = true
		g.nodes = append(g.nodes, key)
	}
}

// AddEdge inserts a directed edge. It returns false when the edge was
// already present; the adjacency list is never duplicated.
func (g *Directed) AddEdge(from, to int32) bool {
	key := packEdge(from, to)
	if _, exists := g.edges[key]; exists {
		return false
	}
	g.edges[key] = struct{}{}
	g.touch(from)
	g.touch(to)
	g.adj[from] = append(g.adj[from], to)
	return true
}

// HasEdge reports whether the directed edge exists.
func (g *Directed) HasEdge(from, to int32) bool {
	_, ok := g.edges[packEdge(from, to)]
	return ok
}

// Contains reports whether the node participates in any edge of this graph.
func (g *Directed) Contains(key int32) bool {
	return int(key) < len(g.member) && g.member[key]
}

// Out returns the successors of a node in insertion order. The returned
// slice is owned by the graph and must not be mutated.
func (g *Directed) Out(key int32) []int32 {
	if int(key) >= len(g.adj) {
		return nil
	}
	return g.adj[key]
}

// Nodes returns every node in first-appearance order. The returned slice
// is owned by the graph and must not be mutated.
func (g *Directed) Nodes() []int32 {
	return g.nodes
}

// NodeCount is the number of distinct nodes.
func (g *Directed) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount is the number of distinct edges.
func (g *Directed) EdgeCount() int {
	return len(g.edges)
}
