// Package broader detects mutual-reachability contradictions in the
// broader-than graph.
package broader

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/divij-pawar/relcheck/api/schemas"
	"github.com/divij-pawar/relcheck/internal/graph"
)

// ContradictionDetector reports every ordered pair of distinct concepts
// that are mutually reachable in the broader-than graph, each with a
// shortest witness walk there and back. A qualifying unordered pair shows
// up twice, once per direction, because the two directions carry different
// witness paths.
//
// Materializing per-node descendant sets would be quadratic at the target
// scale, so the detector first decomposes the graph into strongly
// connected components and works inside each component's (typically tiny)
// subgraph. The contradiction set and witnesses are identical to what
// naive all-pairs reachability would produce.
type ContradictionDetector struct {
	log         *zap.Logger
	snap        *graph.Snapshot
	concurrency int
}

// NewContradictionDetector creates a detector over a frozen snapshot.
// Components are analyzed concurrently, at most concurrency at a time.
func NewContradictionDetector(snap *graph.Snapshot, concurrency int, logger *zap.Logger) *ContradictionDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ContradictionDetector{
		log:         logger.Named("contradictions"),
		snap:        snap,
		concurrency: concurrency,
	}
}

// Run decomposes the broader-than graph and collects contradictions. The
// result order is deterministic: components in decomposition order, pairs
// in interned-key order within a component.
func (d *ContradictionDetector) Run(ctx context.Context) ([]schemas.Contradiction, error) {
	components := stronglyConnected(d.snap.Broader, d.snap.Interner.Len())
	if len(components) == 0 {
		d.log.Info("Contradiction detection finished", zap.Int("contradictions", 0))
		return nil, nil
	}
	d.log.Debug("Found non-trivial components", zap.Int("components", len(components)))

	perComponent := make([][]schemas.Contradiction, len(components))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, members := range components {
		i, members := i, members
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("contradiction detection cancelled: %w", err)
			}
			perComponent[i] = d.analyzeComponent(members)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var contradictions []schemas.Contradiction
	for _, batch := range perComponent {
		contradictions = append(contradictions, batch...)
	}

	d.log.Info("Contradiction detection finished", zap.Int("contradictions", len(contradictions)))
	return contradictions, nil
}

// analyzeComponent emits all ordered pairs of a single component together
// with their witness walks. Every BFS stays inside the component subgraph.
func (d *ContradictionDetector) analyzeComponent(members []int32) []schemas.Contradiction {
	k := len(members)

	sorted := make([]int32, k)
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	local := make(map[int32]int, k)
	for i, node := range sorted {
		local[node] = i
	}

	// Adjacency restricted to the component, preserving global insertion
	// order so witness tie-breaks are stable.
	adj := make([][]int, k)
	for i, node := range sorted {
		for _, succ := range d.snap.Broader.Out(node) {
			if j, ok := local[succ]; ok {
				adj[i] = append(adj[i], j)
			}
		}
	}

	// One BFS per member yields the shortest-path parent tree to every
	// other member.
	parents := make([][]int, k)
	for i := range sorted {
		parents[i] = bfsParents(adj, i)
	}

	contradictions := make([]schemas.Contradiction, 0, k*(k-1))
	for i := range sorted {
		for j := range sorted {
			if i == j {
				continue
			}
			forward := walk(parents[i], i, j)
			back := walk(parents[j], j, i)
			// The junction node appears exactly once.
			path := append(forward, back[1:]...)

			nodes := make([]schemas.ConceptID, len(path))
			for n, p := range path {
				nodes[n] = d.snap.Interner.Name(sorted[p])
			}
			contradictions = append(contradictions, schemas.Contradiction{
				From: d.snap.Interner.Name(sorted[i]),
				To:   d.snap.Interner.Name(sorted[j]),
				Path: nodes,
			})
		}
	}
	return contradictions
}

// bfsParents runs a breadth-first search from src over the local adjacency
// and returns the parent of every reached node (-1 for unreached and for
// src itself).
func bfsParents(adj [][]int, src int) []int {
	parents := make([]int, len(adj))
	for i := range parents {
		parents[i] = -1
	}
	seen := make([]bool, len(adj))
	seen[src] = true

	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			parents[next] = cur
			queue = append(queue, next)
		}
	}
	return parents
}

// walk reconstructs the shortest path from src to dst out of a BFS parent
// tree rooted at src. Within a strongly connected component the path
// always exists.
func walk(parents []int, src, dst int) []int {
	var reversed []int
	for cur := dst; cur != -1; cur = parents[cur] {
		reversed = append(reversed, cur)
		if cur == src {
			break
		}
	}
	path := make([]int, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}
