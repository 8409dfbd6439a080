// Package hierarchy detects cycles in the parent/child hierarchy graph.
package hierarchy

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/divij-pawar/relcheck/api/schemas"
	"github.com/divij-pawar/relcheck/internal/graph"
)

// CycleDetector finds all distinct cycles in the hierarchy graph. Identity
// for deduplication is the unordered node set of the cycle: two cycles
// visiting the same nodes collapse into one report, keeping the first-found
// ordering as the representative. Downstream consumers rely on that coarse
// count, so this is not the place to distinguish rotations or directions.
type CycleDetector struct {
	log  *zap.Logger
	snap *graph.Snapshot
}

// NewCycleDetector creates a detector over a frozen snapshot.
func NewCycleDetector(snap *graph.Snapshot, logger *zap.Logger) *CycleDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CycleDetector{
		log:  logger.Named("cycles"),
		snap: snap,
	}
}

// frame is one level of the explicit traversal stack: a node and the index
// of its next unexplored successor.
type frame struct {
	node int32
	next int
}

// Run explores the hierarchy graph depth-first from every not-yet-visited
// node and returns the deduplicated cycle list. The traversal uses an
// explicit work stack, so recursion depth is not a concern on long chains.
// All traversal state is local to the call, keeping the detector
// re-entrant.
func (d *CycleDetector) Run(ctx context.Context) ([]schemas.Cycle, error) {
	g := d.snap.Hierarchy
	size := d.snap.Interner.Len()

	visited := make([]bool, size)
	onStack := make([]bool, size)
	trailPos := make([]int32, size)

	var (
		stack      []frame
		trail      []int32
		cycles     []schemas.Cycle
		signatures = map[string]struct{}{}
	)

	push := func(node int32) {
		visited[node] = true
		onStack[node] = true
		trailPos[node] = int32(len(trail))
		trail = append(trail, node)
		stack = append(stack, frame{node: node})
	}

	for _, root := range g.Nodes() {
		if visited[root] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cycle detection cancelled: %w", err)
		}

		push(root)
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			out := g.Out(f.node)

			if f.next >= len(out) {
				// Subtree fully explored, retreat.
				onStack[f.node] = false
				trail = trail[:len(trail)-1]
				stack = stack[:len(stack)-1]
				continue
			}

			neighbor := out[f.next]
			f.next++

			if onStack[neighbor] {
				// Back-edge: the trail from the neighbor's first
				// occurrence to the current node is a candidate cycle.
				loop := trail[trailPos[neighbor]:]
				if sig := nodeSetSignature(loop); !contains(signatures, sig) {
					signatures[sig] = struct{}{}
					cycles = append(cycles, schemas.Cycle{Nodes: d.snap.Interner.Names(loop)})
				}
				continue
			}
			if visited[neighbor] {
				continue
			}
			push(neighbor)
		}
	}

	d.log.Info("Cycle detection finished", zap.Int("cycles", len(cycles)))
	return cycles, nil
}

// nodeSetSignature is the deduplication key of a cycle: its sorted node
// keys packed into a string.
func nodeSetSignature(loop []int32) string {
	sorted := make([]int32, len(loop))
	copy(sorted, loop)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	buf := make([]byte, 4*len(sorted))
	for i, n := range sorted {
		binary.BigEndian.PutUint32(buf[i*4:], uint32(n))
	}
	return string(buf)
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
