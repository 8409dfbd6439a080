package broader

import "github.com/divij-pawar/relcheck/internal/graph"

// stronglyConnected decomposes the graph into strongly connected
// components using an iterative Tarjan traversal, returning only the
// components with more than one node. Those are exactly the maximal sets
// of mutually reachable nodes, so they are the only ones that can carry
// contradictions (the graphs hold no reflexive edges). Components come out
// in completion order, which is deterministic for a given input.
func stronglyConnected(g *graph.Directed, internerSize int) [][]int32 {
	const unvisited = int32(-1)

	index := make([]int32, internerSize)
	low := make([]int32, internerSize)
	onStack := make([]bool, internerSize)
	for i := range index {
		index[i] = unvisited
	}

	var (
		counter    int32
		sccStack   []int32
		components [][]int32
	)

	type frame struct {
		node int32
		next int
	}
	var frames []frame

	push := func(v int32) {
		index[v] = counter
		low[v] = counter
		counter++
		sccStack = append(sccStack, v)
		onStack[v] = true
		frames = append(frames, frame{node: v})
	}

	for _, root := range g.Nodes() {
		if index[root] != unvisited {
			continue
		}
		push(root)

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			out := g.Out(f.node)

			if f.next < len(out) {
				w := out[f.next]
				f.next++
				if index[w] == unvisited {
					push(w)
				} else if onStack[w] {
					if index[w] < low[f.node] {
						low[f.node] = index[w]
					}
				}
				continue
			}

			// Node finished: emit its component if it is a root.
			v := f.node
			if low[v] == index[v] {
				var component []int32
				for {
					w := sccStack[len(sccStack)-1]
					sccStack = sccStack[:len(sccStack)-1]
					onStack[w] = false
					component = append(component, w)
					if w == v {
						break
					}
				}
				if len(component) > 1 {
					components = append(components, component)
				}
			}

			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if low[v] < low[parent.node] {
					low[parent.node] = low[v]
				}
			}
		}
	}

	return components
}
