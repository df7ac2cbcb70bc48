// Package depgraph orders the nodes of a dependency graph so that every node
// comes after all of its predecessors.
package depgraph

import (
	"errors"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Reachable walks predecessor edges backward from root and returns every
// reachable node mapped to its direct predecessors.
func Reachable(root int64, preds func(int64) []int64) map[int64][]int64 {
	deps := make(map[int64][]int64)

	// Iterative DFS using explicit stack
	stack := []int64{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := deps[id]; ok {
			continue
		}
		p := preds(id)
		if p == nil {
			p = []int64{}
		}
		deps[id] = p

		for _, pred := range p {
			if _, ok := deps[pred]; !ok {
				stack = append(stack, pred)
			}
		}
	}
	return deps
}

// Sort returns the nodes of deps ordered so that each node follows all of
// its predecessors. Unordered nodes are tie-broken by ascending ID, so the
// result is reproducible for a fixed mapping.
//
// A cycle yields a *CycleError.
func Sort(deps map[int64][]int64) ([]int64, error) {
	g := simple.NewDirectedGraph()
	for id := range deps {
		if g.Node(id) == nil {
			g.AddNode(simple.Node(id))
		}
	}
	for id, preds := range deps {
		for _, pred := range preds {
			if pred == id {
				// simple.DirectedGraph rejects self edges, report them as the
				// shortest possible cycle instead.
				return nil, NewCycleError([]int64{id, id})
			}
			g.SetEdge(g.NewEdge(simple.Node(pred), simple.Node(id)))
		}
	}

	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) && len(unorderable) > 0 {
			return nil, NewCycleError(cyclePath(unorderable[0]))
		}
		return nil, err
	}

	order := make([]int64, len(sorted))
	for i, n := range sorted {
		order[i] = n.ID()
	}
	return order, nil
}

// Order is Reachable followed by Sort.
func Order(root int64, preds func(int64) []int64) ([]int64, error) {
	return Sort(Reachable(root, preds))
}

// cyclePath lists the members of a strongly connected component, closing the
// path with its first member.
func cyclePath(component []graph.Node) []int64 {
	path := make([]int64, 0, len(component)+1)
	for _, n := range component {
		path = append(path, n.ID())
	}
	if len(path) > 0 {
		path = append(path, path[0])
	}
	return path
}
