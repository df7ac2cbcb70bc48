package autograd

import (
	"fmt"
	"math"

	"github.com/joelsearcy/micrograd-go/pkg/depgraph"
)

// Gradients holds the result of a backward pass: the partial derivative of
// the output with respect to every node the output depends on.
type Gradients struct {
	g     *Graph
	root  NodeID
	grads map[NodeID]float64
}

// Of returns the gradient of the output with respect to v. Nodes the output
// does not depend on have a gradient of 0.
func (gr Gradients) Of(v Value) float64 {
	grad, _ := gr.Lookup(v)
	return grad
}

// Lookup returns the gradient of the output with respect to v and whether v
// was reached by the backward pass.
func (gr Gradients) Lookup(v Value) (float64, bool) {
	if v.g != gr.g {
		return 0, false
	}
	grad, ok := gr.grads[v.id]
	return grad, ok
}

// Len returns the number of nodes the backward pass reached.
func (gr Gradients) Len() int {
	return len(gr.grads)
}

// Root returns the output the gradients were computed for.
func (gr Gradients) Root() Value {
	return Value{g: gr.g, id: gr.root}
}

// Order returns every node v depends on, and v itself, ordered so that each
// node follows all of its predecessors. Ties are broken by node ID.
//
// It panics if the graph contains a cycle.
func (v Value) Order() []NodeID {
	g := v.graph()
	ids, err := depgraph.Order(int64(v.id), g.predecessorIDs)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrInconsistent, err))
	}

	order := make([]NodeID, len(ids))
	for i, id := range ids {
		order[i] = NodeID(id)
	}
	return order
}

// Backward performs backpropagation starting from v.
// It orders the graph reachable from v, seeds the gradient of v with 1, then
// visits nodes in reverse dependency order, adding each node's local
// contributions into its predecessors' gradients.
func (v Value) Backward() Gradients {
	order := v.Order()

	reachable := make(map[NodeID]struct{}, len(order))
	for _, id := range order {
		reachable[id] = struct{}{}
	}

	grads := make(map[NodeID]float64, len(order))
	grads[v.id] = 1

	accumulate := func(id NodeID, contribution float64) {
		if _, ok := reachable[id]; !ok {
			inconsistent("node %d is outside the reachable set of %d", id, v.id)
		}
		grads[id] += contribution
	}

	nodes := v.g.nodes
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := &nodes[id]
		grad := grads[id]

		switch n.kind {
		case KindLeaf:
		case KindAdd:
			accumulate(n.preds[0], grad)
			accumulate(n.preds[1], grad)
		case KindMul:
			l, r := n.preds[0], n.preds[1]
			accumulate(l, nodes[r].data*grad)
			accumulate(r, nodes[l].data*grad)
		case KindPow:
			base := nodes[n.preds[0]].data
			accumulate(n.preds[0], n.exp*math.Pow(base, n.exp-1)*grad)
		case KindTanh:
			accumulate(n.preds[0], (1-n.data*n.data)*grad)
		default:
			inconsistent("node %d has unknown kind %v", id, n.kind)
		}
	}

	return Gradients{g: v.g, root: v.id, grads: grads}
}
