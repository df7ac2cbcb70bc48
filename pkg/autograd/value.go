// Package autograd implements reverse-mode automatic differentiation over
// scalar values.
//
// Every arithmetic operation appends a node to a Graph and returns a Value
// handle to it. Nodes can only name nodes that already exist as their
// predecessors, so a graph is acyclic by construction. Backward on an output
// Value returns the gradient of that output with respect to every node it
// depends on.
//
// A Graph is not safe for concurrent use. Build a fresh graph for every
// forward pass.
package autograd

import (
	"math"
	"strconv"
)

// NodeID addresses a node within its Graph. IDs are assigned in construction
// order, so a predecessor always has a smaller ID than its dependents.
type NodeID int

// node is one entry of the arena.
type node struct {
	data  float64   // forward value, computed once at construction
	kind  Kind      // operation that produced the node
	preds [2]NodeID // predecessors, the first kind.arity() entries are used
	exp   float64   // exponent, KindPow only
}

// Graph owns every node of one expression graph.
type Graph struct {
	nodes []node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make([]node, 0, 64)}
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Leaf creates a leaf node holding data.
func (g *Graph) Leaf(data float64) Value {
	return g.push(node{data: data, kind: KindLeaf})
}

// Leaves creates one leaf per element of data.
func (g *Graph) Leaves(data ...float64) []Value {
	out := make([]Value, len(data))
	for i, d := range data {
		out[i] = g.Leaf(d)
	}
	return out
}

// Node returns the Value for id. It panics if id is not in the graph.
func (g *Graph) Node(id NodeID) Value {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(ErrInvalidValue)
	}
	return Value{g: g, id: id}
}

func (g *Graph) push(n node) Value {
	g.nodes = append(g.nodes, n)
	return Value{g: g, id: NodeID(len(g.nodes) - 1)}
}

// predecessorIDs adapts the arena to the int64 keyed dependency ordering.
func (g *Graph) predecessorIDs(id int64) []int64 {
	n := &g.nodes[id]
	arity := n.kind.arity()
	out := make([]int64, arity)
	for i := 0; i < arity; i++ {
		p := n.preds[i]
		if int64(p) >= id {
			inconsistent("node %d names node %d as predecessor", id, p)
		}
		out[i] = int64(p)
	}
	return out
}

// Value is a handle to a node of a Graph. The zero Value is not usable.
//
// Values are compared by identity: two Values are the same node only if they
// come from the same graph and have the same ID, whatever their data.
type Value struct {
	g  *Graph
	id NodeID
}

// Graph returns the graph the value belongs to.
func (v Value) Graph() *Graph {
	return v.g
}

// ID returns the node's ID within its graph.
func (v Value) ID() NodeID {
	return v.id
}

// Data returns the node's forward value.
func (v Value) Data() float64 {
	return v.node().data
}

// SetData overwrites the data of a leaf. Nodes derived from the leaf are not
// recomputed. Non-leaf nodes return ErrNotLeaf.
func (v Value) SetData(data float64) error {
	n := v.node()
	if n.kind != KindLeaf {
		return ErrNotLeaf
	}
	n.data = data
	return nil
}

// Kind returns the operation that produced the node.
func (v Value) Kind() Kind {
	return v.node().kind
}

// Exponent returns the exponent of a KindPow node, and 0 for other kinds.
func (v Value) Exponent() float64 {
	return v.node().exp
}

// Predecessors returns the nodes this node was derived from, in operand order.
func (v Value) Predecessors() []Value {
	n := v.node()
	arity := n.kind.arity()
	out := make([]Value, arity)
	for i := 0; i < arity; i++ {
		out[i] = Value{g: v.g, id: n.preds[i]}
	}
	return out
}

func (v Value) node() *node {
	return &v.graph().nodes[v.id]
}

func (v Value) graph() *Graph {
	if v.g == nil {
		panic(ErrInvalidValue)
	}
	return v.g
}

// same panics unless other lives in the same graph as v.
func (v Value) same(other Value) {
	if v.g == nil || other.g == nil {
		panic(ErrInvalidValue)
	}
	if v.g != other.g {
		panic(ErrForeignValue)
	}
}

// Add returns a new Value representing v + other.
// Local gradients: ∂(a+b)/∂a = 1, ∂(a+b)/∂b = 1
func (v Value) Add(other Value) Value {
	v.same(other)
	return v.g.push(node{
		data:  v.Data() + other.Data(),
		kind:  KindAdd,
		preds: [2]NodeID{v.id, other.id},
	})
}

// Mul returns a new Value representing v * other.
// Local gradients: ∂(a*b)/∂a = b, ∂(a*b)/∂b = a
func (v Value) Mul(other Value) Value {
	v.same(other)
	return v.g.push(node{
		data:  v.Data() * other.Data(),
		kind:  KindMul,
		preds: [2]NodeID{v.id, other.id},
	})
}

// Pow returns a new Value representing v^exp.
// Local gradient: ∂(x^n)/∂x = n * x^(n-1)
//
// It returns a *DomainError when the base is negative and exp is not an
// integer, or when the base is zero and exp < 1 (the derivative is undefined).
func (v Value) Pow(exp float64) (Value, error) {
	base := v.Data()
	if base < 0 && exp != math.Trunc(exp) {
		return Value{}, &DomainError{Base: base, Exponent: exp}
	}
	if base == 0 && exp < 1 {
		return Value{}, &DomainError{Base: base, Exponent: exp}
	}

	data := math.Pow(base, exp)
	local := exp * math.Pow(base, exp-1)
	if (math.IsNaN(data) || math.IsNaN(local)) && !math.IsNaN(base) && !math.IsNaN(exp) {
		return Value{}, &DomainError{Base: base, Exponent: exp}
	}

	return v.g.push(node{
		data:  data,
		kind:  KindPow,
		preds: [2]NodeID{v.id},
		exp:   exp,
	}), nil
}

// MustPow is like Pow but panics on a domain error. Use it for exponents
// that are valid for any base, such as positive integers.
func (v Value) MustPow(exp float64) Value {
	out, err := v.Pow(exp)
	if err != nil {
		panic(err)
	}
	return out
}

// Tanh returns a new Value representing tanh(v).
// Local gradient: ∂tanh(x)/∂x = 1 - tanh(x)^2
func (v Value) Tanh() Value {
	return v.graph().push(node{
		data:  math.Tanh(v.Data()),
		kind:  KindTanh,
		preds: [2]NodeID{v.id},
	})
}

// AddScalar returns v + c, with c promoted to a fresh leaf.
func (v Value) AddScalar(c float64) Value {
	return v.Add(v.graph().Leaf(c))
}

// MulScalar returns v * c, with c promoted to a fresh leaf.
func (v Value) MulScalar(c float64) Value {
	return v.Mul(v.graph().Leaf(c))
}

// Neg returns a new Value representing -v.
// Implemented as v * (-1)
func (v Value) Neg() Value {
	return v.MulScalar(-1)
}

// Sub returns a new Value representing v - other.
// Implemented as v + (other * -1)
func (v Value) Sub(other Value) Value {
	return v.Add(other.Neg())
}

// Div returns a new Value representing v / other.
// Implemented as v * other^(-1), so a zero divisor is a domain error.
func (v Value) Div(other Value) (Value, error) {
	inv, err := other.Pow(-1)
	if err != nil {
		return Value{}, err
	}
	return v.Mul(inv), nil
}

// RSub returns c - v.
func (v Value) RSub(c float64) Value {
	return v.graph().Leaf(c).Add(v.Neg())
}

// String renders the expression that produced v.
func (v Value) String() string {
	n := v.node()
	switch n.kind {
	case KindLeaf:
		return strconv.FormatFloat(n.data, 'g', -1, 64)
	case KindAdd:
		l, r := v.Predecessors()[0], v.Predecessors()[1]
		return "(" + l.String() + ")+(" + r.String() + ")"
	case KindMul:
		l, r := v.Predecessors()[0], v.Predecessors()[1]
		return "(" + l.String() + ")*(" + r.String() + ")"
	case KindPow:
		return "(" + v.Predecessors()[0].String() + ")**" + strconv.FormatFloat(n.exp, 'g', -1, 64)
	case KindTanh:
		return "tanh(" + v.Predecessors()[0].String() + ")"
	default:
		return "?"
	}
}
