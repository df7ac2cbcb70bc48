package nn

import "github.com/joelsearcy/micrograd-go/pkg/autograd"

// Param is a trainable scalar. It outlives the graphs built from it: every
// forward pass promotes its current value to a fresh leaf through a Binding.
type Param struct {
	Data float64
}

// Binding maps parameters to the leaves that represent them in one graph.
type Binding struct {
	g      *autograd.Graph
	leaves map[*Param]autograd.Value
}

// NewBinding creates an empty binding on g.
func NewBinding(g *autograd.Graph) *Binding {
	return &Binding{
		g:      g,
		leaves: make(map[*Param]autograd.Value),
	}
}

// Graph returns the graph the binding creates leaves in.
func (b *Binding) Graph() *autograd.Graph {
	return b.g
}

// Leaf returns the leaf for p, creating it from p.Data on first use. Using a
// parameter several times in one graph yields the same node, so its
// gradients accumulate.
func (b *Binding) Leaf(p *Param) autograd.Value {
	if v, ok := b.leaves[p]; ok {
		return v
	}
	v := b.g.Leaf(p.Data)
	b.leaves[p] = v
	return v
}

// Grad returns the gradient of grads' output with respect to p, or 0 when p
// was never used in this graph.
func (b *Binding) Grad(grads autograd.Gradients, p *Param) float64 {
	v, ok := b.leaves[p]
	if !ok {
		return 0
	}
	return grads.Of(v)
}

// Grads returns the gradient for each of params, in order.
func (b *Binding) Grads(grads autograd.Gradients, params []*Param) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = b.Grad(grads, p)
	}
	return out
}
