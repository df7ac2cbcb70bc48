// Package nn composes autograd values into neurons, layers and multi-layer
// perceptrons.
package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/joelsearcy/micrograd-go/pkg/autograd"
)

// Neuron computes act(b + Σ w_i * x_i).
type Neuron struct {
	W   []*Param // weights
	B   *Param   // bias
	Act Activation
}

// NewNeuron creates a neuron with nin weights and a bias, all drawn
// uniformly from [-1, 1).
func NewNeuron(nin int, act Activation, rng *rand.Rand) *Neuron {
	w := make([]*Param, nin)
	for i := range w {
		w[i] = &Param{Data: uniform(rng)}
	}
	return &Neuron{
		W:   w,
		B:   &Param{Data: uniform(rng)},
		Act: act,
	}
}

func uniform(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}

// Forward evaluates the neuron on x within b's graph.
func (n *Neuron) Forward(b *Binding, x []autograd.Value) autograd.Value {
	if len(x) != len(n.W) {
		panic(fmt.Sprintf("Neuron.Forward: got %d inputs, want %d", len(x), len(n.W)))
	}

	act := b.Leaf(n.B)
	for i, w := range n.W {
		act = act.Add(b.Leaf(w).Mul(x[i]))
	}
	if n.Act == nil {
		return act
	}
	return n.Act(act)
}

// Params returns the weights followed by the bias.
func (n *Neuron) Params() []*Param {
	params := make([]*Param, 0, len(n.W)+1)
	params = append(params, n.W...)
	return append(params, n.B)
}

// Layer is a group of neurons reading the same input.
type Layer struct {
	Neurons []*Neuron
}

// NewLayer creates nout neurons with nin inputs each.
func NewLayer(nin, nout int, act Activation, rng *rand.Rand) *Layer {
	neurons := make([]*Neuron, nout)
	for i := range neurons {
		neurons[i] = NewNeuron(nin, act, rng)
	}
	return &Layer{Neurons: neurons}
}

// Forward returns one output per neuron.
func (l *Layer) Forward(b *Binding, x []autograd.Value) []autograd.Value {
	out := make([]autograd.Value, len(l.Neurons))
	for i, n := range l.Neurons {
		out[i] = n.Forward(b, x)
	}
	return out
}

// Params returns the parameters of every neuron, in neuron order.
func (l *Layer) Params() []*Param {
	var params []*Param
	for _, n := range l.Neurons {
		params = append(params, n.Params()...)
	}
	return params
}

// MLP is a feed-forward stack of layers.
type MLP struct {
	Layers []*Layer

	allParams []*Param // cached flat list
}

// NewMLP creates layers between consecutive sizes of [nin] + nouts.
// e.g. NewMLP(3, []int{4, 4, 1}, ...) has two hidden layers of 4 neurons and
// a single output.
func NewMLP(nin int, nouts []int, act Activation, rng *rand.Rand) *MLP {
	sizes := append([]int{nin}, nouts...)

	m := &MLP{Layers: make([]*Layer, len(nouts))}
	for i := range nouts {
		m.Layers[i] = NewLayer(sizes[i], sizes[i+1], act, rng)
	}

	// Cache all parameters
	m.cacheAllParams()

	return m
}

// cacheAllParams builds the flat list of all parameters
func (m *MLP) cacheAllParams() {
	var params []*Param
	for _, l := range m.Layers {
		params = append(params, l.Params()...)
	}
	m.allParams = params
}

// Params returns the flattened list of all parameters (cached).
func (m *MLP) Params() []*Param {
	return m.allParams
}

// Inputs returns the number of inputs the first layer expects.
func (m *MLP) Inputs() int {
	if len(m.Layers) == 0 || len(m.Layers[0].Neurons) == 0 {
		return 0
	}
	return len(m.Layers[0].Neurons[0].W)
}

// Forward feeds x through every layer.
func (m *MLP) Forward(b *Binding, x []autograd.Value) []autograd.Value {
	for _, l := range m.Layers {
		x = l.Forward(b, x)
	}
	return x
}

// ForwardFloats promotes raw inputs to leaves of b's graph and runs Forward.
func (m *MLP) ForwardFloats(b *Binding, x []float64) []autograd.Value {
	return m.Forward(b, b.Graph().Leaves(x...))
}

// Predict evaluates the network on x in a throwaway graph.
func (m *MLP) Predict(x []float64) []float64 {
	out := m.ForwardFloats(NewBinding(autograd.NewGraph()), x)
	preds := make([]float64, len(out))
	for i, v := range out {
		preds[i] = v.Data()
	}
	return preds
}
