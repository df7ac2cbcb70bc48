package autograd

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

// neuron builds tanh(x1*w1 + x2*w2 + b) and returns its nodes by name.
func neuron(g *Graph) map[string]Value {
	x1 := g.Leaf(2.0)
	x2 := g.Leaf(0.0)
	w1 := g.Leaf(-3.0)
	w2 := g.Leaf(1.0)
	b := g.Leaf(6.8813735870195432)

	n := x1.Mul(w1).Add(x2.Mul(w2)).Add(b)
	o := n.Tanh()

	return map[string]Value{"x1": x1, "x2": x2, "w1": w1, "w2": w2, "b": b, "n": n, "o": o}
}

func TestNeuronForward(t *testing.T) {
	v := neuron(NewGraph())
	assert.InDelta(t, 0.7071067811865476, v["o"].Data(), 1e-12)
}

func TestNeuronBackward(t *testing.T) {
	v := neuron(NewGraph())

	grads := v["o"].Backward()

	assert.InDelta(t, 0.5, grads.Of(v["n"]), tolerance)
	assert.InDelta(t, 0.5, grads.Of(v["b"]), tolerance)
	assert.InDelta(t, 1.0, grads.Of(v["w1"]), tolerance)
	assert.InDelta(t, 0.0, grads.Of(v["w2"]), tolerance)
	assert.InDelta(t, -1.5, grads.Of(v["x1"]), tolerance)
	assert.InDelta(t, 0.5, grads.Of(v["x2"]), tolerance)
}

func TestSelfGradientIsOne(t *testing.T) {
	g := NewGraph()
	a := g.Leaf(3)
	outputs := []Value{
		a,
		a.MulScalar(7),
		a.MustPow(3).Tanh(),
		a.Add(a).Mul(a),
	}

	for _, out := range outputs {
		grads := out.Backward()
		assert.Equal(t, 1.0, grads.Of(out))
		assert.Equal(t, out, grads.Root())
	}
}

// TestSharedNodeAccumulates checks that a node used twice receives the sum of
// both contributions rather than the last one.
func TestSharedNodeAccumulates(t *testing.T) {
	g := NewGraph()
	a := g.Leaf(3.0)
	out := a.Add(a)

	grads := out.Backward()

	assert.Equal(t, 2.0*grads.Of(out), grads.Of(a))
}

// TestReusedVariable tests that a variable used multiple times accumulates gradients correctly.
func TestReusedVariable(t *testing.T) {
	// f = a * a = a^2
	g := NewGraph()
	a := g.Leaf(3.0)
	f := a.Mul(a)

	assert.Equal(t, 9.0, f.Data())
	// df/da = 2a = 6
	assert.InDelta(t, 6.0, f.Backward().Of(a), tolerance)
}

// TestSharedSubexpression reuses an intermediate node on two paths.
func TestSharedSubexpression(t *testing.T) {
	// f = (a + b) * (b + 1), b appears in both factors
	g := NewGraph()
	a := g.Leaf(2.0)
	b := g.Leaf(3.0)

	apb := a.Add(b)
	bp1 := b.AddScalar(1)
	f := apb.Mul(bp1)
	assert.Equal(t, 20.0, f.Data())

	grads := f.Backward()

	// df/da = b + 1 = 4
	assert.InDelta(t, 4.0, grads.Of(a), tolerance)
	// df/db = (b + 1) + (a + b) = 9
	assert.InDelta(t, 9.0, grads.Of(b), tolerance)

	// the shared intermediate feeds a diamond: h = apb*apb + apb
	h := apb.Mul(apb).Add(apb)
	gh := h.Backward()
	assert.InDelta(t, 2*5.0+1, gh.Of(apb), tolerance)
	assert.InDelta(t, 11.0, gh.Of(a), tolerance)
}

func TestGradientsCoverReachableSet(t *testing.T) {
	v := neuron(NewGraph())
	o := v["o"]

	grads := o.Backward()
	order := o.Order()

	require.Equal(t, len(order), grads.Len())
	for _, id := range order {
		_, ok := grads.Lookup(o.Graph().Node(id))
		assert.True(t, ok, "node %d missing from gradients", id)
	}
}

func TestGradientsFromAnotherGraph(t *testing.T) {
	a := NewGraph().Leaf(1)
	grads := a.Backward()

	other := NewGraph().Leaf(1)
	_, ok := grads.Lookup(other)
	assert.False(t, ok)
}

func TestOrderRespectsPredecessors(t *testing.T) {
	v := neuron(NewGraph())
	o := v["o"]
	g := o.Graph()

	order := o.Order()
	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	for _, id := range order {
		for _, p := range g.Node(id).Predecessors() {
			assert.Less(t, pos[p.ID()], pos[id])
		}
	}
	assert.Equal(t, o.ID(), order[len(order)-1])
	assert.Equal(t, order, o.Order(), "order must be reproducible")
}

func TestOrderSkipsUnrelatedNodes(t *testing.T) {
	g := NewGraph()
	a := g.Leaf(1)
	unrelated := g.Leaf(5).MulScalar(2)
	out := a.MulScalar(3)

	order := out.Order()
	assert.Len(t, order, 3)
	assert.NotContains(t, order, unrelated.ID())
}

func TestCorruptedGraphPanics(t *testing.T) {
	g := NewGraph()
	a := g.Leaf(1)
	b := a.Tanh()
	c := b.Tanh()

	// Point a unary node at its own dependent, which the public API cannot do.
	g.nodes[b.ID()].preds[0] = c.ID()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrInconsistent))
	}()
	c.Backward()
}

func TestUnknownKindPanics(t *testing.T) {
	g := NewGraph()
	a := g.Leaf(1)
	g.nodes[a.ID()].kind = Kind(99)

	assert.Panics(t, func() { a.Backward() })
}

// numericalGradient computes the numerical gradient of f at x using central difference.
func numericalGradient(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central, Step: 1e-5})
}

func TestFiniteDifferenceAgreement(t *testing.T) {
	tests := []struct {
		name   string
		inputs []float64
		build  func(g *Graph, x []Value) (Value, error)
	}{
		{
			name:   "square of affine",
			inputs: []float64{2, 3, 4},
			build: func(g *Graph, x []Value) (Value, error) {
				return x[0].Mul(x[1]).Add(x[2]).Pow(2)
			},
		},
		{
			name:   "tanh neuron",
			inputs: []float64{0.3, -1.2, 0.7, 0.1},
			build: func(g *Graph, x []Value) (Value, error) {
				return x[0].Mul(x[1]).Add(x[2].Mul(x[3])).Tanh(), nil
			},
		},
		{
			name:   "shared leaf and fractional power",
			inputs: []float64{1.5, 0.8},
			build: func(g *Graph, x []Value) (Value, error) {
				root, err := x[0].Mul(x[0]).Add(x[1]).Pow(0.5)
				if err != nil {
					return Value{}, err
				}
				return root.Sub(x[1].Tanh()).Mul(x[0]), nil
			},
		},
		{
			name:   "quotient",
			inputs: []float64{3, -2},
			build: func(g *Graph, x []Value) (Value, error) {
				return x[0].Tanh().Div(x[1].AddScalar(0.5))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			leaves := g.Leaves(tt.inputs...)
			out, err := tt.build(g, leaves)
			require.NoError(t, err)
			grads := out.Backward()

			for i := range tt.inputs {
				f := func(xi float64) float64 {
					in := append([]float64(nil), tt.inputs...)
					in[i] = xi
					g := NewGraph()
					o, err := tt.build(g, g.Leaves(in...))
					require.NoError(t, err)
					return o.Data()
				}
				numerical := numericalGradient(f, tt.inputs[i])
				assert.InDelta(t, numerical, grads.Of(leaves[i]), 1e-6,
					"leaf %d: analytical=%v numerical=%v", i, grads.Of(leaves[i]), numerical)
			}
		})
	}
}

func TestPowGradientAtOneExponentOnZeroBase(t *testing.T) {
	g := NewGraph()
	a := g.Leaf(0)
	b := a.MustPow(1)
	assert.Equal(t, 0.0, b.Data())
	assert.Equal(t, 1.0, b.Backward().Of(a))
	assert.False(t, math.IsNaN(b.Backward().Of(a)))
}
