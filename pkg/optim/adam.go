package optim

import (
	"math"

	"github.com/joelsearcy/micrograd-go/pkg/nn"
)

// AdamOptimizer implements the Adam optimization algorithm
type AdamOptimizer struct {
	LR      float64 // base learning rate
	Beta1   float64 // exponential decay rate for first moment
	Beta2   float64 // exponential decay rate for second moment
	Epsilon float64 // small constant for numerical stability

	m []float64 // first moment estimates
	v []float64 // second moment estimates
	t int       // timestep counter
}

// Default Adam hyperparameters
const (
	DefaultBeta1   = 0.85
	DefaultBeta2   = 0.99
	DefaultEpsilon = 1e-8
)

// NewAdam creates a new Adam optimizer for numParams parameters
func NewAdam(numParams int, lr, beta1, beta2, eps float64) *AdamOptimizer {
	return &AdamOptimizer{
		LR:      lr,
		Beta1:   beta1,
		Beta2:   beta2,
		Epsilon: eps,
		m:       make([]float64, numParams),
		v:       make([]float64, numParams),
		t:       0,
	}
}

// Step performs one optimization step with the base learning rate
func (opt *AdamOptimizer) Step(params []*nn.Param, grads []float64) {
	opt.StepDecay(params, grads, 1)
}

// StepDecay performs one optimization step
// lrDecay is multiplied with base LR (for learning rate scheduling)
func (opt *AdamOptimizer) StepDecay(params []*nn.Param, grads []float64, lrDecay float64) {
	checkLengths(params, grads)
	if len(opt.m) < len(params) {
		opt.m = append(opt.m, make([]float64, len(params)-len(opt.m))...)
		opt.v = append(opt.v, make([]float64, len(params)-len(opt.v))...)
	}

	// 1. Increment timestep t
	opt.t++

	// 2. Compute bias correction terms: bc1 = 1 - beta1^t, bc2 = 1 - beta2^t
	bc1 := 1 - math.Pow(opt.Beta1, float64(opt.t))
	bc2 := 1 - math.Pow(opt.Beta2, float64(opt.t))

	// 3. For each parameter p with gradient g:
	for i, p := range params {
		g := grads[i]

		// m[i] = beta1 * m[i] + (1 - beta1) * g
		opt.m[i] = opt.Beta1*opt.m[i] + (1-opt.Beta1)*g

		// v[i] = beta2 * v[i] + (1 - beta2) * g * g
		opt.v[i] = opt.Beta2*opt.v[i] + (1-opt.Beta2)*g*g

		mHat := opt.m[i] / bc1
		vHat := opt.v[i] / bc2

		p.Data -= opt.LR * lrDecay * mHat / (math.Sqrt(vHat) + opt.Epsilon)
	}
}

// Reset resets the optimizer state for a new training run
func (opt *AdamOptimizer) Reset() {
	for i := range opt.m {
		opt.m[i] = 0
	}
	for i := range opt.v {
		opt.v[i] = 0
	}
	opt.t = 0
}
