package optim

import "github.com/joelsearcy/micrograd-go/pkg/nn"

// SGD is plain gradient descent: p -= lr * g.
type SGD struct {
	LR float64
}

// NewSGD creates a gradient descent optimizer.
func NewSGD(lr float64) *SGD {
	return &SGD{LR: lr}
}

// Step applies one update.
func (opt *SGD) Step(params []*nn.Param, grads []float64) {
	checkLengths(params, grads)
	for i, p := range params {
		p.Data -= opt.LR * grads[i]
	}
}

// Reset is a no-op, SGD keeps no state.
func (opt *SGD) Reset() {}
