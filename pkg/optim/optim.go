// Package optim updates network parameters from their gradients.
package optim

import (
	"fmt"
	"strings"

	"github.com/joelsearcy/micrograd-go/pkg/nn"
)

// Optimizer mutates params in place given one gradient per parameter.
type Optimizer interface {
	Step(params []*nn.Param, grads []float64)
	Reset()
}

// Names of the built-in optimizers.
const (
	NameSGD  = "sgd"
	NameAdam = "adam"
)

// New builds an optimizer by name for numParams parameters.
func New(name string, lr float64, numParams int) (Optimizer, error) {
	switch strings.ToLower(name) {
	case NameSGD, "":
		return NewSGD(lr), nil
	case NameAdam:
		return NewAdam(numParams, lr, DefaultBeta1, DefaultBeta2, DefaultEpsilon), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
}

func checkLengths(params []*nn.Param, grads []float64) {
	if len(params) != len(grads) {
		panic(fmt.Sprintf("optim: %d params but %d gradients", len(params), len(grads)))
	}
}
