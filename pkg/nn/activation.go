package nn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joelsearcy/micrograd-go/pkg/autograd"
)

// Activation is applied to a neuron's weighted sum.
type Activation func(autograd.Value) autograd.Value

// Tanh is the hyperbolic tangent activation.
func Tanh(v autograd.Value) autograd.Value {
	return v.Tanh()
}

// Identity leaves the weighted sum unchanged.
func Identity(v autograd.Value) autograd.Value {
	return v
}

var activations = map[string]Activation{
	"tanh":     Tanh,
	"identity": Identity,
	"linear":   Identity,
}

// ActivationByName looks up a built-in activation.
func ActivationByName(name string) (Activation, error) {
	act, ok := activations[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown activation %q (known: %s)", name, strings.Join(ActivationNames(), ", "))
	}
	return act, nil
}

// ActivationNames lists the registered activation names, sorted.
func ActivationNames() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
