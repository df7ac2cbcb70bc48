package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joelsearcy/micrograd-go/pkg/autograd"
)

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print the forward value and gradients of a single tanh neuron",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := autograd.NewGraph()
		x1, x2 := g.Leaf(2.0), g.Leaf(0.0)
		w1, w2 := g.Leaf(-3.0), g.Leaf(1.0)
		b := g.Leaf(6.8813735870195432)

		n := x1.Mul(w1).Add(x2.Mul(w2)).Add(b)
		o := n.Tanh()
		grads := o.Backward()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "o = %s\n", o)
		fmt.Fprintf(out, "o.data = %v\n", o.Data())
		for _, v := range []struct {
			name  string
			value autograd.Value
		}{
			{"o", o}, {"n", n}, {"b", b}, {"w1", w1}, {"w2", w2}, {"x1", x1}, {"x2", x2},
		} {
			fmt.Fprintf(out, "grad[%s] = %.6f\n", v.name, grads.Of(v.value))
		}
		return nil
	},
}
