// Package neuron implements a single tanh-activated neuron on top of the
// computation graph: the weights and bias are parameter leaves, and each
// forward pass builds fresh graph nodes so gradients flow back to the
// parameters with graph.Backward.
package neuron

import (
	"fmt"
	"math/rand"

	"github.com/gomlx/exceptions"
	"github.com/gograd/gograd/graph"
)

// Neuron holds the trainable parameters of one tanh neuron:
// output = tanh(sum(w_i * x_i) + b).
type Neuron struct {
	weights []*graph.Node
	bias    *graph.Node
}

// New creates a neuron with numInputs inputs, weights and bias initialized
// uniformly in [-1, 1) from rng.
func New(g *graph.Graph, numInputs int, rng *rand.Rand) *Neuron {
	weights := make([]float64, numInputs)
	for ii := range weights {
		weights[ii] = 2*rng.Float64() - 1
	}
	return NewWithWeights(g, weights, 2*rng.Float64()-1)
}

// NewWithWeights creates a neuron with the given initial weights and bias.
func NewWithWeights(g *graph.Graph, weights []float64, bias float64) *Neuron {
	n := &Neuron{
		weights: make([]*graph.Node, len(weights)),
		bias:    g.Parameter("b", bias),
	}
	for ii, w := range weights {
		n.weights[ii] = g.Parameter(fmt.Sprintf("w%d", ii), w)
	}
	return n
}

// Parameters returns the trainable leaves of the neuron, for an optimizer.
func (n *Neuron) Parameters() []*graph.Node {
	return append(append([]*graph.Node{}, n.weights...), n.bias)
}

// Forward builds the graph nodes computing tanh(w . inputs + b) and returns
// the activation node.
func (n *Neuron) Forward(inputs []float64) *graph.Node {
	if len(inputs) != len(n.weights) {
		exceptions.Panicf("neuron takes %d inputs, got %d", len(n.weights), len(inputs))
	}
	g := n.bias.Graph()
	activation := n.bias
	for ii, input := range inputs {
		activation = graph.Add(activation, graph.Mul(n.weights[ii], graph.Const(g, input)))
	}
	return graph.Tanh(activation)
}

// Loss builds the total squared error of the neuron over the dataset:
// sum over samples of (Forward(inputs) - target)^2.
func (n *Neuron) Loss(inputs [][]float64, targets []float64) *graph.Node {
	if len(inputs) != len(targets) {
		exceptions.Panicf("got %d input samples for %d targets", len(inputs), len(targets))
	}
	g := n.bias.Graph()
	var loss *graph.Node
	for ii, sample := range inputs {
		diff := graph.Sub(n.Forward(sample), graph.Const(g, targets[ii]))
		squared := graph.PowScalar(diff, 2)
		if loss == nil {
			loss = squared
		} else {
			loss = graph.Add(loss, squared)
		}
	}
	return loss
}
