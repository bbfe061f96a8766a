// Package train provides gradient-based optimization over computation-graph
// parameters: the SGD optimizer and a Loop helper for running epochs.
package train

import (
	"github.com/gomlx/exceptions"
	"github.com/gograd/gograd/graph"
	"github.com/gograd/gograd/pkg/support/xslices"
)

// SGD implements stochastic gradient descent over leaf parameter nodes,
// optionally with momentum.
type SGD struct {
	params   []*graph.Node
	lr       float64
	momentum float64
	velocity map[*graph.Node]float64
}

// SGDConfig holds the options for NewSGDWithConfig.
type SGDConfig struct {
	LR       float64
	Momentum float64
}

// NewSGD creates an SGD optimizer updating the given parameter nodes with the
// given learning rate. All params must be leaves (see Graph.Parameter).
func NewSGD(params []*graph.Node, lr float64) *SGD {
	return NewSGDWithConfig(params, SGDConfig{LR: lr})
}

// NewSGDWithConfig creates an SGD optimizer with the full set of options.
func NewSGDWithConfig(params []*graph.Node, cfg SGDConfig) *SGD {
	for _, p := range params {
		p.AssertValid()
		if !p.IsLeaf() {
			exceptions.Panicf("SGD can only optimize leaf parameter nodes, got %s", p)
		}
	}
	return &SGD{
		params:   xslices.Copy(params),
		lr:       cfg.LR,
		momentum: cfg.Momentum,
		velocity: make(map[*graph.Node]float64),
	}
}

// Step applies one update to every parameter, using the gradients accumulated
// by the latest graph.Backward call: p <- p - lr * p.Grad (with the momentum
// term folded in, when configured).
func (o *SGD) Step() {
	for _, p := range o.params {
		update := o.lr * p.Grad()
		if o.momentum > 0 {
			update += o.momentum * o.velocity[p]
			o.velocity[p] = update
		}
		p.SetData(p.Data() - update)
	}
}

// ZeroGrad resets the gradient accumulator of every optimized parameter.
// Call it before each backward pass, unless accumulation across passes is
// intended.
func (o *SGD) ZeroGrad() {
	for _, p := range o.params {
		p.ResetGrad()
	}
}
