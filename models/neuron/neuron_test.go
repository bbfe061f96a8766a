package neuron_test

import (
	"math/rand"
	"testing"

	"github.com/gograd/gograd/graph"
	"github.com/gograd/gograd/ml/train"
	"github.com/gograd/gograd/models/neuron"
	"github.com/gograd/gograd/pkg/support/xslices"
	"github.com/stretchr/testify/require"
)

var (
	gateInputs  = [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	gateTargets = []float64{-1, 1, 1, 1}
)

func TestForward(t *testing.T) {
	g := graph.New(t.Name())
	n := neuron.NewWithWeights(g, []float64{1, -1}, 0.5)
	out := n.Forward([]float64{2, 1})
	require.NoError(t, g.Error())
	// tanh(1*2 + (-1)*1 + 0.5) = tanh(1.5)
	require.InDelta(t, 0.9051482536448664, out.Data(), 1e-12)
	require.Len(t, n.Parameters(), 3)

	require.Panics(t, func() { n.Forward([]float64{1}) })
}

func TestLossGradients(t *testing.T) {
	g := graph.New(t.Name())
	n := neuron.NewWithWeights(g, []float64{0.1, -0.2}, 0.05)
	loss := n.Loss(gateInputs, gateTargets)
	require.NoError(t, g.Error())
	require.InDelta(t, 4.249158684762418, loss.Data(), 1e-9)

	graph.Backward(loss)
	for _, p := range n.Parameters() {
		require.NotZerof(t, p.Grad(), "parameter %s received no gradient", p)
	}
}

// Training the neuron as an OR-style gate: with this fixed init, lr=0.5 and
// total squared error, the loss decreases strictly on every one of the 100
// epochs. The epoch-80 value works as a regression oracle for the whole
// trajectory.
func TestTraining(t *testing.T) {
	g := graph.New(t.Name())
	n := neuron.NewWithWeights(g, []float64{0.1, -0.2}, 0.05)
	sgd := train.NewSGD(n.Parameters(), 0.5)

	losses, err := train.NewLoop(t.Name(), 100).Run(func(epoch int) (float64, error) {
		sgd.ZeroGrad()
		loss := n.Loss(gateInputs, gateTargets)
		if err := g.Error(); err != nil {
			return 0, err
		}
		graph.Backward(loss)
		sgd.Step()
		return loss.Data(), nil
	})
	require.NoError(t, err)
	require.Len(t, losses, 100)

	for ii := 1; ii < len(losses); ii++ {
		require.Lessf(t, losses[ii], losses[ii-1], "loss must decrease at epoch %d", ii)
	}
	require.InDelta(t, 4.249158684762418, losses[0], 1e-9)
	require.InDelta(t, 0.01563539480009008, losses[80], 1e-6)
	require.Less(t, xslices.Last(losses), 0.02)

	// The trained neuron classifies all four samples to the right sign.
	for ii, sample := range gateInputs {
		pred := n.Forward(sample).Data()
		require.Equalf(t, gateTargets[ii] > 0, pred > 0, "sample %v misclassified: %g", sample, pred)
	}
}

func TestRandomInit(t *testing.T) {
	g := graph.New(t.Name())
	rng := rand.New(rand.NewSource(42))
	n := neuron.New(g, 3, rng)
	require.Len(t, n.Parameters(), 4)
	for _, p := range n.Parameters() {
		require.GreaterOrEqual(t, p.Data(), -1.0)
		require.Less(t, p.Data(), 1.0)
	}
}
