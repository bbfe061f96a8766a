// Package graphtest holds test utilities for packages that build and
// differentiate computation graphs: it compares gradients computed by the
// backward engine against central-difference numerical estimates.
package graphtest

import (
	"math"
	"testing"

	"github.com/gograd/gograd/graph"
	"github.com/stretchr/testify/require"
)

// step used for central differences. With float64 this gives estimates good
// to well below the relative tolerance used by the checks.
const step = 1e-6

// relTolerance for comparing analytic and numerical gradients.
const relTolerance = 1e-6

// requireClose checks got against want within relTolerance, relative to the
// magnitude of want (absolute near zero).
func requireClose(t *testing.T, name string, want, got float64) {
	t.Helper()
	scale := math.Max(1, math.Abs(want))
	require.InDeltaf(t, want, got, relTolerance*scale, "%s: wanted gradient %g, backward returned %g", name, want, got)
}

// CheckUnaryOp verifies the gradient of a single-operand operation at each of
// the given operand values: it builds op over a fresh graph, runs Backward and
// compares the operand's gradient against a central-difference estimate of the
// op's own forward value.
func CheckUnaryOp(t *testing.T, name string, op func(x *graph.Node) *graph.Node, xs ...float64) {
	t.Helper()
	forward := func(x float64) float64 {
		g := graph.New(name)
		defer g.Finalize()
		out := op(g.Parameter("x", x))
		require.NoError(t, g.Error())
		return out.Data()
	}
	for _, x := range xs {
		g := graph.New(name)
		xNode := g.Parameter("x", x)
		out := op(xNode)
		require.NoError(t, g.Error())
		graph.Backward(out)

		want := (forward(x+step) - forward(x-step)) / (2 * step)
		requireClose(t, name, want, xNode.Grad())
		g.Finalize()
	}
}

// CheckBinaryOp verifies both partial derivatives of a two-operand operation
// at the operand values (a, b), against central-difference estimates.
func CheckBinaryOp(t *testing.T, name string, op func(a, b *graph.Node) *graph.Node, a, b float64) {
	t.Helper()
	forward := func(aV, bV float64) float64 {
		g := graph.New(name)
		defer g.Finalize()
		out := op(g.Parameter("a", aV), g.Parameter("b", bV))
		require.NoError(t, g.Error())
		return out.Data()
	}
	g := graph.New(name)
	aNode := g.Parameter("a", a)
	bNode := g.Parameter("b", b)
	out := op(aNode, bNode)
	require.NoError(t, g.Error())
	graph.Backward(out)

	wantA := (forward(a+step, b) - forward(a-step, b)) / (2 * step)
	requireClose(t, name+"/a", wantA, aNode.Grad())
	wantB := (forward(a, b+step) - forward(a, b-step)) / (2 * step)
	requireClose(t, name+"/b", wantB, bNode.Grad())
	g.Finalize()
}
