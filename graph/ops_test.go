package graph_test

import (
	"math"
	"testing"

	. "github.com/gograd/gograd/graph"
	"github.com/gograd/gograd/graph/graphtest"
	"github.com/stretchr/testify/require"
)

func TestForwardValues(t *testing.T) {
	g := New(t.Name())
	x := Const(g, 2)
	y := Const(g, -3)

	require.Equal(t, 2.0, x.Data())
	require.Equal(t, -1.0, Add(x, y).Data())
	require.Equal(t, 5.0, Sub(x, y).Data())
	require.Equal(t, -6.0, Mul(x, y).Data())
	require.Equal(t, 2.0/-3.0, Div(x, y).Data())
	require.Equal(t, 8.0, PowScalar(x, 3).Data())
	require.Equal(t, -2.0, Neg(x).Data())
	require.Equal(t, math.Exp(2), Exp(x).Data())
	require.Equal(t, math.Log(2), Log(x).Data())
	require.Equal(t, math.Tanh(2), Tanh(x).Data())
	require.Equal(t, 2.0, Relu(x).Data())
	require.Equal(t, 0.0, Relu(y).Data())
	require.NoError(t, g.Error())
}

func TestForwardDoesNotMutateOperands(t *testing.T) {
	g := New(t.Name())
	x := Const(g, 1.5)
	y := Const(g, 2.5)
	_ = Mul(Add(x, y), Sub(x, y))
	require.Equal(t, 1.5, x.Data())
	require.Equal(t, 2.5, y.Data())
	require.Equal(t, 0.0, x.Grad())
	require.Equal(t, 0.0, y.Grad())
}

// Domain violations are not guarded: they surface as IEEE-754 specials.
func TestUncheckedDomains(t *testing.T) {
	g := New(t.Name())
	require.True(t, math.IsInf(Div(Const(g, 1), Const(g, 0)).Data(), 1))
	require.True(t, math.IsInf(Log(Const(g, 0)).Data(), -1))
	require.True(t, math.IsNaN(Log(Const(g, -1)).Data()))
	require.True(t, math.IsNaN(PowScalar(Const(g, -2), 0.5).Data()))
	require.NoError(t, g.Error())
}

func TestGradientAdd(t *testing.T) {
	graphtest.CheckBinaryOp(t, "Add", Add, 1.3, -2.7)
}

func TestGradientSub(t *testing.T) {
	graphtest.CheckBinaryOp(t, "Sub", Sub, 0.4, 11.0)
}

func TestGradientMul(t *testing.T) {
	graphtest.CheckBinaryOp(t, "Mul", Mul, -1.5, 3.25)
}

func TestGradientDiv(t *testing.T) {
	graphtest.CheckBinaryOp(t, "Div", Div, 5.0, -0.75)
}

func TestGradientPowScalar(t *testing.T) {
	graphtest.CheckUnaryOp(t, "PowScalar(x, 2)", func(x *Node) *Node {
		return PowScalar(x, 2)
	}, 2.0, -3.0, 0.5)
	graphtest.CheckUnaryOp(t, "PowScalar(x, -1.5)", func(x *Node) *Node {
		return PowScalar(x, -1.5)
	}, 0.8, 4.0)
}

func TestGradientNeg(t *testing.T) {
	graphtest.CheckUnaryOp(t, "Neg", Neg, 1.0, -2.5)
}

func TestGradientExp(t *testing.T) {
	graphtest.CheckUnaryOp(t, "Exp", Exp, 0.0, 1.0, -2.0)
}

func TestGradientLog(t *testing.T) {
	graphtest.CheckUnaryOp(t, "Log", Log, 0.5, 1.0, 7.0)
}

func TestGradientTanh(t *testing.T) {
	graphtest.CheckUnaryOp(t, "Tanh", Tanh, -1.0, 0.0, 0.25, 2.0)
}

func TestGradientRelu(t *testing.T) {
	graphtest.CheckUnaryOp(t, "Relu", Relu, -2.0, 0.5, 3.0)

	// At exactly zero the subgradient is defined as 0.
	g := New(t.Name())
	x := g.Parameter("x", 0)
	out := Relu(x)
	Backward(out)
	require.Equal(t, 0.0, x.Grad())
}

func TestMixingGraphsPanics(t *testing.T) {
	g1 := New("g1")
	g2 := New("g2")
	x := Const(g1, 1)
	y := Const(g2, 2)
	require.Panics(t, func() { Add(x, y) })
}
