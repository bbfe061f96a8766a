package graph_test

import (
	"testing"

	. "github.com/gograd/gograd/graph"
	"github.com/stretchr/testify/require"
)

func TestAllocationExhaustion(t *testing.T) {
	g := New(t.Name())
	g.SetMaxNodes(3)
	x := Const(g, 1)
	y := Const(g, 2)
	sum := Add(x, y)
	require.NoError(t, g.Error())
	require.Equal(t, 3, g.NumNodes())

	// The limit is reached: the constructor fails, no partial node is left
	// reachable, and the error sticks to the graph.
	bad := Mul(sum, x)
	require.Error(t, g.Error())
	require.Contains(t, g.Error().Error(), "exhausted")
	require.Equal(t, NodeTypeInvalid, bad.Type())
	require.Equal(t, InvalidNodeId, bad.Id())
	require.Equal(t, 3, g.NumNodes())

	// After the error, everything is a no-op.
	require.Equal(t, NodeTypeInvalid, Add(sum, sum).Type())
	Backward(sum)
	require.Equal(t, 0.0, x.Grad())
	require.False(t, g.Ok())
}

func TestFinalizeReleasesNodes(t *testing.T) {
	g := New(t.Name())
	x := g.Parameter("x", 1)
	_ = Add(x, Const(g, 2))
	require.Equal(t, 3, g.NumNodes())

	g.Finalize()
	require.Equal(t, 0, g.NumNodes())
	require.Error(t, g.Error())
	require.Equal(t, NodeTypeInvalid, Const(g, 1).Type())
}

func TestParameterRegistry(t *testing.T) {
	g := New(t.Name())
	w := g.Parameter("w", 0.5)
	b := g.Parameter("", -0.5) // name generated from the handle
	_ = Const(g, 3)            // constants are not parameters

	require.Equal(t, 2, g.NumParameters())
	require.Equal(t, []*Node{w, b}, g.Parameters())
	require.Equal(t, w, g.ParameterByName("w"))
	require.Equal(t, b, g.ParameterByName("parameter_#1"))
	require.Nil(t, g.ParameterByName("missing"))
	require.Equal(t, w, g.ParameterByIndex(0))

	require.Panics(t, func() { g.Parameter("w", 1) })
}

func TestSetDataLeavesOnly(t *testing.T) {
	g := New(t.Name())
	x := g.Parameter("x", 1)
	c := Const(g, 2)
	sum := Add(x, c)

	x.SetData(10)
	require.Equal(t, 10.0, x.Data())
	c.SetData(20)
	require.Equal(t, 20.0, c.Data())
	// Interior node values are fixed at construction; note sum keeps the value
	// computed from the original operands.
	require.Equal(t, 3.0, sum.Data())
	require.Panics(t, func() { sum.SetData(0) })
}

func TestGraphString(t *testing.T) {
	g := New("strings")
	x := g.Parameter("x", 2)
	_ = Add(x, Const(g, 1))
	str := g.String()
	require.Contains(t, str, "3 nodes, 1 parameters")
	require.Contains(t, str, `Parameter("x")`)
	require.Contains(t, str, "Add(#0, #1)")
}

func TestNilGraphError(t *testing.T) {
	var g *Graph
	require.Error(t, g.Error())
	require.False(t, g.Ok())
}
