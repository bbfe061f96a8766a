package graph

import (
	"fmt"
	"math"

	"github.com/gomlx/exceptions"
)

// This file holds the forward-construction layer: the per-op NodeInputs
// variants and the public node constructors. Constructors never mutate their
// operands, they only allocate a new node in the owning Graph.

// validateBuildingGraphFromInputs returns the Graph shared by all inputs.
// It panics if any input is nil or if the inputs belong to different graphs.
func validateBuildingGraphFromInputs(inputs ...*Node) *Graph {
	if len(inputs) == 0 {
		exceptions.Panicf("no input nodes given")
	}
	var g *Graph
	for ii, input := range inputs {
		if input == nil {
			exceptions.Panicf("input node %d is nil", ii)
		}
		if g == nil {
			g = input.graph
		} else if input.graph != g {
			exceptions.Panicf("input node %d belongs to graph %q, but previous inputs belong to graph %q -- "+
				"nodes cannot be mixed across graphs", ii, input.graph.Name(), g.Name())
		}
	}
	return g
}

// newNode allocates a node in g's arena. If the graph is in error -- or the
// allocation pushes it into its exhaustion error -- it returns an invalid
// node instead, and no partial node is left reachable.
func newNode(g *Graph, data float64, inputs NodeInputs, inputNodes ...*Node) *Node {
	if !g.Ok() {
		return g.InvalidNode()
	}
	node := &Node{
		graph:      g,
		data:       data,
		inputNodes: inputNodes,
		inputs:     inputs,
	}
	node.id = g.registerNode(node)
	if node.id == InvalidNodeId {
		return g.InvalidNode()
	}
	return node
}

type nodeInputsConstant struct {
	value float64
}

func (ni *nodeInputsConstant) Type() NodeType { return NodeTypeNone }
func (ni *nodeInputsConstant) String() string { return fmt.Sprintf("Const(%g)", ni.value) }

// Const creates a leaf node with the given value. Use it for inputs and fixed
// values; for trainable values use Graph.Parameter instead.
func Const(g *Graph, value float64) *Node {
	return newNode(g, value, &nodeInputsConstant{value: value})
}

type nodeInputsParameter struct {
	name   string
	handle ParameterHandle
}

func (ni *nodeInputsParameter) Type() NodeType { return NodeTypeNone }
func (ni *nodeInputsParameter) String() string {
	return fmt.Sprintf("Parameter(%q)", ni.name)
}

// Parameter creates a leaf node with the given value and registers it as a
// named trainable parameter of the Graph, so it can be listed with
// Graph.Parameters and looked up with Graph.ParameterByName. If name is empty
// a name is generated from the parameter's handle.
//
// Parameters are leaves like Const nodes, but they are meant to be reused
// across forward/backward cycles: optimizers update them with Node.SetData
// and clear their gradients with Node.ResetGrad.
func (g *Graph) Parameter(name string, value float64) *Node {
	if !g.Ok() {
		return g.InvalidNode()
	}
	handle := ParameterHandle(len(g.parameters))
	if name == "" {
		name = fmt.Sprintf("parameter_#%d", handle)
	}
	if _, ok := g.parameterNameToHandle[name]; ok {
		exceptions.Panicf("requested parameter with name %q for graph %q already exists", name, g.name)
	}
	node := newNode(g, value, &nodeInputsParameter{name: name, handle: handle})
	if node.id == InvalidNodeId {
		return node
	}
	g.parameters = append(g.parameters, node)
	g.parameterNameToHandle[name] = handle
	return node
}

// GetParameterName returns the parameter name. It panics if the node is not
// a parameter.
func (n *Node) GetParameterName() string {
	n.AssertValid()
	params, ok := n.inputs.(*nodeInputsParameter)
	if !ok {
		exceptions.Panicf("trying to GetParameterName of non-parameter node %s", n)
	}
	return params.name
}

type nodeInputsAdd struct {
	x, y *Node
}

func (ni *nodeInputsAdd) Type() NodeType { return NodeTypeAdd }
func (ni *nodeInputsAdd) String() string { return fmt.Sprintf("Add(#%d, #%d)", ni.x.id, ni.y.id) }

// Add returns a new node computing x + y.
func Add(x, y *Node) *Node {
	g := validateBuildingGraphFromInputs(x, y)
	return newNode(g, x.data+y.data, &nodeInputsAdd{x: x, y: y}, x, y)
}

type nodeInputsSub struct {
	x, y *Node
}

func (ni *nodeInputsSub) Type() NodeType { return NodeTypeSub }
func (ni *nodeInputsSub) String() string { return fmt.Sprintf("Sub(#%d, #%d)", ni.x.id, ni.y.id) }

// Sub returns a new node computing x - y.
func Sub(x, y *Node) *Node {
	g := validateBuildingGraphFromInputs(x, y)
	return newNode(g, x.data-y.data, &nodeInputsSub{x: x, y: y}, x, y)
}

type nodeInputsMul struct {
	x, y *Node
}

func (ni *nodeInputsMul) Type() NodeType { return NodeTypeMul }
func (ni *nodeInputsMul) String() string { return fmt.Sprintf("Mul(#%d, #%d)", ni.x.id, ni.y.id) }

// Mul returns a new node computing x * y.
func Mul(x, y *Node) *Node {
	g := validateBuildingGraphFromInputs(x, y)
	return newNode(g, x.data*y.data, &nodeInputsMul{x: x, y: y}, x, y)
}

type nodeInputsDiv struct {
	x, y *Node
}

func (ni *nodeInputsDiv) Type() NodeType { return NodeTypeDiv }
func (ni *nodeInputsDiv) String() string { return fmt.Sprintf("Div(#%d, #%d)", ni.x.id, ni.y.id) }

// Div returns a new node computing x / y. The divisor is not checked: a zero
// divisor yields ±Inf or NaN, which propagates through later values and
// gradients.
func Div(x, y *Node) *Node {
	g := validateBuildingGraphFromInputs(x, y)
	return newNode(g, x.data/y.data, &nodeInputsDiv{x: x, y: y}, x, y)
}

type nodeInputsPow struct {
	x        *Node
	exponent float64
}

func (ni *nodeInputsPow) Type() NodeType { return NodeTypePow }
func (ni *nodeInputsPow) String() string {
	return fmt.Sprintf("Pow(#%d, exponent=%g)", ni.x.id, ni.exponent)
}

// PowScalar returns a new node computing x^exponent, for a fixed exponent
// supplied at call time. The exponent is a static constant of the operation:
// it is not a node and is not differentiated. A negative base with a
// fractional exponent yields NaN.
func PowScalar(x *Node, exponent float64) *Node {
	g := validateBuildingGraphFromInputs(x)
	return newNode(g, math.Pow(x.data, exponent), &nodeInputsPow{x: x, exponent: exponent}, x)
}

type nodeInputsNeg struct {
	x *Node
}

func (ni *nodeInputsNeg) Type() NodeType { return NodeTypeNeg }
func (ni *nodeInputsNeg) String() string { return fmt.Sprintf("Neg(#%d)", ni.x.id) }

// Neg returns a new node computing -x.
func Neg(x *Node) *Node {
	g := validateBuildingGraphFromInputs(x)
	return newNode(g, -x.data, &nodeInputsNeg{x: x}, x)
}

type nodeInputsExp struct {
	x *Node
}

func (ni *nodeInputsExp) Type() NodeType { return NodeTypeExp }
func (ni *nodeInputsExp) String() string { return fmt.Sprintf("Exp(#%d)", ni.x.id) }

// Exp returns a new node computing e^x.
func Exp(x *Node) *Node {
	g := validateBuildingGraphFromInputs(x)
	return newNode(g, math.Exp(x.data), &nodeInputsExp{x: x}, x)
}

type nodeInputsLog struct {
	x *Node
}

func (ni *nodeInputsLog) Type() NodeType { return NodeTypeLog }
func (ni *nodeInputsLog) String() string { return fmt.Sprintf("Log(#%d)", ni.x.id) }

// Log returns a new node computing the natural logarithm of x. The argument
// is not checked: a non-positive x yields -Inf or NaN.
func Log(x *Node) *Node {
	g := validateBuildingGraphFromInputs(x)
	return newNode(g, math.Log(x.data), &nodeInputsLog{x: x}, x)
}

type nodeInputsTanh struct {
	x *Node
}

func (ni *nodeInputsTanh) Type() NodeType { return NodeTypeTanh }
func (ni *nodeInputsTanh) String() string { return fmt.Sprintf("Tanh(#%d)", ni.x.id) }

// Tanh returns a new node computing the hyperbolic tangent of x.
func Tanh(x *Node) *Node {
	g := validateBuildingGraphFromInputs(x)
	return newNode(g, math.Tanh(x.data), &nodeInputsTanh{x: x}, x)
}

type nodeInputsRelu struct {
	x *Node
}

func (ni *nodeInputsRelu) Type() NodeType { return NodeTypeRelu }
func (ni *nodeInputsRelu) String() string { return fmt.Sprintf("Relu(#%d)", ni.x.id) }

// Relu returns a new node computing max(0, x).
func Relu(x *Node) *Node {
	g := validateBuildingGraphFromInputs(x)
	return newNode(g, math.Max(0, x.data), &nodeInputsRelu{x: x}, x)
}
