package graph

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// NodeType identifies the operation that produced a node. Leaves (constants
// and parameters) carry NodeTypeNone.
type NodeType int

const (
	// NodeTypeInvalid marks a node that failed to be created.
	NodeTypeInvalid NodeType = iota

	// NodeTypeNone is the tag of leaf nodes: inputs, constants and parameters.
	NodeTypeNone

	NodeTypeAdd
	NodeTypeSub
	NodeTypeMul
	NodeTypeDiv
	NodeTypePow
	NodeTypeNeg
	NodeTypeExp
	NodeTypeLog
	NodeTypeTanh
	NodeTypeRelu
)

// String implements fmt.Stringer.
func (t NodeType) String() string {
	switch t {
	case NodeTypeNone:
		return "None"
	case NodeTypeAdd:
		return "Add"
	case NodeTypeSub:
		return "Sub"
	case NodeTypeMul:
		return "Mul"
	case NodeTypeDiv:
		return "Div"
	case NodeTypePow:
		return "Pow"
	case NodeTypeNeg:
		return "Neg"
	case NodeTypeExp:
		return "Exp"
	case NodeTypeLog:
		return "Log"
	case NodeTypeTanh:
		return "Tanh"
	case NodeTypeRelu:
		return "Relu"
	default:
		return "Invalid"
	}
}

// NodeInputs describes how a node was produced: one concrete implementation
// per operation, holding references to the operand node(s) and any static
// parameter of the operation (like the exponent for PowScalar). Arity is
// encoded by the concrete type, so a unary op cannot carry two operands.
type NodeInputs interface {
	Type() NodeType

	// String prints a descriptive representation of the node, using its parameters.
	String() string
}

// Node is the scalar unit of the computation graph: the result of an
// operation, or a leaf (constant or parameter). It is created by the node
// constructors (Const, Graph.Parameter, Add, Mul, ...) and owned by its Graph.
type Node struct {
	graph *Graph
	id    NodeId

	// data is the forward value: fixed at construction time. Only leaves can
	// be overwritten later, with SetData.
	data float64

	// grad accumulates derivative contributions during Backward.
	grad float64

	// inputNodes are the edges of the computation graph: the operands this
	// node was built from, in operand order.
	inputNodes []*Node

	inputs NodeInputs
}

// Type identifies the operation performed by the node.
func (n *Node) Type() NodeType {
	if n == nil || n.inputs == nil {
		return NodeTypeInvalid
	}
	return n.inputs.Type()
}

// Graph that holds this Node.
func (n *Node) Graph() *Graph {
	if n == nil {
		return nil
	}
	return n.graph
}

// Id is the unique id of this node within its Graph.
func (n *Node) Id() NodeId {
	return n.id
}

// Data returns the node's forward value.
func (n *Node) Data() float64 {
	return n.data
}

// Grad returns the accumulated gradient of the node: after Backward(root) it
// holds d(root)/d(n), summed over every path from the root to this node.
func (n *Node) Grad() float64 {
	return n.grad
}

// ResetGrad sets the node's gradient accumulator back to zero, so the node
// can be reused across successive forward/backward cycles.
// See also Graph.ZeroGrad.
func (n *Node) ResetGrad() {
	n.grad = 0
}

// SetData overwrites the forward value of a leaf node. It is how optimizers
// update parameters in between backward passes. It panics for non-leaf nodes:
// interior values are fixed at construction.
func (n *Node) SetData(value float64) {
	n.AssertValid()
	if n.Type() != NodeTypeNone {
		exceptions.Panicf("SetData called on %s node #%d: only leaf nodes can be overwritten", n.Type(), n.id)
	}
	n.data = value
}

// Inputs are the nodes that are direct operands of this node, in operand
// order. Leaves return an empty slice.
func (n *Node) Inputs() []*Node { return n.inputNodes }

// IsLeaf returns whether the node is a leaf (constant or parameter): it has
// no operands and never propagates gradients further.
func (n *Node) IsLeaf() bool {
	return n.Type() == NodeTypeNone
}

// AssertValid panics if n is nil or if it failed to be created.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.inputs == nil || n.id == InvalidNodeId {
		exceptions.Panicf("Node is in an invalid state: graph %q building failed? (%v)", n.graph.Name(), n.graph.Error())
	}
}

// String implements the fmt.Stringer interface.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	if n.inputs == nil || n.id == InvalidNodeId {
		return "Node(invalid)"
	}
	return fmt.Sprintf("%s -> %g", n.inputs, n.data)
}
