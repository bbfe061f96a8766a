package graph

// This file implements reverse-mode automatic differentiation over the scalar
// computation graph.
//
// Conventions:
//
//   - root node: the final scalar output of the graph (typically a loss). The
//     objective is the gradient of this value with respect to every node it
//     depends on -- in particular the leaf parameters.
//   - v / adjoint: the accumulated reverse gradient of the root with respect
//     to the node currently being processed. The adjoint of a node is final
//     only once every one of its consumers has contributed, which the
//     topological ordering guarantees.
//
// Unlike frameworks that emit new graph nodes for the gradients, the engine
// here propagates plain float64 adjoints directly into Node.grad: gradients
// are read out of the same nodes used to build the computation.

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gograd/gograd/pkg/support/sets"
)

// Backward computes the gradient of root with respect to every node it
// (transitively) depends on.
//
// It seeds root's gradient with 1 -- overwriting any previous value, the one
// exception to additive accumulation -- and then propagates adjoints in
// reverse topological order, so each node's gradient is complete before it
// contributes to its operands. After it returns, Node.Grad of each reachable
// node holds d(root)/d(node).
//
// Gradients accumulate: a node consumed through several paths receives the
// sum of all path contributions, and repeated Backward calls over rebuilt
// computations keep adding into leaves that were not reset. Use Node.ResetGrad
// or Graph.ZeroGrad in between cycles when accumulation is not wanted.
//
// If root's Graph is in error (see Graph.Error), Backward is a no-op.
func Backward(root *Node) {
	if !root.Graph().Ok() {
		return
	}
	root.AssertValid()
	order := topologicalOrder(root)
	root.grad = 1
	for ii := len(order) - 1; ii >= 0; ii-- {
		node := order[ii]
		vjpFn, found := vjpRegistration[node.Type()]
		if !found {
			exceptions.Panicf("node %s has no gradient rule registered, cannot back-propagate", node)
		}
		vjpFn(node, node.grad)
	}
}

// topologicalOrder returns the nodes reachable from root, each exactly once,
// with every node strictly after all of its operands. Reversing it gives the
// propagation order for Backward.
//
// It is a depth-first post-order traversal with an identity-keyed visited
// set. The traversal keeps an explicit stack, so graph depth is not bounded
// by the call stack.
func topologicalOrder(root *Node) []*Node {
	type frame struct {
		node      *Node
		nextInput int
	}
	visited := sets.MakeWith(root)
	var order []*Node
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.nextInput < len(top.node.inputNodes) {
			input := top.node.inputNodes[top.nextInput]
			top.nextInput++
			if !visited.Has(input) {
				visited.Insert(input)
				stack = append(stack, frame{node: input})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order
}

// vjp adds the local-derivative contributions of node into the gradient
// accumulators of its operands, given v, the node's own (final) adjoint.
type vjp func(node *Node, v float64)

// vjpRegistration maps each node type to its gradient rule. The set is
// closed: every NodeType a constructor can produce must have an entry, and
// Backward panics on a missing one.
var vjpRegistration = map[NodeType]vjp{
	NodeTypeNone: leafVJP,
	NodeTypeAdd:  addVJP,
	NodeTypeSub:  subVJP,
	NodeTypeMul:  mulVJP,
	NodeTypeDiv:  divVJP,
	NodeTypePow:  powVJP,
	NodeTypeNeg:  negVJP,
	NodeTypeExp:  expVJP,
	NodeTypeLog:  logVJP,
	NodeTypeTanh: tanhVJP,
	NodeTypeRelu: reluVJP,
}

// leafVJP: leaves have no operands, nothing to propagate.
func leafVJP(_ *Node, _ float64) {}

func addVJP(node *Node, v float64) {
	node.inputNodes[0].grad += v
	node.inputNodes[1].grad += v
}

func subVJP(node *Node, v float64) {
	node.inputNodes[0].grad += v
	node.inputNodes[1].grad -= v
}

// F(a,b) = a*b -> dF/da = b ; dF/db = a
func mulVJP(node *Node, v float64) {
	a, b := node.inputNodes[0], node.inputNodes[1]
	a.grad += b.data * v
	b.grad += a.data * v
}

// F(a,b) = a/b -> dF/da = 1/b ; dF/db = -a/b^2
func divVJP(node *Node, v float64) {
	a, b := node.inputNodes[0], node.inputNodes[1]
	a.grad += v / b.data
	b.grad += -a.data / (b.data * b.data) * v
}

// F(a) = a^n -> dF/da = n*a^(n-1), for the static exponent n.
// This will NaN if a is negative and n is fractional, matching the forward op.
func powVJP(node *Node, v float64) {
	params := node.inputs.(*nodeInputsPow)
	a := node.inputNodes[0]
	a.grad += params.exponent * math.Pow(a.data, params.exponent-1) * v
}

func negVJP(node *Node, v float64) {
	node.inputNodes[0].grad -= v
}

// F(a) = e^a -> dF/da = e^a, which is the node's own forward value.
func expVJP(node *Node, v float64) {
	node.inputNodes[0].grad += node.data * v
}

func logVJP(node *Node, v float64) {
	a := node.inputNodes[0]
	a.grad += v / a.data
}

// F(a) = tanh(a) -> dF/da = 1 - tanh(a)^2, reusing the forward value.
func tanhVJP(node *Node, v float64) {
	node.inputNodes[0].grad += (1 - node.data*node.data) * v
}

// The subgradient of Relu at exactly zero is taken as 0.
func reluVJP(node *Node, v float64) {
	a := node.inputNodes[0]
	if a.data > 0 {
		a.grad += v
	}
}
