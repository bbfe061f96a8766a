// Package graph implements a scalar computation graph with reverse-mode
// automatic differentiation.
//
// The main elements in the package are:
//
//   - Graph: owns every Node created while building one computation. It works
//     as a scoped allocation region: nodes are appended to a growable arena
//     and are only ever released in bulk, with Graph.Finalize.
//
//   - Node: the result of an operation ("op" for short), e.g.: Add, Mul, Tanh.
//     Each node holds a scalar forward value, fixed when the node is created,
//     and a gradient accumulator filled in by Backward.
//
//   - Backward: the reverse-mode autodiff engine. It orders the nodes
//     reachable from a root topologically and propagates gradients back to
//     front, so after it returns every reachable node's Grad holds the partial
//     derivative of the root with respect to that node.
//
// # Deferred error handling
//
// Node construction methods don't return errors, instead the Graph stores the
// first error that happened during building -- the only error produced is
// allocation exhaustion, when a node limit is set with Graph.SetMaxNodes.
// This way the user doesn't need to check for errors at every op, which would
// severely impact the readability of arithmetic expressions. Instead, one can
// check with Graph.Error (or Graph.Ok) at the very end of building. After an
// error all further node constructions become no-ops.
//
// Numeric domain violations -- division by zero, Log of a non-positive value,
// PowScalar of a negative base with a fractional exponent -- are deliberately
// not checked: they propagate as IEEE-754 ±Inf and NaN through the forward
// values and gradients.
//
// Graphs are not safe for concurrent use: build and differentiate each Graph
// from a single goroutine. Independent Graphs can be used in parallel, as long
// as nodes are never shared across them.
package graph

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// NodeId is a unique Node id within a Graph. It is also the node's index in
// the Graph's arena, so ids grow in construction order.
type NodeId int

// InvalidNodeId indicates a node that failed to be created.
const InvalidNodeId = NodeId(-1)

// ParameterHandle is the index of a registered parameter within its Graph.
type ParameterHandle int

// InvalidParameterHandle represents an invalid (or non-existent) parameter.
const InvalidParameterHandle = ParameterHandle(-1)

// Graph holds a computation being built: it owns all its nodes, and it is the
// scoped allocation region of the package -- nodes are never freed
// individually, only all at once with Finalize.
//
// It uses a deferred error reporting model: if node allocation fails, the
// first error is stored and all further operations become no-ops. Check with
// Graph.Error at the end of building. See the package documentation.
type Graph struct {
	error error

	name     string
	nodes    []*Node
	maxNodes int

	parameters            []*Node
	parameterNameToHandle map[string]ParameterHandle
}

// New creates an empty Graph with the given name (used only for messages).
// The Graph has no node limit; see SetMaxNodes.
func New(name string) *Graph {
	return &Graph{
		name:                  name,
		parameterNameToHandle: make(map[string]ParameterHandle),
	}
}

// Name of the computation this Graph defines, set during its construction.
func (g *Graph) Name() string {
	if g == nil {
		return "<nil>"
	}
	return g.name
}

// SetMaxNodes limits the number of nodes the Graph may hold. Constructing a
// node beyond the limit sets the Graph's allocation-exhaustion error and
// returns an invalid node. A limit <= 0 means unlimited (the default).
func (g *Graph) SetMaxNodes(limit int) {
	g.maxNodes = limit
}

// NumNodes returns the number of nodes allocated in the Graph so far.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Error returns the first error that happened during the building of the
// Graph, or nil. It's a convenience method to report errors at the end of
// Graph building, as opposed to at every step -- node constructors become
// no-ops once an error is set.
func (g *Graph) Error() error {
	if g == nil {
		return errors.Errorf("the Graph is nil")
	}
	return g.error
}

// Ok returns whether there were no errors during the Graph building so far.
func (g *Graph) Ok() bool { return g != nil && g.error == nil }

// setError stores the first error for the Graph. Later errors are discarded.
func (g *Graph) setError(err error) {
	if !g.Ok() {
		return
	}
	g.error = err
}

var finalizedGraphError = errors.New("Graph has been freed (Graph.Finalize)")

// Finalize releases all nodes of the Graph in bulk. The Graph is left in an
// unusable state: any further node construction reports an error.
func (g *Graph) Finalize() {
	g.setError(finalizedGraphError)
	g.nodes = nil
	g.parameters = nil
	g.parameterNameToHandle = nil
}

// registerNode appends the node to the arena, returning its new unique id
// within the Graph. It fails with InvalidNodeId -- and stores the Graph's
// allocation-exhaustion error -- if the node limit is reached.
func (g *Graph) registerNode(node *Node) (id NodeId) {
	if !g.Ok() {
		return InvalidNodeId
	}
	if g.maxNodes > 0 && len(g.nodes) >= g.maxNodes {
		g.setError(errors.Errorf(
			"graph %q exhausted its allocation region: limit of %d nodes reached", g.name, g.maxNodes))
		return InvalidNodeId
	}
	id = NodeId(len(g.nodes))
	g.nodes = append(g.nodes, node)
	return
}

// NodeById returns the node with the given id, or an invalid node if the id
// is out of range.
func (g *Graph) NodeById(id NodeId) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return g.InvalidNode()
	}
	return g.nodes[id]
}

// InvalidNode returns an empty node. This is what node constructors return
// when the graph is in error.
func (g *Graph) InvalidNode() *Node {
	if g == nil {
		return nil
	}
	return &Node{graph: g, id: InvalidNodeId}
}

// ZeroGrad resets the gradient accumulator of every node in the Graph to
// zero, allowing the nodes to be reused across successive backward passes.
func (g *Graph) ZeroGrad() {
	for _, node := range g.nodes {
		node.grad = 0
	}
}

// NumParameters returns the number of parameters registered in this graph.
func (g *Graph) NumParameters() int {
	return len(g.parameters)
}

// Parameters returns the parameter nodes, in order of creation. The returned
// slice is owned by the Graph and must not be modified.
func (g *Graph) Parameters() []*Node {
	return g.parameters
}

// ParameterByIndex returns the ii-th parameter, in order of creation.
func (g *Graph) ParameterByIndex(ii int) *Node {
	return g.parameters[ii]
}

// ParameterByName returns the parameter registered with the given name.
// It returns nil if no parameter with the given name was registered.
func (g *Graph) ParameterByName(name string) *Node {
	if name == "" {
		return nil
	}
	handle, ok := g.parameterNameToHandle[name]
	if !ok {
		return nil
	}
	return g.parameters[handle]
}

// String converts the Graph to a multi-line listing of its nodes.
func (g *Graph) String() string {
	if !g.Ok() {
		return fmt.Sprintf("Graph %q: #ERROR: %v", g.name, g.error)
	}
	parts := []string{fmt.Sprintf("Graph %q: %d nodes, %d parameters", g.name, len(g.nodes), g.NumParameters())}
	for ii, node := range g.nodes {
		parts = append(parts, fmt.Sprintf("#%d\t%s", ii, node))
	}
	return strings.Join(parts, "\n")
}
