package network

import (
	"errors"
	"fmt"

	"github.com/faldi95/supplynet/internal/models"
)

var (
	ErrDuplicateNode = errors.New("node already exists")
	ErrUnknownNode   = errors.New("unknown node")
)

// Graph is a directed supply network: a node table keyed by id plus an edge list.
// Nodes and edges are only ever added.
type Graph struct {
	nodes map[string]*models.Node
	order []string
	edges []models.Edge
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*models.Node)}
}

func (g *Graph) AddNode(node models.Node) error {
	if _, exists := g.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	g.nodes[node.ID] = &node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge. Both endpoints must already be in the graph.
func (g *Graph) AddEdge(edge models.Edge) error {
	from, ok := g.nodes[edge.From]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, edge.From)
	}
	to, ok := g.nodes[edge.To]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, edge.To)
	}
	if from.Position != nil && to.Position != nil {
		edge.DistanceKm = DistanceKm(*from.Position, *to.Position)
	}
	g.edges = append(g.edges, edge)
	return nil
}

func (g *Graph) Node(id string) (models.Node, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return models.Node{}, false
	}
	return *node, true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []models.Node {
	nodes := make([]models.Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

func (g *Graph) Edges() []models.Edge {
	edges := make([]models.Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// Successors returns the targets of edges leaving id, in insertion order.
func (g *Graph) Successors(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

func (g *Graph) NumberOfNodes() int {
	return len(g.order)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) TotalDemand() int {
	total := 0
	for _, node := range g.nodes {
		if node.Type == models.NodeTypeCustomer {
			total += node.Demand
		}
	}
	return total
}
