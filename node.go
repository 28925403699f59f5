package top

import "sync/atomic"

var nodeIDCounter int64

func nextNodeID() int64 {
	return atomic.AddInt64(&nodeIDCounter, 1)
}

// BBNode is a branch-and-bound node of the branch-and-price tree: the
// branching restrictions it inherits plus the LP/MIP outputs once a worker
// has solved it.
type BBNode struct {
	Id                int64
	ParentId          int64
	ParentLpObjective float64

	MustVisitVertices []int
	MustVisitEdges    []Edge
	ForbiddenVertices []int
	ForbiddenEdges    []Edge

	LpFeasible         bool
	LpIntegral         bool
	LpObjective        float64
	LpSolution         []RouteValue
	MipSolution        []RouteValue
	MipObjective       float64
	VertexReducedCosts []float64
	DualLpUpperBound   float64

	Children []*BBNode
}

// NewRootNode creates the unrestricted root of the tree.
func NewRootNode() *BBNode {
	return &BBNode{Id: nextNodeID()}
}

// Child creates an unsolved node inheriting all restrictions of n. The
// caller adds the branching restriction afterwards.
func (n *BBNode) Child() *BBNode {
	c := &BBNode{
		Id:                nextNodeID(),
		ParentId:          n.Id,
		ParentLpObjective: n.LpObjective,
		MustVisitVertices: append([]int(nil), n.MustVisitVertices...),
		MustVisitEdges:    append([]Edge(nil), n.MustVisitEdges...),
		ForbiddenVertices: append([]int(nil), n.ForbiddenVertices...),
		ForbiddenEdges:    append([]Edge(nil), n.ForbiddenEdges...),
	}
	n.Children = append(n.Children, c)
	return c
}

func (n *BBNode) HasMustVisitVertex(v int) bool {
	for _, u := range n.MustVisitVertices {
		if u == v {
			return true
		}
	}
	return false
}

// BNode interface implementation for the generic engine.

func (n *BBNode) ID() int64                { return n.Id }
func (n *BBNode) ParentObjective() float64 { return n.ParentLpObjective }
func (n *BBNode) LPFeasible() bool         { return n.LpFeasible }
func (n *BBNode) LPIntegral() bool         { return n.LpIntegral }
func (n *BBNode) LPObjective() float64     { return n.LpObjective }
