package top

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func solvedNode(inst *Instance, sol []RouteValue, reducedCosts []float64) *BBNode {
	n := NewRootNode()
	n.LpFeasible = true
	n.LpObjective = 12.5
	n.LpSolution = sol
	n.VertexReducedCosts = reducedCosts
	return n
}

func TestBranchOnVertexPicksSmallestReducedCost(t *testing.T) {
	inst := lineInstance([]float64{0, 1, 2, 3, 0}, 2, 20)
	r1 := NewRoute(inst, []int{0, 1, 4})
	r2 := NewRoute(inst, []int{0, 2, 4})
	node := solvedNode(inst,
		[]RouteValue{{r1, 0.5}, {r2, 0.5}},
		[]float64{0, -3, -5, 0, 0})

	b := &RouteBrancher{Inst: inst}
	children, err := b.Branch(node)
	require.NoError(t, err)
	require.Len(t, children, 2)

	forbid := children[0].(*BBNode)
	must := children[1].(*BBNode)
	require.Equal(t, []int{2}, forbid.ForbiddenVertices)
	require.Empty(t, forbid.MustVisitVertices)
	require.Equal(t, []int{2}, must.MustVisitVertices)
	require.Empty(t, must.ForbiddenVertices)

	for _, c := range children {
		bb := c.(*BBNode)
		require.Equal(t, node.Id, bb.ParentId)
		require.InDelta(t, node.LpObjective, bb.ParentLpObjective, 1e-9)
		require.Greater(t, bb.Id, node.Id)
	}
	require.Len(t, node.Children, 2)
}

func TestBranchOnArcThreeChildren(t *testing.T) {
	inst := lineInstance([]float64{0, 1, 2, 0, 0}, 2, 20)
	r1 := NewRoute(inst, []int{0, 1, 2, 4})
	r2 := NewRoute(inst, []int{0, 2, 1, 4})
	node := solvedNode(inst,
		[]RouteValue{{r1, 0.5}, {r2, 0.5}},
		[]float64{0, -1, -2, 0, 0})

	b := &RouteBrancher{Inst: inst}
	children, err := b.Branch(node)
	require.NoError(t, err)
	require.Len(t, children, 3)

	forbidU := children[0].(*BBNode)
	mustEnforce := children[1].(*BBNode)
	mustForbid := children[2].(*BBNode)

	require.Equal(t, []int{2}, forbidU.ForbiddenVertices)
	require.Equal(t, []int{2}, mustEnforce.MustVisitVertices)
	require.Equal(t, []Edge{{2, 1}}, mustEnforce.MustVisitEdges)
	require.Equal(t, []int{2}, mustForbid.MustVisitVertices)
	require.Equal(t, []Edge{{2, 1}}, mustForbid.ForbiddenEdges)
}

func TestBranchOnArcWithMustVisitEndpoint(t *testing.T) {
	inst := lineInstance([]float64{0, 1, 2, 0, 0}, 2, 20)
	r1 := NewRoute(inst, []int{0, 1, 2, 4})
	r2 := NewRoute(inst, []int{0, 2, 1, 4})
	node := solvedNode(inst,
		[]RouteValue{{r1, 0.5}, {r2, 0.5}},
		[]float64{0, -1, -2, 0, 0})
	node.MustVisitVertices = []int{2}

	b := &RouteBrancher{Inst: inst}
	children, err := b.Branch(node)
	require.NoError(t, err)
	require.Len(t, children, 2)

	enforce := children[0].(*BBNode)
	forbid := children[1].(*BBNode)
	require.Equal(t, []Edge{{2, 1}}, enforce.MustVisitEdges)
	require.Equal(t, []Edge{{2, 1}}, forbid.ForbiddenEdges)
	// the inherited must-visit stays on both children
	require.Equal(t, []int{2}, enforce.MustVisitVertices)
	require.Equal(t, []int{2}, forbid.MustVisitVertices)
}

func TestBranchIntegralReturnsNothing(t *testing.T) {
	inst := lineInstance([]float64{0, 1, 0}, 1, 10)
	r1 := NewRoute(inst, []int{0, 1, 2})
	node := solvedNode(inst, []RouteValue{{r1, 1.0}}, []float64{0, -1, 0})

	b := &RouteBrancher{Inst: inst}
	children, err := b.Branch(node)
	require.NoError(t, err)
	require.Empty(t, children)
}

func TestBranchWithoutReducedCostsFails(t *testing.T) {
	inst := lineInstance([]float64{0, 1, 0}, 1, 10)
	r1 := NewRoute(inst, []int{0, 1, 2})
	node := solvedNode(inst, []RouteValue{{r1, 0.5}}, nil)

	b := &RouteBrancher{Inst: inst}
	_, err := b.Branch(node)
	require.ErrorIs(t, err, ErrNullVertexReducedCosts)
}
