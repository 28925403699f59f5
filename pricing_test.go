package top

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testParams() *Params {
	return &Params{
		Epsilon:             1e-6,
		MaxColumnsAdded:     10,
		MaxPathsAfterSearch: 100,
		UseDomination:       true,
		TwoWayDomination:    true,
	}
}

// chainGraph builds the directed path 0->1->...->n-1 with unit arcs.
func chainGraph(n int) *Graph {
	g := NewGraph(n)
	for i := 0; i+1 < n; i++ {
		g.AddEdge(i, i+1, 1)
	}
	return g
}

// independentReducedCost recomputes a route's reduced cost from scratch.
func independentReducedCost(r *Route, duals *PricingDuals) float64 {
	rc := duals.VehicleDual
	for i := 1; i < len(r.Path); i++ {
		rc += duals.VertexCosts[r.Path[i]]
		rc += duals.arcCost(r.Path[i-1], r.Path[i])
	}
	return rc
}

func checkRouteInvariants(t *testing.T, routes []*Route, p *Pricer, duals *PricingDuals) {
	t.Helper()
	for _, r := range routes {
		require.LessOrEqual(t, r.Length, p.Budget+1e-9, "route exceeds budget: %s", r)
		require.Equal(t, p.Source, r.Path[0])
		require.Equal(t, p.Sink, r.Path[len(r.Path)-1])
		require.Less(t, r.ReducedCost, -p.Par.Epsilon)
		require.InDelta(t, independentReducedCost(r, duals), r.ReducedCost, 1e-9)
		if r.Elementary {
			seen := make(map[int]bool)
			for _, v := range r.Path {
				require.False(t, seen[v], "elementary route repeats vertex %d: %s", v, r)
				seen[v] = true
			}
		}
	}
}

func TestPricingHalfwayChain(t *testing.T) {
	duals := &PricingDuals{
		VertexCosts: []float64{0, -10, -10, -10, 0},
	}
	for _, useDom := range []bool{false, true} {
		for _, twoWay := range []bool{false, true} {
			par := testParams()
			par.UseDomination = useDom
			par.TwoWayDomination = twoWay

			p := &Pricer{
				Graph:  chainGraph(5),
				Source: 0,
				Sink:   4,
				Budget: 4,
				Prizes: []float64{0, 10, 10, 10, 0},
				Par:    par,
			}
			routes, err := p.Solve(duals)
			require.NoError(t, err)
			require.Len(t, routes, 1, "useDomination=%t twoWay=%t", useDom, twoWay)
			require.Equal(t, []int{0, 1, 2, 3, 4}, routes[0].Path)
			require.InDelta(t, -30.0, routes[0].ReducedCost, 1e-9)
			require.InDelta(t, 30.0, routes[0].Score, 1e-9)
			require.True(t, routes[0].Elementary)
			checkRouteInvariants(t, routes, p, duals)
		}
	}
}

func TestPricingForwardOnlyChain(t *testing.T) {
	par := testParams()
	par.ForwardOnly = true
	p := &Pricer{
		Graph:  chainGraph(5),
		Source: 0,
		Sink:   4,
		Budget: 4,
		Prizes: []float64{0, 10, 10, 10, 0},
		Par:    par,
	}
	duals := &PricingDuals{VertexCosts: []float64{0, -10, -10, -10, 0}}
	routes, err := p.Solve(duals)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.Equal(t, []int{0, 1, 2, 3, 4}, routes[0].Path)
	require.InDelta(t, -30.0, routes[0].ReducedCost, 1e-9)
}

// dssrGraph has a profitable cycle 3->1->3 through vertex 3; the unconstrained
// optimum 0,3,1,3,4 forces the first DSSR promotion.
func dssrGraph() *Graph {
	g := NewGraph(5)
	g.AddEdge(0, 3, 1)
	g.AddEdge(3, 1, 1)
	g.AddEdge(1, 3, 1)
	g.AddEdge(3, 4, 1)
	g.AddEdge(1, 4, 1)
	g.AddEdge(0, 2, 1)
	g.AddEdge(2, 4, 1)
	return g
}

func TestPricingDSSRPromotion(t *testing.T) {
	par := testParams()
	p := &Pricer{
		Graph:  dssrGraph(),
		Source: 0,
		Sink:   4,
		Budget: 4,
		Prizes: []float64{0, 1, 2, 10, 0},
		Par:    par,
	}
	duals := &PricingDuals{VertexCosts: []float64{0, -1, -2, -10, 0}}

	routes, err := p.Solve(duals)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	// Sorted by reduced cost: the elementary optimum comes first even
	// though the unconstrained optimum cycles through vertex 3.
	require.Equal(t, []int{0, 3, 1, 4}, routes[0].Path)
	require.InDelta(t, -11.0, routes[0].ReducedCost, 1e-9)
	require.Equal(t, []int{0, 3, 4}, routes[1].Path)
	require.InDelta(t, -10.0, routes[1].ReducedCost, 1e-9)
	require.Equal(t, []int{0, 2, 4}, routes[2].Path)
	require.InDelta(t, -2.0, routes[2].ReducedCost, 1e-9)
	for _, r := range routes {
		require.True(t, r.Elementary)
	}
	checkRouteInvariants(t, routes, p, duals)
}

func TestPricingMaxColumnsZero(t *testing.T) {
	par := testParams()
	par.MaxColumnsAdded = 0
	p := &Pricer{
		Graph:  chainGraph(5),
		Source: 0,
		Sink:   4,
		Budget: 4,
		Prizes: []float64{0, 10, 10, 10, 0},
		Par:    par,
	}
	routes, err := p.Solve(&PricingDuals{VertexCosts: []float64{0, -10, -10, -10, 0}})
	require.NoError(t, err)
	require.Empty(t, routes)
}

func TestPricingBudgetBelowShortestPath(t *testing.T) {
	p := &Pricer{
		Graph:  chainGraph(3),
		Source: 0,
		Sink:   2,
		Budget: 1,
		Prizes: []float64{0, 7, 0},
		Par:    testParams(),
	}
	routes, err := p.Solve(&PricingDuals{VertexCosts: []float64{0, -7, 0}})
	require.NoError(t, err)
	require.Empty(t, routes)
}

func TestPricingMaxColumnsCap(t *testing.T) {
	par := testParams()
	par.MaxColumnsAdded = 1
	p := &Pricer{
		Graph:  dssrGraph(),
		Source: 0,
		Sink:   4,
		Budget: 4,
		Prizes: []float64{0, 1, 2, 10, 0},
		Par:    par,
	}
	duals := &PricingDuals{VertexCosts: []float64{0, -1, -2, -10, 0}}
	routes, err := p.Solve(duals)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	checkRouteInvariants(t, routes, p, duals)
}
