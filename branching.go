package top

import "sort"

// BranchEpsilon separates fractional from integral flow values.
const BranchEpsilon = 1e-6

// RouteBrancher implements vertex-first, arc-second branching on the
// fractional set-cover solution of a solved node.
type RouteBrancher struct {
	Inst *Instance
}

func (b *RouteBrancher) Branch(bn BNode) ([]BNode, error) {
	node, ok := bn.(*BBNode)
	if !ok {
		return nil, ErrNullVertexReducedCosts
	}
	if node.VertexReducedCosts == nil {
		return nil, ErrNullVertexReducedCosts
	}

	flowIn, arcFlow := flows(node.LpSolution)

	if v, found := fractionalVertex(flowIn, node.VertexReducedCosts); found {
		return b.branchOnVertex(node, v), nil
	}
	if hasFractionalArc(arcFlow) {
		return b.branchOnArc(node, arcFlow)
	}
	// Neither vertex nor arc flow is fractional: the node is integral.
	return nil, nil
}

// flows aggregates vertex and arc flow over the fractional LP solution.
func flows(sol []RouteValue) (map[int]float64, map[Edge]float64) {
	flowIn := make(map[int]float64)
	arcFlow := make(map[Edge]float64)
	for _, rv := range sol {
		path := rv.Route.Path
		for i := 1; i < len(path)-1; i++ {
			flowIn[path[i]] += rv.Value
		}
		for i := 1; i < len(path); i++ {
			arcFlow[Edge{path[i-1], path[i]}] += rv.Value
		}
	}
	return flowIn, arcFlow
}

func isFractional(f float64) bool {
	return f > BranchEpsilon && f < 1-BranchEpsilon
}

// fractionalVertex picks the fractional-flow vertex with the smallest
// reduced vertex cost.
func fractionalVertex(flowIn map[int]float64, reducedCosts []float64) (int, bool) {
	best := -1
	vertices := make([]int, 0, len(flowIn))
	for v := range flowIn {
		vertices = append(vertices, v)
	}
	sort.Ints(vertices)
	for _, v := range vertices {
		if !isFractional(flowIn[v]) {
			continue
		}
		if best < 0 || reducedCosts[v] < reducedCosts[best] {
			best = v
		}
	}
	return best, best >= 0
}

func hasFractionalArc(arcFlow map[Edge]float64) bool {
	for _, f := range arcFlow {
		if isFractional(f) {
			return true
		}
	}
	return false
}

func (b *RouteBrancher) branchOnVertex(node *BBNode, v int) []BNode {
	Log(3, "Branching node %d on vertex %d", node.Id, v)
	forbid := node.Child()
	forbid.ForbiddenVertices = append(forbid.ForbiddenVertices, v)
	must := node.Child()
	must.MustVisitVertices = append(must.MustVisitVertices, v)
	return []BNode{forbid, must}
}

func (b *RouteBrancher) branchOnArc(node *BBNode, arcFlow map[Edge]float64) ([]BNode, error) {
	edges := make([]Edge, 0, len(arcFlow))
	for e := range arcFlow {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	var best Edge
	found := false
	for _, e := range edges {
		if !isFractional(arcFlow[e]) {
			continue
		}
		if !found || node.VertexReducedCosts[e.From] < node.VertexReducedCosts[best.From] {
			best = e
			found = true
		}
	}
	if !found {
		return nil, ErrBranchOnNullArc
	}
	Log(3, "Branching node %d on arc %s", node.Id, best)

	if node.HasMustVisitVertex(best.From) || node.HasMustVisitVertex(best.To) {
		enforce := node.Child()
		enforce.MustVisitEdges = append(enforce.MustVisitEdges, best)
		forbid := node.Child()
		forbid.ForbiddenEdges = append(forbid.ForbiddenEdges, best)
		return []BNode{enforce, forbid}, nil
	}

	forbidU := node.Child()
	forbidU.ForbiddenVertices = append(forbidU.ForbiddenVertices, best.From)

	mustEnforce := node.Child()
	mustEnforce.MustVisitVertices = append(mustEnforce.MustVisitVertices, best.From)
	mustEnforce.MustVisitEdges = append(mustEnforce.MustVisitEdges, best)

	mustForbid := node.Child()
	mustForbid.MustVisitVertices = append(mustForbid.MustVisitVertices, best.From)
	mustForbid.ForbiddenEdges = append(mustForbid.ForbiddenEdges, best)

	return []BNode{forbidU, mustEnforce, mustForbid}, nil
}
