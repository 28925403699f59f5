package top

import (
	"context"
	"math"
)

// ColGenSolver solves one branch-and-bound node by column generation: it
// alternates the restricted set-cover LP with the pricing engine until no
// profitable column remains, then resolves the final master as a MIP for
// the node's integer bound. Each worker owns one ColGenSolver and through
// it one oracle factory; the column pool is worker-local and grows across
// the nodes the worker solves.
type ColGenSolver struct {
	inst    *Instance
	par     *Params
	factory OracleFactory

	pool     []*Route
	poolKeys map[string]bool
}

func NewColGenSolver(inst *Instance, par *Params, factory OracleFactory) *ColGenSolver {
	return &ColGenSolver{
		inst:     inst,
		par:      par,
		factory:  factory,
		poolKeys: make(map[string]bool),
	}
}

func (s *ColGenSolver) Dispose() {
	s.factory.Dispose()
}

func (s *ColGenSolver) Solve(ctx context.Context, bn BNode) (BNode, error) {
	node := bn.(*BBNode)

	reduced, err := s.reducedGraph(node)
	if err != nil {
		return nil, err
	}

	active := s.activeColumns(node)
	pricer := &Pricer{
		Graph:  reduced,
		Source: s.inst.Source,
		Sink:   s.inst.Sink,
		Budget: s.inst.Budget,
		Prizes: s.inst.Prizes,
		Par:    s.par,
	}

	var (
		lastObjective float64
		lastAux       float64
		lastPrimal    []float64
		lastDuals     *PricingDuals
		lastVtxDuals  []float64
		lastMvvDuals  map[int]float64
		lastMveDuals  map[Edge]float64
		lastRouteDual float64
		lastVarDuals  []float64
	)

	for {
		if err := ctx.Err(); err != nil {
			// Time limit hit mid-solve: report the node as pruned rather
			// than half-decorated.
			node.LpFeasible = false
			return node, nil
		}

		oracle, err := s.factory.Build(active, node, false)
		if err != nil {
			return nil, err
		}
		ok, err := oracle.Solve()
		if err != nil {
			oracle.Dispose()
			return nil, err
		}
		if !ok {
			// Normally impossible once the auxiliary slack is in the
			// model; the node is recorded as infeasible and pruned.
			Log(1, "Node %d: %s", node.Id, ErrSetCoverInfeasible.Error())
			oracle.Dispose()
			node.LpFeasible = false
			return node, nil
		}

		lastObjective, err = oracle.Objective()
		if err == nil {
			lastPrimal, err = oracle.Primal()
		}
		if err == nil {
			lastAux, err = oracle.AuxValue()
		}
		if err == nil {
			lastRouteDual, err = oracle.RouteDual()
		}
		if err == nil {
			lastVtxDuals, err = oracle.VertexDuals()
		}
		if err == nil {
			lastMvvDuals, err = oracle.MustVisitVertexDuals()
		}
		if err == nil {
			lastMveDuals, err = oracle.MustVisitEdgeDuals()
		}
		if err == nil {
			lastVarDuals, err = oracle.RouteVariableDuals()
		}
		oracle.Dispose()
		if err != nil {
			return nil, err
		}

		lastDuals = s.buildPricingDuals(lastRouteDual, lastVtxDuals, lastMvvDuals, lastMveDuals)

		columns, err := pricer.Solve(lastDuals)
		if err != nil {
			return nil, err
		}
		fresh := 0
		for _, r := range columns {
			key := r.Key()
			if s.poolKeys[key] {
				continue
			}
			s.poolKeys[key] = true
			s.pool = append(s.pool, r)
			active = append(active, r)
			fresh++
		}
		Log(3, "Node %d: column generation added %d columns (pool %d, lp %.4f)",
			node.Id, fresh, len(s.pool), lastObjective)
		if fresh == 0 {
			break
		}
	}

	s.decorateNode(node, active, lastObjective, lastAux, lastPrimal, lastDuals,
		lastVtxDuals, lastMvvDuals, lastMveDuals, lastRouteDual, lastVarDuals)

	if node.LpFeasible {
		if err := s.solveMip(node, active); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// reducedGraph removes the node's forbidden vertices and edges from a copy
// of the instance graph. Restrictions naming entities absent from the
// original graph are fatal; entities already gone from the reduced copy
// are ignored.
func (s *ColGenSolver) reducedGraph(node *BBNode) (*Graph, error) {
	orig := s.inst.Graph
	for _, v := range node.ForbiddenVertices {
		if !orig.HasVertex(v) {
			return nil, ErrMissingVertex
		}
	}
	for _, v := range node.MustVisitVertices {
		if !orig.HasVertex(v) {
			return nil, ErrMissingVertex
		}
	}
	for _, e := range node.ForbiddenEdges {
		if !orig.HasEdge(e.From, e.To) {
			return nil, ErrMissingEdge
		}
	}
	for _, e := range node.MustVisitEdges {
		if !orig.HasEdge(e.From, e.To) {
			return nil, ErrMissingEdge
		}
	}
	reduced := orig.Clone()
	for _, v := range node.ForbiddenVertices {
		reduced.RemoveVertex(v)
	}
	for _, e := range node.ForbiddenEdges {
		reduced.RemoveEdge(e.From, e.To)
	}
	return reduced, nil
}

// activeColumns filters the pool down to the routes compatible with the
// node's forbidden sets.
func (s *ColGenSolver) activeColumns(node *BBNode) []*Route {
	active := make([]*Route, 0, len(s.pool))
	for _, r := range s.pool {
		if routeAllowed(r, node) {
			active = append(active, r)
		}
	}
	return active
}

func routeAllowed(r *Route, node *BBNode) bool {
	for _, v := range node.ForbiddenVertices {
		if r.Visits(v) {
			return false
		}
	}
	for _, e := range node.ForbiddenEdges {
		if r.UsesEdge(e.From, e.To) {
			return false
		}
	}
	return true
}

// buildPricingDuals maps the master duals into the cost structure the
// pricing engine prices against.
func (s *ColGenSolver) buildPricingDuals(routeDual float64, vtxDuals []float64, mvvDuals map[int]float64, mveDuals map[Edge]float64) *PricingDuals {
	n := s.inst.Graph.NumVertices()
	costs := make([]float64, n)
	for v := 0; v < n; v++ {
		if v == s.inst.Source || v == s.inst.Sink {
			continue
		}
		costs[v] = vtxDuals[v] + mvvDuals[v] - s.inst.Prizes[v]
	}
	arcs := make(map[Edge]float64, len(mveDuals))
	for e, d := range mveDuals {
		arcs[e] = d
	}
	return &PricingDuals{VehicleDual: routeDual, VertexCosts: costs, ArcCosts: arcs}
}

func (s *ColGenSolver) decorateNode(node *BBNode, active []*Route, objective, aux float64,
	primal []float64, duals *PricingDuals, vtxDuals []float64, mvvDuals map[int]float64,
	mveDuals map[Edge]float64, routeDual float64, varDuals []float64) {

	eps := s.par.Epsilon
	node.LpFeasible = aux < eps
	node.LpObjective = objective
	node.LpSolution = nil
	node.LpIntegral = node.LpFeasible
	for i, val := range primal {
		if val > eps {
			node.LpSolution = append(node.LpSolution, RouteValue{Route: active[i], Value: val})
		}
		if val > eps && val < 1-eps {
			node.LpIntegral = false
		}
	}
	node.VertexReducedCosts = duals.VertexCosts

	// dual LP upper bound from the last duals
	bound := routeDual * float64(s.inst.NumVehicles+1)
	for _, d := range vtxDuals {
		bound += d
	}
	for _, d := range mvvDuals {
		bound -= d
	}
	for _, d := range mveDuals {
		bound -= d
	}
	for _, d := range varDuals {
		bound += math.Max(d, 0)
	}
	node.DualLpUpperBound = bound
}

func (s *ColGenSolver) solveMip(node *BBNode, active []*Route) error {
	oracle, err := s.factory.Build(active, node, true)
	if err != nil {
		return err
	}
	defer oracle.Dispose()
	ok, err := oracle.Solve()
	if err != nil {
		return err
	}
	if !ok {
		node.MipSolution = nil
		return nil
	}
	obj, err := oracle.Objective()
	if err != nil {
		return err
	}
	primal, err := oracle.Primal()
	if err != nil {
		return err
	}
	node.MipObjective = obj
	node.MipSolution = nil
	for i, val := range primal {
		if val > 0.5 {
			node.MipSolution = append(node.MipSolution, RouteValue{Route: active[i], Value: val})
		}
	}
	return nil
}
