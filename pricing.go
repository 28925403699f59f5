package top

import (
	"container/heap"
	"math"
	"sort"
)

// PricingDuals carries the dual information one pricing call prices against.
// VertexCosts[v] is the reduced vertex cost (cover dual plus must-visit dual
// minus prize); ArcCosts holds the must-visit-edge duals, absent arcs count
// as zero.
type PricingDuals struct {
	VehicleDual float64
	VertexCosts []float64
	ArcCosts    map[Edge]float64
}

func (d *PricingDuals) arcCost(u, v int) float64 {
	if d.ArcCosts == nil {
		return 0
	}
	return d.ArcCosts[Edge{u, v}]
}

// Pricer solves the elementary shortest path problem with the budget
// resource on a reduced graph, using bidirectional labeling with
// decremental state-space relaxation.
type Pricer struct {
	Graph  *Graph
	Source int
	Sink   int
	Budget float64
	Prizes []float64
	Par    *Params
}

type pricingRun struct {
	*Pricer
	duals             *PricingDuals
	isCritical        []bool
	useVisitCondition bool

	ndForward  [][]*State
	ndBackward [][]*State
	uf         stateHeap
	ub         stateHeap

	routes    []*Route
	routeKeys map[string]bool
	optimal   *Route
}

// Solve prices the current duals and returns at most MaxColumnsAdded routes
// with reduced cost below -epsilon, most negative first.
func (p *Pricer) Solve(duals *PricingDuals) ([]*Route, error) {
	if p.Par.MaxColumnsAdded <= 0 {
		return nil, nil
	}
	run := &pricingRun{
		Pricer:     p,
		duals:      duals,
		isCritical: make([]bool, p.Graph.NumVertices()),
		routeKeys:  make(map[string]bool),
	}
	retriedVisitCondition := false

	for {
		run.search()

		if len(run.routes) >= p.Par.MaxColumnsAdded || len(run.routes) >= p.Par.MaxPathsAfterSearch {
			break
		}
		if run.optimal == nil {
			if retriedVisitCondition {
				break
			}
			run.useVisitCondition = true
			retriedVisitCondition = true
			continue
		}
		multi := multiVisited(run.optimal)
		if len(multi) == 0 {
			break
		}
		for _, v := range multi {
			if run.isCritical[v] {
				return nil, ErrCyclesWithCriticalVertex
			}
		}
		for _, v := range multi {
			run.isCritical[v] = true
			Log(4, "Pricing: promoting vertex %d to critical", v)
		}
	}

	sort.SliceStable(run.routes, func(i, j int) bool {
		return run.routes[i].ReducedCost < run.routes[j].ReducedCost
	})
	if len(run.routes) > p.Par.MaxColumnsAdded {
		run.routes = run.routes[:p.Par.MaxColumnsAdded]
	}
	return run.routes, nil
}

func multiVisited(r *Route) []int {
	var multi []int
	for v, c := range r.VisitCounts() {
		if c > 1 {
			multi = append(multi, v)
		}
	}
	sort.Ints(multi)
	return multi
}

// search runs one interleaved bidirectional labeling pass with the current
// critical set. Emitted elementary routes accumulate across passes.
func (r *pricingRun) search() {
	n := r.Graph.NumVertices()
	r.ndForward = make([][]*State, n)
	r.ndBackward = make([][]*State, n)
	r.uf = r.uf[:0]
	r.ub = r.ub[:0]
	r.optimal = nil

	sf := NewTerminalState(true, r.Source)
	sb := NewTerminalState(false, r.Sink)
	sb.Cost = r.duals.VertexCosts[r.Sink]
	r.ndForward[r.Source] = append(r.ndForward[r.Source], sf)
	r.ndBackward[r.Sink] = append(r.ndBackward[r.Sink], sb)

	r.performAllJoins(sf)
	r.extendState(sf)
	if !r.Par.ForwardOnly {
		r.extendState(sb)
	}

	forward := true
	for (r.uf.Len() > 0 || r.ub.Len() > 0) && !r.capped() {
		var s *State
		if forward && r.uf.Len() > 0 {
			s = heap.Pop(&r.uf).(*State)
		} else if r.ub.Len() > 0 {
			s = heap.Pop(&r.ub).(*State)
		} else if r.uf.Len() > 0 {
			s = heap.Pop(&r.uf).(*State)
		}
		forward = !forward
		if s == nil || s.removed {
			continue
		}
		r.performAllJoins(s)
		if r.capped() {
			break
		}
		r.processState(s)
	}
}

func (r *pricingRun) capped() bool {
	return len(r.routes) >= r.Par.MaxColumnsAdded
}

// processState grows the label in its direction while it is still on its
// half of the budget. In forward-only mode forward labels run the whole
// budget instead.
func (r *pricingRun) processState(s *State) {
	limit := r.Budget/2 - r.Par.Epsilon
	if r.Par.ForwardOnly {
		if !s.Forward {
			return
		}
		limit = r.Budget - r.Par.Epsilon
	}
	if s.Length < limit {
		r.extendState(s)
	}
}

func (r *pricingRun) extendState(s *State) {
	var neighbors []int
	if s.Forward {
		neighbors = r.Graph.Successors(s.Vertex)
	} else {
		neighbors = r.Graph.Predecessors(s.Vertex)
	}
	for _, v := range neighbors {
		if s.Forward && v == r.Sink || !s.Forward && v == r.Source {
			// Completion is handled by the join step.
			continue
		}
		if s.UsedCriticalVertex(v) {
			continue
		}
		if s.Pred == v {
			continue
		}
		var w float64
		if s.Forward {
			w, _ = r.Graph.Weight(s.Vertex, v)
		} else {
			w, _ = r.Graph.Weight(v, s.Vertex)
		}
		if s.Length+w > r.Budget+r.Par.Epsilon {
			continue
		}
		costDelta := r.duals.VertexCosts[v]
		if s.Forward {
			costDelta += r.duals.arcCost(s.Vertex, v)
		} else {
			costDelta += r.duals.arcCost(v, s.Vertex)
		}
		ns := s.Extend(v, w, costDelta, r.Prizes[v], r.isCritical[v])
		r.markUnreachableCritical(ns)
		r.addIfNonDominated(ns)
	}
}

// markUnreachableCritical flags every critical neighbor the new label can
// no longer afford to reach.
func (r *pricingRun) markUnreachableCritical(s *State) {
	var next []int
	if s.Forward {
		next = r.Graph.Successors(s.Vertex)
	} else {
		next = r.Graph.Predecessors(s.Vertex)
	}
	for _, x := range next {
		if !r.isCritical[x] {
			continue
		}
		var w float64
		if s.Forward {
			w, _ = r.Graph.Weight(s.Vertex, x)
		} else {
			w, _ = r.Graph.Weight(x, s.Vertex)
		}
		if s.Length+w > r.Budget+r.Par.Epsilon {
			s.UnreachableCritical.Add(x)
		}
	}
}

// addIfNonDominated runs the dominance scan with the two-cycle removal
// rule, then inserts the label into its non-dominated list and heap.
func (r *pricingRun) addIfNonDominated(s *State) {
	var list *[]*State
	if s.Forward {
		list = &r.ndForward[s.Vertex]
	} else {
		list = &r.ndBackward[s.Vertex]
	}
	if r.Par.UseDomination {
		for i := len(*list) - 1; i >= 0; i-- {
			ex := (*list)[i]
			if ex.removed {
				continue
			}
			if ex.Dominates(s, r.Par.Epsilon, r.useVisitCondition) {
				if ex.Pred == s.Pred {
					return
				}
				if !s.hasDomPred {
					s.hasDomPred = true
					s.domPred = ex.Pred
				} else if s.domPred != ex.Pred {
					return
				}
			}
		}
		if r.Par.TwoWayDomination {
			for _, ex := range *list {
				if !ex.removed && s.Dominates(ex, r.Par.Epsilon, r.useVisitCondition) {
					ex.removed = true
				}
			}
		}
	}
	*list = append(*list, s)
	if s.Forward {
		heap.Push(&r.uf, s)
	} else {
		heap.Push(&r.ub, s)
	}
}

// performAllJoins pairs the label with every opposite-direction label one
// arc away.
func (r *pricingRun) performAllJoins(s *State) {
	if s.Forward {
		u := s.Vertex
		for _, v := range r.Graph.Successors(u) {
			w, _ := r.Graph.Weight(u, v)
			for _, sb := range r.ndBackward[v] {
				if sb.removed {
					continue
				}
				r.tryJoin(s, sb, w)
				if r.capped() {
					return
				}
			}
		}
	} else {
		v := s.Vertex
		for _, u := range r.Graph.Predecessors(v) {
			w, _ := r.Graph.Weight(u, v)
			for _, sf := range r.ndForward[u] {
				if sf.removed {
					continue
				}
				r.tryJoin(sf, s, w)
				if r.capped() {
					return
				}
			}
		}
	}
}

func (r *pricingRun) tryJoin(sf, sb *State, w float64) {
	if sf.HasCommonCriticalVisits(sb) {
		return
	}
	total := sf.Length + w + sb.Length
	if total > r.Budget+r.Par.Epsilon {
		return
	}
	if !r.Par.ForwardOnly && !r.halfwayAccept(sf, sb, w) {
		return
	}
	rc := r.duals.VehicleDual + sf.Cost + sb.Cost + r.duals.arcCost(sf.Vertex, sb.Vertex)
	if rc >= -r.Par.Epsilon {
		return
	}

	elementary := !sf.HasCycle && !sb.HasCycle && !sf.HasCommonGeneralVisits(sb)
	route := &Route{
		Path:        append(sf.Path(), sb.Path()...),
		Score:       sf.Score + sb.Score,
		Length:      total,
		ReducedCost: rc,
		Elementary:  elementary,
	}
	if elementary {
		key := route.Key()
		if !r.routeKeys[key] {
			r.routeKeys[key] = true
			r.routes = append(r.routes, route)
		}
	}
	if r.optimal == nil || rc < r.optimal.ReducedCost-r.Par.Epsilon {
		r.optimal = route
	}
}

// halfwayAccept implements the join-side symmetry breaker: a complete path
// is emitted only from the decomposition whose length split is at least as
// balanced as the one obtained by shifting the join arc one step toward
// the longer side; ties go to the side with the shorter forward label.
func (r *pricingRun) halfwayAccept(sf, sb *State, w float64) bool {
	eps := r.Par.Epsilon
	lF, lB := sf.Length, sb.Length
	diff := math.Abs(lF - lB)
	if lF < lB-eps {
		if sb.Parent == nil {
			return true
		}
		alt := math.Abs(lF + w - sb.Parent.Length)
		return diff <= alt+eps
	}
	if lB < lF-eps {
		if sf.Parent == nil {
			return true
		}
		alt := math.Abs(sf.Parent.Length - (lB + w))
		return diff < alt-eps
	}
	return true
}
