package top

// MasterOracle is the one boundary the core uses toward the LP/MIP solver.
// A handle wraps a single built set-cover model; Solve reports false when
// the model itself is infeasible (which the auxiliary slack normally rules
// out). Dual getters are only meaningful after an LP solve.
type MasterOracle interface {
	Solve() (bool, error)
	Objective() (float64, error)
	Primal() ([]float64, error)
	AuxValue() (float64, error)
	RouteDual() (float64, error)
	VertexDuals() ([]float64, error)
	MustVisitVertexDuals() (map[int]float64, error)
	MustVisitEdgeDuals() (map[Edge]float64, error)
	RouteVariableDuals() ([]float64, error)
	Dispose()
}

// OracleFactory builds one oracle handle per restricted master. Workers own
// their factory; factories are never shared.
type OracleFactory interface {
	Build(routes []*Route, node *BBNode, asMip bool) (MasterOracle, error)
	Dispose()
}

// AuxPenalty prices the auxiliary slack that keeps must-visit rows
// feasible. Tuning constant, large enough to dominate any collectable
// score.
const AuxPenalty = 1e5
