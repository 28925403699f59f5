package top

import "errors"

// Solver error kinds. Per-node LP infeasibility is not among them: an
// infeasible node LP just sets LpFeasible=false and the node is pruned.
var (
	// ErrSetCoverInfeasible - the oracle reported an infeasible set-cover
	// model even though the auxiliary slack variable was introduced.
	ErrSetCoverInfeasible = errors.New("top: set-cover master reported infeasible")

	// ErrCyclesWithCriticalVertex - a route marked optimal after a closed
	// DSSR iteration still visits a critical vertex more than once.
	ErrCyclesWithCriticalVertex = errors.New("top: optimal pricing route cycles through a critical vertex")

	// ErrBranchOnNullArc - arc branching was requested but no arc carries
	// fractional flow.
	ErrBranchOnNullArc = errors.New("top: branching found no fractional arc")

	// ErrMissingVertex / ErrMissingEdge - a node restriction references an
	// entity that does not exist in the original instance graph.
	ErrMissingVertex = errors.New("top: restriction references a vertex missing from the instance graph")
	ErrMissingEdge   = errors.New("top: restriction references an edge missing from the instance graph")

	// ErrNullVertexReducedCosts - branching was invoked on a node that was
	// never solved.
	ErrNullVertexReducedCosts = errors.New("top: branching on a node without vertex reduced costs")
)
