package top

import "context"

// EnumerateRoutes lists every budget-feasible elementary source-to-sink
// route by depth-first search. Intended for small instances; limit > 0
// caps the number of routes collected.
func EnumerateRoutes(inst *Instance, limit int) []*Route {
	var (
		routes  []*Route
		path    []int
		visited = make([]bool, inst.Graph.NumVertices())
	)
	var dfs func(v int, length float64)
	dfs = func(v int, length float64) {
		if limit > 0 && len(routes) >= limit {
			return
		}
		path = append(path, v)
		visited[v] = true
		if v == inst.Sink {
			routes = append(routes, NewRoute(inst, path))
		} else {
			for _, u := range inst.Graph.Successors(v) {
				if visited[u] {
					continue
				}
				w, _ := inst.Graph.Weight(v, u)
				if length+w > inst.Budget {
					continue
				}
				dfs(u, length+w)
			}
		}
		visited[v] = false
		path = path[:len(path)-1]
	}
	dfs(inst.Source, 0)
	return routes
}

// SolveByEnumeration enumerates the full route pool and solves the
// set-cover MIP over it once. It shares the oracle boundary with the
// branch-and-price path, so the same backend serves both algorithms.
func SolveByEnumeration(ctx context.Context, inst *Instance, par *Params, factory OracleFactory) (*Result, error) {
	routes := EnumerateRoutes(inst, 0)
	Log(2, "Enumeration found %d feasible routes", len(routes))

	root := NewRootNode()
	oracle, err := factory.Build(routes, root, true)
	if err != nil {
		return nil, err
	}
	defer oracle.Dispose()
	ok, err := oracle.Solve()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSetCoverInfeasible
	}
	obj, err := oracle.Objective()
	if err != nil {
		return nil, err
	}
	primal, err := oracle.Primal()
	if err != nil {
		return nil, err
	}

	root.LpFeasible = true
	root.LpIntegral = true
	root.LpObjective = obj
	root.MipObjective = obj
	for i, val := range primal {
		if val > 0.5 {
			root.MipSolution = append(root.MipSolution, RouteValue{Route: routes[i], Value: val})
			root.LpSolution = append(root.LpSolution, RouteValue{Route: routes[i], Value: val})
		}
	}
	return &Result{
		Objective:         obj,
		Incumbent:         root,
		Root:              root,
		NumCreated:        1,
		NumFeasible:       1,
		MaxParallelSolves: 1,
	}, nil
}
