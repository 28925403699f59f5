package top

import (
	"context"
	"fmt"
	"time"
)

// SolveBranchAndPrice wires the column-generation node solver, the
// branching rule and the branch-and-bound engine together and runs them on
// the instance. Each worker gets its own gurobi environment through its
// own oracle factory.
func SolveBranchAndPrice(ctx context.Context, inst *Instance, par *Params) (*Result, error) {
	if par.TimeLimitInSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(par.TimeLimitInSeconds)*time.Second)
		defer cancel()
	}

	newSolver := func(worker int) (NodeSolver, error) {
		factory, err := NewGurobiOracleFactory(inst, fmt.Sprintf("top_gurobi_%d.log", worker))
		if err != nil {
			return nil, err
		}
		return NewColGenSolver(inst, par, factory), nil
	}
	brancher := &RouteBrancher{Inst: inst}
	engine := NewEngine(par.NumSolvers, par.Epsilon, newSolver, brancher)

	return engine.Run(ctx, NewRootNode())
}

// SolveEnumerate is the non-branching algorithm behind the CLI's
// algorithm 0.
func SolveEnumerate(ctx context.Context, inst *Instance, par *Params) (*Result, error) {
	factory, err := NewGurobiOracleFactory(inst, "top_gurobi_enum.log")
	if err != nil {
		return nil, err
	}
	defer factory.Dispose()
	return SolveByEnumeration(ctx, inst, par, factory)
}

// ResultSolution maps an engine result onto the KPI block.
func ResultSolution(inst *Instance, res *Result, elapsed time.Duration) *Solution {
	sol := &Solution{
		Instance:          inst.Name,
		NumCreatedNodes:   res.NumCreated,
		NumFeasibleNodes:  res.NumFeasible,
		MaxParallelSolves: res.MaxParallelSolves,
		TimeSeconds:       elapsed.Seconds(),
	}
	if res.Incumbent != nil {
		sol.Objective = res.Incumbent.LPObjective()
		if node, ok := res.Incumbent.(*BBNode); ok {
			for _, rv := range node.MipSolution {
				sol.Routes = append(sol.Routes, rv.Route.Path)
			}
		}
	}
	if root, ok := res.Root.(*BBNode); ok && root != nil {
		sol.DualUpperBound = root.DualLpUpperBound
	}
	return sol
}
