package top

import (
	"container/heap"
	"context"
)

// BNode is what the generic branch-and-bound engine needs to know about a
// node. BBNode implements it; the engine tests plug in their own types.
type BNode interface {
	ID() int64
	ParentObjective() float64
	LPFeasible() bool
	LPIntegral() bool
	LPObjective() float64
}

// NodeSolver turns an unsolved node into a solved one. Each worker owns
// one solver instance (and through it one LP oracle handle); solvers are
// never shared across workers.
type NodeSolver interface {
	Solve(ctx context.Context, node BNode) (BNode, error)
	Dispose()
}

// Brancher expands a solved fractional node into child nodes.
type Brancher interface {
	Branch(node BNode) ([]BNode, error)
}

// SolverFactory creates the per-worker solver. The worker index is passed
// so implementations can name per-worker resources (log files etc.).
type SolverFactory func(worker int) (NodeSolver, error)

// Result is the final outcome of a branch-and-bound run.
type Result struct {
	Objective         float64
	Incumbent         BNode
	Root              BNode
	NumCreated        int
	NumFeasible       int
	MaxParallelSolves int
}

// Engine is a generic parallel best-bound branch-and-bound driver. A pool
// of numSolvers workers consumes unsolved nodes; a single processor
// goroutine owns the open queue, the incumbent and all counters, so no
// shared state needs locking.
type Engine struct {
	numSolvers int
	eps        float64
	newSolver  SolverFactory
	brancher   Brancher
}

func NewEngine(numSolvers int, eps float64, newSolver SolverFactory, brancher Brancher) *Engine {
	if numSolvers < 1 {
		numSolvers = 1
	}
	return &Engine{numSolvers: numSolvers, eps: eps, newSolver: newSolver, brancher: brancher}
}

type solveOutcome struct {
	node BNode
	err  error
}

type processorOutcome struct {
	result *Result
	err    error
}

// Run explores the tree rooted at root until the open queue drains or ctx
// is done. On cancellation (time limit) the current incumbent is reported.
func (e *Engine) Run(ctx context.Context, root BNode) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	solvers := make([]NodeSolver, 0, e.numSolvers)
	for i := 0; i < e.numSolvers; i++ {
		s, err := e.newSolver(i)
		if err != nil {
			for _, prev := range solvers {
				prev.Dispose()
			}
			return nil, err
		}
		solvers = append(solvers, s)
	}

	// The buffers are sized so that the processor can always dispatch and
	// workers can always report without blocking mid-invariant.
	unsolved := make(chan BNode, e.numSolvers)
	solved := make(chan solveOutcome, e.numSolvers)
	solution := make(chan processorOutcome, 1)

	for _, s := range solvers {
		go e.workerLoop(ctx, s, unsolved, solved)
	}

	// The root is dispatched externally; the processor starts with
	// numSolving=1 to account for it.
	unsolved <- root
	go e.processorLoop(ctx, root, solved, unsolved, solution)

	out := <-solution
	return out.result, out.err
}

func (e *Engine) workerLoop(ctx context.Context, s NodeSolver, unsolved <-chan BNode, solved chan<- solveOutcome) {
	defer s.Dispose()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-unsolved:
			res, err := s.Solve(ctx, n)
			select {
			case solved <- solveOutcome{node: res, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) processorLoop(ctx context.Context, root BNode, solved <-chan solveOutcome, unsolved chan<- BNode, solution chan<- processorOutcome) {
	open := &nodeQueue{}
	var incumbent BNode
	numSolving := 1
	numCreated := 1
	numFeasible := 0
	maxParallel := 1
	var rootSolved BNode

	finish := func() {
		res := &Result{
			Incumbent:         incumbent,
			Root:              rootSolved,
			NumCreated:        numCreated,
			NumFeasible:       numFeasible,
			MaxParallelSolves: maxParallel,
		}
		if incumbent != nil {
			res.Objective = incumbent.LPObjective()
		}
		solution <- processorOutcome{result: res}
	}

	for {
		select {
		case <-ctx.Done():
			finish()
			return
		case out := <-solved:
			if out.err != nil {
				solution <- processorOutcome{err: out.err}
				return
			}
			n := out.node
			numSolving--
			if rootSolved == nil && n.ID() == root.ID() {
				rootSolved = n
			}

			if !n.LPFeasible() || (incumbent != nil && incumbent.LPObjective() >= n.LPObjective()-e.eps) {
				Log(3, "Pruning node %d (feasible=%t, obj=%.4f)", n.ID(), n.LPFeasible(), n.LPObjective())
			} else {
				numFeasible++
				if n.LPIntegral() {
					if incumbent == nil || n.LPObjective() > incumbent.LPObjective() {
						Log(2, "New incumbent node %d with objective %.4f", n.ID(), n.LPObjective())
						incumbent = n
					}
				} else {
					children, err := e.brancher.Branch(n)
					if err != nil {
						solution <- processorOutcome{err: err}
						return
					}
					for _, c := range children {
						heap.Push(open, c)
					}
					numCreated += len(children)
				}
			}

			for open.Len() > 0 && numSolving < e.numSolvers {
				c := heap.Pop(open).(BNode)
				select {
				case unsolved <- c:
				case <-ctx.Done():
					finish()
					return
				}
				numSolving++
				if numSolving > maxParallel {
					maxParallel = numSolving
				}
			}

			if open.Len() == 0 && numSolving == 0 {
				finish()
				return
			}
		}
	}
}

// nodeQueue orders open nodes by parent LP objective descending (best
// bound first, we maximize) with the node id as tiebreak.
type nodeQueue []BNode

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].ParentObjective() != q[j].ParentObjective() {
		return q[i].ParentObjective() > q[j].ParentObjective()
	}
	return q[i].ID() < q[j].ID()
}
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(BNode)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
