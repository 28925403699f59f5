package top

import (
	"math"

	"github.com/yourbasic/bit"
)

// State is a partial-path label of the pricing engine. Forward states grow
// from the source, backward states from the sink. Bit-sets are owned by the
// state and cloned on extension.
type State struct {
	Forward bool
	Vertex  int
	Cost    float64
	Score   float64
	Length  float64

	Parent *State
	// Pred is the vertex the state was extended from, -1 for terminals.
	Pred int

	VisitedCritical     *bit.Set
	VisitedGeneral      *bit.Set
	UnreachableCritical *bit.Set
	HasCycle            bool

	// Two-cycle removal memo: the predecessor of the first dominator seen
	// with a predecessor different from ours.
	hasDomPred bool
	domPred    int

	removed bool
}

// NewTerminalState seeds a labeling run at an endpoint: all three bit-sets
// contain only the terminal vertex.
func NewTerminalState(forward bool, vertex int) *State {
	return &State{
		Forward:             forward,
		Vertex:              vertex,
		Pred:                -1,
		VisitedCritical:     new(bit.Set).Add(vertex),
		VisitedGeneral:      new(bit.Set).Add(vertex),
		UnreachableCritical: new(bit.Set).Add(vertex),
	}
}

// Ratio is the heap key: accumulated reduced cost per unit length, with
// zero-length states mapped to 0.
func (s *State) Ratio() float64 {
	if s.Length == 0 {
		return 0
	}
	return s.Cost / s.Length
}

// Extend creates the successor label over the arc to vertex v. The caller
// has already screened the extension (critical reuse, 2-cycle, budget).
func (s *State) Extend(v int, arcLen, costDelta, prize float64, critical bool) *State {
	n := &State{
		Forward:             s.Forward,
		Vertex:              v,
		Cost:                s.Cost + costDelta,
		Score:               s.Score + prize,
		Length:              s.Length + arcLen,
		Parent:              s,
		Pred:                s.Vertex,
		VisitedCritical:     copyBitSet(s.VisitedCritical),
		VisitedGeneral:      copyBitSet(s.VisitedGeneral),
		UnreachableCritical: copyBitSet(s.UnreachableCritical),
		HasCycle:            s.HasCycle,
	}
	if critical {
		n.VisitedCritical.Add(v)
	}
	if n.VisitedGeneral.Contains(v) {
		n.HasCycle = true
	} else {
		n.VisitedGeneral.Add(v)
	}
	return n
}

// UsedCriticalVertex reports whether v is closed for this label: either
// already visited as critical or marked unreachable-critical.
func (s *State) UsedCriticalVertex(v int) bool {
	return s.VisitedCritical.Contains(v) || s.UnreachableCritical.Contains(v)
}

// Path materializes the represented path. Forward states yield source..u,
// backward states yield v..sink.
func (s *State) Path() []int {
	var rev []int
	for cur := s; cur != nil; cur = cur.Parent {
		rev = append(rev, cur.Vertex)
	}
	if s.Forward {
		for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
			rev[i], rev[j] = rev[j], rev[i]
		}
	}
	return rev
}

func (s *State) HasCommonCriticalVisits(o *State) bool {
	return bitSetsIntersect(s.VisitedCritical, o.VisitedCritical)
}

func (s *State) HasCommonGeneralVisits(o *State) bool {
	return bitSetsIntersect(s.VisitedGeneral, o.VisitedGeneral)
}

// Dominates implements the dominance test between two labels at the same
// vertex and direction. The resource comparison uses the union of
// visited-critical and unreachable-critical bits; with useVisitCondition
// the visited-critical set alone must also be contained.
func (s *State) Dominates(o *State, eps float64, useVisitCondition bool) bool {
	costLT := s.Cost < o.Cost-eps
	if !costLT && math.Abs(s.Cost-o.Cost) > eps {
		return false
	}
	lenLT := s.Length < o.Length-eps
	if !lenLT && math.Abs(s.Length-o.Length) > eps {
		return false
	}
	if !unionSubset(s.VisitedCritical, s.UnreachableCritical, o.VisitedCritical, o.UnreachableCritical) {
		return false
	}
	if useVisitCondition && !bitSubset(s.VisitedCritical, o.VisitedCritical) {
		return false
	}
	if costLT || lenLT {
		return true
	}
	// Equal cost and length: dominate only with strictly fewer resources.
	return !unionSubset(o.VisitedCritical, o.UnreachableCritical, s.VisitedCritical, s.UnreachableCritical)
}

func copyBitSet(s *bit.Set) *bit.Set {
	c := new(bit.Set)
	s.Visit(func(n int) (skip bool) {
		c.Add(n)
		return false
	})
	return c
}

func bitSetsIntersect(a, b *bit.Set) bool {
	found := false
	a.Visit(func(n int) (skip bool) {
		if b.Contains(n) {
			found = true
			return true
		}
		return false
	})
	return found
}

// bitSubset reports a ⊆ b.
func bitSubset(a, b *bit.Set) bool {
	ok := true
	a.Visit(func(n int) (skip bool) {
		if !b.Contains(n) {
			ok = false
			return true
		}
		return false
	})
	return ok
}

// unionSubset reports (a1 ∪ a2) ⊆ (b1 ∪ b2) without materializing unions.
func unionSubset(a1, a2, b1, b2 *bit.Set) bool {
	ok := true
	check := func(n int) (skip bool) {
		if !b1.Contains(n) && !b2.Contains(n) {
			ok = false
			return true
		}
		return false
	}
	a1.Visit(check)
	if ok {
		a2.Visit(check)
	}
	return ok
}

// stateHeap is a min-heap on State.Ratio for the unprocessed queues.
type stateHeap []*State

func (h stateHeap) Len() int            { return len(h) }
func (h stateHeap) Less(i, j int) bool  { return h[i].Ratio() < h[j].Ratio() }
func (h stateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *stateHeap) Push(x interface{}) { *h = append(*h, x.(*State)) }
func (h *stateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}
