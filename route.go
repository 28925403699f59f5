package top

import (
	"fmt"
	"strings"
)

// Route is a source-to-sink path produced by the pricing engine. Routes are
// value objects: once built they are appended to the master's column pool
// and never mutated.
type Route struct {
	Path        []int
	Score       float64
	Length      float64
	ReducedCost float64
	Elementary  bool
}

// NewRoute computes the cached score and length of a path on the given
// instance. The reduced cost depends on the duals of the generating LP and
// is filled in by the caller.
func NewRoute(inst *Instance, path []int) *Route {
	r := &Route{Path: append([]int(nil), path...)}
	for i := 1; i < len(path); i++ {
		w, _ := inst.Graph.Weight(path[i-1], path[i])
		r.Length += w
	}
	seen := make(map[int]int, len(path))
	r.Elementary = true
	for i, v := range path {
		seen[v]++
		if seen[v] > 1 {
			r.Elementary = false
		}
		if i > 0 && i < len(path)-1 && seen[v] == 1 {
			r.Score += inst.Prizes[v]
		}
	}
	return r
}

// Key is the identity of a route: the path alone. Two routes with the same
// vertex sequence are the same column.
func (r *Route) Key() string {
	var sb strings.Builder
	for i, v := range r.Path {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	return sb.String()
}

// Visits reports whether v occurs anywhere on the path.
func (r *Route) Visits(v int) bool {
	for _, u := range r.Path {
		if u == v {
			return true
		}
	}
	return false
}

// VisitsIntermediate reports whether v occurs strictly between the
// endpoints.
func (r *Route) VisitsIntermediate(v int) bool {
	for i := 1; i < len(r.Path)-1; i++ {
		if r.Path[i] == v {
			return true
		}
	}
	return false
}

// UsesEdge reports whether the arc (u,v) is traversed by the route.
func (r *Route) UsesEdge(u, v int) bool {
	for i := 1; i < len(r.Path); i++ {
		if r.Path[i-1] == u && r.Path[i] == v {
			return true
		}
	}
	return false
}

// VisitCounts returns the per-vertex multiplicity of the path.
func (r *Route) VisitCounts() map[int]int {
	counts := make(map[int]int, len(r.Path))
	for _, v := range r.Path {
		counts[v]++
	}
	return counts
}

func (r *Route) String() string {
	return fmt.Sprintf("route[%s] score=%.2f len=%.2f rc=%.4f", r.Key(), r.Score, r.Length, r.ReducedCost)
}
