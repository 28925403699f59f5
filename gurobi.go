package top

import (
	"fmt"
	"sort"

	"git.solver4all.com/azaryc2s/gorobi/gurobi"
)

// GurobiOracleFactory builds set-cover masters on one owned gurobi
// environment. One factory per worker; the environment is freed on
// Dispose.
type GurobiOracleFactory struct {
	inst *Instance
	env  *gurobi.Env
}

func NewGurobiOracleFactory(inst *Instance, logFile string) (*GurobiOracleFactory, error) {
	env, err := gurobi.LoadEnv(logFile)
	if err != nil {
		return nil, err
	}
	env.SetIntParam("LogToConsole", int32(0))
	return &GurobiOracleFactory{inst: inst, env: env}, nil
}

func (f *GurobiOracleFactory) Dispose() {
	f.env.Free()
}

// Build assembles the restricted set-cover model:
//
//	max   sum score_k x_k - M*a
//	s.t.  sum_{k: v interior of r_k} x_k           <= 1   (per vertex != s,t)
//	      sum_k x_k                                <= m   (fleet size)
//	      sum_{k: v in r_k} x_k + a                >= 1   (per must-visit vertex)
//	      sum_{k: (u,v) in r_k} x_k + a            >= 1   (per must-visit edge)
//	      x_k in [0,1] (binary when asMip), a in [0,1]
func (f *GurobiOracleFactory) Build(routes []*Route, node *BBNode, asMip bool) (MasterOracle, error) {
	inst := f.inst
	numRoutes := len(routes)
	varCount := numRoutes + 1
	auxIndex := numRoutes

	objFun := make([]float64, varCount)
	varTypes := make([]int8, varCount)
	lb := make([]float64, varCount)
	ub := make([]float64, varCount)
	varNames := make([]string, varCount)
	for k, r := range routes {
		objFun[k] = r.Score
		if asMip {
			varTypes[k] = gurobi.BINARY
		} else {
			varTypes[k] = gurobi.CONTINUOUS
		}
		lb[k] = 0.0
		ub[k] = 1.0
		varNames[k] = fmt.Sprintf("X_%d", k)
	}
	objFun[auxIndex] = -AuxPenalty
	varTypes[auxIndex] = gurobi.CONTINUOUS
	lb[auxIndex] = 0.0
	ub[auxIndex] = 1.0
	varNames[auxIndex] = "a"

	model, err := f.env.NewModel("setcover", int32(varCount), objFun, lb, ub, varTypes, varNames)
	if err != nil {
		return nil, err
	}
	err = model.SetIntAttr(gurobi.INT_ATTR_MODELSENSE, gurobi.MAXIMIZE)
	if err != nil {
		model.Free()
		return nil, err
	}

	o := &gurobiOracle{
		model:     model,
		numRoutes: numRoutes,
		auxIndex:  auxIndex,
		asMip:     asMip,
		n:         inst.Graph.NumVertices(),
		source:    inst.Source,
		sink:      inst.Sink,
	}

	// Vertex-cover rows, one per interior vertex, in vertex order.
	for v := 0; v < o.n; v++ {
		if v == o.source || v == o.sink {
			continue
		}
		var (
			ind []int32
			val []float64
		)
		for k, r := range routes {
			if r.VisitsIntermediate(v) {
				ind = append(ind, int32(k))
				val = append(val, 1.0)
			}
		}
		err = model.AddConstr(ind, val, gurobi.LESS_EQUAL, 1.0, fmt.Sprintf("cover_%d", v))
		if err != nil {
			model.Free()
			return nil, err
		}
		o.coverRows = append(o.coverRows, v)
	}

	// Fleet-size row.
	{
		var (
			ind []int32
			val []float64
		)
		for k := range routes {
			ind = append(ind, int32(k))
			val = append(val, 1.0)
		}
		err = model.AddConstr(ind, val, gurobi.LESS_EQUAL, float64(inst.NumVehicles), "fleet")
		if err != nil {
			model.Free()
			return nil, err
		}
	}

	// Must-visit vertex rows, sorted for deterministic row indices.
	mvv := append([]int(nil), node.MustVisitVertices...)
	sort.Ints(mvv)
	for _, v := range mvv {
		ind := []int32{int32(auxIndex)}
		val := []float64{1.0}
		for k, r := range routes {
			if r.Visits(v) {
				ind = append(ind, int32(k))
				val = append(val, 1.0)
			}
		}
		err = model.AddConstr(ind, val, gurobi.GREATER_EQUAL, 1.0, fmt.Sprintf("mvv_%d", v))
		if err != nil {
			model.Free()
			return nil, err
		}
		o.mustVisitVertices = append(o.mustVisitVertices, v)
	}

	// Must-visit edge rows.
	mve := append([]Edge(nil), node.MustVisitEdges...)
	sort.Slice(mve, func(i, j int) bool {
		if mve[i].From != mve[j].From {
			return mve[i].From < mve[j].From
		}
		return mve[i].To < mve[j].To
	})
	for _, e := range mve {
		ind := []int32{int32(auxIndex)}
		val := []float64{1.0}
		for k, r := range routes {
			if r.UsesEdge(e.From, e.To) {
				ind = append(ind, int32(k))
				val = append(val, 1.0)
			}
		}
		err = model.AddConstr(ind, val, gurobi.GREATER_EQUAL, 1.0, fmt.Sprintf("mve_%d_%d", e.From, e.To))
		if err != nil {
			model.Free()
			return nil, err
		}
		o.mustVisitEdges = append(o.mustVisitEdges, e)
	}

	return o, nil
}

type gurobiOracle struct {
	model     *gurobi.Model
	numRoutes int
	auxIndex  int
	asMip     bool
	n         int
	source    int
	sink      int

	coverRows         []int
	mustVisitVertices []int
	mustVisitEdges    []Edge

	x  []float64
	pi []float64
	rc []float64
}

func (o *gurobiOracle) numRows() int {
	return len(o.coverRows) + 1 + len(o.mustVisitVertices) + len(o.mustVisitEdges)
}

func (o *gurobiOracle) Solve() (bool, error) {
	err := o.model.Optimize()
	if err != nil {
		return false, err
	}
	status, err := o.model.GetIntAttr(gurobi.INT_ATTR_STATUS)
	if err != nil {
		return false, err
	}
	if status == gurobi.INF_OR_UNBD {
		return false, nil
	}
	if status != gurobi.OPTIMAL {
		return false, fmt.Errorf("set-cover master stopped with status %d", status)
	}

	o.x, err = o.model.GetDblAttrArray(gurobi.DBL_ATTR_X, 0, int32(o.numRoutes+1))
	if err != nil {
		return false, err
	}
	if !o.asMip {
		o.pi, err = o.model.GetDblAttrArray(gurobi.DBL_ATTR_PI, 0, int32(o.numRows()))
		if err != nil {
			return false, err
		}
		if o.numRoutes > 0 {
			o.rc, err = o.model.GetDblAttrArray(gurobi.DBL_ATTR_RC, 0, int32(o.numRoutes))
			if err != nil {
				return false, err
			}
		} else {
			o.rc = nil
		}
	}
	return true, nil
}

func (o *gurobiOracle) Objective() (float64, error) {
	return o.model.GetDblAttr(gurobi.DBL_ATTR_OBJVAL)
}

func (o *gurobiOracle) Primal() ([]float64, error) {
	if o.x == nil {
		return nil, fmt.Errorf("primal requested before solve")
	}
	return o.x[:o.numRoutes], nil
}

func (o *gurobiOracle) AuxValue() (float64, error) {
	if o.x == nil {
		return 0, fmt.Errorf("aux value requested before solve")
	}
	return o.x[o.auxIndex], nil
}

func (o *gurobiOracle) RouteDual() (float64, error) {
	if o.pi == nil {
		return 0, fmt.Errorf("duals requested before LP solve")
	}
	return o.pi[len(o.coverRows)], nil
}

func (o *gurobiOracle) VertexDuals() ([]float64, error) {
	if o.pi == nil {
		return nil, fmt.Errorf("duals requested before LP solve")
	}
	duals := make([]float64, o.n)
	for i, v := range o.coverRows {
		duals[v] = o.pi[i]
	}
	return duals, nil
}

func (o *gurobiOracle) MustVisitVertexDuals() (map[int]float64, error) {
	if o.pi == nil {
		return nil, fmt.Errorf("duals requested before LP solve")
	}
	start := len(o.coverRows) + 1
	duals := make(map[int]float64, len(o.mustVisitVertices))
	for i, v := range o.mustVisitVertices {
		duals[v] = o.pi[start+i]
	}
	return duals, nil
}

func (o *gurobiOracle) MustVisitEdgeDuals() (map[Edge]float64, error) {
	if o.pi == nil {
		return nil, fmt.Errorf("duals requested before LP solve")
	}
	start := len(o.coverRows) + 1 + len(o.mustVisitVertices)
	duals := make(map[Edge]float64, len(o.mustVisitEdges))
	for i, e := range o.mustVisitEdges {
		duals[e] = o.pi[start+i]
	}
	return duals, nil
}

func (o *gurobiOracle) RouteVariableDuals() ([]float64, error) {
	if o.asMip {
		return nil, fmt.Errorf("variable reduced costs requested from a MIP solve")
	}
	return o.rc, nil
}

func (o *gurobiOracle) Dispose() {
	o.model.Free()
}
