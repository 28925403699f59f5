/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.solver4all.com/azaryc2s/top"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

var (
	instName  *string
	instPath  *string
	outputF   *string
	timeLimit *int
	algorithm *int
	fleetSize *int
	logLvl    *int
	solvers   *int
	rmVerts   top.ArrayIntFlags
)

func main() {
	instName = flag.String("n", "p2.2.a.txt", "Instance file name")
	instPath = flag.String("p", ".", "Instance folder path")
	outputF = flag.String("o", "", "Output KPI file path (YAML). Defaults to <instance>.kpi.yaml")
	timeLimit = flag.Int("t", 3600, "Time limit in seconds")
	algorithm = flag.Int("a", top.ALG_BRANCHANDPRICE, "Algorithm: 0 = enumerate, 1 = branch-and-price")
	fleetSize = flag.Int("f", 0, "Adjusted fleet size for sensitivity analysis (0 keeps the instance value)")
	solvers = flag.Int("s", 1, "Number of parallel node solvers")
	logLvl = flag.Int("log", 2, "Level of the logging output. Higher value is more verbose. Range 1-4")
	flag.Var(&rmVerts, "v", "Vertex to remove for sensitivity analysis (repeatable)")

	flag.Parse()
	top.InitLoggers(*logLvl)

	if *timeLimit <= 0 {
		top.Log(1, "Time limit must be a positive number of seconds, got %d", *timeLimit)
		os.Exit(1)
	}

	inputFile := filepath.Join(*instPath, *instName)
	inst, err := top.ReadInstance(inputFile, *fleetSize, rmVerts)
	if err != nil {
		top.Log(1, "At %s: %s", inputFile, err.Error())
		os.Exit(1)
	}
	top.Log(2, "Loaded instance %s: %d vertices, %d vehicles, budget %.2f",
		inst.Name, inst.Graph.NumVertices(), inst.NumVehicles, inst.Budget)

	par := top.DefaultParams()
	par.NumSolvers = *solvers
	par.TimeLimitInSeconds = *timeLimit

	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	sysInfo := top.SysInfo{}
	if hostStat != nil {
		sysInfo.Platform = hostStat.Platform
	}
	if len(cpuStat) > 0 {
		sysInfo.CPU = cpuStat[0].ModelName
	}
	if vmStat != nil {
		sysInfo.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}

	ctx := context.Background()
	startTime := time.Now()

	var res *top.Result
	switch *algorithm {
	case top.ALG_ENUMERATE:
		res, err = top.SolveEnumerate(ctx, inst, par)
	case top.ALG_BRANCHANDPRICE:
		res, err = top.SolveBranchAndPrice(ctx, inst, par)
	default:
		top.Log(1, "Unsupported algorithm: %d", *algorithm)
		os.Exit(1)
	}
	elapsed := time.Since(startTime)
	if err != nil {
		top.Log(1, "At %s: %s", inputFile, err.Error())
		os.Exit(1)
	}

	sol := top.ResultSolution(inst, res, elapsed)
	sol.System = sysInfo
	sol.Optimal = elapsed.Seconds() < float64(*timeLimit)
	sol.Comment = fmt.Sprintf("Solver-Settings: Algorithm=%d, NumSolvers=%d", *algorithm, par.NumSolvers)

	outFile := *outputF
	if outFile == "" {
		outFile = inputFile + ".kpi.yaml"
	}
	if err := top.WriteSolution(outFile, sol); err != nil {
		top.Log(1, "At %s: %s", outFile, err.Error())
		os.Exit(1)
	}

	top.Log(2, "Found a TOP solution with obj-value of %.2f (%d nodes, %d feasible, %d parallel)",
		sol.Objective, sol.NumCreatedNodes, sol.NumFeasibleNodes, sol.MaxParallelSolves)
	for _, route := range sol.Routes {
		top.Log(2, "Route: %v", route)
	}
}
