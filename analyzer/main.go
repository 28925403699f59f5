package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"git.solver4all.com/azaryc2s/top"
)

func main() {
	if len(os.Args) < 2 {
		log.Printf("No arguments passed!")
		return
	}
	dirName := os.Args[1]
	dir, err := os.ReadDir(dirName)
	if err != nil {
		log.Printf("Couldn't open directory %s: %s\n", os.Args[1], err.Error())
		return
	}
	fmt.Printf("Instance,Optimal,Time,Objective,DualUpperBound,Gap,Nodes,Feasible,MaxParallel,Comment\n")
	for _, f := range dir {
		fileName := dirName + "/" + f.Name()
		if !strings.Contains(fileName, ".kpi.yaml") {
			continue
		}
		sol, err := top.ReadSolution(fileName)
		if err != nil {
			log.Printf("Couldn't parse %s: %s\n", f.Name(), err.Error())
			return
		}
		gap := 0.0
		if sol.Objective > 0 && sol.DualUpperBound > 0 {
			gap = (sol.DualUpperBound - sol.Objective) / sol.Objective
		}
		fmt.Printf("%s,%t,%.2f,%.2f,%.2f,%.4f,%d,%d,%d,%s\n",
			sol.Instance, sol.Optimal, sol.TimeSeconds, sol.Objective, sol.DualUpperBound,
			gap, sol.NumCreatedNodes, sol.NumFeasibleNodes, sol.MaxParallelSolves, sol.Comment)
	}
}
