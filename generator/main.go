package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"git.solver4all.com/azaryc2s/top"
)

var (
	nodes    top.ArrayIntFlags
	vehicles top.ArrayIntFlags
	name     *string
	output   *string
	count    *int
	budgetF  *float64
	prizeTo  *int
	xTo      *int
	yTo      *int
)

func main() {
	flag.Var(&nodes, "n", "List of number of vertices")
	flag.Var(&vehicles, "m", "List of number of vehicles")
	name = flag.String("name", "zarychta", "Name for the instance")
	output = flag.String("outputDir", ".", "Output directory")
	count = flag.Int("count", 1, "Number of instances per combination")
	budgetF = flag.Float64("b", 0, "Budget. 0 derives it from the source-to-sink distance")
	prizeTo = flag.Int("prize", 100, "Max prize value per vertex")
	xTo = flag.Int("x", 100, "Max value on the x-axis")
	yTo = flag.Int("y", 100, "Max value on the y-axis")

	flag.Parse()
	top.InitLoggers(2)

	for l := 0; l < *count; l++ {
		rand.Seed(time.Now().UnixNano())
		for i := 0; i < len(nodes); i++ {
			n := nodes[i]
			coordinates := make([][]float64, n)
			prizes := make([]float64, n)
			for node := 0; node < n; node++ {
				coordinates[node] = []float64{float64(rand.Intn(*xTo)), float64(rand.Intn(*yTo))}
				prizes[node] = float64(rand.Intn(*prizeTo))
			}
			// Terminals carry no prize.
			prizes[0] = 0
			prizes[n-1] = 0

			budget := *budgetF
			if budget <= 0 {
				// Twice the source-to-sink distance; half the sum of the
				// axis ranges when the two terminals coincide.
				budget = top.EuclideanDist(coordinates[0], coordinates[n-1]) * 2
				if budget <= 0 {
					budget = float64(*xTo+*yTo) / 2
				}
			}

			for j := 0; j < len(vehicles); j++ {
				m := vehicles[j]
				instName := fmt.Sprintf("%s_%d_%d_%d", *name, n, m, l)
				var sb strings.Builder
				fmt.Fprintf(&sb, "n\t%d\n", n)
				fmt.Fprintf(&sb, "m\t%d\n", m)
				fmt.Fprintf(&sb, "b\t%.2f\n", budget)
				for node := 0; node < n; node++ {
					fmt.Fprintf(&sb, "%.2f\t%.2f\t%.2f\n", coordinates[node][0], coordinates[node][1], prizes[node])
				}
				fileName := fmt.Sprintf("%s/%s.txt", *output, instName)
				err := os.WriteFile(fileName, []byte(sb.String()), 0644)
				if err != nil {
					top.Log(1, "At %s: %s", fileName, err.Error())
					os.Exit(1)
				}
			}
		}
	}
}
