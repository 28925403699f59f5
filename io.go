package top

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadInstance parses the text instance format
//
//	n  <numVertices>
//	m  <numVehicles>
//	b  <budget>
//	<x> <y> <prize>     (one line per vertex)
//
// with runs of spaces or tabs as separators. Vertex 0 is the source, vertex
// n-1 the destination. fleetOverride > 0 replaces the fleet size and
// removeVertices drops vertices from the graph, both for sensitivity
// analysis.
func ReadInstance(path string, fleetOverride int, removeVertices []int) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var (
		n      = -1
		m      = -1
		budget = -1.0
	)
	var coordinates [][]float64
	var prizes []float64

	for lineNo, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: malformed line %q", lineNo+1, line)
		}
		switch strings.ToLower(fields[0]) {
		case "n":
			n, err = strconv.Atoi(fields[1])
		case "m":
			m, err = strconv.Atoi(fields[1])
		case "b":
			budget, err = strconv.ParseFloat(fields[1], 64)
		default:
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: expected <x> <y> <prize>, got %q", lineNo+1, line)
			}
			var x, y, p float64
			if x, err = strconv.ParseFloat(fields[0], 64); err == nil {
				if y, err = strconv.ParseFloat(fields[1], 64); err == nil {
					p, err = strconv.ParseFloat(fields[2], 64)
				}
			}
			coordinates = append(coordinates, []float64{x, y})
			prizes = append(prizes, p)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %s", lineNo+1, err.Error())
		}
	}

	if n < 0 || m < 1 || budget <= 0 {
		return nil, fmt.Errorf("instance %s: missing or invalid n/m/b header", path)
	}
	if len(coordinates) != n {
		return nil, fmt.Errorf("instance %s: expected %d vertex lines, got %d", path, n, len(coordinates))
	}
	if fleetOverride > 0 {
		m = fleetOverride
	}

	inst := &Instance{
		Name:        filepath.Base(path),
		Coordinates: coordinates,
		Prizes:      prizes,
		Source:      0,
		Sink:        n - 1,
		NumVehicles: m,
		Budget:      budget,
	}
	inst.Graph = BuildEuclideanGraph(coordinates, inst.Source, inst.Sink, budget)

	for _, v := range removeVertices {
		if v == inst.Source || v == inst.Sink {
			return nil, fmt.Errorf("instance %s: cannot remove terminal vertex %d", path, v)
		}
		if !inst.Graph.HasVertex(v) {
			return nil, ErrMissingVertex
		}
		inst.Graph.RemoveVertex(v)
	}
	return inst, nil
}

// WriteSolution marshals the KPI block to YAML.
func WriteSolution(path string, sol *Solution) error {
	out, err := yaml.Marshal(sol)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// ReadSolution reads a KPI file back, used by the analyzer.
func ReadSolution(path string) (*Solution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sol Solution
	if err := yaml.Unmarshal(data, &sol); err != nil {
		return nil, err
	}
	return &sol, nil
}
