package top

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const trivialInstanceText = "n\t3\nm\t1\nb\t10\n0 0 0\n1 0 7\n2 0 0\n"

func writeTempInstance(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p2.2.a.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadInstance(t *testing.T) {
	path := writeTempInstance(t, trivialInstanceText)
	inst, err := ReadInstance(path, 0, nil)
	require.NoError(t, err)

	require.Equal(t, "p2.2.a.txt", inst.Name)
	require.Equal(t, 0, inst.Source)
	require.Equal(t, 2, inst.Sink)
	require.Equal(t, 1, inst.NumVehicles)
	require.InDelta(t, 10.0, inst.Budget, 1e-9)
	require.InDelta(t, 7.0, inst.Prizes[1], 1e-9)
	require.True(t, inst.Graph.HasEdge(0, 1))
	require.True(t, inst.Graph.HasEdge(1, 2))
	require.False(t, inst.Graph.HasEdge(1, 0))
}

func TestReadInstanceMixedSeparators(t *testing.T) {
	path := writeTempInstance(t, "n  3\nm\t \t1\nb   10\n0\t0\t0\n1  0  7\n2\t0  0\n")
	inst, err := ReadInstance(path, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 3, inst.Graph.NumVertices())
}

func TestReadInstanceFleetOverride(t *testing.T) {
	path := writeTempInstance(t, trivialInstanceText)
	inst, err := ReadInstance(path, 4, nil)
	require.NoError(t, err)
	require.Equal(t, 4, inst.NumVehicles)
}

func TestReadInstanceRemoveVertices(t *testing.T) {
	path := writeTempInstance(t, "n\t4\nm\t1\nb\t10\n0 0 0\n1 0 7\n2 0 3\n3 0 0\n")
	inst, err := ReadInstance(path, 0, []int{1})
	require.NoError(t, err)
	require.False(t, inst.Graph.HasVertex(1))
	require.True(t, inst.Graph.HasVertex(2))

	_, err = ReadInstance(path, 0, []int{0})
	require.Error(t, err)

	_, err = ReadInstance(path, 0, []int{7})
	require.ErrorIs(t, err, ErrMissingVertex)
}

func TestReadInstanceRejectsBadHeader(t *testing.T) {
	path := writeTempInstance(t, "n 3\nm 1\n0 0 0\n1 0 7\n2 0 0\n")
	_, err := ReadInstance(path, 0, nil)
	require.Error(t, err)

	path = writeTempInstance(t, "n 4\nm 1\nb 10\n0 0 0\n1 0 7\n2 0 0\n")
	_, err = ReadInstance(path, 0, nil)
	require.Error(t, err)
}

func TestWriteSolutionKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.kpi.yaml")
	sol := &Solution{
		Instance:          "p2.2.a.txt",
		Objective:         7,
		NumCreatedNodes:   3,
		NumFeasibleNodes:  2,
		MaxParallelSolves: 1,
		TimeSeconds:       0.25,
		DualUpperBound:    7.5,
	}
	require.NoError(t, WriteSolution(path, sol))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	for _, key := range []string{
		"instance", "objective", "numCreatedNodes", "numFeasibleNodes",
		"maxParallelSolves", "timeSeconds", "dualUpperBound",
	} {
		require.Contains(t, decoded, key)
	}

	back, err := ReadSolution(path)
	require.NoError(t, err)
	require.Equal(t, sol.Instance, back.Instance)
	require.InDelta(t, sol.Objective, back.Objective, 1e-9)
	require.Equal(t, sol.NumCreatedNodes, back.NumCreatedNodes)
}
