package top

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnumerateRoutesTrivial(t *testing.T) {
	inst := lineInstance([]float64{0, 7, 0}, 1, 10)
	routes := EnumerateRoutes(inst, 0)
	require.Len(t, routes, 2)

	keys := map[string]bool{}
	for _, r := range routes {
		keys[r.Key()] = true
		require.True(t, r.Elementary)
		require.LessOrEqual(t, r.Length, inst.Budget)
	}
	require.True(t, keys["0,1,2"])
	require.True(t, keys["0,2"])
}

func TestEnumerateRoutesRespectsBudget(t *testing.T) {
	inst := lineInstance([]float64{0, 7, 0}, 1, 1)
	routes := EnumerateRoutes(inst, 0)
	require.Empty(t, routes)
}

func TestEnumerateRoutesLimit(t *testing.T) {
	inst := lineInstance([]float64{0, 1, 2, 3, 0}, 1, 50)
	all := EnumerateRoutes(inst, 0)
	require.Greater(t, len(all), 3)
	limited := EnumerateRoutes(inst, 3)
	require.Len(t, limited, 3)
}
