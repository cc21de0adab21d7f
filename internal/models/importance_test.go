package models

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportanceInformativeFeatureDominates(t *testing.T) {
	d := scenarioData(1000, 5, 123)
	e := newForest("rf", 50, 2, 123)
	require.NoError(t, e.Fit(d.X, d.Y))

	imps, err := e.PermutationImportance(d.X, d.Y)
	require.NoError(t, err)
	require.Len(t, imps, 5)

	noiseMean := 0.0
	for _, imp := range imps[1:] { noiseMean += imp.Mean }
	noiseMean /= 4

	assert.Greater(t, imps[0].Mean, 0.0)
	assert.GreaterOrEqual(t, imps[0].Mean, 5*math.Abs(noiseMean))
}

// Uma feature independente do rótulo e de baixa cardinalidade tem importância
// média perto de zero com variância relativa alta.
func TestImportanceIndependentLowCardinality(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	n := 800
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		informative := rng.Float64()
		categorical := float64(rng.Intn(3))
		X[i] = []float64{informative, categorical}
		if informative > 0.5 { y[i] = 1 }
	}

	e := newForest("rf", 40, 1, 9)
	require.NoError(t, e.Fit(X, y))
	imps, err := e.PermutationImportance(X, y)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, imps[1].Mean, 0.05)
	assert.Greater(t, imps[0].Mean, imps[1].Mean)
}

func TestImportanceDeterministic(t *testing.T) {
	d := scenarioData(300, 4, 2)
	e := newForest("rf", 15, 2, 4)
	require.NoError(t, e.Fit(d.X, d.Y))

	a, err := e.PermutationImportance(d.X, d.Y)
	require.NoError(t, err)
	b, err := e.PermutationImportance(d.X, d.Y)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestImportanceSingleClass(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	y := []int{0, 0, 0}
	e := newForest("rf", 3, 0, 1)
	require.NoError(t, e.Fit(X, y))
	_, err := e.PermutationImportance(X, y)
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestImportanceScoresOrdered(t *testing.T) {
	d := scenarioData(500, 3, 77)
	e := newForest("bagging", 20, 0, 8)
	require.NoError(t, e.Fit(d.X, d.Y))
	imps, err := e.PermutationImportance(d.X, d.Y)
	require.NoError(t, err)
	for f, imp := range imps {
		assert.Equal(t, f, imp.Feature)
		assert.GreaterOrEqual(t, imp.Std, 0.0)
		assert.Greater(t, imp.Trees, 0)
	}
}
