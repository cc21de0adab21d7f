package models

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testData struct {
	X [][]float64
	Y []int
}

// scenarioData: rótulo 1 sse a feature 0 excede 0.5, demais features ruído
// uniforme independente.
func scenarioData(n, p int, seed int64) testData {
	rng := rand.New(rand.NewSource(seed))
	d := testData{X: make([][]float64, n), Y: make([]int, n)}
	for i := 0; i < n; i++ {
		row := make([]float64, p)
		for j := 0; j < p; j++ { row[j] = rng.Float64() }
		d.X[i] = row
		if row[0] > 0.5 { d.Y[i] = 1 }
	}
	return d
}

func newForest(kind string, trees, mtry int, seed int64) *Ensemble {
	var e *Ensemble
	if kind == "bagging" { e = NewBagging() } else { e = NewRandomForest() }
	e.Config.NumTrees = trees
	e.Config.Mtry = mtry
	e.Config.MaxDepth = 0
	e.Config.Seed = seed
	return e
}

func TestEnsembleFitDeterministic(t *testing.T) {
	d := scenarioData(400, 5, 3)

	a := newForest("rf", 20, 2, 77)
	a.Config.Workers = 4
	require.NoError(t, a.Fit(d.X, d.Y))

	b := newForest("rf", 20, 2, 77)
	b.Config.Workers = 1
	require.NoError(t, b.Fit(d.X, d.Y))

	// árvores bit-idênticas independentemente do número de workers
	require.Equal(t, len(a.Trees), len(b.Trees))
	for k := range a.Trees {
		require.Equal(t, a.Trees[k].Nodes, b.Trees[k].Nodes, "árvore %d divergente", k)
		require.Equal(t, a.Samples[k], b.Samples[k])
	}

	pa, err := a.PredictProba(d.X)
	require.NoError(t, err)
	pb, err := b.PredictProba(d.X)
	require.NoError(t, err)
	require.Equal(t, pa, pb)
}

func TestEnsembleSeparatesScenario(t *testing.T) {
	train := scenarioData(800, 5, 1)
	test := scenarioData(200, 5, 2)

	e := newForest("rf", 30, 2, 5)
	require.NoError(t, e.Fit(train.X, train.Y))

	preds, err := e.Predict(test.X)
	require.NoError(t, err)
	acc := 0
	for i := range preds {
		if preds[i] == test.Y[i] { acc++ }
	}
	assert.Greater(t, float64(acc)/float64(len(preds)), 0.9)
}

func TestBaggingResolvesMtryToAllFeatures(t *testing.T) {
	d := scenarioData(100, 4, 8)
	e := newForest("bagging", 5, 0, 1)
	require.NoError(t, e.Fit(d.X, d.Y))
	assert.Equal(t, 4, e.Config.Mtry)

	rf := newForest("rf", 5, 0, 1)
	require.NoError(t, rf.Fit(d.X, d.Y))
	assert.Equal(t, 2, rf.Config.Mtry)
}

func TestEnsembleConfigValidation(t *testing.T) {
	d := scenarioData(50, 3, 4)

	e := newForest("rf", 0, 0, 1)
	require.ErrorIs(t, e.Fit(d.X, d.Y), ErrInvalidArgument)

	e = newForest("rf", 5, 7, 1)
	require.ErrorIs(t, e.Fit(d.X, d.Y), ErrInvalidArgument)

	e = newForest("rf", 5, 0, 1)
	e.Config.MinSamplesLeaf = 0
	require.ErrorIs(t, e.Fit(d.X, d.Y), ErrInvalidArgument)
}

func TestEnsemblePredictBeforeFit(t *testing.T) {
	e := NewRandomForest()
	_, err := e.PredictProba([][]float64{{1, 2}})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEnsembleWidthMismatch(t *testing.T) {
	d := scenarioData(100, 3, 4)
	e := newForest("rf", 5, 0, 1)
	require.NoError(t, e.Fit(d.X, d.Y))
	_, err := e.PredictProba([][]float64{{1, 2}})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOOBError(t *testing.T) {
	d := scenarioData(600, 5, 10)
	e := newForest("rf", 40, 2, 21)
	require.NoError(t, e.Fit(d.X, d.Y))

	rep, err := e.OOBError(d.X, d.Y)
	require.NoError(t, err)
	assert.Equal(t, 600, rep.Evaluated+rep.Excluded)
	// com 40 árvores praticamente toda observação fica OOB em alguma
	assert.Less(t, rep.Excluded, 5)
	assert.Less(t, rep.Error, 0.2)
	assert.GreaterOrEqual(t, rep.Error, 0.0)
}

// Dataset de uma única observação: ela entra na amostra bootstrap de todas as
// árvores, nenhuma predição OOB existe.
func TestOOBErrorEmptyAggregate(t *testing.T) {
	X := [][]float64{{1, 2}}
	y := []int{1}
	e := newForest("rf", 3, 0, 1)
	require.NoError(t, e.Fit(X, y))
	_, err := e.OOBError(X, y)
	require.ErrorIs(t, err, ErrEmptyAggregate)
}

func TestOOBErrorWrongDataset(t *testing.T) {
	d := scenarioData(100, 3, 4)
	e := newForest("rf", 5, 0, 1)
	require.NoError(t, e.Fit(d.X, d.Y))
	_, err := e.OOBError(d.X[:50], d.Y[:50])
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEnsembleGobRoundTrip(t *testing.T) {
	d := scenarioData(200, 4, 6)
	e := newForest("rf", 10, 2, 9)
	require.NoError(t, e.Fit(d.X, d.Y))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(e))
	var loaded Ensemble
	require.NoError(t, gob.NewDecoder(&buf).Decode(&loaded))

	want, err := e.PredictProba(d.X)
	require.NoError(t, err)
	got, err := loaded.PredictProba(d.X)
	require.NoError(t, err)
	require.Equal(t, want, got)
	assert.Equal(t, e.Name(), loaded.Name())
}
