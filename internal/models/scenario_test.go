package models_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bosque/internal/data"
	"bosque/internal/metrics"
	"bosque/internal/models"
)

// Cenário fim-a-fim: n=1000, p=5, rótulo 1 sse feature 0 > 0.5, 50 árvores,
// mtry=2, semente 123. Espera-se AUC de teste acima de 0.95 e importância da
// feature 0 pelo menos 5x a média das features de ruído.
func TestEndToEndScenario(t *testing.T) {
	train := data.GenerateScenario(1000, 5, 123)
	test := data.GenerateScenario(400, 5, 456)

	rf := models.NewRandomForest()
	rf.Config.NumTrees = 50
	rf.Config.Mtry = 2
	rf.Config.MaxDepth = 0
	rf.Config.Seed = 123
	require.NoError(t, rf.Fit(train.X, train.Y))

	proba, err := rf.PredictProba(test.X)
	require.NoError(t, err)
	roc, err := metrics.ROC(test.Y, proba)
	require.NoError(t, err)
	assert.Greater(t, metrics.AUC(roc), 0.95)

	imps, err := rf.PermutationImportance(train.X, train.Y)
	require.NoError(t, err)
	noiseMean := 0.0
	for _, imp := range imps[1:] {
		noiseMean += imp.Mean
	}
	noiseMean /= 4
	assert.GreaterOrEqual(t, imps[0].Mean, 5*math.Abs(noiseMean))
	assert.Greater(t, imps[0].Mean, 0.0)
}

// Cenário degenerado: todo rótulo 0. A matriz de confusão reporta TP=0 e
// FP=0 (o modelo prediz a taxa base zero) e a curva ROC é indefinida, sem
// pânico.
func TestEndToEndDegenerateSingleClass(t *testing.T) {
	d := data.GenerateScenario(200, 3, 9)
	y := make([]int, 200)

	bg := models.NewBagging()
	bg.Config.NumTrees = 10
	bg.Config.Seed = 9
	require.NoError(t, bg.Fit(d.X, y))

	proba, err := bg.PredictProba(d.X)
	require.NoError(t, err)
	cm, err := metrics.Confusion(y, proba, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0, cm.TP)
	assert.Equal(t, 0, cm.FP)
	assert.Equal(t, 200, cm.TN)

	_, err = metrics.ROC(y, proba)
	require.ErrorIs(t, err, models.ErrDegenerateInput)
}

// A média de probabilidades entre árvores é associativa a menos de
// arredondamento; a comparação usa tolerância.
func TestEnsembleProbabilityWithinTolerance(t *testing.T) {
	d := data.GenerateScenario(300, 4, 11)

	a := models.NewRandomForest()
	a.Config.NumTrees = 16
	a.Config.Seed = 3
	a.Config.Workers = 1
	require.NoError(t, a.Fit(d.X, d.Y))

	b := models.NewRandomForest()
	b.Config.NumTrees = 16
	b.Config.Seed = 3
	b.Config.Workers = 8
	require.NoError(t, b.Fit(d.X, d.Y))

	pa, err := a.PredictProba(d.X)
	require.NoError(t, err)
	pb, err := b.PredictProba(d.X)
	require.NoError(t, err)
	for i := range pa {
		assert.InDelta(t, pa[i], pb[i], 1e-12)
	}
}
