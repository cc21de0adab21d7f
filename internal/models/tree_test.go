package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeLearnsThresholdSplit(t *testing.T) {
	// rótulo 1 sse x0 > 0.5: uma árvore sem limite de profundidade separa
	// perfeitamente o treino
	X := [][]float64{{0.1}, {0.2}, {0.3}, {0.4}, {0.6}, {0.7}, {0.8}, {0.9}}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}

	dt := NewDecisionTree()
	dt.MaxDepth = 0
	require.NoError(t, dt.Fit(X, y))

	preds, err := dt.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, preds)

	root := dt.Nodes[dt.Root]
	require.False(t, root.Leaf)
	assert.Equal(t, 0, root.Feature)
	assert.InDelta(t, 0.5, root.Threshold, 1e-12)
}

func TestTreePureNodeIsLeaf(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	y := []int{1, 1, 1}
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	require.Len(t, dt.Nodes, 1)
	assert.True(t, dt.Nodes[dt.Root].Leaf)
	assert.Equal(t, 1.0, dt.Nodes[dt.Root].Proba)
}

func TestTreeDegenerateFeaturesBecomeLeaf(t *testing.T) {
	// nenhuma feature tem mais de um valor distinto: sem limiar válido
	X := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	y := []int{0, 1, 0, 1}
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	require.Len(t, dt.Nodes, 1)
	assert.True(t, dt.Nodes[dt.Root].Leaf)
	assert.Equal(t, 0.5, dt.Nodes[dt.Root].Proba)
}

func TestTreeMaxDepthStops(t *testing.T) {
	X := [][]float64{{0.1}, {0.2}, {0.3}, {0.4}, {0.6}, {0.7}, {0.8}, {0.9}}
	y := []int{0, 1, 0, 1, 0, 1, 0, 1}
	dt := NewDecisionTree()
	dt.MaxDepth = 1
	require.NoError(t, dt.Fit(X, y))
	for _, n := range dt.Nodes {
		if n.Leaf { continue }
		assert.True(t, dt.Nodes[n.Left].Leaf)
		assert.True(t, dt.Nodes[n.Right].Leaf)
	}
}

func TestTreeMinSamplesLeaf(t *testing.T) {
	X := [][]float64{{0.1}, {0.2}, {0.9}}
	y := []int{0, 0, 1}
	dt := NewDecisionTree()
	dt.MinSamplesLeaf = 3
	require.NoError(t, dt.Fit(X, y))
	require.Len(t, dt.Nodes, 1)
	assert.True(t, dt.Nodes[dt.Root].Leaf)
}

func TestTreeTieBreakLowestFeature(t *testing.T) {
	// duas features idênticas e igualmente informativas: o empate fica com o
	// menor índice
	X := [][]float64{{0, 0}, {0, 0}, {1, 1}, {1, 1}}
	y := []int{0, 0, 1, 1}
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	root := dt.Nodes[dt.Root]
	require.False(t, root.Leaf)
	assert.Equal(t, 0, root.Feature)
}

func TestTreeInvalidInput(t *testing.T) {
	dt := NewDecisionTree()
	require.ErrorIs(t, dt.Fit(nil, nil), ErrInvalidArgument)
	require.ErrorIs(t, dt.Fit([][]float64{{1}}, []int{1, 0}), ErrInvalidArgument)
	require.ErrorIs(t, dt.Fit([][]float64{{1}, {2, 3}}, []int{0, 1}), ErrInvalidArgument)
	require.ErrorIs(t, dt.Fit([][]float64{{1}, {2}}, []int{0, 2}), ErrInvalidArgument)

	dt.Mtry = 3
	require.ErrorIs(t, dt.Fit([][]float64{{1, 2}, {3, 4}}, []int{0, 1}), ErrInvalidArgument)
}

func TestTreeWidthMismatchAtPredict(t *testing.T) {
	X := [][]float64{{0.1, 1}, {0.9, 2}}
	y := []int{0, 1}
	dt := NewDecisionTree()
	require.NoError(t, dt.Fit(X, y))
	_, err := dt.PredictProba([][]float64{{0.5}})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTreeDeterminism(t *testing.T) {
	d := scenarioData(300, 4, 5)
	a := NewDecisionTree()
	a.Seed = 9
	a.Mtry = 2
	require.NoError(t, a.Fit(d.X, d.Y))
	b := NewDecisionTree()
	b.Seed = 9
	b.Mtry = 2
	require.NoError(t, b.Fit(d.X, d.Y))
	require.Equal(t, a.Nodes, b.Nodes)
	require.Equal(t, a.Root, b.Root)
}
