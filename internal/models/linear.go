package models

import "math"

// LogisticRegression é a baseline linear do harness: descida de gradiente em
// lote sobre a log-verossimilhança, viés inicializado no logit da taxa base.
type LogisticRegression struct {
    LearningRate float64
    Epochs       int
    Weights      []float64
    Bias         float64
}

func NewLogisticRegression() *LogisticRegression {
    return &LogisticRegression{LearningRate: 0.1, Epochs: 200}
}

func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
    if err := checkXY(X, y); err != nil { return err }
    n := len(X)
    p := len(X[0])

    pos := 0
    for i := 0; i < n; i++ { if y[i] == 1 { pos++ } }
    base := float64(pos) / float64(n)
    if base <= 1e-3 { base = 1e-3 }
    if base >= 1-1e-3 { base = 1 - 1e-3 }
    lr.Bias = math.Log(base / (1.0 - base))
    lr.Weights = make([]float64, p)

    grad := make([]float64, p)
    for epoch := 0; epoch < lr.Epochs; epoch++ {
        for j := range grad { grad[j] = 0 }
        gradB := 0.0
        for i := 0; i < n; i++ {
            r := float64(y[i]) - sigmoid(lr.scoreOne(X[i]))
            for j := 0; j < p; j++ { grad[j] += r * X[i][j] }
            gradB += r
        }
        for j := 0; j < p; j++ {
            lr.Weights[j] += lr.LearningRate * grad[j] / float64(n)
        }
        lr.Bias += lr.LearningRate * gradB / float64(n)
    }
    return nil
}

func (lr *LogisticRegression) scoreOne(x []float64) float64 {
    z := lr.Bias
    for j := range lr.Weights { z += lr.Weights[j] * x[j] }
    return z
}

func (lr *LogisticRegression) PredictProba(X [][]float64) ([]float64, error) {
    if err := lr.checkWidth(X); err != nil { return nil, err }
    out := make([]float64, len(X))
    for i := range X { out[i] = sigmoid(lr.scoreOne(X[i])) }
    return out, nil
}

func (lr *LogisticRegression) Predict(X [][]float64) ([]int, error) {
    ps, err := lr.PredictProba(X)
    if err != nil { return nil, err }
    return probaToLabels(ps, 0.5), nil
}

func (lr *LogisticRegression) checkWidth(X [][]float64) error {
    if len(lr.Weights) == 0 {
        return errNotFitted("LogisticRegression")
    }
    for i := range X {
        if len(X[i]) != len(lr.Weights) {
            return errWidth(len(X[i]), len(lr.Weights))
        }
    }
    return nil
}
