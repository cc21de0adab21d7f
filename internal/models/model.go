package models

// Model é o contrato comum do harness: os erros de argumento são detectados
// no início de Fit/Predict, nunca no meio do cálculo.
type Model interface {
    Fit(X [][]float64, y []int) error
    Predict(X [][]float64) ([]int, error)
    PredictProba(X [][]float64) ([]float64, error)
    Name() string
}
