package metrics

import (
    "fmt"

    "bosque/internal/models"
)

// Matrix são as quatro contagens da matriz de confusão num limiar fixo.
type Matrix struct {
    TP int
    FP int
    TN int
    FN int
}

func (m Matrix) Total() int { return m.TP + m.FP + m.TN + m.FN }

func (m Matrix) Accuracy() float64 {
    t := m.Total()
    if t == 0 { return 0 }
    return float64(m.TP+m.TN) / float64(t)
}

func (m Matrix) Precision() float64 {
    if m.TP+m.FP == 0 { return 0 }
    return float64(m.TP) / float64(m.TP+m.FP)
}

func (m Matrix) Recall() float64 {
    if m.TP+m.FN == 0 { return 0 }
    return float64(m.TP) / float64(m.TP+m.FN)
}

func (m Matrix) F1() float64 {
    p, r := m.Precision(), m.Recall()
    if p+r == 0 { return 0 }
    return 2 * p * r / (p + r)
}

// Confusion conta TP/FP/TN/FN das probabilidades preditas contra os rótulos
// verdadeiros no limiar dado (proba >= thr prediz 1).
func Confusion(yTrue []int, proba []float64, thr float64) (Matrix, error) {
    if err := checkPairs(yTrue, proba); err != nil { return Matrix{}, err }
    var m Matrix
    for i := range yTrue {
        pred := 0
        if proba[i] >= thr { pred = 1 }
        switch {
        case pred == 1 && yTrue[i] == 1:
            m.TP++
        case pred == 1 && yTrue[i] == 0:
            m.FP++
        case pred == 0 && yTrue[i] == 0:
            m.TN++
        default:
            m.FN++
        }
    }
    return m, nil
}

func Accuracy(yTrue, yPred []int) float64 {
    if len(yTrue) == 0 { return 0 }
    c := 0
    for i := range yTrue {
        if yTrue[i] == yPred[i] { c++ }
    }
    return float64(c) / float64(len(yTrue))
}

// BestThresholdF1 varre 200 limiares uniformes e devolve o que maximiza F1.
func BestThresholdF1(yTrue []int, proba []float64) (thr float64, best float64) {
    if len(proba) == 0 { return 0.5, 0 }
    steps := 200
    best = -1
    thr = 0.5
    for i := 0; i <= steps; i++ {
        t := float64(i) / float64(steps)
        m, err := Confusion(yTrue, proba, t)
        if err != nil { return 0.5, 0 }
        if f1 := m.F1(); f1 > best { best = f1; thr = t }
    }
    return
}

func checkPairs(yTrue []int, proba []float64) error {
    if len(yTrue) == 0 {
        return fmt.Errorf("%w: sem observações", models.ErrInvalidArgument)
    }
    if len(yTrue) != len(proba) {
        return fmt.Errorf("%w: %d rótulos e %d probabilidades", models.ErrInvalidArgument, len(yTrue), len(proba))
    }
    for i, v := range yTrue {
        if v != 0 && v != 1 {
            return fmt.Errorf("%w: rótulo %d na posição %d, esperado 0/1", models.ErrInvalidArgument, v, i)
        }
    }
    return nil
}
