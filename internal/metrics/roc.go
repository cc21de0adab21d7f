package metrics

import (
    "fmt"
    "sort"

    "bosque/internal/models"
)

// Point é um par (taxa de falsos positivos, taxa de verdadeiros positivos).
type Point struct {
    FPR float64
    TPR float64
}

// Curve é a sequência de pontos da curva ROC, não-decrescente nas duas
// coordenadas por construção: começa em (0,0) e termina em (1,1), com um
// ponto por valor distinto de probabilidade varrido de 1 até 0.
type Curve []Point

// ROC ordena por probabilidade decrescente e varre o limiar por cada valor
// distinto. Com uma única classe no ground truth a curva é indefinida e o
// erro de entrada degenerada é devolvido em vez de um NaN silencioso.
func ROC(yTrue []int, proba []float64) (Curve, error) {
    if err := checkPairs(yTrue, proba); err != nil { return nil, err }

    pos, neg := 0, 0
    for _, v := range yTrue {
        if v == 1 { pos++ } else { neg++ }
    }
    if pos == 0 || neg == 0 {
        return nil, fmt.Errorf("%w: uma única classe no ground truth, curva ROC indefinida", models.ErrDegenerateInput)
    }

    ord := make([]int, len(yTrue))
    for i := range ord { ord[i] = i }
    sort.Slice(ord, func(a, b int) bool { return proba[ord[a]] > proba[ord[b]] })

    curve := Curve{{0, 0}}
    tp, fp := 0, 0
    for j := 0; j < len(ord); j++ {
        i := ord[j]
        if yTrue[i] == 1 { tp++ } else { fp++ }
        // fecha o ponto quando o próximo valor de probabilidade muda
        if j+1 < len(ord) && proba[ord[j+1]] == proba[i] { continue }
        curve = append(curve, Point{
            FPR: float64(fp) / float64(neg),
            TPR: float64(tp) / float64(pos),
        })
    }
    last := curve[len(curve)-1]
    if last.FPR != 1 || last.TPR != 1 {
        curve = append(curve, Point{1, 1})
    }
    return curve, nil
}

// AUC integra a curva pelo trapézio sobre o eixo FPR; o resultado fica em
// [0,1] e vale 0.5 para um preditor constante.
func AUC(curve Curve) float64 {
    auc := 0.0
    for i := 1; i < len(curve); i++ {
        auc += (curve[i].FPR - curve[i-1].FPR) * (curve[i].TPR + curve[i-1].TPR) / 2.0
    }
    return auc
}
