package models

import (
    "fmt"
    "math"

    "golang.org/x/sync/errgroup"
)

// ImportanceScore é o aumento médio do erro OOB de uma feature quando os seus
// valores são embaralhados, com o desvio padrão entre árvores. A ordem da
// tabela é a ordem das features.
//
// Uma feature com muitos valores distintos oferece mais pontos de corte ao
// construtor por pura combinatória, inflando a chance de ser escolhida em
// algum nó mesmo sem informação. Esse viés de cardinalidade é propriedade do
// método, documentada e testada, não um defeito a corrigir.
type ImportanceScore struct {
    Feature int
    Mean    float64
    Std     float64
    Trees   int
}

// PermutationImportance mede, por feature e por árvore, a diferença de erro
// de classificação nas amostras OOB da árvore antes e depois de embaralhar a
// coluna da feature (permutação nova por árvore, derivada da continuação do
// fluxo aleatório daquela árvore), e agrega média e desvio padrão entre
// árvores. X e y devem ser o dataset de treino.
func (e *Ensemble) PermutationImportance(X [][]float64, y []int) ([]ImportanceScore, error) {
    if err := e.checkTrained(X); err != nil { return nil, err }
    if err := checkXY(X, y); err != nil { return nil, err }
    if len(X) != e.NumSamples {
        return nil, fmt.Errorf("%w: %d observações, ensemble treinado com %d", ErrInvalidArgument, len(X), e.NumSamples)
    }
    if singleClass(y) {
        return nil, fmt.Errorf("%w: uma única classe presente, importância indefinida", ErrDegenerateInput)
    }

    p := e.NumFeatures
    nTrees := len(e.Trees)
    // deltas[f][k]: contribuição da árvore k para a feature f; NaN quando a
    // árvore não tem amostras OOB.
    deltas := make([][]float64, p)
    for f := range deltas {
        deltas[f] = make([]float64, nTrees)
        for k := range deltas[f] { deltas[f][k] = math.NaN() }
    }

    workers := e.Config.Workers
    if workers <= 0 { workers = 1 }
    var g errgroup.Group
    g.SetLimit(workers)
    for k := range e.Trees {
        k := k
        g.Go(func() error {
            e.importanceForTree(k, X, y, deltas)
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }

    scores := make([]ImportanceScore, p)
    for f := 0; f < p; f++ {
        count := 0
        sum := 0.0
        for k := 0; k < nTrees; k++ {
            if !math.IsNaN(deltas[f][k]) {
                sum += deltas[f][k]
                count++
            }
        }
        if count == 0 {
            return nil, fmt.Errorf("%w: nenhuma árvore com amostras OOB", ErrEmptyAggregate)
        }
        mean := sum / float64(count)
        varsum := 0.0
        for k := 0; k < nTrees; k++ {
            if !math.IsNaN(deltas[f][k]) {
                d := deltas[f][k] - mean
                varsum += d * d
            }
        }
        std := 0.0
        if count > 1 { std = math.Sqrt(varsum / float64(count-1)) }
        scores[f] = ImportanceScore{Feature: f, Mean: mean, Std: std, Trees: count}
    }
    return scores, nil
}

// importanceForTree preenche deltas[*][k]: copia as linhas OOB da árvore k,
// mede o erro base da própria árvore nelas e, feature a feature, embaralha a
// coluna, remede e restaura. As features são percorridas em ordem crescente
// para que o consumo do fluxo de embaralhamento seja determinístico.
func (e *Ensemble) importanceForTree(k int, X [][]float64, y []int, deltas [][]float64) {
    oob := e.Samples[k].OutOfBag
    m := len(oob)
    if m == 0 { return }
    dt := e.Trees[k]

    rows := make([][]float64, m)
    labels := make([]int, m)
    for j, i := range oob {
        rows[j] = append([]float64(nil), X[i]...)
        labels[j] = y[i]
    }
    base := treeError(dt, rows, labels)

    srs := shuffleSource(e.Config.Seed, k)
    col := make([]float64, m)
    for f := 0; f < e.NumFeatures; f++ {
        for j := range rows { col[j] = rows[j][f] }
        perm := srs.Perm(m)
        for j := range rows { rows[j][f] = col[perm[j]] }
        deltas[f][k] = treeError(dt, rows, labels) - base
        for j := range rows { rows[j][f] = col[j] }
    }
}

func treeError(dt *DecisionTree, rows [][]float64, labels []int) float64 {
    wrong := 0
    for j := range rows {
        pred := 0
        if dt.predictProbaOne(rows[j]) >= 0.5 { pred = 1 }
        if pred != labels[j] { wrong++ }
    }
    return float64(wrong) / float64(len(rows))
}

func singleClass(y []int) bool {
    if len(y) == 0 { return true }
    first := y[0]
    for _, v := range y {
        if v != first { return false }
    }
    return true
}
