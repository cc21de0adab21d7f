package models

import (
    "fmt"
    "sort"
)

// TreeNode é a variante etiquetada do modelo: folha (Proba) ou nó interno
// (Feature/Threshold e filhos endereçados por índice na arena).
type TreeNode struct {
    Leaf      bool
    Proba     float64
    Feature   int
    Threshold float64
    Left      int32
    Right     int32
}

// DecisionTree é uma árvore CART binária com impureza de Gini, imutável após
// Fit. Os nós vivem numa arena endereçada por id inteiro; Root é o id da
// raiz. Mtry <= 0 considera todas as features (bagging); MaxDepth <= 0 cresce
// sem limite de profundidade.
type DecisionTree struct {
    MaxDepth       int
    MinSamplesLeaf int
    Mtry           int
    Seed           int64
    Nodes          []TreeNode
    Root           int32

    nFeatures int
}

func NewDecisionTree() *DecisionTree {
    return &DecisionTree{MaxDepth: 6, MinSamplesLeaf: 1, Seed: 1}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
    if err := checkXY(X, y); err != nil { return err }
    idx := make([]int, len(X))
    for i := range idx { idx[i] = i }
    return dt.FitIndices(X, y, idx, NewRandomSource(dt.Seed))
}

// FitIndices treina sobre um subconjunto de linhas (a amostra bootstrap, no
// caso do ensemble) consumindo sorteios de features do RandomSource dado.
func (dt *DecisionTree) FitIndices(X [][]float64, y []int, idx []int, rs *RandomSource) error {
    if err := checkXY(X, y); err != nil { return err }
    if len(idx) == 0 {
        return fmt.Errorf("%w: amostra vazia", ErrInvalidArgument)
    }
    p := len(X[0])
    if dt.Mtry > p {
        return fmt.Errorf("%w: mtry=%d maior que p=%d", ErrInvalidArgument, dt.Mtry, p)
    }
    if dt.MinSamplesLeaf <= 0 { dt.MinSamplesLeaf = 1 }
    dt.nFeatures = p
    dt.Nodes = dt.Nodes[:0]
    b := treeBuilder{tree: dt, X: X, y: y, rs: rs, p: p}
    dt.Root = b.grow(idx, 0, classProba(y, idx))
    return nil
}

func (dt *DecisionTree) PredictProba(X [][]float64) ([]float64, error) {
    if err := dt.checkWidth(X); err != nil { return nil, err }
    out := make([]float64, len(X))
    for i := range X { out[i] = dt.predictProbaOne(X[i]) }
    return out, nil
}

func (dt *DecisionTree) Predict(X [][]float64) ([]int, error) {
    ps, err := dt.PredictProba(X)
    if err != nil { return nil, err }
    return probaToLabels(ps, 0.5), nil
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
    if len(dt.Nodes) == 0 { return 0.5 }
    n := dt.Nodes[dt.Root]
    for !n.Leaf {
        if x[n.Feature] <= n.Threshold {
            n = dt.Nodes[n.Left]
        } else {
            n = dt.Nodes[n.Right]
        }
    }
    return n.Proba
}

func (dt *DecisionTree) checkWidth(X [][]float64) error {
    for i := range X {
        if len(X[i]) != dt.nFeatures && dt.nFeatures > 0 {
            return fmt.Errorf("%w: observação com %d features, modelo treinado com %d", ErrInvalidArgument, len(X[i]), dt.nFeatures)
        }
    }
    return nil
}

type treeBuilder struct {
    tree *DecisionTree
    X    [][]float64
    y    []int
    rs   *RandomSource
    p    int
}

func (b *treeBuilder) push(n TreeNode) int32 {
    b.tree.Nodes = append(b.tree.Nodes, n)
    return int32(len(b.tree.Nodes) - 1)
}

// grow é o passo recursivo do CART: folha em pureza, tamanho mínimo ou
// profundidade máxima; caso contrário avalia os pontos médios entre valores
// distintos consecutivos das mtry features sorteadas e fica com a maior
// redução de Gini. Empates ficam com a primeira candidata encontrada, e como
// as features são varridas em ordem crescente de índice e os limiares em
// ordem crescente de valor, isso equivale a menor índice e menor limiar.
func (b *treeBuilder) grow(idx []int, depth int, parentProba float64) int32 {
    if len(idx) == 0 {
        return b.push(TreeNode{Leaf: true, Proba: parentProba})
    }
    proba := classProba(b.y, idx)
    if proba == 0 || proba == 1 || len(idx) <= b.tree.MinSamplesLeaf || (b.tree.MaxDepth > 0 && depth >= b.tree.MaxDepth) {
        return b.push(TreeNode{Leaf: true, Proba: proba})
    }

    mtry := b.tree.Mtry
    if mtry <= 0 { mtry = b.p }
    feats, err := b.rs.FeatureSubset(mtry, b.p)
    if err != nil {
        // mtry validado no Fit; aqui só restaria p == 0
        return b.push(TreeNode{Leaf: true, Proba: proba})
    }
    sort.Ints(feats)

    best := splitCandidate{feature: -1}
    parentGini := gini(proba)
    for _, f := range feats {
        b.bestThresholdFor(f, idx, parentGini, &best)
    }
    if best.feature == -1 {
        // todas as candidatas degeneradas ou nenhuma redução de impureza
        return b.push(TreeNode{Leaf: true, Proba: proba})
    }

    left := make([]int, 0, len(idx))
    right := make([]int, 0, len(idx))
    for _, i := range idx {
        if b.X[i][best.feature] <= best.threshold { left = append(left, i) } else { right = append(right, i) }
    }
    id := b.push(TreeNode{Feature: best.feature, Threshold: best.threshold})
    l := b.grow(left, depth+1, proba)
    r := b.grow(right, depth+1, proba)
    b.tree.Nodes[id].Left = l
    b.tree.Nodes[id].Right = r
    return id
}

// splitCandidate é transiente: produzido e descartado durante a construção
// do nó.
type splitCandidate struct {
    feature   int
    threshold float64
    gain      float64
}

// bestThresholdFor ordena a amostra do nó pela feature f e varre cada ponto
// médio entre valores distintos consecutivos, mantendo em best o maior ganho
// visto até agora (comparação estrita, primeiro candidato vence empates
// exatos). Uma feature com um único valor distinto não contribui limiar.
func (b *treeBuilder) bestThresholdFor(f int, idx []int, parentGini float64, best *splitCandidate) {
    m := len(idx)
    vals := make([]float64, m)
    labels := make([]int, m)
    ord := make([]int, m)
    for j, i := range idx {
        vals[j] = b.X[i][f]
        ord[j] = j
    }
    sort.Slice(ord, func(a, c int) bool { return vals[ord[a]] < vals[ord[c]] })
    sorted := make([]float64, m)
    for j, o := range ord {
        sorted[j] = vals[o]
        labels[j] = b.y[idx[o]]
    }

    total := 0
    for _, l := range labels { total += l }

    leftPos := 0
    for j := 1; j < m; j++ {
        leftPos += labels[j-1]
        if sorted[j] == sorted[j-1] { continue }
        thr := (sorted[j-1] + sorted[j]) / 2
        nl, nr := float64(j), float64(m-j)
        pl := float64(leftPos) / nl
        pr := float64(total-leftPos) / nr
        gain := parentGini - (nl/float64(m))*gini(pl) - (nr/float64(m))*gini(pr)
        if gain > 0 && gain > best.gain {
            best.feature = f
            best.threshold = thr
            best.gain = gain
        }
    }
}

// gini: 2·p·(1−p) para fração p da classe 1.
func gini(p float64) float64 { return 2 * p * (1 - p) }

func classProba(y []int, idx []int) float64 {
    if len(idx) == 0 { return 0.5 }
    sum := 0
    for _, i := range idx { sum += y[i] }
    return float64(sum) / float64(len(idx))
}

func probaToLabels(ps []float64, thr float64) []int {
    out := make([]int, len(ps))
    for i := range ps {
        if ps[i] >= thr { out[i] = 1 }
    }
    return out
}

func checkXY(X [][]float64, y []int) error {
    if len(X) == 0 {
        return fmt.Errorf("%w: matriz de features vazia", ErrInvalidArgument)
    }
    if len(X) != len(y) {
        return fmt.Errorf("%w: %d observações e %d rótulos", ErrInvalidArgument, len(X), len(y))
    }
    p := len(X[0])
    if p == 0 {
        return fmt.Errorf("%w: observações sem features", ErrInvalidArgument)
    }
    for i := range X {
        if len(X[i]) != p {
            return fmt.Errorf("%w: observação %d com largura %d, esperada %d", ErrInvalidArgument, i, len(X[i]), p)
        }
    }
    for i := range y {
        if y[i] != 0 && y[i] != 1 {
            return fmt.Errorf("%w: rótulo %d na posição %d, esperado 0/1", ErrInvalidArgument, y[i], i)
        }
    }
    return nil
}
