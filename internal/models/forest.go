package models

import (
    "fmt"
    "math"
    "runtime"

    "github.com/go-playground/validator/v10"
    "golang.org/x/sync/errgroup"
)

var validate = validator.New()

// Config reúne toda a configuração de treino; não há estado global e nada é
// implícito além dos defaults documentados. Mtry = 0 resolve no Fit conforme
// o tipo do ensemble (p para bagging, round(sqrt(p)) para random forest);
// MaxDepth <= 0 significa profundidade ilimitada; Workers = 0 usa NumCPU.
type Config struct {
    NumTrees       int `validate:"gt=0"`
    Mtry           int `validate:"gte=0"`
    MaxDepth       int
    MinSamplesLeaf int `validate:"gt=0"`
    Seed           int64
    Workers        int `validate:"gte=0"`
}

// Ensemble é a sequência ordenada de pares (árvore, amostra bootstrap).
// Bagging e random forest são o mesmo algoritmo: só muda o mtry. Retreinar
// produz um ensemble novo, nunca uma atualização in-place.
type Ensemble struct {
    Kind        string
    Config      Config
    Trees       []*DecisionTree
    Samples     []BootstrapSample
    NumFeatures int
    NumSamples  int
}

func NewBagging() *Ensemble {
    return &Ensemble{Kind: "Bagging", Config: Config{NumTrees: 30, MaxDepth: 6, MinSamplesLeaf: 1, Seed: 1}}
}

func NewRandomForest() *Ensemble {
    return &Ensemble{Kind: "RandomForest", Config: Config{NumTrees: 30, MaxDepth: 6, MinSamplesLeaf: 1, Seed: 1}}
}

func (e *Ensemble) Name() string { return e.Kind }

// Fit treina NumTrees árvores independentes, cada uma sobre a sua amostra
// bootstrap e com o seu próprio sub-fluxo aleatório derivado de (Seed, índice
// da árvore). As árvores são construídas em paralelo; cada goroutine escreve
// apenas no seu slot, então o resultado independe do escalonamento.
func (e *Ensemble) Fit(X [][]float64, y []int) error {
    if err := checkXY(X, y); err != nil { return err }
    if err := validate.Struct(e.Config); err != nil {
        return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
    }
    n := len(X)
    p := len(X[0])
    mtry := e.Config.Mtry
    if mtry == 0 {
        if e.Kind == "RandomForest" {
            mtry = int(math.Max(1, math.Round(math.Sqrt(float64(p)))))
        } else {
            mtry = p
        }
    }
    if mtry > p {
        return fmt.Errorf("%w: mtry=%d maior que p=%d", ErrInvalidArgument, mtry, p)
    }
    e.Config.Mtry = mtry
    e.NumFeatures = p
    e.NumSamples = n
    e.Trees = make([]*DecisionTree, e.Config.NumTrees)
    e.Samples = make([]BootstrapSample, e.Config.NumTrees)

    workers := e.Config.Workers
    if workers <= 0 { workers = runtime.NumCPU() }
    var g errgroup.Group
    g.SetLimit(workers)
    for k := range e.Trees {
        k := k
        g.Go(func() error {
            rs := treeSource(e.Config.Seed, k)
            sample := Bootstrap(n, rs)
            dt := &DecisionTree{MaxDepth: e.Config.MaxDepth, MinSamplesLeaf: e.Config.MinSamplesLeaf, Mtry: mtry}
            if err := dt.FitIndices(X, y, sample.InBag, rs); err != nil {
                return fmt.Errorf("árvore %d: %w", k, err)
            }
            e.Trees[k] = dt
            e.Samples[k] = sample
            return nil
        })
    }
    return g.Wait()
}

// PredictProba devolve a média das probabilidades de folha das árvores:
// a estimativa do ensemble para P(classe=1).
func (e *Ensemble) PredictProba(X [][]float64) ([]float64, error) {
    if err := e.checkTrained(X); err != nil { return nil, err }
    out := make([]float64, len(X))
    for i := range X { out[i] = e.predictProbaOne(X[i]) }
    return out, nil
}

func (e *Ensemble) PredictProbaOne(x []float64) (float64, error) {
    if err := e.checkTrained([][]float64{x}); err != nil { return 0, err }
    return e.predictProbaOne(x), nil
}

func (e *Ensemble) predictProbaOne(x []float64) float64 {
    sum := 0.0
    for _, dt := range e.Trees { sum += dt.predictProbaOne(x) }
    return sum / float64(len(e.Trees))
}

func (e *Ensemble) Predict(X [][]float64) ([]int, error) {
    return e.PredictThreshold(X, 0.5)
}

func (e *Ensemble) PredictThreshold(X [][]float64, thr float64) ([]int, error) {
    ps, err := e.PredictProba(X)
    if err != nil { return nil, err }
    return probaToLabels(ps, thr), nil
}

func (e *Ensemble) checkTrained(X [][]float64) error {
    if len(e.Trees) == 0 {
        return fmt.Errorf("%w: ensemble não treinado", ErrInvalidArgument)
    }
    for i := range X {
        if len(X[i]) != e.NumFeatures {
            return fmt.Errorf("%w: observação com %d features, ensemble treinado com %d", ErrInvalidArgument, len(X[i]), e.NumFeatures)
        }
    }
    return nil
}

// OOBReport é a estimativa de erro de generalização sem conjunto de teste:
// cada observação é avaliada só pelas árvores que não a sortearam. Excluded
// conta as observações presentes na amostra bootstrap de todas as árvores,
// que não têm predição OOB definida.
type OOBReport struct {
    Error     float64
    Evaluated int
    Excluded  int
}

// OOBError calcula o erro de classificação (limiar 0.5) sobre as predições
// out-of-bag. X e y devem ser o dataset de treino do ensemble.
func (e *Ensemble) OOBError(X [][]float64, y []int) (OOBReport, error) {
    if err := e.checkTrained(X); err != nil { return OOBReport{}, err }
    if err := checkXY(X, y); err != nil { return OOBReport{}, err }
    if len(X) != e.NumSamples {
        return OOBReport{}, fmt.Errorf("%w: %d observações, ensemble treinado com %d", ErrInvalidArgument, len(X), e.NumSamples)
    }

    n := len(X)
    sums := make([]float64, n)
    counts := make([]int, n)
    for k, dt := range e.Trees {
        for _, i := range e.Samples[k].OutOfBag {
            sums[i] += dt.predictProbaOne(X[i])
            counts[i]++
        }
    }

    var rep OOBReport
    wrong := 0
    for i := 0; i < n; i++ {
        if counts[i] == 0 {
            rep.Excluded++
            continue
        }
        rep.Evaluated++
        pred := 0
        if sums[i]/float64(counts[i]) >= 0.5 { pred = 1 }
        if pred != y[i] { wrong++ }
    }
    if rep.Evaluated == 0 {
        return rep, fmt.Errorf("%w: nenhuma observação fora de todas as amostras bootstrap", ErrEmptyAggregate)
    }
    rep.Error = float64(wrong) / float64(rep.Evaluated)
    return rep, nil
}
