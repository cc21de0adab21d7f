package data

import (
	"fmt"
	"math/rand"

	"bosque/internal/models"
)

// Dataset é a matriz numérica n×p com o vetor binário de rótulos que o motor
// consome. Toda codificação categórica acontece antes, no carregador; o motor
// nunca vê colunas não numéricas.
type Dataset struct {
	X            [][]float64
	Y            []int
	FeatureNames []string
}

func (d *Dataset) Len() int { return len(d.X) }

func (d *Dataset) Width() int {
	if len(d.X) == 0 { return 0 }
	return len(d.X[0])
}

func (d *Dataset) Validate() error {
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("%w: %d observações e %d rótulos", models.ErrInvalidArgument, len(d.X), len(d.Y))
	}
	p := d.Width()
	for i := range d.X {
		if len(d.X[i]) != p {
			return fmt.Errorf("%w: observação %d com largura %d, esperada %d", models.ErrInvalidArgument, i, len(d.X[i]), p)
		}
	}
	if len(d.FeatureNames) != 0 && len(d.FeatureNames) != p {
		return fmt.Errorf("%w: %d nomes para %d features", models.ErrInvalidArgument, len(d.FeatureNames), p)
	}
	return nil
}

// StratifiedSplit embaralha e divide mantendo a proporção de classes nos dois
// lados. trainFrac em (0,1); o rng dado torna a divisão reprodutível.
func (d *Dataset) StratifiedSplit(trainFrac float64, rng *rand.Rand) (train, test *Dataset, err error) {
	if err := d.Validate(); err != nil { return nil, nil, err }
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, fmt.Errorf("%w: fração de treino %v fora de (0,1)", models.ErrInvalidArgument, trainFrac)
	}
	var posIdx, negIdx []int
	for i := range d.Y {
		if d.Y[i] == 1 { posIdx = append(posIdx, i) } else { negIdx = append(negIdx, i) }
	}
	rng.Shuffle(len(posIdx), func(i, j int) { posIdx[i], posIdx[j] = posIdx[j], posIdx[i] })
	rng.Shuffle(len(negIdx), func(i, j int) { negIdx[i], negIdx[j] = negIdx[j], negIdx[i] })

	pCut := int(trainFrac * float64(len(posIdx)))
	nCut := int(trainFrac * float64(len(negIdx)))
	trainIdx := append(append([]int{}, posIdx[:pCut]...), negIdx[:nCut]...)
	testIdx := append(append([]int{}, posIdx[pCut:]...), negIdx[nCut:]...)
	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	return d.subset(trainIdx), d.subset(testIdx), nil
}

func (d *Dataset) subset(idx []int) *Dataset {
	sub := &Dataset{
		X:            make([][]float64, len(idx)),
		Y:            make([]int, len(idx)),
		FeatureNames: d.FeatureNames,
	}
	for i, j := range idx {
		sub.X[i] = d.X[j]
		sub.Y[i] = d.Y[j]
	}
	return sub
}

// GenerateScenario produz o dataset sintético de validação do motor: rótulo 1
// sse a feature 0 excede 0.5, demais features ruído uniforme independente.
func GenerateScenario(n, p int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	d := &Dataset{
		X:            make([][]float64, n),
		Y:            make([]int, n),
		FeatureNames: make([]string, p),
	}
	for j := 0; j < p; j++ {
		d.FeatureNames[j] = fmt.Sprintf("f%d", j)
	}
	for i := 0; i < n; i++ {
		row := make([]float64, p)
		for j := 0; j < p; j++ { row[j] = rng.Float64() }
		d.X[i] = row
		if row[0] > 0.5 { d.Y[i] = 1 }
	}
	return d
}
