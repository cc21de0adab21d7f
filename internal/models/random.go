package models

import (
    "fmt"
    "math/rand"
)

// RandomSource é o fluxo pseudo-aleatório determinístico do motor: mesma
// semente e mesma sequência de chamadas produzem exatamente a mesma saída.
// Nunca usa o gerador global.
type RandomSource struct {
    rng *rand.Rand
}

func NewRandomSource(seed int64) *RandomSource {
    return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

func (rs *RandomSource) Intn(n int) int { return rs.rng.Intn(n) }

func (rs *RandomSource) Perm(n int) []int { return rs.rng.Perm(n) }

// FeatureSubset sorteia k índices distintos de {0..p-1} via Fisher-Yates
// parcial. Com k >= p devolve a identidade sem consumir o fluxo, para que
// bagging (mtry = p) nunca gaste sorteios de subconjunto.
func (rs *RandomSource) FeatureSubset(k, p int) ([]int, error) {
    if k <= 0 || p <= 0 {
        return nil, fmt.Errorf("%w: subconjunto k=%d p=%d", ErrInvalidArgument, k, p)
    }
    if k > p {
        return nil, fmt.Errorf("%w: k=%d maior que p=%d", ErrInvalidArgument, k, p)
    }
    idx := make([]int, p)
    for i := range idx { idx[i] = i }
    if k >= p { return idx, nil }
    for i := 0; i < k; i++ {
        j := i + rs.rng.Intn(p-i)
        idx[i], idx[j] = idx[j], idx[i]
    }
    return idx[:k], nil
}

// splitmix64: misturador usado para derivar sub-fluxos independentes por
// árvore a partir da semente do ensemble, estável sob qualquer escalonamento
// de workers.
func mix64(z uint64) uint64 {
    z += 0x9e3779b97f4a7c15
    z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
    z = (z ^ (z >> 27)) * 0x94d049bb133111eb
    return z ^ (z >> 31)
}

// treeSource deriva o fluxo da árvore k; shuffleSource deriva a continuação
// usada pelos embaralhamentos da importância por permutação.
func treeSource(seed int64, tree int) *RandomSource {
    return NewRandomSource(int64(mix64(uint64(seed) ^ mix64(uint64(tree)+1))))
}

func shuffleSource(seed int64, tree int) *RandomSource {
    const salt = 0x5ca1ab1e
    return NewRandomSource(int64(mix64(uint64(seed) ^ mix64(uint64(tree)+1) ^ salt)))
}
