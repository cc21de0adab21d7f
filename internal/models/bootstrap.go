package models

// BootstrapSample é um multiconjunto de índices sorteado com reposição mais o
// seu complemento out-of-bag. Criado uma vez por árvore; imutável depois.
type BootstrapSample struct {
    InBag    []int
    OutOfBag []int
}

// Bootstrap sorteia n índices uniformes com reposição de [0, n). O conjunto
// OOB são as linhas nunca sorteadas, em ordem crescente; a fração esperada é
// e^-1 ~ 36.8%, sem garantia de tamanho exato. Consome exatamente n sorteios.
func Bootstrap(n int, rs *RandomSource) BootstrapSample {
    inBag := make([]int, n)
    drawn := make([]bool, n)
    for i := 0; i < n; i++ {
        j := rs.Intn(n)
        inBag[i] = j
        drawn[j] = true
    }
    oob := make([]int, 0, n/3)
    for i := 0; i < n; i++ {
        if !drawn[i] { oob = append(oob, i) }
    }
    return BootstrapSample{InBag: inBag, OutOfBag: oob}
}
