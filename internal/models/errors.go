package models

import (
    "errors"
    "fmt"
)

var (
    // ErrInvalidArgument: configuração ou dimensões incompatíveis (mtry > p, num_trees <= 0, largura divergente).
    ErrInvalidArgument = errors.New("argumento inválido")
    // ErrDegenerateInput: dataset com menos de 2 observações ou uma única classe presente.
    ErrDegenerateInput = errors.New("entrada degenerada")
    // ErrEmptyAggregate: nenhuma observação fora da amostra bootstrap de árvore alguma.
    ErrEmptyAggregate = errors.New("agregado vazio")
)

func errNotFitted(name string) error {
    return fmt.Errorf("%w: %s não treinado", ErrInvalidArgument, name)
}

func errWidth(got, want int) error {
    return fmt.Errorf("%w: observação com %d features, modelo treinado com %d", ErrInvalidArgument, got, want)
}
