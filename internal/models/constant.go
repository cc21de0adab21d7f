package models

// ConstantModel é a baseline trivial: emite a mesma probabilidade para toda
// observação. Fit fixa a taxa da classe 1 no treino; um preditor constante
// tem AUC 0.5 por construção.
type ConstantModel struct {
    Proba float64
}

func NewConstantModel() *ConstantModel { return &ConstantModel{Proba: 0.5} }

func (cm *ConstantModel) Name() string { return "Constant" }

func (cm *ConstantModel) Fit(X [][]float64, y []int) error {
    if err := checkXY(X, y); err != nil { return err }
    pos := 0
    for _, v := range y { pos += v }
    cm.Proba = float64(pos) / float64(len(y))
    return nil
}

func (cm *ConstantModel) PredictProba(X [][]float64) ([]float64, error) {
    out := make([]float64, len(X))
    for i := range out { out[i] = cm.Proba }
    return out, nil
}

func (cm *ConstantModel) Predict(X [][]float64) ([]int, error) {
    ps, _ := cm.PredictProba(X)
    return probaToLabels(ps, 0.5), nil
}
