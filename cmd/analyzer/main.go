package main

import (
    "encoding/csv"
    "flag"
    "fmt"
    "math/rand"
    "os"
    "path/filepath"
    "strconv"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "bosque/internal/features"
    "bosque/internal/metrics"
    "bosque/internal/models"
)

// analyzer treina as baselines e os dois ensembles no mesmo dataset e sobrepõe
// as curvas ROC para comparação.
func main() {
    dataPath := flag.String("data", "data/synthetic.csv", "CSV de entrada")
    trees := flag.Int("trees", 30, "Número de árvores (rf/bagging)")
    maxDepth := flag.Int("max_depth", 6, "Profundidade máxima da árvore")
    minLeaf := flag.Int("min_leaf", 1, "Mínimo de amostras por folha")
    seed := flag.Int64("seed", 42, "Semente")
    outImg := flag.String("out_img", "cmd/api/static/roc_compare.png", "PNG de saída")
    outCsv := flag.String("out_csv", "data/roc_compare.csv", "CSV de saída")
    flag.Parse()

    ds, err := features.LoadCSV(*dataPath)
    if err != nil { fmt.Println("Falha ao carregar CSV:", err); return }

    rng := rand.New(rand.NewSource(*seed))
    train, test, err := ds.StratifiedSplit(0.8, rng)
    if err != nil { fmt.Println("Falha ao dividir dataset:", err); return }

    bg := models.NewBagging()
    bg.Config.NumTrees = *trees
    bg.Config.MaxDepth = *maxDepth
    bg.Config.MinSamplesLeaf = *minLeaf
    bg.Config.Seed = *seed

    rf := models.NewRandomForest()
    rf.Config.NumTrees = *trees
    rf.Config.MaxDepth = *maxDepth
    rf.Config.MinSamplesLeaf = *minLeaf
    rf.Config.Seed = *seed

    candidates := []models.Model{
        models.NewConstantModel(),
        models.NewLogisticRegression(),
        bg,
        rf,
    }

    type result struct {
        name  string
        curve metrics.Curve
        auc   float64
    }
    results := make([]result, 0, len(candidates))
    for _, mdl := range candidates {
        if err := mdl.Fit(train.X, train.Y); err != nil {
            fmt.Println("Falha ao treinar", mdl.Name()+":", err)
            return
        }
        proba, err := mdl.PredictProba(test.X)
        if err != nil { fmt.Println("Falha ao prever", mdl.Name()+":", err); return }
        roc, err := metrics.ROC(test.Y, proba)
        if err != nil { fmt.Println("ROC indisponível para", mdl.Name()+":", err); return }
        auc := metrics.AUC(roc)
        fmt.Printf("%s | auc=%.4f\n", mdl.Name(), auc)
        results = append(results, result{mdl.Name(), roc, auc})
    }

    if err := writeCSV(*outCsv, func(w *csv.Writer) error {
        if err := w.Write([]string{"model", "auc"}); err != nil { return err }
        for _, r := range results {
            if err := w.Write([]string{r.name, strconv.FormatFloat(r.auc, 'f', 6, 64)}); err != nil { return err }
        }
        return nil
    }); err != nil {
        fmt.Println("Erro ao salvar CSV:", err)
    } else {
        fmt.Println("Tabela salva em:", *outCsv)
    }

    p := plot.New()
    p.Title.Text = "Comparação de curvas ROC"
    p.X.Label.Text = "Taxa de falsos positivos"
    p.Y.Label.Text = "Taxa de verdadeiros positivos"
    p.X.Min, p.X.Max = 0, 1
    p.Y.Min, p.Y.Max = 0, 1

    args := make([]interface{}, 0, 2*len(results))
    for _, r := range results {
        pts := make(plotter.XYs, len(r.curve))
        for i, pt := range r.curve {
            pts[i].X = pt.FPR
            pts[i].Y = pt.TPR
        }
        args = append(args, fmt.Sprintf("%s (AUC %.3f)", r.name, r.auc), pts)
    }
    if err := plotutil.AddLines(p, args...); err != nil { fmt.Println("Erro ao plotar:", err); return }
    if err := os.MkdirAll(filepath.Dir(*outImg), 0o755); err != nil { fmt.Println("Erro ao criar diretório:", err); return }
    if err := p.Save(6*vg.Inch, 6*vg.Inch, *outImg); err != nil {
        fmt.Println("Erro ao salvar PNG:", err)
    } else {
        fmt.Println("Gráfico salvo em:", *outImg)
    }
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    return fill(w)
}
