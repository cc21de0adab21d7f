package main

import (
    "encoding/csv"
    "encoding/gob"
    "errors"
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

    "go.uber.org/zap"

    "bosque/internal/data"
    "bosque/internal/features"
    "bosque/internal/metrics"
    "bosque/internal/models"
    "bosque/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", true, "Regenerar dataset sintético")
    n := flag.Int("n", 260000, "Número de registros sintéticos")
    out := flag.String("out", "data/synthetic.csv", "Caminho do CSV de saída")
    algo := flag.String("algo", "rf", "Algoritmo: const|linear|dt|bagging|rf")
    trees := flag.Int("trees", 30, "Número de árvores no ensemble (rf/bagging)")
    mtry := flag.Int("mtry", 0, "Features candidatas por split (0 = default do algoritmo)")
    maxDepth := flag.Int("max_depth", 6, "Profundidade máxima da árvore (0 = ilimitada)")
    minLeaf := flag.Int("min_leaf", 1, "Mínimo de amostras por folha")
    seed := flag.Int64("seed", 42, "Semente do treino (reprodutível)")
    workers := flag.Int("workers", 0, "Goroutines para treinar árvores (0 = NumCPU)")
    threshold := flag.Float64("threshold", 0.5, "Limiar de classificação")
    thresholdAuto := flag.Bool("threshold_auto", true, "Escolher o limiar que maximiza F1 no holdout")
    rocImg := flag.String("roc_out_img", "cmd/api/static/roc_curve.png", "PNG da curva ROC")
    impCsv := flag.String("importance_out", "data/importance.csv", "CSV da importância por permutação")
    flag.Parse()

    if *regen {
        logger.Info("Gerando dataset sintético", zap.Int("n", *n), zap.String("out", *out))
        if err := data.GenerateSyntheticExpenses(*n, 0.08, *seed, *out); err != nil {
            logger.Fatal("Falha ao gerar dataset", zap.Error(err))
        }
    }

    ds, err := features.LoadCSV(*out)
    if err != nil { logger.Fatal("Falha ao carregar CSV", zap.Error(err)) }

    var pos int
    for _, v := range ds.Y { pos += v }
    logger.Info("Distribuição da classe", zap.Int("positivos", pos), zap.Int("negativos", ds.Len()-pos))

    rng := rand.New(rand.NewSource(*seed))
    train, test, err := ds.StratifiedSplit(0.8, rng)
    if err != nil { logger.Fatal("Falha ao dividir dataset", zap.Error(err)) }

    mdl, path := buildModel(*algo, *trees, *mtry, *maxDepth, *minLeaf, *seed, *workers)
    if err := mdl.Fit(train.X, train.Y); err != nil {
        logger.Fatal("Falha ao treinar", zap.String("model", mdl.Name()), zap.Error(err))
    }

    probaTest, err := mdl.PredictProba(test.X)
    if err != nil { logger.Fatal("Falha ao prever", zap.Error(err)) }

    thrUsed := *threshold
    if *thresholdAuto {
        valSize := len(train.X) / 10
        if valSize < 100 { valSize = 100 }
        if valSize > len(train.X) { valSize = len(train.X) }
        valX := train.X[len(train.X)-valSize:]
        valY := train.Y[len(train.Y)-valSize:]
        if probaVal, err := mdl.PredictProba(valX); err == nil {
            thrUsed, _ = metrics.BestThresholdF1(valY, probaVal)
        }
    }

    cm, err := metrics.Confusion(test.Y, probaTest, thrUsed)
    if err != nil { logger.Fatal("Falha na matriz de confusão", zap.Error(err)) }

    fields := []zap.Field{
        zap.String("model", mdl.Name()),
        zap.Float64("threshold", thrUsed),
        zap.Float64("accuracy", cm.Accuracy()),
        zap.Float64("f1", cm.F1()),
        zap.Float64("precision", cm.Precision()),
        zap.Float64("recall", cm.Recall()),
        zap.Int("tp", cm.TP), zap.Int("fp", cm.FP), zap.Int("tn", cm.TN), zap.Int("fn", cm.FN),
    }

    roc, err := metrics.ROC(test.Y, probaTest)
    switch {
    case errors.Is(err, models.ErrDegenerateInput):
        logger.Warn("Curva ROC indefinida (uma única classe no teste)")
    case err != nil:
        logger.Fatal("Falha na curva ROC", zap.Error(err))
    default:
        fields = append(fields, zap.Float64("roc_auc", metrics.AUC(roc)))
    }
    logger.Info("Métricas holdout", fields...)

    if ens, ok := mdl.(*models.Ensemble); ok {
        rep, err := ens.OOBError(train.X, train.Y)
        if err != nil {
            logger.Warn("Erro OOB indisponível", zap.Error(err))
        } else {
            logger.Info("Erro out-of-bag",
                zap.Float64("oob_error", rep.Error),
                zap.Int("avaliadas", rep.Evaluated),
                zap.Int("excluidas", rep.Excluded),
            )
        }
        imps, err := ens.PermutationImportance(train.X, train.Y)
        if err != nil {
            logger.Warn("Importância indisponível", zap.Error(err))
        } else {
            for _, imp := range imps {
                logger.Info("Importância por permutação",
                    zap.String("feature", train.FeatureNames[imp.Feature]),
                    zap.Float64("mean", imp.Mean),
                    zap.Float64("std", imp.Std),
                )
            }
            if err := writeImportanceCSV(*impCsv, train.FeatureNames, imps); err != nil {
                logger.Warn("Falha ao salvar CSV de importância", zap.Error(err))
            }
        }
    }

    if roc != nil {
        if err := plotROC(*rocImg, mdl.Name(), roc); err != nil {
            logger.Warn("Falha ao salvar PNG da ROC", zap.Error(err))
        } else {
            logger.Info("Curva ROC gerada", zap.String("png", *rocImg))
        }
    }

    if err := saveModel(path, mdl); err != nil {
        logger.Fatal("Falha ao salvar modelo", zap.Error(err))
    }
    logger.Info("Modelo salvo", zap.String("path", path))
    fmt.Println("Modelo:", mdl.Name())
}

func buildModel(algo string, trees, mtry, maxDepth, minLeaf int, seed int64, workers int) (models.Model, string) {
    switch algo {
    case "const":
        return models.NewConstantModel(), "models/const_model.gob"
    case "linear":
        return models.NewLogisticRegression(), "models/linear_model.gob"
    case "bagging":
        bg := models.NewBagging()
        bg.Config.NumTrees = trees
        bg.Config.Mtry = mtry
        bg.Config.MaxDepth = maxDepth
        bg.Config.MinSamplesLeaf = minLeaf
        bg.Config.Seed = seed
        bg.Config.Workers = workers
        return bg, "models/bag_model.gob"
    case "rf":
        rf := models.NewRandomForest()
        rf.Config.NumTrees = trees
        rf.Config.Mtry = mtry
        rf.Config.MaxDepth = maxDepth
        rf.Config.MinSamplesLeaf = minLeaf
        rf.Config.Seed = seed
        rf.Config.Workers = workers
        return rf, "models/rf_model.gob"
    default:
        dt := models.NewDecisionTree()
        dt.MaxDepth = maxDepth
        dt.MinSamplesLeaf = minLeaf
        dt.Seed = seed
        return dt, "models/dt_model.gob"
    }
}

func saveModel(path string, mdl models.Model) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    return gob.NewEncoder(f).Encode(mdl)
}

func writeImportanceCSV(path string, names []string, imps []models.ImportanceScore) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"feature", "mean", "std", "trees"}); err != nil { return err }
    for _, imp := range imps {
        name := strconv.Itoa(imp.Feature)
        if imp.Feature < len(names) { name = names[imp.Feature] }
        rec := []string{name, fmt.Sprintf("%.6f", imp.Mean), fmt.Sprintf("%.6f", imp.Std), strconv.Itoa(imp.Trees)}
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func plotROC(path, name string, roc metrics.Curve) error {
    p := plot.New()
    p.Title.Text = "Curva ROC"
    p.X.Label.Text = "Taxa de falsos positivos"
    p.Y.Label.Text = "Taxa de verdadeiros positivos"
    p.X.Min, p.X.Max = 0, 1
    p.Y.Min, p.Y.Max = 0, 1

    pts := make(plotter.XYs, len(roc))
    for i, pt := range roc {
        pts[i].X = pt.FPR
        pts[i].Y = pt.TPR
    }
    diag := plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}}
    if err := plotutil.AddLinePoints(p, name, pts); err != nil { return err }
    if err := plotutil.AddLines(p, "Aleatório", diag); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(6*vg.Inch, 6*vg.Inch, path)
}
