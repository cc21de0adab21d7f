package main

import (
    "encoding/csv"
    "encoding/gob"
    "net/http"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "bosque/internal/features"
    "bosque/internal/models"
    "bosque/pkg/utils"
)

var model models.Model

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    algo := strings.ToLower(os.Getenv("MODEL_ALGO"))
    if algo == "" { algo = "rf" }
    model = loadModel(algo)
    if model == nil {
        logger.Warn("Nenhum modelo treinado encontrado, usando baseline constante", zap.String("algo", algo))
        model = models.NewConstantModel()
    }
    logger.Info("Modelo carregado", zap.String("model", model.Name()))

    r := gin.Default()

    r.Static("/static", "cmd/api/static")
    r.GET("/healthz", func(c *gin.Context) {
        c.JSON(http.StatusOK, gin.H{"status": "ok", "model": model.Name()})
    })
    r.GET("/importance", handleImportance)

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/predict", handlePredict)
    api.POST("/batch", handleBatch)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    r.Run(":" + port)
}

func loadModel(algo string) models.Model {
    load := func(path string, mdl models.Model) models.Model {
        f, err := os.Open(path)
        if err != nil { return nil }
        defer f.Close()
        if err := gob.NewDecoder(f).Decode(mdl); err != nil { return nil }
        return mdl
    }
    switch algo {
    case "rf":
        if m := load(filepath.Join("models", "rf_model.gob"), &models.Ensemble{}); m != nil {
            if ens := m.(*models.Ensemble); len(ens.Trees) > 0 { return ens }
        }
    case "bagging":
        if m := load(filepath.Join("models", "bag_model.gob"), &models.Ensemble{}); m != nil {
            if ens := m.(*models.Ensemble); len(ens.Trees) > 0 { return ens }
        }
    case "linear":
        if m := load(filepath.Join("models", "linear_model.gob"), &models.LogisticRegression{}); m != nil {
            if lr := m.(*models.LogisticRegression); len(lr.Weights) > 0 { return lr }
        }
    case "dt":
        if m := load(filepath.Join("models", "dt_model.gob"), &models.DecisionTree{}); m != nil {
            if dt := m.(*models.DecisionTree); len(dt.Nodes) > 0 { return dt }
        }
    }
    return nil
}

func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != key { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

type predictReq struct {
    ExpenseID      string  `json:"expense_id"`
    RequestID      string  `json:"request_id"`
    RequesterID    string  `json:"requester_id"`
    TravellerID    string  `json:"traveller_id"`
    ApproverID     string  `json:"approver_id"`
    RequestDate    string  `json:"request_date" binding:"required"`
    TravelDate     string  `json:"travel_date" binding:"required"`
    Category       string  `json:"category" binding:"required"`
    Description    string  `json:"description"`
    Amount         float64 `json:"amount" binding:"gt=0"`
    Currency       string  `json:"currency"`
    JobTitle       string  `json:"job_title"`
    Department     string  `json:"department"`
    ApprovalStatus string  `json:"approval_status"`
}

func (req predictReq) vector() []float64 {
    rd, _ := time.Parse("2006-01-02", req.RequestDate)
    td, _ := time.Parse("2006-01-02", req.TravelDate)
    e := features.BuildExpense(req.ExpenseID, req.RequestID, req.RequesterID, req.TravellerID, req.ApproverID,
        rd, td, req.Category, req.Description, req.Amount, req.Currency, req.JobTitle, req.Department, req.ApprovalStatus)
    v, _ := features.Vectorize(e)
    return v
}

func handlePredict(c *gin.Context) {
    var req predictReq
    if err := c.BindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return
    }
    ps, err := model.PredictProba([][]float64{req.vector()})
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return
    }
    c.JSON(http.StatusOK, gin.H{"score": ps[0], "risk": riskBand(ps[0]), "model": model.Name()})
}

func handleBatch(c *gin.Context) {
    var items []predictReq
    if err := c.BindJSON(&items); err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return }
    X := make([][]float64, 0, len(items))
    for _, it := range items { X = append(X, it.vector()) }
    ps, err := model.PredictProba(X)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return
    }
    out := make([]gin.H, len(items))
    for i := range items {
        out[i] = gin.H{"expense_id": items[i].ExpenseID, "score": ps[i], "risk": riskBand(ps[i])}
    }
    c.JSON(http.StatusOK, out)
}

// handleImportance serve a tabela de importância por permutação que o trainer
// gravou junto com o modelo.
func handleImportance(c *gin.Context) {
    path := "data/importance.csv"
    f, err := os.Open(path)
    if err != nil { c.JSON(http.StatusOK, gin.H{"importance": []gin.H{}}); return }
    defer f.Close()
    rows, err := csv.NewReader(f).ReadAll()
    if err != nil || len(rows) < 2 { c.JSON(http.StatusOK, gin.H{"importance": []gin.H{}}); return }
    items := make([]gin.H, 0, len(rows)-1)
    for i := 1; i < len(rows); i++ {
        row := rows[i]
        if len(row) < 4 { continue }
        items = append(items, gin.H{"feature": row[0], "mean": row[1], "std": row[2], "trees": row[3]})
    }
    c.JSON(http.StatusOK, gin.H{"importance": items})
}

func riskBand(p float64) string {
    switch {
    case p >= 0.95:
        return "alto"
    case p >= 0.7:
        return "medio"
    case p >= 0.5:
        return "baixo"
    default:
        return "muito_baixo"
    }
}
