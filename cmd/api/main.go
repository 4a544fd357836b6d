package main

import (
    "encoding/csv"
    "encoding/gob"
    "net/http"
    "os"
    "path/filepath"
    "strconv"
    "strings"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "github.com/PayamEmami/randomforest-data-integration/internal/data"
    "github.com/PayamEmami/randomforest-data-integration/internal/features"
    "github.com/PayamEmami/randomforest-data-integration/internal/models"
    "github.com/PayamEmami/randomforest-data-integration/pkg/utils"
)

// priorModel answers with the uniform class distribution when no trained
// model is on disk yet.
type priorModel struct{ nClasses int }

func (m *priorModel) Fit(X [][]float64, y []int) error { return nil }
func (m *priorModel) Predict(X [][]float64) []int      { return make([]int, len(X)) }
func (m *priorModel) PredictProba(X [][]float64) [][]float64 {
    out := make([][]float64, len(X))
    for i := range out {
        out[i] = make([]float64, m.nClasses)
        for c := range out[i] { out[i][c] = 1.0 / float64(m.nClasses) }
    }
    return out
}
func (m *priorModel) Name() string { return "Prior" }

var (
    model   models.Model
    layout  features.Layout
    classes []string
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    cohortPath := os.Getenv("COHORT_CSV")
    if cohortPath == "" { cohortPath = "data/cohort.csv" }
    cohort, err := data.LoadCSV(cohortPath)
    if err != nil { logger.Fatal("Failed to load cohort metadata", zap.Error(err)) }
    _, classes = cohort.Labels()
    layout = features.BuildLayout(cohort.Blocks)

    algo := strings.ToLower(os.Getenv("MODEL_ALGO"))
    if algo == "" { algo = "rf" }
    switch algo {
    case "blockforest":
        path := filepath.Join("models", "blockforest_model.gob")
        if f, err := os.Open(path); err == nil {
            defer f.Close()
            var bf models.BlockForest
            if err := gob.NewDecoder(f).Decode(&bf); err == nil && len(bf.Trees) > 0 {
                model = &bf
            }
        }
    default:
        path := filepath.Join("models", "rf_model.gob")
        if f, err := os.Open(path); err == nil {
            defer f.Close()
            var rf models.RandomForest
            if err := gob.NewDecoder(f).Decode(&rf); err == nil && len(rf.Trees) > 0 {
                model = &rf
            }
        }
    }
    if model == nil {
        logger.Warn("No trained model found, serving prior probabilities", zap.String("algo", algo))
        model = &priorModel{nClasses: len(classes)}
    }

    r := gin.Default()
    r.Static("/static", "cmd/api/static")
    r.GET("/embedding", handleEmbedding)
    r.GET("/clusters", handleClusters)

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/predict", handlePredict)
    api.POST("/batch", handleBatch)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    r.Run(":" + port)
}

func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    if c.GetHeader("X-API-Key") != key {
        c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    c.Next()
}

// predictReq carries one measurement vector per omics block, keyed by block
// name as produced by the cohort CSV header.
type predictReq struct {
    SampleID string               `json:"sample_id"`
    Blocks   map[string][]float64 `json:"blocks"`
}

func assemble(req predictReq) ([]float64, string) {
    vec := make([]float64, 0, len(layout.Names))
    for b, name := range layout.BlockNames {
        vals, ok := req.Blocks[name]
        if !ok { return nil, "missing block " + name }
        if len(vals) != len(layout.Blocks[b]) {
            return nil, "block " + name + " expects " + strconv.Itoa(len(layout.Blocks[b])) + " values"
        }
        vec = append(vec, vals...)
    }
    return vec, ""
}

func prediction(p []float64) gin.H {
    best := 0
    probs := gin.H{}
    for c := range p {
        probs[classes[c]] = p[c]
        if p[c] > p[best] { best = c }
    }
    return gin.H{"subtype": classes[best], "probabilities": probs, "model": model.Name()}
}

func handlePredict(c *gin.Context) {
    var req predictReq
    if err := c.BindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return
    }
    vec, msg := assemble(req)
    if vec == nil { c.JSON(http.StatusBadRequest, gin.H{"error": msg}); return }
    p := model.PredictProba([][]float64{vec})[0]
    out := prediction(p)
    out["sample_id"] = req.SampleID
    c.JSON(http.StatusOK, out)
}

func handleBatch(c *gin.Context) {
    var items []predictReq
    if err := c.BindJSON(&items); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return
    }
    X := make([][]float64, 0, len(items))
    for i, it := range items {
        vec, msg := assemble(it)
        if vec == nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": msg, "item": i}); return
        }
        X = append(X, vec)
    }
    ps := model.PredictProba(X)
    out := make([]gin.H, len(items))
    for i := range items {
        out[i] = prediction(ps[i])
        out[i]["sample_id"] = items[i].SampleID
    }
    c.JSON(http.StatusOK, out)
}

// handleEmbedding serves the trainer's MDS coordinates.
func handleEmbedding(c *gin.Context) { serveCSV(c, "data/embedding.csv") }

// handleClusters serves the analyzer's feature cluster assignments.
func handleClusters(c *gin.Context) { serveCSV(c, "data/feature_clusters.csv") }

func serveCSV(c *gin.Context, path string) {
    f, err := os.Open(path)
    if err != nil { c.JSON(http.StatusOK, gin.H{"items": []gin.H{}}); return }
    defer f.Close()
    rows, err := csv.NewReader(f).ReadAll()
    if err != nil || len(rows) < 2 { c.JSON(http.StatusOK, gin.H{"items": []gin.H{}}); return }
    hdr := rows[0]
    items := make([]gin.H, 0, len(rows)-1)
    for _, row := range rows[1:] {
        it := gin.H{}
        for i := range hdr {
            if i < len(row) { it[hdr[i]] = row[i] }
        }
        items = append(items, it)
    }
    c.JSON(http.StatusOK, gin.H{"items": items})
}
