package main

import (
    "encoding/csv"
    "flag"
    "fmt"
    "math"
    "os"
    "path/filepath"
    "sort"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/palette/moreland"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "go.uber.org/zap"

    "github.com/PayamEmami/randomforest-data-integration/internal/cluster"
    "github.com/PayamEmami/randomforest-data-integration/internal/data"
    "github.com/PayamEmami/randomforest-data-integration/internal/features"
    "github.com/PayamEmami/randomforest-data-integration/internal/mds"
    "github.com/PayamEmami/randomforest-data-integration/internal/models"
    "github.com/PayamEmami/randomforest-data-integration/internal/proximity"
    "github.com/PayamEmami/randomforest-data-integration/pkg/utils"
)

// The analyzer runs the unsupervised passes: a synthetic-contrast forest over
// the samples (real rows vs column-permuted rows) for a label-free MDS map,
// and the same trick over the transposed matrix to cluster features with PAM.
func main() {
    logger := utils.Logger()
    defer logger.Sync()

    dataPath := flag.String("data", "data/cohort.csv", "Cohort CSV (run the trainer with -regen first)")
    estimators := flag.Int("estimators", 300, "Number of trees per contrast forest")
    maxDepth := flag.Int("max_depth", 10, "Maximum tree depth")
    seed := flag.Int64("seed", 1, "Random seed")
    kMax := flag.Int("kmax", 8, "Largest k for the silhouette scan")
    embImg := flag.String("emb_out_img", "cmd/api/static/mds_unsup.png", "PNG of the unsupervised MDS embedding")
    silImg := flag.String("sil_out_img", "cmd/api/static/silhouette.png", "PNG of the silhouette scan")
    heatImg := flag.String("heat_out_img", "cmd/api/static/feature_proximity.png", "PNG of the cluster-ordered feature proximity heatmap")
    clusterCsv := flag.String("cluster_out_csv", "data/feature_clusters.csv", "CSV of feature cluster assignments")
    flag.Parse()

    cohort, err := data.LoadCSV(*dataPath)
    if err != nil { logger.Fatal("Failed to load cohort", zap.Error(err)) }
    layout := features.BuildLayout(cohort.Blocks)
    nReal := len(cohort.X)

    // --- sample-space contrast forest ---
    Xc, yc := features.Contrast(cohort.X, *seed)
    rf := models.NewRandomForest()
    rf.NEstimators = *estimators
    rf.MaxDepth = *maxDepth
    rf.Seed = *seed
    if err := rf.Fit(Xc, yc); err != nil { logger.Fatal("Failed to train contrast forest", zap.Error(err)) }
    logger.Info("Contrast forest trained",
        zap.Int("trees", rf.NumTrees()),
        zap.Float64("oob_error", rf.OOBError(Xc, yc)),
    )

    // OOB proximity over the real rows only; they are the first nReal rows of
    // the contrast training set, so the in-bag matrix restricts directly.
    leaves, err := proximity.LeafAssignments(rf, Xc[:nReal])
    if err != nil { logger.Fatal("Leaf query failed", zap.Error(err)) }
    engine := proximity.Engine{}
    prox, err := engine.Compute(leaves, rf.InBag()[:nReal], proximity.OOB)
    if err != nil { logger.Fatal("Proximity failed", zap.Error(err)) }
    if prox.Undefined > 0 {
        logger.Warn("Pairs with no jointly held-out tree, recomputing those over the full forest",
            zap.Int("undefined_pairs", prox.Undefined))
        engine.Policy = proximity.FallbackFullForest
        prox, err = engine.Compute(leaves, rf.InBag()[:nReal], proximity.OOB)
        if err != nil { logger.Fatal("Proximity failed", zap.Error(err)) }
    }

    coords, eig, err := mds.Embed(prox.Dissimilarity().Rows(), 2)
    if err != nil { logger.Fatal("MDS failed", zap.Error(err)) }
    logger.Info("Unsupervised embedding done", zap.Float64("variance_explained_2d", mds.VarianceExplained(eig, 2)))
    if err := plotEmbedding(*embImg, "Unsupervised forest proximity (MDS)", coords, cohort.Subtypes); err != nil {
        logger.Warn("Failed to save embedding PNG", zap.Error(err))
    }

    // --- feature-space contrast forest ---
    Xt := standardizeRows(features.Transpose(cohort.X))
    Xtc, ytc := features.Contrast(Xt, *seed+1)
    frf := models.NewRandomForest()
    frf.NEstimators = *estimators
    frf.MaxDepth = *maxDepth
    frf.Seed = *seed + 1
    if err := frf.Fit(Xtc, ytc); err != nil { logger.Fatal("Failed to train feature-space forest", zap.Error(err)) }

    // full-forest mode: feature rows have no in-bag notion worth restricting on
    fLeaves, err := proximity.LeafAssignments(frf, Xtc[:len(Xt)])
    if err != nil { logger.Fatal("Feature leaf query failed", zap.Error(err)) }
    fProx, err := engine.Compute(fLeaves, nil, proximity.Full)
    if err != nil { logger.Fatal("Feature proximity failed", zap.Error(err)) }
    fDiss := fProx.Dissimilarity()

    bestK, scores, err := cluster.SelectK(fDiss.Rows(), *kMax)
    if err != nil { logger.Fatal("Silhouette scan failed", zap.Error(err)) }
    for _, s := range scores {
        logger.Info("Silhouette", zap.Int("k", s.K), zap.Float64("mean_width", s.Score), zap.Int("singletons", s.Singletons))
    }
    logger.Info("Selected k", zap.Int("k", bestK))

    clustering, err := cluster.Partition(fDiss.Rows(), bestK)
    if err != nil { logger.Fatal("PAM failed", zap.Error(err)) }
    if err := writeClusterCSV(*clusterCsv, layout, clustering); err != nil {
        logger.Warn("Failed to save cluster CSV", zap.Error(err))
    }
    if err := plotSilhouette(*silImg, scores, bestK); err != nil {
        logger.Warn("Failed to save silhouette PNG", zap.Error(err))
    }
    if err := plotHeatmap(*heatImg, fProx, clustering.Labels); err != nil {
        logger.Warn("Failed to save heatmap PNG", zap.Error(err))
    }
    logger.Info("Feature clustering done",
        zap.Int("features", fProx.N),
        zap.Int("k", bestK),
        zap.String("clusters_csv", *clusterCsv),
    )
}

// standardizeRows scales every row to zero mean and unit variance so the
// feature-space forest does not just split on measurement scale.
func standardizeRows(X [][]float64) [][]float64 {
    out := make([][]float64, len(X))
    for i, row := range X {
        mean := 0.0
        for _, v := range row { mean += v }
        mean /= float64(len(row))
        sd := 0.0
        for _, v := range row { sd += (v - mean) * (v - mean) }
        sd = math.Sqrt(sd / float64(len(row)))
        if sd == 0 { sd = 1 }
        r := make([]float64, len(row))
        for j, v := range row { r[j] = (v - mean) / sd }
        out[i] = r
    }
    return out
}

func writeClusterCSV(path string, layout features.Layout, c *cluster.Clustering) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"feature", "cluster", "is_medoid"}); err != nil { return err }
    medoid := map[int]bool{}
    for _, m := range c.Medoids { medoid[m] = true }
    for i, name := range layout.Names {
        rec := []string{name, fmt.Sprintf("%d", c.Labels[i]), fmt.Sprintf("%t", medoid[i])}
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func plotEmbedding(path, title string, coords [][]float64, subtypes []string) error {
    p := plot.New()
    p.Title.Text = title
    p.X.Label.Text = "MDS 1"
    p.Y.Label.Text = "MDS 2"

    byClass := map[string]plotter.XYs{}
    order := []string{}
    for i, s := range subtypes {
        if _, ok := byClass[s]; !ok { order = append(order, s) }
        byClass[s] = append(byClass[s], plotter.XY{X: coords[i][0], Y: coords[i][1]})
    }
    args := make([]interface{}, 0, 2*len(order))
    for _, s := range order { args = append(args, s, byClass[s]) }
    if err := plotutil.AddScatters(p, args...); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func plotSilhouette(path string, scores []cluster.KScore, bestK int) error {
    p := plot.New()
    p.Title.Text = fmt.Sprintf("Silhouette scan (best k = %d)", bestK)
    p.X.Label.Text = "k"
    p.Y.Label.Text = "Mean silhouette width"

    pts := make(plotter.XYs, len(scores))
    for i, s := range scores { pts[i] = plotter.XY{X: float64(s.K), Y: s.Score} }
    if err := plotutil.AddLinePoints(p, "silhouette", pts); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// proxGrid adapts a proximity matrix, reordered by cluster label, to the
// heatmap grid interface.
type proxGrid struct {
    m     *proximity.Matrix
    order []int
}

func (g proxGrid) Dims() (int, int)   { return g.m.N, g.m.N }
func (g proxGrid) X(c int) float64    { return float64(c) }
func (g proxGrid) Y(r int) float64    { return float64(r) }
func (g proxGrid) Z(c, r int) float64 { return g.m.At(g.order[r], g.order[c]) }

func plotHeatmap(path string, prox *proximity.Matrix, labels []int) error {
    order := make([]int, prox.N)
    for i := range order { order[i] = i }
    sort.SliceStable(order, func(a, b int) bool { return labels[order[a]] < labels[order[b]] })

    p := plot.New()
    p.Title.Text = "Feature proximity (cluster-ordered)"
    p.HideAxes()
    cm := moreland.SmoothBlueRed()
    cm.SetMin(0)
    cm.SetMax(1)
    h := plotter.NewHeatMap(proxGrid{m: prox, order: order}, cm.Palette(255))
    p.Add(h)
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(6*vg.Inch, 6*vg.Inch, path)
}
