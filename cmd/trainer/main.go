package main

import (
    "encoding/csv"
    "encoding/gob"
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strconv"
    "strings"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "go.uber.org/zap"

    "github.com/PayamEmami/randomforest-data-integration/internal/data"
    "github.com/PayamEmami/randomforest-data-integration/internal/features"
    "github.com/PayamEmami/randomforest-data-integration/internal/mds"
    "github.com/PayamEmami/randomforest-data-integration/internal/models"
    "github.com/PayamEmami/randomforest-data-integration/internal/proximity"
    "github.com/PayamEmami/randomforest-data-integration/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", true, "Regenerate the synthetic multi-omics cohort")
    n := flag.Int("n", 400, "Number of cohort samples")
    out := flag.String("out", "data/cohort.csv", "Cohort CSV path")
    algo := flag.String("algo", "rf", "Algorithm: rf|blockforest")
    estimators := flag.Int("estimators", 300, "Number of trees")
    maxDepth := flag.Int("max_depth", 10, "Maximum tree depth")
    minSamples := flag.Int("min_samples", 5, "Minimum samples to split a node")
    seed := flag.Int64("seed", 1, "Random seed for data, split and forest")
    trainFrac := flag.Float64("train_frac", 0.8, "Training fraction of the stratified split")
    blockWeights := flag.String("block_weights", "", "Comma-separated per-block gain weights for blockforest (default all 1)")
    embImg := flag.String("emb_out_img", "cmd/api/static/mds_train.png", "PNG of the OOB-proximity MDS embedding")
    embCsv := flag.String("emb_out_csv", "data/embedding.csv", "CSV of the embedding coordinates")
    impCsv := flag.String("imp_out_csv", "data/importance.csv", "CSV of the feature importance ranking")
    flag.Parse()

    if *regen {
        logger.Info("Generating synthetic cohort", zap.Int("n", *n), zap.String("out", *out))
        if err := data.WriteCSV(data.GenerateCohort(*n, *seed), *out); err != nil {
            logger.Fatal("Failed to generate cohort", zap.Error(err))
        }
    }

    cohort, err := data.LoadCSV(*out)
    if err != nil { logger.Fatal("Failed to load cohort", zap.Error(err)) }
    y, classes := cohort.Labels()
    layout := features.BuildLayout(cohort.Blocks)
    logger.Info("Cohort loaded",
        zap.Int("samples", len(cohort.X)),
        zap.Int("features", len(layout.Names)),
        zap.Strings("blocks", layout.BlockNames),
        zap.Strings("classes", classes),
    )

    trainIdx, testIdx := features.StratifiedSplit(y, *trainFrac, *seed)
    Xtrain := features.Subset(cohort.X, trainIdx)
    ytrain := features.SubsetInts(y, trainIdx)
    Xtest := features.Subset(cohort.X, testIdx)
    ytest := features.SubsetInts(y, testIdx)

    var mdl models.Model
    var ens models.Ensemble
    var oob float64
    var path string
    switch *algo {
    case "blockforest":
        bf := models.NewBlockForest()
        bf.NEstimators = *estimators
        bf.MaxDepth = *maxDepth
        bf.MinSamples = *minSamples
        bf.Seed = *seed
        bf.Blocks = layout.Blocks
        bf.BlockWeights = parseWeights(*blockWeights, len(layout.Blocks))
        if err := bf.Fit(Xtrain, ytrain); err != nil {
            logger.Fatal("Failed to train BlockForest", zap.Error(err))
        }
        oob = bf.OOBError(Xtrain, ytrain)
        mdl, ens = bf, bf
        path = "models/blockforest_model.gob"
    default:
        rf := models.NewRandomForest()
        rf.NEstimators = *estimators
        rf.MaxDepth = *maxDepth
        rf.MinSamples = *minSamples
        rf.Seed = *seed
        if err := rf.Fit(Xtrain, ytrain); err != nil {
            logger.Fatal("Failed to train RandomForest", zap.Error(err))
        }
        oob = rf.OOBError(Xtrain, ytrain)
        mdl, ens = rf, rf
        path = "models/rf_model.gob"
    }

    preds := mdl.Predict(Xtest)
    cm := confusionMatrix(ytest, preds, len(classes))
    logger.Info("Holdout metrics",
        zap.String("model", mdl.Name()),
        zap.Float64("accuracy", accuracy(ytest, preds)),
        zap.Float64("macro_f1", macroF1(cm)),
        zap.Float64("oob_error", oob),
    )
    printConfusion(cm, classes)

    if err := writeImportanceCSV(*impCsv, layout.Names, ens.FeatureImportances()); err != nil {
        logger.Warn("Failed to save importance CSV", zap.Error(err))
    }
    logTopImportances(logger, layout.Names, ens.FeatureImportances(), 10)

    // OOB-aware proximity on the training set, then classical scaling. The
    // fallback policy keeps the embedding free of NaN even for pairs no tree
    // jointly held out.
    leaves, err := proximity.LeafAssignments(ens, Xtrain)
    if err != nil { logger.Fatal("Leaf query failed", zap.Error(err)) }
    engine := proximity.Engine{Policy: proximity.FallbackFullForest}
    prox, err := engine.Compute(leaves, proximity.InBagCounts(ens), proximity.OOB)
    if err != nil { logger.Fatal("Proximity failed", zap.Error(err)) }
    coords, eig, err := mds.Embed(prox.Dissimilarity().Rows(), 2)
    if err != nil { logger.Fatal("MDS failed", zap.Error(err)) }
    logger.Info("OOB proximity embedded",
        zap.Int("samples", prox.N),
        zap.Int("undefined_pairs", prox.Undefined),
        zap.Float64("variance_explained_2d", mds.VarianceExplained(eig, 2)),
    )

    trainSubtypes := make([]string, len(trainIdx))
    trainIDs := make([]string, len(trainIdx))
    for i, j := range trainIdx {
        trainSubtypes[i] = cohort.Subtypes[j]
        trainIDs[i] = cohort.SampleIDs[j]
    }
    if err := writeEmbeddingCSV(*embCsv, trainIDs, trainSubtypes, coords); err != nil {
        logger.Warn("Failed to save embedding CSV", zap.Error(err))
    }
    title := fmt.Sprintf("%s OOB proximity (MDS)", mdl.Name())
    if err := plotEmbedding(*embImg, title, coords, trainSubtypes); err != nil {
        logger.Warn("Failed to save embedding PNG", zap.Error(err))
    } else {
        logger.Info("Embedding plots written", zap.String("png", *embImg), zap.String("csv", *embCsv))
    }

    if err := os.MkdirAll("models", 0o755); err != nil { logger.Fatal("mkdir models", zap.Error(err)) }
    mf, err := os.Create(path)
    if err != nil { logger.Fatal("create model file", zap.Error(err)) }
    defer mf.Close()
    if err := gob.NewEncoder(mf).Encode(mdl); err != nil { logger.Fatal("encode model", zap.Error(err)) }
    logger.Info("Model saved", zap.String("path", path))
}

func parseWeights(s string, nBlocks int) []float64 {
    if s == "" { return nil }
    parts := strings.Split(s, ",")
    if len(parts) != nBlocks { return nil }
    out := make([]float64, nBlocks)
    for i, p := range parts {
        v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
        if err != nil { return nil }
        out[i] = v
    }
    return out
}

func accuracy(y, p []int) float64 {
    if len(y) == 0 { return 0 }
    c := 0
    for i := range y { if y[i] == p[i] { c++ } }
    return float64(c) / float64(len(y))
}

func confusionMatrix(y, p []int, nClasses int) [][]int {
    cm := make([][]int, nClasses)
    for i := range cm { cm[i] = make([]int, nClasses) }
    for i := range y { cm[y[i]][p[i]]++ }
    return cm
}

func macroF1(cm [][]int) float64 {
    k := len(cm)
    total := 0.0
    for c := 0; c < k; c++ {
        tp := cm[c][c]
        fp, fn := 0, 0
        for o := 0; o < k; o++ {
            if o == c { continue }
            fp += cm[o][c]
            fn += cm[c][o]
        }
        var prec, rec float64
        if tp+fp > 0 { prec = float64(tp) / float64(tp+fp) }
        if tp+fn > 0 { rec = float64(tp) / float64(tp+fn) }
        if prec+rec > 0 { total += 2 * prec * rec / (prec + rec) }
    }
    return total / float64(k)
}

func printConfusion(cm [][]int, classes []string) {
    fmt.Println("Confusion matrix (rows=true, cols=predicted):")
    fmt.Printf("%12s", "")
    for _, c := range classes { fmt.Printf("%10s", c) }
    fmt.Println()
    for i, c := range classes {
        fmt.Printf("%12s", c)
        for j := range classes { fmt.Printf("%10d", cm[i][j]) }
        fmt.Println()
    }
}

func writeImportanceCSV(path string, names []string, imps []float64) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    order := rankDesc(imps)
    if err := w.Write([]string{"rank", "feature", "importance"}); err != nil { return err }
    for r, i := range order {
        rec := []string{strconv.Itoa(r + 1), names[i], fmt.Sprintf("%.6f", imps[i])}
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func logTopImportances(logger *zap.Logger, names []string, imps []float64, top int) {
    order := rankDesc(imps)
    if top > len(order) { top = len(order) }
    for r := 0; r < top; r++ {
        i := order[r]
        logger.Info("Feature importance", zap.Int("rank", r+1), zap.String("feature", names[i]), zap.Float64("importance", imps[i]))
    }
}

func rankDesc(v []float64) []int {
    order := make([]int, len(v))
    for i := range order { order[i] = i }
    sort.SliceStable(order, func(a, b int) bool { return v[order[a]] > v[order[b]] })
    return order
}

func writeEmbeddingCSV(path string, ids, subtypes []string, coords [][]float64) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"sample_id", "subtype", "x", "y"}); err != nil { return err }
    for i := range coords {
        rec := []string{ids[i], subtypes[i], fmt.Sprintf("%.6f", coords[i][0]), fmt.Sprintf("%.6f", coords[i][1])}
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
