package models

type Model interface {
    Fit(X [][]float64, y []int) error
    Predict(X [][]float64) []int
    PredictProba(X [][]float64) [][]float64
    Name() string
}

// Ensemble is the query surface a trained forest exposes to the proximity
// layer: per-tree leaf routing plus the bootstrap bookkeeping recorded at fit
// time. A fitted ensemble is immutable; all of these are pure queries.
type Ensemble interface {
    NumTrees() int
    NumFeatures() int
    NumClasses() int
    // TreeLeaf routes x down tree t and returns the terminal-node id.
    TreeLeaf(t int, x []float64) int
    // InBag returns, per training sample per tree, how many times the sample
    // appeared in that tree's bootstrap draw. Rows follow the training order.
    InBag() [][]int
    FeatureImportances() []float64
}
