package models

import (
    "math"
    "math/rand"
)

type RandomForest struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    MaxFeatures        int
    NClasses           int
    Seed               int64
    Trees              []*DecisionTree
    // InBagCounts[i][t] is the number of times training sample i was drawn
    // into tree t's bootstrap. 0 means out-of-bag for that tree.
    InBagCounts [][]int
    Importances []float64
    NFeatures   int
}

func NewRandomForest() *RandomForest {
    return &RandomForest{NEstimators: 500, MaxDepth: 10, MinSamples: 5, MaxThresholdsPerFe: 32, MaxFeatures: 0, Seed: 1, Trees: []*DecisionTree{}}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
    if rf.NEstimators <= 0 { rf.NEstimators = 500 }
    n := len(X)
    rf.NFeatures = len(X[0])
    if rf.MaxFeatures <= 0 {
        rf.MaxFeatures = int(math.Max(1, math.Sqrt(float64(rf.NFeatures))))
    }
    if rf.NClasses <= 0 {
        for _, c := range y { if c+1 > rf.NClasses { rf.NClasses = c + 1 } }
    }
    rng := rand.New(rand.NewSource(rf.Seed))
    rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
    rf.InBagCounts = make([][]int, n)
    for i := range rf.InBagCounts { rf.InBagCounts[i] = make([]int, rf.NEstimators) }
    rf.Importances = make([]float64, rf.NFeatures)
    for k := 0; k < rf.NEstimators; k++ {
        Xb := make([][]float64, n)
        yb := make([]int, n)
        for i := 0; i < n; i++ {
            j := rng.Intn(n)
            Xb[i] = X[j]
            yb[i] = y[j]
            rf.InBagCounts[j][k]++
        }
        dt := NewDecisionTree()
        dt.MaxDepth = rf.MaxDepth
        dt.MinSamplesSplit = rf.MinSamples
        dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
        dt.MaxFeatures = rf.MaxFeatures
        dt.NClasses = rf.NClasses
        dt.setRand(rng)
        if err := dt.Fit(Xb, yb); err != nil { return err }
        for f, v := range dt.Importances() { rf.Importances[f] += v }
        rf.Trees = append(rf.Trees, dt)
    }
    m := float64(len(rf.Trees))
    for f := range rf.Importances { rf.Importances[f] /= m }
    return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
    ps := rf.PredictProba(X)
    out := make([]int, len(ps))
    for i := range ps { out[i] = argmax(ps[i]) }
    return out
}

func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
    return averageProba(rf.Trees, X, rf.NClasses)
}

// OOBError is the fraction of training samples misclassified by the vote of
// the trees that did not see them. Samples in-bag everywhere are skipped.
func (rf *RandomForest) OOBError(X [][]float64, y []int) float64 {
    return oobError(rf.Trees, rf.InBagCounts, X, y, rf.NClasses)
}

func (rf *RandomForest) NumTrees() int    { return len(rf.Trees) }
func (rf *RandomForest) NumFeatures() int { return rf.NFeatures }
func (rf *RandomForest) NumClasses() int  { return rf.NClasses }
func (rf *RandomForest) InBag() [][]int   { return rf.InBagCounts }

func (rf *RandomForest) TreeLeaf(t int, x []float64) int { return rf.Trees[t].Leaf(x) }

func (rf *RandomForest) FeatureImportances() []float64 { return rf.Importances }

func averageProba(trees []*DecisionTree, X [][]float64, nClasses int) [][]float64 {
    n := len(X)
    out := make([][]float64, n)
    for i := range out { out[i] = make([]float64, nClasses) }
    if len(trees) == 0 {
        for i := range out {
            for c := range out[i] { out[i][c] = 1.0 / float64(nClasses) }
        }
        return out
    }
    for _, dt := range trees {
        p := dt.PredictProba(X)
        for i := 0; i < n; i++ {
            for c := 0; c < nClasses; c++ { out[i][c] += p[i][c] }
        }
    }
    m := float64(len(trees))
    for i := range out {
        for c := range out[i] { out[i][c] /= m }
    }
    return out
}

func oobError(trees []*DecisionTree, inBag [][]int, X [][]float64, y []int, nClasses int) float64 {
    wrong, counted := 0, 0
    for i := range X {
        votes := make([]float64, nClasses)
        seen := false
        for t, dt := range trees {
            if inBag[i][t] > 0 { continue }
            p := dt.probaOne(X[i])
            for c := range votes { votes[c] += p[c] }
            seen = true
        }
        if !seen { continue }
        counted++
        if argmax(votes) != y[i] { wrong++ }
    }
    if counted == 0 { return 0 }
    return float64(wrong) / float64(counted)
}
