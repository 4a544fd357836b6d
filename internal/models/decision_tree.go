package models

import (
    "math"
    "math/rand"
)

type DTNode struct {
    Feature   int
    Threshold float64
    Left      *DTNode
    Right     *DTNode
    IsLeaf    bool
    LeafID    int
    Probs     []float64
}

type DecisionTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    NClasses           int
    NLeaves            int
    Root               *DTNode

    featWeight []float64
    candPick   func() []int
    imps       []float64
    nTotal     int
    rng        *rand.Rand
}

func NewDecisionTree() *DecisionTree {
    return &DecisionTree{MaxDepth: 8, MinSamplesSplit: 5, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

// setFeatureWeights scales the split gain per feature; used by BlockForest to
// favor or penalize whole omics blocks.
func (dt *DecisionTree) setFeatureWeights(w []float64) { dt.featWeight = w }

func (dt *DecisionTree) setRand(r *rand.Rand) { dt.rng = r }

// setCandidatePicker overrides the uniform mtry draw; BlockForest installs a
// per-block sampler here.
func (dt *DecisionTree) setCandidatePicker(f func() []int) { dt.candPick = f }

func (dt *DecisionTree) intn(n int) int {
    if dt.rng != nil { return dt.rng.Intn(n) }
    return rand.Intn(n)
}

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
    if dt.NClasses <= 0 {
        for _, c := range y { if c+1 > dt.NClasses { dt.NClasses = c + 1 } }
    }
    if dt.NClasses < 2 { dt.NClasses = 2 }
    idx := make([]int, len(X))
    for i := range idx { idx[i] = i }
    dt.NLeaves = 0
    dt.nTotal = len(X)
    dt.imps = make([]float64, len(X[0]))
    dt.Root = dt.build(X, y, idx, 0)
    return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
    ps := dt.PredictProba(X)
    out := make([]int, len(ps))
    for i := range ps { out[i] = argmax(ps[i]) }
    return out
}

func (dt *DecisionTree) PredictProba(X [][]float64) [][]float64 {
    out := make([][]float64, len(X))
    for i := range X { out[i] = dt.probaOne(X[i]) }
    return out
}

// Leaf returns the terminal-node id x routes to. Routing is deterministic:
// the input features alone dictate branching.
func (dt *DecisionTree) Leaf(x []float64) int {
    n := dt.Root
    if n == nil { return 0 }
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
    }
    return n.LeafID
}

// Importances returns the total impurity decrease attributed to each feature,
// normalized by the training-set size. Only valid after Fit.
func (dt *DecisionTree) Importances() []float64 { return dt.imps }

func (dt *DecisionTree) probaOne(x []float64) []float64 {
    n := dt.Root
    if n == nil {
        out := make([]float64, dt.NClasses)
        for i := range out { out[i] = 1.0 / float64(dt.NClasses) }
        return out
    }
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
    }
    return n.Probs
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
    node := &DTNode{}
    dist := classDist(y, idx, dt.NClasses)
    if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || gini(dist) == 0 {
        return dt.makeLeaf(node, dist)
    }

    parentImp := gini(dist)
    bestFeature := -1
    bestThr := 0.0
    bestGain := 0.0
    leftIdxBest := []int{}
    rightIdxBest := []int{}

    nFeats := len(X[0])
    var feats []int
    if dt.candPick != nil { feats = dt.candPick() } else { feats = dt.pickFeatures(nFeats) }
    for _, f := range feats {
        w := 1.0
        if dt.featWeight != nil { w = dt.featWeight[f] }
        if w == 0 { continue }
        cand := dt.candidateThresholds(X, idx, f)
        for _, thr := range cand {
            lIdx, rIdx := splitIdx(X, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 { continue }
            gain := parentImp - childImpurity(y, lIdx, rIdx, dt.NClasses)
            if gain*w > bestGain {
                bestGain = gain * w
                bestFeature = f
                bestThr = thr
                leftIdxBest = lIdx
                rightIdxBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        return dt.makeLeaf(node, dist)
    }
    // importance accumulates the unweighted gain, scaled by node coverage
    unweighted := parentImp - childImpurity(y, leftIdxBest, rightIdxBest, dt.NClasses)
    dt.imps[bestFeature] += unweighted * float64(len(idx)) / float64(dt.nTotal)
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = dt.build(X, y, leftIdxBest, depth+1)
    node.Right = dt.build(X, y, rightIdxBest, depth+1)
    return node
}

func (dt *DecisionTree) makeLeaf(node *DTNode, dist []float64) *DTNode {
    node.IsLeaf = true
    node.Probs = dist
    node.LeafID = dt.NLeaves
    dt.NLeaves++
    return node
}

func classDist(y []int, idx []int, nClasses int) []float64 {
    dist := make([]float64, nClasses)
    for _, i := range idx { dist[y[i]]++ }
    n := float64(len(idx))
    for c := range dist { dist[c] /= n }
    return dist
}

func gini(dist []float64) float64 {
    g := 1.0
    for _, p := range dist { g -= p * p }
    return g
}

func childImpurity(y []int, lIdx, rIdx []int, nClasses int) float64 {
    gl := gini(classDist(y, lIdx, nClasses))
    gr := gini(classDist(y, rIdx, nClasses))
    wl := float64(len(lIdx))
    wr := float64(len(rIdx))
    n := wl + wr
    return (wl/n)*gl + (wr/n)*gr
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
    l := make([]int, 0, len(idx))
    r := make([]int, 0, len(idx))
    for _, i := range idx {
        if X[i][f] <= thr { l = append(l, i) } else { r = append(r, i) }
    }
    return l, r
}

func (dt *DecisionTree) candidateThresholds(X [][]float64, idx []int, f int) []float64 {
    values := make([]float64, len(idx))
    for j, i := range idx { values[j] = X[i][f] }
    for i := range values {
        j := dt.intn(len(values))
        values[i], values[j] = values[j], values[i]
    }
    m := int(math.Min(float64(dt.MaxThresholdsPerFe), float64(len(values))))
    return values[:m]
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
    if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
        out := make([]int, nFeats)
        for i := 0; i < nFeats; i++ { out[i] = i }
        return out
    }
    idx := make([]int, nFeats)
    for i := 0; i < nFeats; i++ { idx[i] = i }
    for i := range idx {
        j := dt.intn(nFeats)
        idx[i], idx[j] = idx[j], idx[i]
    }
    out := make([]int, dt.MaxFeatures)
    copy(out, idx[:dt.MaxFeatures])
    return out
}

func argmax(v []float64) int {
    best := 0
    for i := 1; i < len(v); i++ { if v[i] > v[best] { best = i } }
    return best
}
