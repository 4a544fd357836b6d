package models

import (
    "errors"
    "math"
    "math/rand"
)

// BlockForest is the block-structured random forest variant used for
// multi-omics integration: split candidates are drawn per omics block rather
// than uniformly over the concatenated feature space, and each block carries a
// weight that scales the split gain of its features. Blocks with weight 0 are
// never split on.
type BlockForest struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    NClasses           int
    Seed               int64
    // Blocks[b] lists the column indices belonging to omics block b.
    Blocks [][]int
    // BlockWeights[b] scales the split gain of block b's features. If nil,
    // every block gets weight 1.
    BlockWeights []float64
    Trees        []*DecisionTree
    InBagCounts  [][]int
    Importances  []float64
    NFeatures    int
}

func NewBlockForest() *BlockForest {
    return &BlockForest{NEstimators: 500, MaxDepth: 10, MinSamples: 5, MaxThresholdsPerFe: 32, Seed: 1, Trees: []*DecisionTree{}}
}

func (bf *BlockForest) Name() string { return "BlockForest" }

func (bf *BlockForest) Fit(X [][]float64, y []int) error {
    if len(bf.Blocks) == 0 { return errors.New("block forest requires at least one feature block") }
    if bf.NEstimators <= 0 { bf.NEstimators = 500 }
    n := len(X)
    bf.NFeatures = len(X[0])
    covered := 0
    for _, blk := range bf.Blocks { covered += len(blk) }
    if covered != bf.NFeatures { return errors.New("block layout does not cover the feature columns exactly") }
    if bf.BlockWeights == nil {
        bf.BlockWeights = make([]float64, len(bf.Blocks))
        for b := range bf.BlockWeights { bf.BlockWeights[b] = 1 }
    }
    if len(bf.BlockWeights) != len(bf.Blocks) { return errors.New("block weights do not match block count") }
    if bf.NClasses <= 0 {
        for _, c := range y { if c+1 > bf.NClasses { bf.NClasses = c + 1 } }
    }

    featWeight := make([]float64, bf.NFeatures)
    for b, blk := range bf.Blocks {
        for _, f := range blk { featWeight[f] = bf.BlockWeights[b] }
    }

    rng := rand.New(rand.NewSource(bf.Seed))
    bf.Trees = make([]*DecisionTree, 0, bf.NEstimators)
    bf.InBagCounts = make([][]int, n)
    for i := range bf.InBagCounts { bf.InBagCounts[i] = make([]int, bf.NEstimators) }
    bf.Importances = make([]float64, bf.NFeatures)
    for k := 0; k < bf.NEstimators; k++ {
        Xb := make([][]float64, n)
        yb := make([]int, n)
        for i := 0; i < n; i++ {
            j := rng.Intn(n)
            Xb[i] = X[j]
            yb[i] = y[j]
            bf.InBagCounts[j][k]++
        }
        dt := NewDecisionTree()
        dt.MaxDepth = bf.MaxDepth
        dt.MinSamplesSplit = bf.MinSamples
        dt.MaxThresholdsPerFe = bf.MaxThresholdsPerFe
        dt.NClasses = bf.NClasses
        dt.setRand(rng)
        dt.setFeatureWeights(featWeight)
        dt.setCandidatePicker(func() []int { return bf.sampleCandidates(rng) })
        if err := dt.Fit(Xb, yb); err != nil { return err }
        for f, v := range dt.Importances() { bf.Importances[f] += v }
        bf.Trees = append(bf.Trees, dt)
    }
    m := float64(len(bf.Trees))
    for f := range bf.Importances { bf.Importances[f] /= m }
    return nil
}

// sampleCandidates draws sqrt(|block|) candidate columns from every block, so
// small blocks are not drowned out by large ones in the candidate pool.
func (bf *BlockForest) sampleCandidates(rng *rand.Rand) []int {
    out := make([]int, 0, 16)
    for b, blk := range bf.Blocks {
        if bf.BlockWeights[b] == 0 || len(blk) == 0 { continue }
        mtry := int(math.Max(1, math.Sqrt(float64(len(blk)))))
        perm := rng.Perm(len(blk))
        for i := 0; i < mtry; i++ { out = append(out, blk[perm[i]]) }
    }
    return out
}

func (bf *BlockForest) Predict(X [][]float64) []int {
    ps := bf.PredictProba(X)
    out := make([]int, len(ps))
    for i := range ps { out[i] = argmax(ps[i]) }
    return out
}

func (bf *BlockForest) PredictProba(X [][]float64) [][]float64 {
    return averageProba(bf.Trees, X, bf.NClasses)
}

func (bf *BlockForest) OOBError(X [][]float64, y []int) float64 {
    return oobError(bf.Trees, bf.InBagCounts, X, y, bf.NClasses)
}

func (bf *BlockForest) NumTrees() int    { return len(bf.Trees) }
func (bf *BlockForest) NumFeatures() int { return bf.NFeatures }
func (bf *BlockForest) NumClasses() int  { return bf.NClasses }
func (bf *BlockForest) InBag() [][]int   { return bf.InBagCounts }

func (bf *BlockForest) TreeLeaf(t int, x []float64) int { return bf.Trees[t].Leaf(x) }

func (bf *BlockForest) FeatureImportances() []float64 { return bf.Importances }
