package models

import (
    "math/rand"
    "testing"

    "github.com/stretchr/testify/require"
)

// blockData builds two feature blocks: block 0 (2 columns) carries the class
// signal, block 1 (3 columns) is pure noise.
func blockData(n int, seed int64) ([][]float64, []int, [][]int) {
    rng := rand.New(rand.NewSource(seed))
    X := make([][]float64, n)
    y := make([]int, n)
    for i := range X {
        c := i % 2
        X[i] = []float64{
            float64(c)*3 + rng.NormFloat64()*0.4,
            float64(c)*-3 + rng.NormFloat64()*0.4,
            rng.NormFloat64(),
            rng.NormFloat64(),
            rng.NormFloat64(),
        }
        y[i] = c
    }
    blocks := [][]int{{0, 1}, {2, 3, 4}}
    return X, y, blocks
}

func TestBlockForestFitPredict(t *testing.T) {
    X, y, blocks := blockData(100, 20)
    bf := NewBlockForest()
    bf.NEstimators = 40
    bf.MaxDepth = 6
    bf.MinSamples = 2
    bf.Blocks = blocks
    require.NoError(t, bf.Fit(X, y))

    pred := bf.Predict(X)
    correct := 0
    for i := range y { if pred[i] == y[i] { correct++ } }
    require.GreaterOrEqual(t, float64(correct)/float64(len(y)), 0.95)
}

func TestBlockForestRequiresBlocks(t *testing.T) {
    X, y, _ := blockData(30, 21)
    bf := NewBlockForest()
    bf.NEstimators = 5
    require.Error(t, bf.Fit(X, y))

    bf.Blocks = [][]int{{0, 1}} // does not cover all 5 columns
    require.Error(t, bf.Fit(X, y))
}

func TestBlockForestZeroWeightBlockNeverSplits(t *testing.T) {
    X, y, blocks := blockData(80, 22)
    bf := NewBlockForest()
    bf.NEstimators = 20
    bf.MaxDepth = 6
    bf.MinSamples = 2
    bf.Blocks = blocks
    bf.BlockWeights = []float64{1, 0}
    require.NoError(t, bf.Fit(X, y))

    imps := bf.FeatureImportances()
    for _, f := range blocks[1] {
        require.Equal(t, 0.0, imps[f], "weight-0 block must get no splits")
    }
}

func TestBlockForestEnsembleSurface(t *testing.T) {
    X, y, blocks := blockData(60, 23)
    bf := NewBlockForest()
    bf.NEstimators = 10
    bf.MaxDepth = 4
    bf.MinSamples = 2
    bf.Blocks = blocks
    require.NoError(t, bf.Fit(X, y))

    var e Ensemble = bf
    require.Equal(t, 10, e.NumTrees())
    require.Equal(t, 5, e.NumFeatures())
    require.Len(t, e.InBag(), 60)
    for tr := 0; tr < 10; tr++ {
        total := 0
        for i := range e.InBag() { total += e.InBag()[i][tr] }
        require.Equal(t, 60, total)
    }
}
