// Package features handles the integrated feature matrix: block layout,
// stratified splitting, and the synthetic-contrast construction used for
// unsupervised forests.
package features

import (
    "math/rand"

    "github.com/PayamEmami/randomforest-data-integration/internal/data"
)

// Layout maps omics blocks onto column index ranges of the integrated matrix.
type Layout struct {
    BlockNames []string
    Blocks     [][]int
    Names      []string
}

// BuildLayout derives the column layout from a cohort's block metadata.
func BuildLayout(blocks []data.Block) Layout {
    l := Layout{}
    off := 0
    for _, b := range blocks {
        idx := make([]int, len(b.Features))
        for j := range b.Features {
            idx[j] = off
            l.Names = append(l.Names, b.Name+":"+b.Features[j])
            off++
        }
        l.BlockNames = append(l.BlockNames, b.Name)
        l.Blocks = append(l.Blocks, idx)
    }
    return l
}

// StratifiedSplit shuffles within each class and sends trainFrac of every
// class to the training set, preserving class balance on both sides.
func StratifiedSplit(y []int, trainFrac float64, seed int64) (trainIdx, testIdx []int) {
    rng := rand.New(rand.NewSource(seed))
    byClass := map[int][]int{}
    order := []int{}
    for i, c := range y {
        if _, ok := byClass[c]; !ok { order = append(order, c) }
        byClass[c] = append(byClass[c], i)
    }
    for _, c := range order {
        idx := byClass[c]
        rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
        cut := int(trainFrac * float64(len(idx)))
        trainIdx = append(trainIdx, idx[:cut]...)
        testIdx = append(testIdx, idx[cut:]...)
    }
    rng.Shuffle(len(trainIdx), func(a, b int) { trainIdx[a], trainIdx[b] = trainIdx[b], trainIdx[a] })
    rng.Shuffle(len(testIdx), func(a, b int) { testIdx[a], testIdx[b] = testIdx[b], testIdx[a] })
    return trainIdx, testIdx
}

// Subset gathers the given rows of X.
func Subset(X [][]float64, idx []int) [][]float64 {
    out := make([][]float64, len(idx))
    for i, j := range idx { out[i] = X[j] }
    return out
}

// SubsetInts gathers the given entries of y.
func SubsetInts(y []int, idx []int) []int {
    out := make([]int, len(idx))
    for i, j := range idx { out[i] = y[j] }
    return out
}

// Contrast stacks X (class 0) with a copy whose columns were independently
// permuted (class 1). The permuted copy keeps every marginal distribution but
// destroys the joint structure, so a forest separating the two classes learns
// the dependence structure of the real data.
func Contrast(X [][]float64, seed int64) ([][]float64, []int) {
    rng := rand.New(rand.NewSource(seed))
    n := len(X)
    if n == 0 { return nil, nil }
    p := len(X[0])
    out := make([][]float64, 0, 2*n)
    y := make([]int, 0, 2*n)
    for i := 0; i < n; i++ {
        row := make([]float64, p)
        copy(row, X[i])
        out = append(out, row)
        y = append(y, 0)
    }
    for i := 0; i < n; i++ {
        out = append(out, make([]float64, p))
        y = append(y, 1)
    }
    for j := 0; j < p; j++ {
        perm := rng.Perm(n)
        for i := 0; i < n; i++ { out[n+i][j] = X[perm[i]][j] }
    }
    return out, y
}

// Transpose flips samples and features, for feature-space analyses.
func Transpose(X [][]float64) [][]float64 {
    if len(X) == 0 { return nil }
    n, p := len(X), len(X[0])
    out := make([][]float64, p)
    for j := 0; j < p; j++ {
        out[j] = make([]float64, n)
        for i := 0; i < n; i++ { out[j][i] = X[i][j] }
    }
    return out
}
