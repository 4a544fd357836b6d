package cluster

import (
    "fmt"
    "math"
)

// SilhouetteResult carries per-item widths, their mean, and the number of
// singleton clusters encountered. An item alone in its cluster has no
// within-cluster distance; its width is 0 by convention and the singleton
// tally lets the caller surface the degeneracy instead of it vanishing into
// the mean.
type SilhouetteResult struct {
    Widths     []float64
    Mean       float64
    Singletons int
}

// Silhouette scores a labeling against the same dissimilarity matrix the
// clustering was built from: per item, (b−a)/max(a,b) with a the mean
// dissimilarity to its own cluster and b the mean to the nearest other
// cluster. All widths lie in [−1, 1].
func Silhouette(d [][]float64, labels []int) (*SilhouetteResult, error) {
    n, err := checkMatrix(d)
    if err != nil { return nil, err }
    if len(labels) != n { return nil, fmt.Errorf("%w: %d labels for %d items", ErrInvalidInput, len(labels), n) }

    sizes := map[int]int{}
    for _, l := range labels { sizes[l]++ }

    res := &SilhouetteResult{Widths: make([]float64, n)}
    for _, sz := range sizes {
        if sz == 1 { res.Singletons++ }
    }
    for i := 0; i < n; i++ {
        own := labels[i]
        if sizes[own] == 1 {
            res.Widths[i] = 0
            continue
        }
        sums := map[int]float64{}
        for j := 0; j < n; j++ {
            if j == i { continue }
            sums[labels[j]] += d[i][j]
        }
        a := sums[own] / float64(sizes[own]-1)
        b := math.MaxFloat64
        for l, s := range sums {
            if l == own { continue }
            if m := s / float64(sizes[l]); m < b { b = m }
        }
        if b == math.MaxFloat64 || math.Max(a, b) == 0 {
            res.Widths[i] = 0
            continue
        }
        res.Widths[i] = (b - a) / math.Max(a, b)
    }
    for _, w := range res.Widths { res.Mean += w }
    res.Mean /= float64(n)
    return res, nil
}

// KScore is the silhouette outcome for one candidate k.
type KScore struct {
    K          int
    Score      float64
    Singletons int
}

// SelectK scans k = 2..kMax (capped at n−1), clusters at each k, and returns
// the k with the highest mean silhouette width along with every score.
func SelectK(d [][]float64, kMax int) (int, []KScore, error) {
    n, err := checkMatrix(d)
    if err != nil { return 0, nil, err }
    if kMax > n-1 { kMax = n - 1 }
    if kMax < 2 { return 0, nil, fmt.Errorf("%w: kMax=%d leaves no candidate k", ErrInvalidK, kMax) }

    scores := make([]KScore, 0, kMax-1)
    bestK := 2
    bestScore := math.Inf(-1)
    for k := 2; k <= kMax; k++ {
        c, err := Partition(d, k)
        if err != nil { return 0, nil, err }
        sil, err := Silhouette(d, c.Labels)
        if err != nil { return 0, nil, err }
        scores = append(scores, KScore{K: k, Score: sil.Mean, Singletons: sil.Singletons})
        if sil.Mean > bestScore { bestScore = sil.Mean; bestK = k }
    }
    return bestK, scores, nil
}
