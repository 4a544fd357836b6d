// Package cluster partitions items around medoids (PAM) given only a
// precomputed dissimilarity matrix, and scores partitions by silhouette
// width to pick k.
package cluster

import (
    "errors"
    "fmt"
    "math"
)

var (
    ErrInvalidInput = errors.New("cluster: invalid dissimilarity matrix")
    ErrInvalidK     = errors.New("cluster: k out of range")
)

// maxIter caps the PAM swap loop; in practice it converges in a handful of
// passes.
const maxIter = 100

// Clustering is the result of one PAM run. Labels are 1-based cluster ids,
// Medoids holds the item index representing each cluster (Medoids[c] is the
// medoid of cluster c+1).
type Clustering struct {
    K       int
    Labels  []int
    Medoids []int
}

// Partition runs PAM: deterministic greedy BUILD seeding, then alternating
// nearest-medoid assignment and in-cluster medoid updates until the medoid
// set is stable. Identical inputs always produce identical output.
func Partition(d [][]float64, k int) (*Clustering, error) {
    n, err := checkMatrix(d)
    if err != nil { return nil, err }
    if k < 2 || k > n-1 { return nil, fmt.Errorf("%w: k=%d, want 2..%d", ErrInvalidK, k, n-1) }

    medoids := buildSeed(d, k)
    labels := make([]int, n)
    for it := 0; it < maxIter; it++ {
        assign(d, medoids, labels)
        changed := false
        for c := range medoids {
            best := medoids[c]
            bestCost := clusterCost(d, labels, c+1, best)
            for i := 0; i < n; i++ {
                if labels[i] != c+1 || i == best { continue }
                cost := clusterCost(d, labels, c+1, i)
                if cost < bestCost || (cost == bestCost && i < best) {
                    bestCost = cost
                    best = i
                }
            }
            if best != medoids[c] { medoids[c] = best; changed = true }
        }
        if !changed { break }
    }
    assign(d, medoids, labels)
    return &Clustering{K: k, Labels: labels, Medoids: medoids}, nil
}

// buildSeed is the PAM BUILD phase: start from the item with the smallest
// total dissimilarity, then greedily add the item that most reduces the
// summed distance to the nearest chosen medoid.
func buildSeed(d [][]float64, k int) []int {
    n := len(d)
    first, bestTotal := 0, math.MaxFloat64
    for i := 0; i < n; i++ {
        total := 0.0
        for j := 0; j < n; j++ { total += d[i][j] }
        if total < bestTotal { bestTotal = total; first = i }
    }
    medoids := []int{first}
    nearest := make([]float64, n)
    for j := 0; j < n; j++ { nearest[j] = d[first][j] }
    for len(medoids) < k {
        bestCand, bestGain := -1, -1.0
        for c := 0; c < n; c++ {
            if contains(medoids, c) { continue }
            gain := 0.0
            for j := 0; j < n; j++ {
                if red := nearest[j] - d[c][j]; red > 0 { gain += red }
            }
            if gain > bestGain { bestGain = gain; bestCand = c }
        }
        medoids = append(medoids, bestCand)
        for j := 0; j < n; j++ {
            if d[bestCand][j] < nearest[j] { nearest[j] = d[bestCand][j] }
        }
    }
    return medoids
}

func assign(d [][]float64, medoids []int, labels []int) {
    for i := range labels {
        best, bestDist := 0, math.MaxFloat64
        for c, m := range medoids {
            if d[i][m] < bestDist { bestDist = d[i][m]; best = c }
        }
        labels[i] = best + 1
    }
}

func clusterCost(d [][]float64, labels []int, label, medoid int) float64 {
    cost := 0.0
    for i := range labels {
        if labels[i] == label { cost += d[medoid][i] }
    }
    return cost
}

func contains(s []int, v int) bool {
    for _, x := range s { if x == v { return true } }
    return false
}

func checkMatrix(d [][]float64) (int, error) {
    n := len(d)
    if n == 0 { return 0, fmt.Errorf("%w: empty matrix", ErrInvalidInput) }
    for i := range d {
        if len(d[i]) != n { return 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInput, i, len(d[i]), n) }
        if d[i][i] != 0 { return 0, fmt.Errorf("%w: nonzero diagonal at %d", ErrInvalidInput, i) }
        for j := range d[i] {
            if math.IsNaN(d[i][j]) { return 0, fmt.Errorf("%w: NaN at (%d,%d)", ErrInvalidInput, i, j) }
            if d[i][j] != d[j][i] { return 0, fmt.Errorf("%w: not symmetric at (%d,%d)", ErrInvalidInput, i, j) }
        }
    }
    return n, nil
}
