// Package mds implements classical (Torgerson) multidimensional scaling:
// given pairwise dissimilarities, recover low-dimensional coordinates whose
// Euclidean distances approximate them.
package mds

import (
    "errors"
    "fmt"
    "math"

    "gonum.org/v1/gonum/mat"
)

var ErrInvalidInput = errors.New("mds: invalid dissimilarity matrix")

// Embed double-centers the squared dissimilarities, eigendecomposes, and
// returns the top-dims coordinate axes scaled by the square root of their
// eigenvalues, together with the full eigenvalue spectrum (descending) for
// variance-explained reporting.
//
// The input must be square, symmetric, zero on the diagonal, and free of NaN;
// a NaN here means an upstream proximity was undefined and has to be resolved
// by the caller, not coerced to a distance. Negative eigenvalues (the
// dissimilarity is not exactly Euclidean) are clipped to zero; the clipped
// axes carry no coordinates, which is lossy but standard practice.
func Embed(d [][]float64, dims int) ([][]float64, []float64, error) {
    n := len(d)
    if n == 0 { return nil, nil, fmt.Errorf("%w: empty matrix", ErrInvalidInput) }
    if dims < 1 || dims > n { return nil, nil, fmt.Errorf("%w: dims %d out of range [1, %d]", ErrInvalidInput, dims, n) }
    for i := range d {
        if len(d[i]) != n { return nil, nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInput, i, len(d[i]), n) }
        if d[i][i] != 0 { return nil, nil, fmt.Errorf("%w: nonzero diagonal at %d", ErrInvalidInput, i) }
        for j := range d[i] {
            if math.IsNaN(d[i][j]) { return nil, nil, fmt.Errorf("%w: NaN at (%d,%d)", ErrInvalidInput, i, j) }
            if d[i][j] != d[j][i] { return nil, nil, fmt.Errorf("%w: not symmetric at (%d,%d)", ErrInvalidInput, i, j) }
        }
    }

    // B = -1/2 J D² J, with J the centering matrix I - 11ᵀ/n
    sq := make([]float64, n*n)
    for i := 0; i < n; i++ {
        for j := 0; j < n; j++ { sq[i*n+j] = d[i][j] * d[i][j] }
    }
    rowMean := make([]float64, n)
    grand := 0.0
    for i := 0; i < n; i++ {
        for j := 0; j < n; j++ { rowMean[i] += sq[i*n+j] }
        rowMean[i] /= float64(n)
        grand += rowMean[i]
    }
    grand /= float64(n)

    b := mat.NewSymDense(n, nil)
    for i := 0; i < n; i++ {
        for j := i; j < n; j++ {
            b.SetSym(i, j, -0.5*(sq[i*n+j]-rowMean[i]-rowMean[j]+grand))
        }
    }

    var eig mat.EigenSym
    if ok := eig.Factorize(b, true); !ok {
        return nil, nil, fmt.Errorf("%w: eigendecomposition failed", ErrInvalidInput)
    }
    vals := eig.Values(nil)
    var vecs mat.Dense
    eig.VectorsTo(&vecs)

    // EigenSym returns ascending order; we want the largest axes first
    order := make([]int, n)
    for i := range order { order[i] = n - 1 - i }

    eigenvalues := make([]float64, n)
    for k, idx := range order { eigenvalues[k] = vals[idx] }

    coords := make([][]float64, n)
    for i := range coords { coords[i] = make([]float64, dims) }
    for k := 0; k < dims; k++ {
        lambda := eigenvalues[k]
        if lambda < 0 { lambda = 0 }
        scale := math.Sqrt(lambda)
        for i := 0; i < n; i++ { coords[i][k] = vecs.At(i, order[k]) * scale }
    }
    return coords, eigenvalues, nil
}

// VarianceExplained reports the share of total positive eigenvalue mass
// carried by the first dims axes.
func VarianceExplained(eigenvalues []float64, dims int) float64 {
    total, top := 0.0, 0.0
    for k, v := range eigenvalues {
        if v <= 0 { continue }
        total += v
        if k < dims { top += v }
    }
    if total == 0 { return 0 }
    return top / total
}
