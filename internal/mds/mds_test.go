package mds

import (
    "math"
    "testing"

    "github.com/stretchr/testify/require"
)

func euclidean(a, b []float64) float64 {
    s := 0.0
    for i := range a { s += (a[i] - b[i]) * (a[i] - b[i]) }
    return math.Sqrt(s)
}

func distMatrix(pts [][]float64) [][]float64 {
    n := len(pts)
    d := make([][]float64, n)
    for i := range d { d[i] = make([]float64, n) }
    for i := 0; i < n; i++ {
        for j := i + 1; j < n; j++ {
            v := euclidean(pts[i], pts[j])
            d[i][j], d[j][i] = v, v
        }
    }
    return d
}

func TestRecoversPlanarConfiguration(t *testing.T) {
    pts := [][]float64{{0, 0}, {3, 0}, {0, 4}, {3, 4}}
    d := distMatrix(pts)

    coords, eig, err := Embed(d, 2)
    require.NoError(t, err)
    require.Len(t, coords, 4)
    require.Len(t, eig, 4)

    // pairwise distances survive up to rotation/reflection/translation
    for i := 0; i < 4; i++ {
        for j := i + 1; j < 4; j++ {
            require.InDelta(t, d[i][j], euclidean(coords[i], coords[j]), 1e-6)
        }
    }
    // a planar configuration needs exactly two positive axes
    require.Greater(t, eig[0], 0.0)
    require.Greater(t, eig[1], 0.0)
    require.InDelta(t, 0, eig[2], 1e-9)
    require.InDelta(t, 0, eig[3], 1e-9)
    require.InDelta(t, 1.0, VarianceExplained(eig, 2), 1e-9)
}

func TestEigenvaluesSortedDescending(t *testing.T) {
    pts := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {0, 0, 3}, {1, 2, 3}}
    _, eig, err := Embed(distMatrix(pts), 2)
    require.NoError(t, err)
    for k := 1; k < len(eig); k++ { require.LessOrEqual(t, eig[k], eig[k-1]) }
}

func TestNonEuclideanInputClipsNegativeEigenvalues(t *testing.T) {
    // d(0,1) violates the triangle inequality via point 2
    d := [][]float64{
        {0, 3, 1, 1},
        {3, 0, 1, 1},
        {1, 1, 0, 1},
        {1, 1, 1, 0},
    }
    coords, eig, err := Embed(d, 2)
    require.NoError(t, err)
    hasNegative := false
    for _, v := range eig { if v < -1e-9 { hasNegative = true } }
    require.True(t, hasNegative, "expected a negative eigenvalue for non-Euclidean input")
    for i := range coords {
        for k := range coords[i] { require.False(t, math.IsNaN(coords[i][k])) }
    }
}

func TestRejectsInvalidInput(t *testing.T) {
    _, _, err := Embed(nil, 2)
    require.ErrorIs(t, err, ErrInvalidInput)

    _, _, err = Embed([][]float64{{0, 1}, {2, 0}}, 2)
    require.ErrorIs(t, err, ErrInvalidInput)

    _, _, err = Embed([][]float64{{1, 1}, {1, 0}}, 1)
    require.ErrorIs(t, err, ErrInvalidInput)

    _, _, err = Embed([][]float64{{0, math.NaN()}, {math.NaN(), 0}}, 1)
    require.ErrorIs(t, err, ErrInvalidInput)

    _, _, err = Embed([][]float64{{0, 1}, {1, 0}}, 3)
    require.ErrorIs(t, err, ErrInvalidInput)
}
