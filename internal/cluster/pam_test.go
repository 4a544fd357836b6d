package cluster

import (
    "math"
    "testing"

    "github.com/stretchr/testify/require"
)

// twoGroups builds a dissimilarity matrix with two tight groups: intra-group
// distance `near`, inter-group distance `far`.
func twoGroups(sizeA, sizeB int, near, far float64) ([][]float64, []int) {
    n := sizeA + sizeB
    d := make([][]float64, n)
    truth := make([]int, n)
    for i := range d { d[i] = make([]float64, n) }
    for i := 0; i < n; i++ {
        if i >= sizeA { truth[i] = 1 }
        for j := i + 1; j < n; j++ {
            v := near
            if (i < sizeA) != (j < sizeA) { v = far }
            d[i][j], d[j][i] = v, v
        }
    }
    return d, truth
}

func samePartition(a, b []int) bool {
    if len(a) != len(b) { return false }
    for i := range a {
        for j := i + 1; j < len(a); j++ {
            if (a[i] == a[j]) != (b[i] == b[j]) { return false }
        }
    }
    return true
}

func TestPartitionRecoversTwoGroups(t *testing.T) {
    d, truth := twoGroups(5, 5, 0.1, 0.9)
    c, err := Partition(d, 2)
    require.NoError(t, err)
    require.Len(t, c.Labels, 10)
    require.Len(t, c.Medoids, 2)
    for _, l := range c.Labels {
        require.GreaterOrEqual(t, l, 1)
        require.LessOrEqual(t, l, 2)
    }
    require.True(t, samePartition(truth01(truth), c.Labels), "partition must match up to label permutation")
}

func truth01(truth []int) []int {
    out := make([]int, len(truth))
    for i, v := range truth { out[i] = v + 1 }
    return out
}

func TestPartitionDeterminism(t *testing.T) {
    d, _ := twoGroups(6, 4, 0.2, 0.8)
    a, err := Partition(d, 3)
    require.NoError(t, err)
    b, err := Partition(d, 3)
    require.NoError(t, err)
    require.Equal(t, a.Labels, b.Labels)
    require.Equal(t, a.Medoids, b.Medoids)
}

func TestPartitionKRange(t *testing.T) {
    d, _ := twoGroups(3, 3, 0.1, 0.9)
    _, err := Partition(d, 1)
    require.ErrorIs(t, err, ErrInvalidK)
    _, err = Partition(d, 6)
    require.ErrorIs(t, err, ErrInvalidK)
}

func TestPartitionRejectsBadMatrix(t *testing.T) {
    _, err := Partition(nil, 2)
    require.ErrorIs(t, err, ErrInvalidInput)

    _, err = Partition([][]float64{{0, 1}, {2, 0}}, 2)
    require.ErrorIs(t, err, ErrInvalidInput)

    _, err = Partition([][]float64{{0, math.NaN()}, {math.NaN(), 0}}, 2)
    require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMedoidsBelongToTheirClusters(t *testing.T) {
    d, _ := twoGroups(4, 6, 0.3, 0.7)
    c, err := Partition(d, 2)
    require.NoError(t, err)
    for ci, m := range c.Medoids {
        require.Equal(t, ci+1, c.Labels[m], "medoid %d must carry its own cluster label", m)
    }
}
