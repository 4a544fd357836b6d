package cluster

import (
    "testing"

    "github.com/stretchr/testify/require"
)

func TestSilhouetteBounds(t *testing.T) {
    d, _ := twoGroups(5, 5, 0.1, 0.9)
    for k := 2; k <= 5; k++ {
        c, err := Partition(d, k)
        require.NoError(t, err)
        sil, err := Silhouette(d, c.Labels)
        require.NoError(t, err)
        require.GreaterOrEqual(t, sil.Mean, -1.0)
        require.LessOrEqual(t, sil.Mean, 1.0)
        for _, w := range sil.Widths {
            require.GreaterOrEqual(t, w, -1.0)
            require.LessOrEqual(t, w, 1.0)
        }
    }
}

func TestSilhouetteSingletonConvention(t *testing.T) {
    d, _ := twoGroups(4, 1, 0.1, 0.9)
    labels := []int{1, 1, 1, 1, 2}
    sil, err := Silhouette(d, labels)
    require.NoError(t, err)
    require.Equal(t, 1, sil.Singletons)
    require.Equal(t, 0.0, sil.Widths[4], "singleton width defaults to 0")
}

func TestSilhouetteLabelLengthMismatch(t *testing.T) {
    d, _ := twoGroups(3, 3, 0.1, 0.9)
    _, err := Silhouette(d, []int{1, 2})
    require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSelectKPrefersTrueGroupCount(t *testing.T) {
    d, _ := twoGroups(5, 5, 0.1, 0.9)
    bestK, scores, err := SelectK(d, 5)
    require.NoError(t, err)
    require.Equal(t, 2, bestK)
    require.Len(t, scores, 4)
    for _, s := range scores {
        require.GreaterOrEqual(t, s.Score, -1.0)
        require.LessOrEqual(t, s.Score, 1.0)
    }
}

// End-to-end: six samples in two groups of three, ten trees, group A
// co-occurring in leaf 1 for nine trees, group B in leaf 2, and one tree
// scattering everyone into private leaves.
func TestLeafCoOccurrenceScenario(t *testing.T) {
    leaves := make([][]int, 6)
    for i := range leaves {
        leaves[i] = make([]int, 10)
        for tr := 0; tr < 9; tr++ {
            if i < 3 { leaves[i][tr] = 1 } else { leaves[i][tr] = 2 }
        }
        leaves[i][9] = 10 + i
    }
    n := len(leaves)
    d := make([][]float64, n)
    for i := range d { d[i] = make([]float64, n) }
    for i := 0; i < n; i++ {
        for j := i + 1; j < n; j++ {
            match := 0
            for tr := 0; tr < 10; tr++ {
                if leaves[i][tr] == leaves[j][tr] { match++ }
            }
            prox := float64(match) / 10
            if (i < 3) == (j < 3) {
                require.InDelta(t, 0.9, prox, 1e-12)
            } else {
                require.LessOrEqual(t, prox, 0.1)
            }
            d[i][j], d[j][i] = 1-prox, 1-prox
        }
    }

    bestK, _, err := SelectK(d, 4)
    require.NoError(t, err)
    require.Equal(t, 2, bestK)

    c, err := Partition(d, 2)
    require.NoError(t, err)
    truth := []int{1, 1, 1, 2, 2, 2}
    require.True(t, samePartition(truth, c.Labels))
}
