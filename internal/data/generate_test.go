package data

import (
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/require"
)

func TestGenerateCohortShape(t *testing.T) {
    c := GenerateCohort(40, 1)
    require.Len(t, c.X, 40)
    require.Len(t, c.SampleIDs, 40)
    require.Len(t, c.Subtypes, 40)
    require.Len(t, c.Blocks, 3)

    p := 0
    for _, b := range c.Blocks { p += len(b.Features) }
    for _, row := range c.X { require.Len(t, row, p) }
    require.Len(t, c.FeatureNames(), p)
}

func TestLabelsEncodeFirstSeenOrder(t *testing.T) {
    c := &Cohort{Subtypes: []string{"LumA", "Basal", "LumA", "Her2"}}
    y, classes := c.Labels()
    require.Equal(t, []int{0, 1, 0, 2}, y)
    require.Equal(t, []string{"LumA", "Basal", "Her2"}, classes)
}

func TestCohortCSVRoundTrip(t *testing.T) {
    c := GenerateCohort(12, 5)
    path := filepath.Join(t.TempDir(), "cohort.csv")
    require.NoError(t, WriteCSV(c, path))

    got, err := LoadCSV(path)
    require.NoError(t, err)
    require.Equal(t, c.SampleIDs, got.SampleIDs)
    require.Equal(t, c.Subtypes, got.Subtypes)
    require.Equal(t, c.Blocks, got.Blocks)
    require.Len(t, got.X, len(c.X))
    for i := range c.X {
        for j := range c.X[i] {
            require.InDelta(t, c.X[i][j], got.X[i][j], 1e-12)
        }
    }
}

func TestGenerateCohortDeterminism(t *testing.T) {
    a := GenerateCohort(20, 9)
    b := GenerateCohort(20, 9)
    require.Equal(t, a.X, b.X)
    require.Equal(t, a.Subtypes, b.Subtypes)
}
