package models

import (
    "math/rand"
    "testing"

    "github.com/stretchr/testify/require"
)

func separable(n int, seed int64) ([][]float64, []int) {
    rng := rand.New(rand.NewSource(seed))
    X := make([][]float64, n)
    y := make([]int, n)
    for i := range X {
        c := i % 3
        X[i] = []float64{
            float64(c)*4 + rng.NormFloat64()*0.3,
            rng.NormFloat64(),
            rng.NormFloat64(),
        }
        y[i] = c
    }
    return X, y
}

func TestDecisionTreeFitsSeparableClasses(t *testing.T) {
    X, y := separable(90, 1)
    dt := NewDecisionTree()
    dt.MinSamplesSplit = 2
    require.NoError(t, dt.Fit(X, y))
    require.Equal(t, 3, dt.NClasses)

    pred := dt.Predict(X)
    correct := 0
    for i := range y { if pred[i] == y[i] { correct++ } }
    require.GreaterOrEqual(t, float64(correct)/float64(len(y)), 0.95)
}

func TestDecisionTreeProbabilitiesSumToOne(t *testing.T) {
    X, y := separable(60, 2)
    dt := NewDecisionTree()
    dt.MinSamplesSplit = 2
    require.NoError(t, dt.Fit(X, y))
    for _, p := range dt.PredictProba(X) {
        sum := 0.0
        for _, v := range p { sum += v }
        require.InDelta(t, 1.0, sum, 1e-9)
    }
}

func TestDecisionTreeLeafIDs(t *testing.T) {
    X, y := separable(90, 3)
    dt := NewDecisionTree()
    dt.MinSamplesSplit = 2
    require.NoError(t, dt.Fit(X, y))
    require.Greater(t, dt.NLeaves, 1)
    for i := range X {
        id := dt.Leaf(X[i])
        require.GreaterOrEqual(t, id, 0)
        require.Less(t, id, dt.NLeaves)
        // routing is deterministic
        require.Equal(t, id, dt.Leaf(X[i]))
    }
}

func TestDecisionTreeImportancesFocusOnInformativeFeature(t *testing.T) {
    X, y := separable(120, 4)
    dt := NewDecisionTree()
    dt.MinSamplesSplit = 2
    require.NoError(t, dt.Fit(X, y))
    imps := dt.Importances()
    require.Len(t, imps, 3)
    require.Greater(t, imps[0], imps[1])
    require.Greater(t, imps[0], imps[2])
}
