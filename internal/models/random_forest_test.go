package models

import (
    "testing"

    "github.com/stretchr/testify/require"
)

func TestRandomForestFitPredict(t *testing.T) {
    X, y := separable(120, 10)
    rf := NewRandomForest()
    rf.NEstimators = 50
    rf.MaxDepth = 6
    rf.MinSamples = 2
    require.NoError(t, rf.Fit(X, y))

    pred := rf.Predict(X)
    correct := 0
    for i := range y { if pred[i] == y[i] { correct++ } }
    require.GreaterOrEqual(t, float64(correct)/float64(len(y)), 0.95)

    oob := rf.OOBError(X, y)
    require.GreaterOrEqual(t, oob, 0.0)
    require.LessOrEqual(t, oob, 1.0)
}

func TestRandomForestInBagBookkeeping(t *testing.T) {
    X, y := separable(60, 11)
    rf := NewRandomForest()
    rf.NEstimators = 25
    rf.MaxDepth = 5
    rf.MinSamples = 2
    require.NoError(t, rf.Fit(X, y))

    inBag := rf.InBag()
    require.Len(t, inBag, 60)
    for i := range inBag { require.Len(t, inBag[i], 25) }
    // every tree draws exactly n bootstrap samples
    for tr := 0; tr < 25; tr++ {
        total := 0
        for i := range inBag { total += inBag[i][tr] }
        require.Equal(t, 60, total)
    }
}

func TestRandomForestSeedDeterminism(t *testing.T) {
    X, y := separable(60, 12)
    a := NewRandomForest()
    a.NEstimators = 20
    a.MaxDepth = 5
    a.MinSamples = 2
    a.Seed = 42
    require.NoError(t, a.Fit(X, y))

    b := NewRandomForest()
    b.NEstimators = 20
    b.MaxDepth = 5
    b.MinSamples = 2
    b.Seed = 42
    require.NoError(t, b.Fit(X, y))

    require.Equal(t, a.InBag(), b.InBag())
    require.Equal(t, a.Predict(X), b.Predict(X))
    for tr := 0; tr < 20; tr++ {
        for i := range X { require.Equal(t, a.TreeLeaf(tr, X[i]), b.TreeLeaf(tr, X[i])) }
    }
}

func TestRandomForestImportances(t *testing.T) {
    X, y := separable(120, 13)
    rf := NewRandomForest()
    rf.NEstimators = 40
    rf.MaxDepth = 6
    rf.MinSamples = 2
    require.NoError(t, rf.Fit(X, y))

    imps := rf.FeatureImportances()
    require.Len(t, imps, 3)
    require.Greater(t, imps[0], imps[1], "the informative column must rank first")
    require.Greater(t, imps[0], imps[2])
}

func TestRandomForestEnsembleSurface(t *testing.T) {
    X, y := separable(45, 14)
    rf := NewRandomForest()
    rf.NEstimators = 12
    rf.MaxDepth = 4
    rf.MinSamples = 2
    require.NoError(t, rf.Fit(X, y))

    var e Ensemble = rf
    require.Equal(t, 12, e.NumTrees())
    require.Equal(t, 3, e.NumFeatures())
    require.Equal(t, 3, e.NumClasses())
    for tr := 0; tr < e.NumTrees(); tr++ {
        id := e.TreeLeaf(tr, X[0])
        require.GreaterOrEqual(t, id, 0)
        require.Less(t, id, rf.Trees[tr].NLeaves)
    }
}
