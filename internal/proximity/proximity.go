// Package proximity derives pairwise sample similarity from a trained forest:
// two samples are close when the trees route them to the same terminal node.
// On training data the count is restricted to trees that held both samples
// out of their bootstrap, which removes the optimistic bias of samples
// meeting inside their own training partition.
package proximity

import (
    "errors"
    "fmt"
    "math"
    "runtime"
    "sync"

    "github.com/PayamEmami/randomforest-data-integration/internal/models"
)

var (
    ErrFeatureMismatch = errors.New("proximity: query features do not match the trained ensemble")
    ErrShape           = errors.New("proximity: input matrices have inconsistent shapes")
)

type Mode int

const (
    // Full counts co-occurrence over every tree. For held-out data and
    // feature-space queries, where in-bag membership has no meaning.
    Full Mode = iota
    // OOB counts co-occurrence only over trees that held both samples out of
    // their bootstrap. Only valid for the ensemble's own training set.
    OOB
)

type Policy int

const (
    // KeepNaN leaves pairs with no jointly held-out tree as NaN; the count is
    // reported in Matrix.Undefined and downstream consumers must deal with it.
    KeepNaN Policy = iota
    // FallbackFullForest recomputes such pairs over all trees instead.
    FallbackFullForest
)

// LeafAssignments routes every row of X down every tree of e and returns the
// n×T terminal-node id matrix.
func LeafAssignments(e models.Ensemble, X [][]float64) ([][]int, error) {
    p := e.NumFeatures()
    for i := range X {
        if len(X[i]) != p {
            return nil, fmt.Errorf("%w: row %d has %d columns, ensemble was trained on %d", ErrFeatureMismatch, i, len(X[i]), p)
        }
    }
    T := e.NumTrees()
    leaves := make([][]int, len(X))
    for i := range X {
        row := make([]int, T)
        for t := 0; t < T; t++ { row[t] = e.TreeLeaf(t, X[i]) }
        leaves[i] = row
    }
    return leaves, nil
}

// InBagCounts exposes the bootstrap counts the ensemble recorded at fit time.
// It is metadata of the training run, never recomputed here.
func InBagCounts(e models.Ensemble) [][]int { return e.InBag() }

// Matrix is a symmetric n×n proximity (or dissimilarity) matrix stored
// row-major. Undefined counts the unordered pairs whose value is NaN.
type Matrix struct {
    N         int
    Vals      []float64
    Undefined int
}

func (m *Matrix) At(i, j int) float64 { return m.Vals[i*m.N+j] }

func (m *Matrix) set(i, j int, v float64) { m.Vals[i*m.N+j] = v }

// Dissimilarity returns 1 − P elementwise with a zero diagonal. NaN entries
// stay NaN so that an undefined proximity remains inspectable downstream.
func (m *Matrix) Dissimilarity() *Matrix {
    d := &Matrix{N: m.N, Vals: make([]float64, len(m.Vals)), Undefined: m.Undefined}
    for i := 0; i < m.N; i++ {
        for j := 0; j < m.N; j++ {
            if i == j { continue }
            d.Vals[i*m.N+j] = 1 - m.Vals[i*m.N+j]
        }
    }
    return d
}

// Rows returns the matrix as row slices, for callers that want plain [][]float64.
func (m *Matrix) Rows() [][]float64 {
    out := make([][]float64, m.N)
    for i := 0; i < m.N; i++ { out[i] = m.Vals[i*m.N : (i+1)*m.N] }
    return out
}

// Engine computes proximity matrices. Workers caps the parallel row-range
// workers; zero means GOMAXPROCS. The computation is O(n²·T): fine for
// cohorts of hundreds of samples and trees, not built for more.
type Engine struct {
    Workers int
    Policy  Policy
}

// Compute builds the symmetric proximity matrix for the given leaf
// assignments. inBag is required in OOB mode and ignored in Full mode. Only
// the upper triangle is computed; the lower is mirrored, so the two halves
// agree exactly. The diagonal is 1 by convention in both modes.
func (e *Engine) Compute(leaves [][]int, inBag [][]int, mode Mode) (*Matrix, error) {
    n := len(leaves)
    if n == 0 { return nil, fmt.Errorf("%w: empty leaf matrix", ErrShape) }
    T := len(leaves[0])
    for i := range leaves {
        if len(leaves[i]) != T { return nil, fmt.Errorf("%w: ragged leaf matrix", ErrShape) }
    }
    if T == 0 { return nil, fmt.Errorf("%w: ensemble has no trees", ErrShape) }
    if mode == OOB {
        if len(inBag) != n { return nil, fmt.Errorf("%w: in-bag rows (%d) != leaf rows (%d)", ErrShape, len(inBag), n) }
        for i := range inBag {
            if len(inBag[i]) != T { return nil, fmt.Errorf("%w: in-bag row %d has %d trees, want %d", ErrShape, i, len(inBag[i]), T) }
        }
    }

    m := &Matrix{N: n, Vals: make([]float64, n*n)}
    workers := e.Workers
    if workers <= 0 { workers = runtime.GOMAXPROCS(0) }
    if workers > n { workers = n }

    undef := make([]int, workers)
    var wg sync.WaitGroup
    rowsPerWorker := (n + workers - 1) / workers
    for w := 0; w < workers; w++ {
        start := w * rowsPerWorker
        end := start + rowsPerWorker
        if end > n { end = n }
        if start >= end { continue }
        wg.Add(1)
        go func(start, end, id int) {
            defer wg.Done()
            for i := start; i < end; i++ {
                m.set(i, i, 1)
                for j := i + 1; j < n; j++ {
                    v := pairProximity(leaves[i], leaves[j], inBag, i, j, mode, e.Policy)
                    if math.IsNaN(v) { undef[id]++ }
                    m.set(i, j, v)
                }
            }
        }(start, end, w)
    }
    wg.Wait()
    for _, u := range undef { m.Undefined += u }

    // mirror the upper triangle for exact symmetry
    for i := 0; i < n; i++ {
        for j := i + 1; j < n; j++ { m.set(j, i, m.At(i, j)) }
    }
    return m, nil
}

func pairProximity(li, lj []int, inBag [][]int, i, j int, mode Mode, policy Policy) float64 {
    if mode == Full {
        return coOccurrence(li, lj)
    }
    elig, match := 0, 0
    for t := range li {
        if inBag[i][t] > 0 || inBag[j][t] > 0 { continue }
        elig++
        if li[t] == lj[t] { match++ }
    }
    if elig == 0 {
        if policy == FallbackFullForest { return coOccurrence(li, lj) }
        return math.NaN()
    }
    return float64(match) / float64(elig)
}

func coOccurrence(li, lj []int) float64 {
    match := 0
    for t := range li {
        if li[t] == lj[t] { match++ }
    }
    return float64(match) / float64(len(li))
}
