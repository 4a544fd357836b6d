package data

import (
    "encoding/csv"
    "fmt"
    "math/rand"
    "os"
    "path/filepath"
    "strconv"
    "strings"
)

var subtypes = []string{"Basal", "Her2", "LumA", "LumB"}

// block sizes and how many leading features of each block carry subtype
// signal; the rest is noise.
var blockSpec = []struct {
    name        string
    prefix      string
    size        int
    informative int
    shift       float64
}{
    {"mrna", "g", 40, 12, 2.0},
    {"methyl", "cpg", 25, 8, 1.5},
    {"protein", "p", 15, 5, 1.2},
}

// GenerateCohort builds a synthetic multi-omics cohort with latent subtype
// structure: each subtype gets its own mean profile on the informative
// columns of every block, Gaussian noise everywhere.
func GenerateCohort(n int, seed int64) *Cohort {
    rng := rand.New(rand.NewSource(seed))

    blocks := make([]Block, len(blockSpec))
    for b, spec := range blockSpec {
        feats := make([]string, spec.size)
        for j := 0; j < spec.size; j++ { feats[j] = fmt.Sprintf("%s%d", spec.prefix, j+1) }
        blocks[b] = Block{Name: spec.name, Features: feats}
    }

    // subtype mean profile per informative column
    centers := make([][][]float64, len(subtypes))
    for s := range subtypes {
        centers[s] = make([][]float64, len(blockSpec))
        for b, spec := range blockSpec {
            centers[s][b] = make([]float64, spec.informative)
            for j := range centers[s][b] { centers[s][b][j] = rng.NormFloat64() * spec.shift }
        }
    }

    c := &Cohort{Blocks: blocks}
    for i := 0; i < n; i++ {
        s := i % len(subtypes)
        row := []float64{}
        for b, spec := range blockSpec {
            for j := 0; j < spec.size; j++ {
                v := rng.NormFloat64()
                if j < spec.informative { v += centers[s][b][j] }
                row = append(row, v)
            }
        }
        c.SampleIDs = append(c.SampleIDs, fmt.Sprintf("S%04d", i+1))
        c.Subtypes = append(c.Subtypes, subtypes[s])
        c.X = append(c.X, row)
    }
    return c
}

// WriteCSV saves the cohort as sample_id,subtype,<block>:<feature>,...
func WriteCSV(c *Cohort, path string) error {
    if dir := filepath.Dir(path); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil { return err }
    }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()

    w := csv.NewWriter(f)
    defer w.Flush()

    header := append([]string{"sample_id", "subtype"}, c.FeatureNames()...)
    if err := w.Write(header); err != nil { return err }
    for i := range c.X {
        rec := []string{c.SampleIDs[i], c.Subtypes[i]}
        for _, v := range c.X[i] { rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64)) }
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

// LoadCSV reads a cohort back, reconstructing the block layout from the
// <block>:<feature> column names.
func LoadCSV(path string) (*Cohort, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()

    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil { return nil, err }
    if len(rows) < 2 { return nil, fmt.Errorf("cohort csv %s: no samples", path) }

    header := rows[0]
    if len(header) < 3 || header[0] != "sample_id" || header[1] != "subtype" {
        return nil, fmt.Errorf("cohort csv %s: unexpected header", path)
    }

    c := &Cohort{}
    for _, col := range header[2:] {
        name, feat, ok := strings.Cut(col, ":")
        if !ok { return nil, fmt.Errorf("cohort csv %s: column %q has no block prefix", path, col) }
        if len(c.Blocks) == 0 || c.Blocks[len(c.Blocks)-1].Name != name {
            c.Blocks = append(c.Blocks, Block{Name: name})
        }
        last := &c.Blocks[len(c.Blocks)-1]
        last.Features = append(last.Features, feat)
    }

    for i := 1; i < len(rows); i++ {
        row := rows[i]
        if len(row) != len(header) { return nil, fmt.Errorf("cohort csv %s: row %d has %d fields, want %d", path, i, len(row), len(header)) }
        vals := make([]float64, 0, len(row)-2)
        for _, s := range row[2:] {
            v, err := strconv.ParseFloat(s, 64)
            if err != nil { return nil, fmt.Errorf("cohort csv %s: row %d: %w", path, i, err) }
            vals = append(vals, v)
        }
        c.SampleIDs = append(c.SampleIDs, row[0])
        c.Subtypes = append(c.Subtypes, row[1])
        c.X = append(c.X, vals)
    }
    return c, nil
}
