package data

// Block is one omics layer: a named group of adjacent feature columns in the
// integrated matrix.
type Block struct {
    Name     string
    Features []string
}

// Cohort is an integrated multi-omics dataset: one row per sample, columns
// concatenated block by block in the order of Blocks.
type Cohort struct {
    SampleIDs []string
    Subtypes  []string
    Blocks    []Block
    X         [][]float64
}

// FeatureNames returns the concatenated column names in matrix order.
func (c *Cohort) FeatureNames() []string {
    names := []string{}
    for _, b := range c.Blocks {
        for _, f := range b.Features { names = append(names, b.Name+":"+f) }
    }
    return names
}

// Labels encodes the subtype strings as integer class ids in first-seen
// order, returning the ids and the class name table.
func (c *Cohort) Labels() ([]int, []string) {
    uniq := map[string]int{}
    classes := []string{}
    y := make([]int, len(c.Subtypes))
    for i, s := range c.Subtypes {
        id, ok := uniq[s]
        if !ok {
            id = len(uniq)
            uniq[s] = id
            classes = append(classes, s)
        }
        y[i] = id
    }
    return y, classes
}
