package cbt

// SumReductionNaive exposes the reference reduction
// so the prepass can be checked against it.
func (t *Tree) SumReductionNaive() { t.sumReductionNaive() }
