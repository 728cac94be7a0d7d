package tomo

// Index is a tomographic 3D address plus the six orderings of its
// coordinates. The permutation table is computed at construction and is
// immutable; Set recomputes it when the triple changes.
type Index struct {
	I, J, K int
	perms   [6][3]int
}

// NewIndex returns an Index for (i, j, k) with its permutation table
// populated in the canonical order ijk, jik, ikj, jki, kij, kji.
func NewIndex(i, j, k int) Index {
	var idx Index
	idx.Set(i, j, k)
	return idx
}

// Set replaces the coordinate triple and recomputes the permutations.
func (idx *Index) Set(i, j, k int) {
	idx.I, idx.J, idx.K = i, j, k
	idx.perms = [6][3]int{
		{i, j, k}, // ijk
		{j, i, k}, // jik
		{i, k, j}, // ikj
		{j, k, i}, // jki
		{k, i, j}, // kij
		{k, j, i}, // kji
	}
}

// Permutations returns the six orderings of the coordinate triple.
// Repeated coordinates collapse to fewer unique orderings but all six
// entries are always listed.
func (idx Index) Permutations() [6][3]int {
	return idx.perms
}

// Linear maps a coordinate triple onto a slot in a linear array of the
// given capacity. The hash is deliberately lossy: once any coordinate
// exceeds 9 the decimal packing collides, and collisions are accepted as
// part of the multi-path sampling model.
func Linear(i, j, k, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return (i*100 + j*10 + k) % capacity
}
