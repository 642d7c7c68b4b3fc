package utils

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Contains(ind int) bool {
	for _, val := range I {
		if val == ind {
			return true
		}
	}
	return false
}

// Union merges J into I, dropping duplicates while preserving first-seen
// order.
func (I Index) Union(J Index) (R Index) {
	seen := make(map[int]struct{}, len(I)+len(J))
	add := func(ind int) {
		if _, exists := seen[ind]; !exists {
			seen[ind] = struct{}{}
			R = append(R, ind)
		}
	}
	for _, ind := range I {
		add(ind)
	}
	for _, ind := range J {
		add(ind)
	}
	return
}
