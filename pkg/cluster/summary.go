package cluster

// Summary describes the cluster structure of a label assignment.
type Summary[K Integer] struct {
	Clusters     int `json:"clusters"`      // distinct labels
	Largest      int `json:"largest"`       // size of the largest cluster
	LargestLabel K   `json:"largest_label"` // label of the largest cluster (smallest label on ties)
	Singletons   int `json:"singletons"`    // clusters with exactly one key
}

// Summarize counts clusters in assignments.
func Summarize[K Integer](assignments []Assignment[K]) Summary[K] {
	sizes := make(map[K]int)
	for _, a := range assignments {
		sizes[a.Label]++
	}

	var s Summary[K]
	s.Clusters = len(sizes)
	for label, n := range sizes {
		if n == 1 {
			s.Singletons++
		}
		if n > s.Largest || (n == s.Largest && label < s.LargestLabel) {
			s.Largest = n
			s.LargestLabel = label
		}
	}
	return s
}

// Components groups keys by label. Keys keep their order from assignments.
func Components[K Integer](assignments []Assignment[K]) map[K][]K {
	out := make(map[K][]K)
	for _, a := range assignments {
		out[a.Label] = append(out[a.Label], a.Key)
	}
	return out
}

// Members returns the keys labeled label, in assignment order.
func Members[K Integer](assignments []Assignment[K], label K) []K {
	var keys []K
	for _, a := range assignments {
		if a.Label == label {
			keys = append(keys, a.Key)
		}
	}
	return keys
}
