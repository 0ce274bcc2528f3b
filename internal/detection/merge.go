package detection

import "sort"

// Merge unions every group of transitively overlapping regions into its
// bounding region.
//
// The overlap relation is treated as a graph and each connected component is
// replaced by the union of its members. Because a union can overlap a region
// that none of its members touched, the pass repeats until no two outputs
// overlap. Exact duplicates overlap each other and so collapse to one region.
//
// The result is sorted top-to-bottom then left-to-right and does not depend
// on input order. Regions that overlap nothing are returned unchanged.
func Merge(regions []Region) []Region {
	current := make([]Region, 0, len(regions))
	for _, r := range regions {
		if !r.Empty() {
			current = append(current, r)
		}
	}

	for {
		merged, changed := mergePass(current)
		current = merged
		if !changed {
			break
		}
	}

	sort.Slice(current, func(i, j int) bool { return current[i].less(current[j]) })
	return current
}

// mergePass runs one connected-components pass over the overlap graph.
func mergePass(regions []Region) ([]Region, bool) {
	parent := make([]int, len(regions))
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	changed := false
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if !regions[i].Overlaps(regions[j]) {
				continue
			}
			ri, rj := find(i), find(j)
			if ri != rj {
				parent[rj] = ri
				changed = true
			}
		}
	}
	if !changed {
		return regions, false
	}

	unions := make(map[int]Region)
	order := make([]int, 0)
	for i, r := range regions {
		root := find(i)
		if u, ok := unions[root]; ok {
			unions[root] = u.Union(r)
			continue
		}
		unions[root] = r
		order = append(order, root)
	}

	out := make([]Region, 0, len(order))
	for _, root := range order {
		out = append(out, unions[root])
	}
	return out, true
}
