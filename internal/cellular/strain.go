package cellular

// strainSet is a union-find over strain ids. The lowest id of a merged group
// is its root, so merging never renames a strain to a higher number.
type strainSet struct {
	parent []int
}

func newStrainSet(n int) *strainSet {
	s := &strainSet{parent: make([]int, n)}
	for i := range s.parent {
		s.parent[i] = i
	}
	return s
}

func (s *strainSet) find(x int) int {
	for s.parent[x] != x {
		s.parent[x] = s.parent[s.parent[x]]
		x = s.parent[x]
	}
	return x
}

func (s *strainSet) union(a, b int) int {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return ra
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	return ra
}

// mergeStrains unifies all given strains and returns the surviving root.
func (c *Cellular) mergeStrains(strains ...int) int {
	if len(strains) == 0 {
		return -1
	}
	root := c.strains.find(strains[0])
	for _, st := range strains[1:] {
		root = c.strains.union(root, st)
	}
	return root
}
