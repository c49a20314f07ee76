package schematic

// disjointSet groups port keys into nets.
type disjointSet struct {
	parent map[string]string
	rank   map[string]int
}

func newDisjointSet() *disjointSet {
	return &disjointSet{parent: map[string]string{}, rank: map[string]int{}}
}

func (d *disjointSet) add(k string) {
	if _, ok := d.parent[k]; !ok {
		d.parent[k] = k
	}
}

func (d *disjointSet) find(k string) string {
	d.add(k)
	for d.parent[k] != k {
		d.parent[k] = d.parent[d.parent[k]]
		k = d.parent[k]
	}
	return k
}

func (d *disjointSet) union(a, b string) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}
