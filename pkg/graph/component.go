package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient — max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the edge-based node indices belonging to the
// largest weakly connected component (treating the directed graph as
// undirected, and also unioning each segment with its twin so a
// bidirectional road never straddles two components).
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes)

	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.ArcsFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
		if t := g.Twin[u]; t >= 0 {
			uf.Union(u, uint32(t))
		}
	}

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// FilterToComponent creates a new edge-based graph containing only the
// specified segments. A segment whose twin falls outside the kept set has
// its Twin reset to -1: it becomes effectively one-way in the filtered
// graph, since its opposite direction no longer exists to pair with.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return &Graph{}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	numNodes := uint32(len(nodes))

	type arc struct {
		from, to, weight uint32
		shapeLats        []float64
		shapeLons        []float64
	}
	var arcs []arc

	for _, oldU := range nodes {
		start, end := g.ArcsFrom(oldU)
		for e := start; e < end; e++ {
			oldV := g.Head[e]
			if newV, ok := oldToNew[oldV]; ok {
				var shapeLats, shapeLons []float64
				if g.GeoFirstOut != nil {
					geoStart := g.GeoFirstOut[e]
					geoEnd := g.GeoFirstOut[e+1]
					if geoEnd > geoStart {
						shapeLats = make([]float64, geoEnd-geoStart)
						copy(shapeLats, g.GeoShapeLat[geoStart:geoEnd])
						shapeLons = make([]float64, geoEnd-geoStart)
						copy(shapeLons, g.GeoShapeLon[geoStart:geoEnd])
					}
				}
				arcs = append(arcs, arc{
					from:      oldToNew[oldU],
					to:        newV,
					weight:    g.Weight[e],
					shapeLats: shapeLats,
					shapeLons: shapeLons,
				})
			}
		}
	}

	numArcs := uint32(len(arcs))

	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numArcs)
	weight := make([]uint32, numArcs)
	geoFirstOut := make([]uint32, numArcs+1)
	var geoShapeLat, geoShapeLon []float64

	for _, a := range arcs {
		firstOut[a.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, a := range arcs {
		idx := pos[a.from]
		head[idx] = a.to
		weight[idx] = a.weight
		geoFirstOut[idx] = uint32(len(geoShapeLat))
		geoShapeLat = append(geoShapeLat, a.shapeLats...)
		geoShapeLon = append(geoShapeLon, a.shapeLons...)
		pos[a.from]++
	}
	geoFirstOut[numArcs] = uint32(len(geoShapeLat))

	twin := make([]int32, numNodes)
	nameID := make([]uint32, numNodes)
	selfWeight := make([]uint32, numNodes)
	duration := make([]uint32, numNodes)
	fromLat := make([]float64, numNodes)
	fromLon := make([]float64, numNodes)
	toLat := make([]float64, numNodes)
	toLon := make([]float64, numNodes)
	for newIdx, oldIdx := range nodes {
		twin[newIdx] = -1
		if t := g.Twin[oldIdx]; t >= 0 {
			if nt, ok := oldToNew[uint32(t)]; ok {
				twin[newIdx] = int32(nt)
			}
		}
		nameID[newIdx] = g.NameID[oldIdx]
		selfWeight[newIdx] = g.SelfWeight[oldIdx]
		duration[newIdx] = g.Duration[oldIdx]
		fromLat[newIdx] = g.FromLat[oldIdx]
		fromLon[newIdx] = g.FromLon[oldIdx]
		toLat[newIdx] = g.ToLat[oldIdx]
		toLon[newIdx] = g.ToLon[oldIdx]
	}

	return &Graph{
		NumNodes:    numNodes,
		NumArcs:     numArcs,
		FirstOut:    firstOut,
		Head:        head,
		Weight:      weight,
		Twin:        twin,
		NameID:      nameID,
		SelfWeight:  selfWeight,
		Duration:    duration,
		FromLat:     fromLat,
		FromLon:     fromLon,
		ToLat:       toLat,
		ToLon:       toLon,
		GeoFirstOut: geoFirstOut,
		GeoShapeLat: geoShapeLat,
		GeoShapeLon: geoShapeLon,
	}
}
