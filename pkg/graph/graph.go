package graph

// Graph is the edge-based CSR graph prior to CH preprocessing. Each node in
// this graph is an "edge-based node": a single directed, projectable road
// segment from the OSM source graph, not an OSM intersection. A
// bidirectional road segment owns a pair of contiguous ids (i, Twin[i]) for
// its two directions — phantom-node resolution and multi-leg routing both
// rely on this pairing (see pkg/phantom, pkg/routing).
type Graph struct {
	NumNodes uint32
	NumArcs  uint32
	FirstOut []uint32 // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are arcs from node i
	Head     []uint32 // len: NumArcs; arc target edge-based node
	Weight   []uint32 // len: NumArcs; cost of entering Head, in millimeters

	// Per edge-based-node (segment) metadata, len: NumNodes.
	Twin       []int32   // -1 if one-way, else the opposite-direction segment's id
	NameID     []uint32  // index into a street-name table
	SelfWeight []uint32  // this segment's own traversal cost in millimeters
	Duration   []uint32  // centiseconds to traverse the full segment
	FromLat    []float64 // segment tail coordinate
	FromLon    []float64
	ToLat      []float64 // segment head coordinate
	ToLon      []float64

	// Intermediate shape points for rendering, indexed the same way as
	// nodes: GeoFirstOut[i]..GeoFirstOut[i+1] into GeoShapeLat/Lon gives
	// edge-based node i's interior shape points.
	GeoFirstOut []uint32
	GeoShapeLat []float64
	GeoShapeLon []float64
}

// ArcsFrom returns the range of arc indices for arcs originating at
// edge-based node u.
func (g *Graph) ArcsFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// CHGraph holds the output of contraction hierarchies preprocessing over an
// edge-based Graph. CH only adds shortcut arcs and an upward-only overlay —
// it never renumbers nodes — so the per-node metadata arrays below are
// exactly the ones produced by the original Graph.
type CHGraph struct {
	NumNodes uint32
	Rank     []uint32

	Twin       []int32
	NameID     []uint32
	SelfWeight []uint32
	Duration   []uint32
	FromLat    []float64
	FromLon    []float64
	ToLat      []float64
	ToLon      []float64

	GeoFirstOut []uint32
	GeoShapeLat []float64
	GeoShapeLon []float64

	// Forward upward overlay: arcs u->v where Rank[u] < Rank[v].
	FwdFirstOut []uint32
	FwdHead     []uint32
	FwdWeight   []uint32
	FwdMiddle   []int32 // -1 for original arcs, else the contracted node id

	// Backward upward overlay: reversed arcs v->u where Rank[u] < Rank[v],
	// stored as u->v so a backward search can walk it like a forward one.
	BwdFirstOut []uint32
	BwdHead     []uint32
	BwdWeight   []uint32
	BwdMiddle   []int32

	// Transposes of the two overlays above, built once during contraction
	// and used only by stall-on-demand: FwdRev holds, for each node u, the
	// set of v with an upward arc v->u in Fwd ("incoming edges valid in the
	// forward direction"). BwdRev is the same for Bwd.
	FwdRevFirstOut []uint32
	FwdRevHead     []uint32
	FwdRevWeight   []uint32

	BwdRevFirstOut []uint32
	BwdRevHead     []uint32
	BwdRevWeight   []uint32

	// Original (pre-contraction) edge-based graph, retained for shortcut
	// unpacking, phantom-node spatial indexing, and geometry lookups.
	OrigFirstOut []uint32
	OrigHead     []uint32
	OrigWeight   []uint32
}

// GetNumberOfNodes implements the DataFacade read contract (spec.md §6).
func (g *CHGraph) GetNumberOfNodes() uint32 { return g.NumNodes }

// BeginEdges returns the first forward-overlay arc index for node u.
func (g *CHGraph) BeginEdges(u uint32) uint32 { return g.FwdFirstOut[u] }

// EndEdges returns the arc index one past the last forward-overlay arc for
// node u.
func (g *CHGraph) EndEdges(u uint32) uint32 { return g.FwdFirstOut[u+1] }

// FindEdgeInEitherDirection looks for an arc between u and v in the forward
// overlay (u->v) or the backward overlay stored as (v->u); it reports the
// arc's weight, whether it is a shortcut, and the contracted middle node if
// so. found is false if no such arc exists in either overlay.
func (g *CHGraph) FindEdgeInEitherDirection(u, v uint32) (weight uint32, middle int32, found bool) {
	for e := g.FwdFirstOut[u]; e < g.FwdFirstOut[u+1]; e++ {
		if g.FwdHead[e] == v {
			return g.FwdWeight[e], g.FwdMiddle[e], true
		}
	}
	for e := g.BwdFirstOut[v]; e < g.BwdFirstOut[v+1]; e++ {
		if g.BwdHead[e] == u {
			return g.BwdWeight[e], g.BwdMiddle[e], true
		}
	}
	return 0, -1, false
}
