package routing

import (
	"errors"

	"multiroute/pkg/graph"
)

var (
	errUnpackTooDeep = errors.New("routing: shortcut unpacking exceeded max depth")
	errNoSuchArc     = errors.New("routing: no CH arc between consecutive packed-path nodes")
)

// PhantomNode is a point on the road network that a query waypoint snapped
// to: it names the original edge-based segment the point lies on, the
// distance from each end of that segment to the snap point (already
// including the ratio-scaled weight, not the full segment weight), and the
// snapped coordinate itself for the route geometry's first/last points.
type PhantomNode struct {
	ForwardNode  uint32  // edge-based node of the segment in its stored direction
	ReverseNode  uint32  // Twin[ForwardNode], or noNode if the segment is one-way
	ForwardWeight uint32 // cost from the segment's start up to the snap point
	ReverseWeight uint32 // cost from the snap point to the segment's end
	ForwardOffset uint32 // cost from the segment's start up to the snap point, duration units
	ReverseOffset uint32
	Ratio        float64 // fraction of the segment's length before the snap point, [0,1]
	Lat, Lon     float64 // snapped coordinate
}

// PhantomNodePair is the pair of phantom nodes a single waypoint resolves
// to: Forward is the snapped segment in its stored direction, Reverse the
// same point on the segment's twin (set only when HasReverse). The same
// pair serves as one leg's target and, for an interior waypoint, as the
// next leg's start.
type PhantomNodePair struct {
	Lat, Lon float64
	Forward  PhantomNode
	Reverse  PhantomNode // the Twin-direction phantom, valid only if the segment is bidirectional
	HasReverse bool
}

// RoutingStep pops the closest node from heap, relaxes its CH upward arcs
// (the overlay named by forward), and checks whether the other direction's
// search has already seen this node — if so, the midpoint/upperbound pair
// is updated, mirroring OSRM's bidirectional-Dijkstra meeting-point check.
// It returns true when heap was empty or the popped node's distance already
// exceeds the upper bound, false otherwise.
// offset cancels the negative key a phantom-seeded search preloaded at its
// root (see ComputeEdgeOffset); plain node-to-node searches pass 0.
// Stall-on-demand uses the matching transpose CSR to skip relaxing from a
// node that is provably not on any shortest up-path.
func RoutingStep(chg *graph.CHGraph, heap, otherHeap *QueryHeap, forward bool, middleNode *uint32, upperbound *int, offset int) (stop bool) {
	if heap.Empty() {
		return true
	}
	node := heap.DeleteMin()
	distance := heap.GetKey(node)

	if otherHeap.WasInserted(node) {
		newDistance := distance + otherHeap.GetKey(node) - offset
		if newDistance >= 0 && newDistance < *upperbound {
			*middleNode = node
			*upperbound = newDistance
		}
	}

	if distance > *upperbound {
		return true
	}

	if stalled(chg, heap, node, distance, forward) {
		return false
	}

	var firstOut, head, weight []uint32
	if forward {
		firstOut, head, weight = chg.FwdFirstOut, chg.FwdHead, chg.FwdWeight
	} else {
		firstOut, head, weight = chg.BwdFirstOut, chg.BwdHead, chg.BwdWeight
	}

	for e := firstOut[node]; e < firstOut[node+1]; e++ {
		to := head[e]
		toDistance := distance + int(weight[e])
		if !heap.WasInserted(to) {
			heap.Insert(to, toDistance, HeapData{Parent: node})
		} else if toDistance < heap.GetKey(to) {
			heap.DecreaseKey(to, toDistance, HeapData{Parent: node})
		}
	}
	return false
}

// stalled checks whether node has an incoming upward arc, in the direction
// opposite to the one being relaxed, from a node already settled at a
// strictly lower distance — if so, node cannot lie on any shortest up-path
// from the search's root and relaxing its own out-edges would be wasted
// work (and could poison the search with a suboptimal distance).
func stalled(chg *graph.CHGraph, heap *QueryHeap, node uint32, distance int, forward bool) bool {
	var revFirstOut, revHead, revWeight []uint32
	if forward {
		revFirstOut, revHead, revWeight = chg.FwdRevFirstOut, chg.FwdRevHead, chg.FwdRevWeight
	} else {
		revFirstOut, revHead, revWeight = chg.BwdRevFirstOut, chg.BwdRevHead, chg.BwdRevWeight
	}
	for e := revFirstOut[node]; e < revFirstOut[node+1]; e++ {
		from := revHead[e]
		if heap.WasInserted(from) && heap.GetKey(from)+int(revWeight[e]) < distance {
			return true
		}
	}
	return false
}

// RetrievePackedPathFromHeap walks both search trees' parent chains back to
// their respective roots and splices them at middleNode, producing the
// sequence of edge-based nodes the meeting node lies on — still containing
// CH shortcuts, which UnpackPath expands.
func RetrievePackedPathFromHeap(forwardHeap, reverseHeap *QueryHeap, middleNode uint32) []uint32 {
	var fwdPart []uint32
	for cur := middleNode; ; {
		fwdPart = append(fwdPart, cur)
		parent := forwardHeap.GetData(cur).Parent
		if parent == cur {
			break
		}
		cur = parent
	}
	// fwdPart is middleNode -> ... -> root; reverse it to root -> ... -> middleNode.
	for i, j := 0, len(fwdPart)-1; i < j; i, j = i+1, j-1 {
		fwdPart[i], fwdPart[j] = fwdPart[j], fwdPart[i]
	}

	var bwdPart []uint32
	for cur := middleNode; ; {
		parent := reverseHeap.GetData(cur).Parent
		if parent == cur {
			break
		}
		bwdPart = append(bwdPart, parent)
		cur = parent
	}
	// bwdPart is already middleNode's successor -> ... -> target root, in order.
	return append(fwdPart, bwdPart...)
}

// maxUnpackDepth bounds the shortcut-expansion stack, matching the
// teacher's safety bound against a malformed or cyclic overlay.
const maxUnpackDepth = 100

// UnpackPath expands every CH shortcut in packedPath into the sequence of
// original edge-based nodes it represents, by walking consecutive pairs
// and recursively splitting any shortcut arc at its middle node.
func UnpackPath(chg *graph.CHGraph, packedPath []uint32) ([]uint32, error) {
	if len(packedPath) == 0 {
		return nil, nil
	}

	unpacked := []uint32{packedPath[0]}

	type frame struct {
		from, to uint32
		depth    int
	}

	for i := 0; i+1 < len(packedPath); i++ {
		stack := []frame{{packedPath[i], packedPath[i+1], 0}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.depth > maxUnpackDepth {
				return nil, errUnpackTooDeep
			}

			_, middle, found := chg.FindEdgeInEitherDirection(f.from, f.to)
			if !found {
				return nil, errNoSuchArc
			}
			if middle < 0 {
				unpacked = append(unpacked, f.to)
				continue
			}
			// Expand the shortcut: from -> middle -> to. Push in reverse
			// order so from->middle is processed before middle->to.
			stack = append(stack, frame{uint32(middle), f.to, f.depth + 1})
			stack = append(stack, frame{f.from, uint32(middle), f.depth + 1})
		}
	}

	return unpacked, nil
}

// ComputeEdgeOffset returns the weight a phantom-seeded search preloaded
// negatively at its root: the remaining weight to the end of the segment
// in the pair's primary direction, plus the same for the twin direction if
// the segment is bidirected. RoutingStep's meeting check subtracts this to
// cancel the preload once both heaps meet, so the reported distance counts
// only the distance from the projection point onward, not the whole edge.
func ComputeEdgeOffset(p PhantomNodePair) int {
	offset := int(p.Forward.ReverseWeight)
	if p.HasReverse {
		offset += int(p.Reverse.ReverseWeight)
	}
	return offset
}
