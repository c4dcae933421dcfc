package routing

import (
	"errors"

	"multiroute/pkg/graph"
)

// ErrNoRoute is returned when no route exists across all waypoints.
var ErrNoRoute = errors.New("no route found")

// ErrTooFewWaypoints is returned when fewer than two waypoints are given.
var ErrTooFewWaypoints = errors.New("routing: need at least two waypoints")

// ShortestPathRouting chains an ordered list of waypoints (at least two)
// into a multi-leg route. Each leg runs two bidirectional CH searches in
// parallel — one per target orientation — with both of the leg's viable
// start orientations preloaded into each search's forward heap. A waypoint
// on a bidirected edge is reachable from either end; until a later leg's
// continuity forces one orientation, both candidate paths are carried and
// reconciled at the junction (swap if the natural continuation crossed,
// collapse once both candidates agree on the same node).
//
// Phantom waypoints snap to the interior of an edge, not its endpoint, so
// a leg's true weight excludes the portion of the boundary edges already
// covered before the snap point. Start searches are seeded with a
// negative key (distance-so-far minus the remaining weight to the edge's
// end); ComputeEdgeOffset cancels that preload once both heaps of a
// search meet, leaving only the distance from the projection point on.
//
// It returns one CH-packed path per leg — still containing shortcuts, the
// caller unpacks each via UnpackPath — the weight of each leg on its own,
// and the total weight across every leg, all in millimeters.
func ShortestPathRouting(chg *graph.CHGraph, sed *SearchEngineData, waypoints []PhantomNodePair) ([][]uint32, []int, int, error) {
	if len(waypoints) < 2 {
		return nil, nil, 0, ErrTooFewWaypoints
	}
	numLegs := len(waypoints) - 1

	distance1, distance2 := 0, 0
	searchFrom1, searchFrom2 := true, waypoints[0].HasReverse

	packedLegs1 := make([][]uint32, numLegs)
	packedLegs2 := make([][]uint32, numLegs)
	legWeight1 := make([]int, numLegs)
	legWeight2 := make([]int, numLegs)

	for leg := 0; leg < numLegs; leg++ {
		start := waypoints[leg]
		target := waypoints[leg+1]
		prevDistance1, prevDistance2 := distance1, distance2

		sed.ForwardHeap1.Clear()
		sed.ForwardHeap2.Clear()
		sed.ReverseHeap1.Clear()
		sed.ReverseHeap2.Clear()

		// Seed forwards: both live start candidates go into both forward
		// heaps, preloaded with the negative key that leaves only the
		// distance from the projection point onward to be paid.
		if searchFrom1 {
			key := distance1 - int(start.Forward.ReverseWeight)
			root := start.Forward.ForwardNode
			sed.ForwardHeap1.Insert(root, key, HeapData{Parent: root})
			sed.ForwardHeap2.Insert(root, key, HeapData{Parent: root})
		}
		if start.HasReverse && searchFrom2 {
			key := distance2 - int(start.Reverse.ReverseWeight)
			root := start.Reverse.ForwardNode
			sed.ForwardHeap1.Insert(root, key, HeapData{Parent: root})
			sed.ForwardHeap2.Insert(root, key, HeapData{Parent: root})
		}

		// Seed reverses: heap1 searches toward the target's primary
		// direction, heap2 toward its twin (if bidirected).
		targetRoot1 := target.Forward.ForwardNode
		sed.ReverseHeap1.Insert(targetRoot1, int(target.Forward.ReverseWeight), HeapData{Parent: targetRoot1})
		if target.HasReverse {
			targetRoot2 := target.Reverse.ForwardNode
			sed.ReverseHeap2.Insert(targetRoot2, int(target.Reverse.ReverseWeight), HeapData{Parent: targetRoot2})
		}

		offset := ComputeEdgeOffset(start)

		middle1, upperBound1 := runBidirectional(chg, sed.ForwardHeap1, sed.ReverseHeap1, offset)
		middle2, upperBound2 := noNode, IntMax
		if !sed.ReverseHeap2.Empty() {
			middle2, upperBound2 = runBidirectional(chg, sed.ForwardHeap2, sed.ReverseHeap2, offset)
		}

		if upperBound1 >= IntMax && upperBound2 >= IntMax {
			return nil, nil, IntMax, ErrNoRoute
		}

		if middle1 == noNode {
			searchFrom1 = false
		}
		if middle2 == noNode {
			searchFrom2 = false
		}

		var temp1, temp2 []uint32
		if upperBound1 < IntMax {
			temp1 = RetrievePackedPathFromHeap(sed.ForwardHeap1, sed.ReverseHeap1, middle1)
		}
		if upperBound2 < IntMax {
			temp2 = RetrievePackedPathFromHeap(sed.ForwardHeap2, sed.ReverseHeap2, middle2)
		}

		// Fill in whichever candidate's search failed this leg: the two
		// candidates carry identical paths until they next diverge.
		if len(temp1) == 0 {
			temp1, upperBound1 = temp2, upperBound2
		} else if len(temp2) == 0 {
			temp2, upperBound2 = temp1, upperBound1
		}

		if leg > 0 {
			e1 := packedLegs1[leg-1][len(packedLegs1[leg-1])-1]
			e2 := packedLegs2[leg-1][len(packedLegs2[leg-1])-1]
			s1, s2 := temp1[0], temp2[0]

			// Orientation swap: the natural continuation crossed over.
			if e1 != s1 && e2 != s2 {
				temp1, temp2 = temp2, temp1
				upperBound1, upperBound2 = upperBound2, upperBound1
				s1, s2 = temp1[0], temp2[0]
			}

			// Candidate collapse: both candidates fused at this junction,
			// so whichever history doesn't match the fused start is stale.
			if s1 == s2 {
				if s1 != e1 {
					copy(packedLegs1[:leg], packedLegs2[:leg])
					copy(legWeight1[:leg], legWeight2[:leg])
				} else if s2 != e2 {
					copy(packedLegs2[:leg], packedLegs1[:leg])
					copy(legWeight2[:leg], legWeight1[:leg])
				}
			}
		}

		packedLegs1[leg] = temp1
		packedLegs2[leg] = temp2
		legWeight1[leg] = upperBound1 - prevDistance1
		legWeight2[leg] = upperBound2 - prevDistance2

		// Orientation lock: if both candidates ended at the same node on a
		// bidirected target, only the orientation they actually arrived on
		// remains a viable entry for the next leg.
		if target.HasReverse && temp1[len(temp1)-1] == temp2[len(temp2)-1] {
			if temp1[len(temp1)-1] == target.Forward.ForwardNode {
				searchFrom2 = false
			} else {
				searchFrom1 = false
			}
		}

		distance1, distance2 = upperBound1, upperBound2
	}

	if distance1 > distance2 {
		packedLegs1, packedLegs2 = packedLegs2, packedLegs1
		legWeight1, legWeight2 = legWeight2, legWeight1
		distance1, distance2 = distance2, distance1
	}

	total := distance1
	if distance2 < total {
		total = distance2
	}
	return packedLegs1, legWeight1, total, nil
}

// runBidirectional alternates RoutingStep calls on a forward/reverse heap
// pair until both are exhausted or provably can no longer improve the
// upper bound, returning the meeting node and the shortest weight found.
func runBidirectional(chg *graph.CHGraph, fwd, bwd *QueryHeap, offset int) (uint32, int) {
	upperbound := IntMax
	middleNode := noNode

	for !fwd.Empty() || !bwd.Empty() {
		if !fwd.Empty() && fwd.MinKey() < upperbound {
			RoutingStep(chg, fwd, bwd, true, &middleNode, &upperbound, offset)
		}
		if !bwd.Empty() && bwd.MinKey() < upperbound {
			RoutingStep(chg, bwd, fwd, false, &middleNode, &upperbound, offset)
		}

		fwdMin, bwdMin := IntMax, IntMax
		if !fwd.Empty() {
			fwdMin = fwd.MinKey()
		}
		if !bwd.Empty() {
			bwdMin = bwd.MinKey()
		}
		if fwdMin >= upperbound && bwdMin >= upperbound {
			break
		}
	}

	return middleNode, upperbound
}

// biDijkstra runs a single plain node-to-node bidirectional CH query with
// no phantom offset, used directly by CH-correctness tests.
func biDijkstra(chg *graph.CHGraph, sed *SearchEngineData, source, target uint32) (int, []uint32, error) {
	fwd, bwd := sed.ForwardHeap1, sed.ReverseHeap1
	fwd.Clear()
	bwd.Clear()
	fwd.Insert(source, 0, HeapData{Parent: source})
	bwd.Insert(target, 0, HeapData{Parent: target})

	middleNode, upperbound := runBidirectional(chg, fwd, bwd, 0)

	if middleNode == noNode || upperbound >= IntMax {
		return 0, nil, ErrNoRoute
	}

	packed := RetrievePackedPathFromHeap(fwd, bwd, middleNode)
	return upperbound, packed, nil
}
