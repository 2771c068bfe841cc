package subdiv

import (
	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/hemesh"
)

// Options bound any refinement run. MaxLevel caps how deep any face may be
// split and MinEdgeLength stops refinement of faces whose longest edge is
// already at most that long. A zero MinEdgeLength imposes no length floor.
type Options struct {
	MaxLevel      int32
	MinEdgeLength float32
}

// eligible reports whether a face may still be bisected under opt.
// Degenerate faces never qualify.
func eligible(m *hemesh.Mesh, f int32, opt Options) bool {
	if m.FaceLevel(f) >= opt.MaxLevel {
		return false
	}
	if !(m.FaceArea(f) > 0) {
		return false
	}
	return m.EdgeLengthSq(m.LongestEdge(f)) > opt.MinEdgeLength*opt.MinEdgeLength
}

// SubdivideRegion bisects the longest edge of every eligible face whose
// triangle intersects region, repeatedly, until no eligible face touches
// the region. Splitting an edge always splits the face across it in the
// same operation so the mesh never holds a T-junction, and children are
// re-examined so refinement grows outward ring by ring until MaxLevel or
// MinEdgeLength stop it. Returns the number of faces added.
func SubdivideRegion(m *hemesh.Mesh, region fleshring.Region, opt Options) int {
	return refine(m, nil, func(f int32) bool {
		return region.IntersectsTriangle(m.FaceTriangle(f))
	}, true, opt)
}

// SubdivideSelected runs the same bisection discipline as SubdivideRegion
// but seeds the worklist with an explicit face set instead of a region
// test, refining those faces and their descendants to the option bounds.
// Face indices outside the mesh are ignored. Returns the number of faces
// added.
func SubdivideSelected(m *hemesh.Mesh, faces []int32, opt Options) int {
	seeds := make([]int32, 0, len(faces))
	n := int32(m.FaceCount())
	for _, f := range faces {
		if f >= 0 && f < n {
			seeds = append(seeds, f)
		}
	}
	return refine(m, seeds, nil, false, opt)
}

// refine drains a worklist of candidate faces, bisecting each face that is
// still eligible and still wanted. Face slots are reused by splits so a
// popped index is always re-tested against the slot's current occupant.
// Seeds of nil means every face starts as a candidate. When spread is true
// the co-split neighbor's children join the worklist too, gated by wants;
// otherwise refinement stays within the seeded faces' descendants.
func refine(m *hemesh.Mesh, seeds []int32, wants func(f int32) bool, spread bool, opt Options) int {
	before := m.FaceCount()
	m.ClearMarks()
	var work []int32
	push := func(f int32) {
		if !m.FaceMarked(f) {
			m.MarkFace(f, true)
			work = append(work, f)
		}
	}
	if seeds == nil {
		work = make([]int32, before)
		for f := range work {
			work[f] = int32(f)
			m.MarkFace(int32(f), true)
		}
	} else {
		work = make([]int32, 0, 2*len(seeds))
		for _, f := range seeds {
			push(f)
		}
	}
	for len(work) > 0 {
		f := work[len(work)-1]
		work = work[:len(work)-1]
		m.MarkFace(f, false)
		if !eligible(m, f, opt) {
			continue
		}
		if wants != nil && !wants(f) {
			continue
		}
		he := m.LongestEdge(f)
		neighbor := hemesh.NoIndex
		if !m.IsBoundary(he) {
			neighbor = m.FaceOf(m.Twin(he))
			// Splitting he co-splits the neighbor, so the neighbor must
			// still be splittable too or its children would break the
			// depth cap. Skipping the split leaves no T-junction behind.
			if !eligible(m, neighbor, opt) {
				continue
			}
		}
		sibling := int32(m.FaceCount())
		m.SplitEdge(he)
		push(f)
		push(sibling)
		if spread && neighbor != hemesh.NoIndex {
			push(neighbor)
			push(sibling + 1)
		}
	}
	return m.FaceCount() - before
}

// SubdivideUniform refines every face one full level per pass until the
// shallowest face reaches MaxLevel or the longest edge in the mesh is at
// most MinEdgeLength. Intended for preview meshes whose faces start at a
// common level. Returns the number of faces added.
func SubdivideUniform(m *hemesh.Mesh, opt Options) int {
	added := 0
	for {
		minLevel := int32(1<<31 - 1)
		maxEdgeSq := float32(0)
		for f := int32(0); f < int32(m.FaceCount()); f++ {
			if l := m.FaceLevel(f); l < minLevel {
				minLevel = l
			}
			if e := m.EdgeLengthSq(m.LongestEdge(f)); e > maxEdgeSq {
				maxEdgeSq = e
			}
		}
		if minLevel >= opt.MaxLevel || maxEdgeSq <= opt.MinEdgeLength*opt.MinEdgeLength {
			return added
		}
		added += m.SubdivideFaces4()
	}
}
