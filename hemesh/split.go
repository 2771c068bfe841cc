package hemesh

import "github.com/soypat/glgl/math/ms3"

// insertMidpoint appends the average of two vertices and records them as
// its parents. Parents always precede the child in the vertex array.
func (m *Mesh) insertMidpoint(a, b int32) int32 {
	v := int32(len(m.verts))
	mid := Vertex{
		Pos:      ms3.Scale(0.5, ms3.Add(m.verts[a].Pos, m.verts[b].Pos)),
		HalfEdge: NoIndex,
	}
	mid.UV.X = 0.5 * (m.verts[a].UV.X + m.verts[b].UV.X)
	mid.UV.Y = 0.5 * (m.verts[a].UV.Y + m.verts[b].UV.Y)
	m.verts = append(m.verts, mid)
	m.parents = append(m.parents, [2]int32{a, b})
	return v
}

// SplitEdge bisects the edge of he at its midpoint, splitting the one or
// two adjacent faces in two. The split half-edge is shortened in place to
// end at the midpoint so no face or half-edge slot is ever orphaned; each
// adjacent face keeps its index as one child and gains a sibling at the
// end of the face array, both at the parent's depth plus one. Returns the
// midpoint vertex index.
func (m *Mesh) SplitEdge(he int32) int32 {
	o := m.Origin(he)
	d := m.edges[he].Target
	t := m.edges[he].Twin
	mid := m.insertMidpoint(o, d)

	e2 := m.splitFaceAt(he, mid)
	m.verts[mid].HalfEdge = e2

	if t == NoIndex {
		m.edges[he].Twin = NoIndex
		m.edges[e2].Twin = NoIndex
		return mid
	}
	t2 := m.splitFaceAt(t, mid)
	// he now runs o->mid and t runs d->mid; the new halves close the
	// two bisected edges crosswise.
	m.edges[he].Twin = t2
	m.edges[t2].Twin = he
	m.edges[e2].Twin = t
	m.edges[t].Twin = e2
	return mid
}

// splitFaceAt bisects the face owning he across the segment from he's
// target-side midpoint to the opposite corner. he is shortened to end at
// mid and keeps its face; the far half of the face moves to a new face.
// Returns the new half-edge running mid->target, whose twin is unset.
func (m *Mesh) splitFaceAt(he, mid int32) int32 {
	f := m.edges[he].Face
	d := m.edges[he].Target
	en := m.edges[he].Next
	ep := m.edges[he].Prev
	apex := m.edges[en].Target

	level := m.faces[f].Level + 1
	material := m.faces[f].Material

	// e2 runs mid->d, i1 and i2 are the twin pair mid->apex / apex->mid
	// cutting the face in two.
	e2 := int32(len(m.edges))
	i1 := e2 + 1
	i2 := e2 + 2
	f2 := int32(len(m.faces))
	m.edges = append(m.edges,
		HalfEdge{Target: d, Twin: NoIndex, Next: en, Prev: i2, Face: f2},
		HalfEdge{Target: apex, Twin: i2, Next: ep, Prev: he, Face: f},
		HalfEdge{Target: mid, Twin: i1, Next: e2, Prev: en, Face: f2},
	)
	m.faces = append(m.faces, Face{HalfEdge: e2, Level: level, Material: material})
	m.faces[f] = Face{HalfEdge: he, Level: level, Material: material}

	m.edges[he].Target = mid
	m.edges[he].Next = i1
	m.edges[he].Prev = ep
	m.edges[ep].Next = he
	m.edges[ep].Prev = i1
	m.edges[en].Next = i2
	m.edges[en].Prev = e2
	m.edges[en].Face = f2
	return e2
}

// SubdivideFaces4 refines every face one level by splitting all three of
// its edges and emitting four children in the parent's place, sharing edge
// midpoints between neighbors so the result stays watertight. Topology is
// rebuilt from the refined index buffer in one pass. Returns the number of
// faces added.
func (m *Mesh) SubdivideFaces4() int {
	oldFaces := len(m.faces)
	midpoints := make(map[[2]int32]int32, 3*oldFaces/2)
	idx := make([]int32, 0, 12*oldFaces)
	levels := make([]int32, 0, 4*oldFaces)
	materials := make([]int32, 0, 4*oldFaces)
	for f := 0; f < oldFaces; f++ {
		idx, levels, materials = m.subdivideFace4(int32(f), midpoints, idx, levels, materials)
	}

	m.edges = m.edges[:0]
	m.faces = m.faces[:0]
	for i := range m.verts {
		m.verts[i].HalfEdge = NoIndex
	}
	for f := 0; len(idx) > 0; f++ {
		m.addFace(idx[0], idx[1], idx[2], levels[f], materials[f])
		idx = idx[3:]
	}
	if err := m.matchTwins(); err != nil {
		// A watertight refinement of a valid mesh cannot produce
		// duplicate directed edges.
		panic("hemesh: uniform refinement broke topology: " + err.Error())
	}
	return len(m.faces) - oldFaces
}

// subdivideFace4 splits all three edges of f, reusing already created
// midpoints from the cache, and appends the four child triangles to the
// pending index buffer: three corner children plus the central midpoint
// triangle.
func (m *Mesh) subdivideFace4(f int32, midpoints map[[2]int32]int32, idx, levels, materials []int32) ([]int32, []int32, []int32) {
	v0, v1, v2 := m.FaceVertices(f)
	m01 := m.edgeMidpoint(v0, v1, midpoints)
	m12 := m.edgeMidpoint(v1, v2, midpoints)
	m20 := m.edgeMidpoint(v2, v0, midpoints)
	idx = append(idx,
		v0, m01, m20,
		v1, m12, m01,
		v2, m20, m12,
		m01, m12, m20,
	)
	level := m.faces[f].Level + 1
	material := m.faces[f].Material
	for i := 0; i < 4; i++ {
		levels = append(levels, level)
		materials = append(materials, material)
	}
	return idx, levels, materials
}

func (m *Mesh) edgeMidpoint(a, b int32, midpoints map[[2]int32]int32) int32 {
	key := [2]int32{a, b}
	if a > b {
		key = [2]int32{b, a}
	}
	if mid, exists := midpoints[key]; exists {
		return mid
	}
	mid := m.insertMidpoint(a, b)
	midpoints[key] = mid
	return mid
}
