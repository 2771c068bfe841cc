package hemesh

import (
	"errors"
	"fmt"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// NoIndex marks an absent topology reference, such as the twin of a
// boundary half-edge.
const NoIndex int32 = -1

var (
	ErrEmptyMesh   = errors.New("empty source mesh")
	ErrBadIndices  = errors.New("malformed triangle indices")
	ErrNonManifold = errors.New("non-manifold topology")
)

// Vertex is immutable once created: subdivision inserts new vertices and
// never moves existing ones.
type Vertex struct {
	Pos ms3.Vec
	UV  ms2.Vec
	// HalfEdge is one half-edge originating at this vertex.
	HalfEdge int32
}

// HalfEdge is one directed traversal of a mesh edge. Twin is the opposite
// traversal owned by the adjacent face, NoIndex on the mesh boundary.
// Next and Prev cycle among the owning face's three half-edges.
type HalfEdge struct {
	Target int32
	Twin   int32
	Next   int32
	Prev   int32
	Face   int32
}

// Face is a triangle at a subdivision depth. Level 0 faces come from the
// source mesh; splitting a face yields children at Level+1 carrying the
// parent's material.
type Face struct {
	HalfEdge int32
	Level    int32
	Material int32
	Marked   bool
}

// Mesh is an arena of vertices, half-edges and faces joined by integer
// indices. All slices only ever grow; face slots are reused in place by
// edge splits so every face index is always live.
type Mesh struct {
	verts []Vertex
	edges []HalfEdge
	faces []Face
	// parents holds the two vertices each vertex was averaged from,
	// {i,i} for source vertices. Parent indices are always smaller
	// than the child index.
	parents   [][2]int32
	origVerts int
	hasUVs    bool
}

// NewMesh builds half-edge topology from flat source-mesh arrays by walking
// triangles in order and matching each directed edge with its reverse.
// uvs may be nil or must match positions in length; materials may be nil or
// must hold one entry per triangle. Non-manifold input (an edge shared by
// more than two triangles or inconsistent winding) is rejected, not fixed.
func NewMesh(positions []ms3.Vec, uvs []ms2.Vec, indices []int32, materials []int32) (*Mesh, error) {
	if len(positions) == 0 {
		return nil, ErrEmptyMesh
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d", ErrBadIndices, len(indices))
	}
	if uvs != nil && len(uvs) != len(positions) {
		return nil, fmt.Errorf("%w: %d uvs for %d positions", ErrBadIndices, len(uvs), len(positions))
	}
	nFaces := len(indices) / 3
	if materials != nil && len(materials) != nFaces {
		return nil, fmt.Errorf("%w: %d materials for %d triangles", ErrBadIndices, len(materials), nFaces)
	}
	m := &Mesh{
		verts:     make([]Vertex, len(positions)),
		edges:     make([]HalfEdge, 0, len(indices)),
		faces:     make([]Face, 0, nFaces),
		parents:   make([][2]int32, len(positions)),
		origVerts: len(positions),
		hasUVs:    uvs != nil,
	}
	for i := range positions {
		m.verts[i] = Vertex{Pos: positions[i], HalfEdge: NoIndex}
		if uvs != nil {
			m.verts[i].UV = uvs[i]
		}
		m.parents[i] = [2]int32{int32(i), int32(i)}
	}
	for f := 0; f < nFaces; f++ {
		material := int32(0)
		if materials != nil {
			material = materials[f]
		}
		tri := [3]int32{indices[3*f], indices[3*f+1], indices[3*f+2]}
		for _, v := range tri {
			if v < 0 || int(v) >= len(positions) {
				return nil, fmt.Errorf("%w: vertex %d out of range", ErrBadIndices, v)
			}
		}
		m.addFace(tri[0], tri[1], tri[2], 0, material)
	}
	if err := m.matchTwins(); err != nil {
		return nil, err
	}
	return m, nil
}

// addFace appends a face and its three linked half-edges, leaving twins
// unset.
func (m *Mesh) addFace(v0, v1, v2, level, material int32) int32 {
	f := int32(len(m.faces))
	e := int32(len(m.edges))
	m.edges = append(m.edges,
		HalfEdge{Target: v1, Twin: NoIndex, Next: e + 1, Prev: e + 2, Face: f},
		HalfEdge{Target: v2, Twin: NoIndex, Next: e + 2, Prev: e, Face: f},
		HalfEdge{Target: v0, Twin: NoIndex, Next: e, Prev: e + 1, Face: f},
	)
	m.faces = append(m.faces, Face{HalfEdge: e, Level: level, Material: material})
	m.verts[v0].HalfEdge = e
	m.verts[v1].HalfEdge = e + 1
	m.verts[v2].HalfEdge = e + 2
	return f
}

// matchTwins links every half-edge with the reverse directed edge. More
// than one candidate for a directed edge means the input is non-manifold.
func (m *Mesh) matchTwins() error {
	directed := make(map[[2]int32]int32, len(m.edges))
	for e := range m.edges {
		o := m.Origin(int32(e))
		d := m.edges[e].Target
		if o == d {
			return fmt.Errorf("%w: half-edge %d is a loop at vertex %d", ErrBadIndices, e, o)
		}
		key := [2]int32{o, d}
		if prev, exists := directed[key]; exists {
			return fmt.Errorf("%w: directed edge %d->%d shared by half-edges %d and %d", ErrNonManifold, o, d, prev, e)
		}
		directed[key] = int32(e)
	}
	for e := range m.edges {
		o := m.Origin(int32(e))
		d := m.edges[e].Target
		if twin, exists := directed[[2]int32{d, o}]; exists {
			m.edges[e].Twin = twin
		} else {
			m.edges[e].Twin = NoIndex
		}
	}
	return nil
}

func (m *Mesh) VertexCount() int   { return len(m.verts) }
func (m *Mesh) FaceCount() int     { return len(m.faces) }
func (m *Mesh) HalfEdgeCount() int { return len(m.edges) }

// OriginalVertexCount returns how many vertices the source mesh had before
// any subdivision.
func (m *Mesh) OriginalVertexCount() int { return m.origVerts }

func (m *Mesh) HasUVs() bool { return m.hasUVs }

func (m *Mesh) Position(v int32) ms3.Vec { return m.verts[v].Pos }
func (m *Mesh) UV(v int32) ms2.Vec       { return m.verts[v].UV }

// VertexParents returns the two vertices v was averaged from, {v,v} for
// source vertices. Both are strictly smaller than v for inserted vertices.
func (m *Mesh) VertexParents(v int32) [2]int32 { return m.parents[v] }

func (m *Mesh) Target(he int32) int32 { return m.edges[he].Target }
func (m *Mesh) Twin(he int32) int32   { return m.edges[he].Twin }
func (m *Mesh) Next(he int32) int32   { return m.edges[he].Next }
func (m *Mesh) Prev(he int32) int32   { return m.edges[he].Prev }
func (m *Mesh) FaceOf(he int32) int32 { return m.edges[he].Face }

// Origin returns the vertex a half-edge starts from.
func (m *Mesh) Origin(he int32) int32 { return m.edges[m.edges[he].Prev].Target }

// IsBoundary reports whether the half-edge has no adjacent face across its
// edge.
func (m *Mesh) IsBoundary(he int32) bool { return m.edges[he].Twin == NoIndex }

func (m *Mesh) FaceLevel(f int32) int32    { return m.faces[f].Level }
func (m *Mesh) FaceMaterial(f int32) int32 { return m.faces[f].Material }
func (m *Mesh) FaceMarked(f int32) bool    { return m.faces[f].Marked }
func (m *Mesh) MarkFace(f int32, marked bool) {
	m.faces[f].Marked = marked
}

// ClearMarks resets the propagation flag on every face.
func (m *Mesh) ClearMarks() {
	for f := range m.faces {
		m.faces[f].Marked = false
	}
}

// FaceVertices returns the face corners in winding order.
func (m *Mesh) FaceVertices(f int32) (v0, v1, v2 int32) {
	e0 := m.faces[f].HalfEdge
	e1 := m.edges[e0].Next
	e2 := m.edges[e1].Next
	return m.edges[e2].Target, m.edges[e0].Target, m.edges[e1].Target
}

// FaceTriangle returns the face corner positions.
func (m *Mesh) FaceTriangle(f int32) ms3.Triangle {
	v0, v1, v2 := m.FaceVertices(f)
	return ms3.Triangle{m.verts[v0].Pos, m.verts[v1].Pos, m.verts[v2].Pos}
}

// EdgeLengthSq returns the squared length of the half-edge's segment.
func (m *Mesh) EdgeLengthSq(he int32) float32 {
	d := ms3.Sub(m.verts[m.edges[he].Target].Pos, m.verts[m.Origin(he)].Pos)
	return ms3.Dot(d, d)
}

// LongestEdge returns the half-edge of f whose segment is longest.
func (m *Mesh) LongestEdge(f int32) int32 {
	e := m.faces[f].HalfEdge
	best, bestLen := e, m.EdgeLengthSq(e)
	for i := 0; i < 2; i++ {
		e = m.edges[e].Next
		if l := m.EdgeLengthSq(e); l > bestLen {
			best, bestLen = e, l
		}
	}
	return best
}

// FaceArea returns the triangle area of f.
func (m *Mesh) FaceArea(f int32) float32 {
	tri := m.FaceTriangle(f)
	c := ms3.Cross(ms3.Sub(tri[1], tri[0]), ms3.Sub(tri[2], tri[0]))
	return 0.5 * ms3.Norm(c)
}

// AppendTriangles appends the current index buffer, three vertex indices
// per face in face order.
func (m *Mesh) AppendTriangles(dst []int32) []int32 {
	for f := range m.faces {
		v0, v1, v2 := m.FaceVertices(int32(f))
		dst = append(dst, v0, v1, v2)
	}
	return dst
}

// AppendMaterials appends the per-triangle material index array matching
// AppendTriangles order.
func (m *Mesh) AppendMaterials(dst []int32) []int32 {
	for f := range m.faces {
		dst = append(dst, m.faces[f].Material)
	}
	return dst
}

// AppendPositions appends every vertex position in index order.
func (m *Mesh) AppendPositions(dst []ms3.Vec) []ms3.Vec {
	for i := range m.verts {
		dst = append(dst, m.verts[i].Pos)
	}
	return dst
}

// AppendUVs appends every vertex UV in index order.
func (m *Mesh) AppendUVs(dst []ms2.Vec) []ms2.Vec {
	for i := range m.verts {
		dst = append(dst, m.verts[i].UV)
	}
	return dst
}

// Validate asserts the half-edge invariants hold: mutual twins with
// matching endpoints, 3-cycles of next/prev agreeing on the owning face,
// vertex half-edges originating at their vertex and parent indices strictly
// below their children. Intended for tests and debug builds.
func (m *Mesh) Validate() error {
	for e := range m.edges {
		he := int32(e)
		ed := &m.edges[e]
		if ed.Target < 0 || int(ed.Target) >= len(m.verts) {
			return fmt.Errorf("half-edge %d target %d out of range", e, ed.Target)
		}
		if ed.Twin != NoIndex {
			if ed.Twin == he {
				return fmt.Errorf("half-edge %d is its own twin", e)
			}
			if int(ed.Twin) >= len(m.edges) || ed.Twin < 0 {
				return fmt.Errorf("half-edge %d twin %d out of range", e, ed.Twin)
			}
			if m.edges[ed.Twin].Twin != he {
				return fmt.Errorf("half-edge %d twin %d not mutual", e, ed.Twin)
			}
			if m.Origin(ed.Twin) != ed.Target || m.edges[ed.Twin].Target != m.Origin(he) {
				return fmt.Errorf("half-edge %d and twin %d endpoints mismatch", e, ed.Twin)
			}
		}
		if m.edges[ed.Next].Prev != he || m.edges[ed.Prev].Next != he {
			return fmt.Errorf("half-edge %d next/prev not mutual", e)
		}
		if m.edges[m.edges[m.edges[he].Next].Next].Next != he {
			return fmt.Errorf("half-edge %d next cycle is not 3 long", e)
		}
		if m.edges[ed.Next].Face != ed.Face || m.edges[ed.Prev].Face != ed.Face {
			return fmt.Errorf("half-edge %d face cycle disagrees on face", e)
		}
	}
	for f := range m.faces {
		e := m.faces[f].HalfEdge
		if e < 0 || int(e) >= len(m.edges) {
			return fmt.Errorf("face %d half-edge %d out of range", f, e)
		}
		if m.edges[e].Face != int32(f) {
			return fmt.Errorf("face %d half-edge %d owned by face %d", f, e, m.edges[e].Face)
		}
	}
	for v := range m.verts {
		e := m.verts[v].HalfEdge
		if e == NoIndex {
			continue
		}
		if m.Origin(e) != int32(v) {
			return fmt.Errorf("vertex %d half-edge %d originates at %d", v, e, m.Origin(e))
		}
	}
	if len(m.parents) != len(m.verts) {
		return fmt.Errorf("parent records %d for %d vertices", len(m.parents), len(m.verts))
	}
	for v := m.origVerts; v < len(m.verts); v++ {
		p := m.parents[v]
		if p[0] >= int32(v) || p[1] >= int32(v) || p[0] < 0 || p[1] < 0 {
			return fmt.Errorf("vertex %d parents %v violate creation order", v, p)
		}
	}
	return nil
}
