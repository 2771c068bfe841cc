package hemesh_test

import (
	"errors"
	"testing"

	"github.com/JeongBeomLee/FleshRing-sub000/hemesh"
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

func quadMesh(t *testing.T) *hemesh.Mesh {
	t.Helper()
	positions := []ms3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	uvs := []ms2.Vec{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
	}
	m, err := hemesh.NewMesh(positions, uvs, []int32{0, 1, 2, 0, 2, 3}, []int32{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func findHalfEdge(m *hemesh.Mesh, origin, target int32) int32 {
	for he := int32(0); he < int32(m.HalfEdgeCount()); he++ {
		if m.Origin(he) == origin && m.Target(he) == target {
			return he
		}
	}
	return hemesh.NoIndex
}

func TestNewMeshSingleTriangle(t *testing.T) {
	positions := []ms3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	m, err := hemesh.NewMesh(positions, nil, []int32{0, 1, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 3 || m.FaceCount() != 1 || m.HalfEdgeCount() != 3 {
		t.Errorf("counts = %d/%d/%d, want 3/1/3", m.VertexCount(), m.FaceCount(), m.HalfEdgeCount())
	}
	v0, v1, v2 := m.FaceVertices(0)
	if v0 != 0 || v1 != 1 || v2 != 2 {
		t.Errorf("FaceVertices(0) = %d,%d,%d, want 0,1,2", v0, v1, v2)
	}
	for he := int32(0); he < 3; he++ {
		if !m.IsBoundary(he) {
			t.Errorf("half-edge %d of lone triangle should be boundary", he)
		}
	}
	longest := m.LongestEdge(0)
	lo, lt := m.Origin(longest), m.Target(longest)
	if lo != 1 || lt != 2 {
		t.Errorf("LongestEdge = %d->%d, want hypotenuse 1->2", lo, lt)
	}
	if got := m.EdgeLengthSq(longest); math.Abs(got-5) > 1e-6 {
		t.Errorf("EdgeLengthSq(hypotenuse) = %v, want 5", got)
	}
	if m.HasUVs() {
		t.Error("HasUVs() = true for mesh built without uvs")
	}
}

func TestNewMeshSharedEdgeTwins(t *testing.T) {
	m := quadMesh(t)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	diag := findHalfEdge(m, 2, 0)
	back := findHalfEdge(m, 0, 2)
	if diag == hemesh.NoIndex || back == hemesh.NoIndex {
		t.Fatal("diagonal half-edges not found")
	}
	if m.Twin(diag) != back || m.Twin(back) != diag {
		t.Errorf("diagonal twins = %d/%d, want mutual %d/%d", m.Twin(diag), m.Twin(back), back, diag)
	}
	if m.IsBoundary(diag) {
		t.Error("shared diagonal reported as boundary")
	}
	boundary := 0
	for he := int32(0); he < int32(m.HalfEdgeCount()); he++ {
		if m.IsBoundary(he) {
			boundary++
		}
	}
	if boundary != 4 {
		t.Errorf("boundary half-edges = %d, want 4", boundary)
	}
	if m.FaceMaterial(0) != 0 || m.FaceMaterial(1) != 1 {
		t.Errorf("materials = %d,%d, want 0,1", m.FaceMaterial(0), m.FaceMaterial(1))
	}
}

func TestNewMeshErrors(t *testing.T) {
	pos := []ms3.Vec{{}, {X: 1}, {Y: 1}}
	_, err := hemesh.NewMesh(nil, nil, []int32{0, 1, 2}, nil)
	if !errors.Is(err, hemesh.ErrEmptyMesh) {
		t.Errorf("nil positions error = %v, want ErrEmptyMesh", err)
	}
	_, err = hemesh.NewMesh(pos, nil, []int32{0, 1}, nil)
	if !errors.Is(err, hemesh.ErrBadIndices) {
		t.Errorf("short index error = %v, want ErrBadIndices", err)
	}
	_, err = hemesh.NewMesh(pos, nil, []int32{0, 1, 3}, nil)
	if !errors.Is(err, hemesh.ErrBadIndices) {
		t.Errorf("out of range error = %v, want ErrBadIndices", err)
	}
	_, err = hemesh.NewMesh(pos, []ms2.Vec{{}}, []int32{0, 1, 2}, nil)
	if !errors.Is(err, hemesh.ErrBadIndices) {
		t.Errorf("uv mismatch error = %v, want ErrBadIndices", err)
	}
	_, err = hemesh.NewMesh(pos, nil, []int32{0, 1, 2}, []int32{0, 0})
	if !errors.Is(err, hemesh.ErrBadIndices) {
		t.Errorf("material mismatch error = %v, want ErrBadIndices", err)
	}
	// Two triangles with identical winding repeat the directed edge 0->1.
	pos4 := append(pos, ms3.Vec{Z: 1})
	_, err = hemesh.NewMesh(pos4, nil, []int32{0, 1, 2, 0, 1, 3}, nil)
	if !errors.Is(err, hemesh.ErrNonManifold) {
		t.Errorf("inconsistent winding error = %v, want ErrNonManifold", err)
	}
}

func TestSplitEdgeInterior(t *testing.T) {
	m := quadMesh(t)
	he := findHalfEdge(m, 0, 2)
	if he == hemesh.NoIndex {
		t.Fatal("diagonal not found")
	}
	mid := m.SplitEdge(he)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 5 || m.FaceCount() != 4 || m.HalfEdgeCount() != 12 {
		t.Errorf("counts = %d/%d/%d, want 5/4/12", m.VertexCount(), m.FaceCount(), m.HalfEdgeCount())
	}
	if mid != 4 {
		t.Errorf("midpoint index = %d, want 4", mid)
	}
	p := m.Position(mid)
	if math.Abs(p.X-0.5) > 1e-6 || math.Abs(p.Y-0.5) > 1e-6 || p.Z != 0 {
		t.Errorf("midpoint position = %v, want {0.5 0.5 0}", p)
	}
	uv := m.UV(mid)
	if math.Abs(uv.X-0.5) > 1e-6 || math.Abs(uv.Y-0.5) > 1e-6 {
		t.Errorf("midpoint uv = %v, want {0.5 0.5}", uv)
	}
	parents := m.VertexParents(mid)
	if parents != [2]int32{0, 2} {
		t.Errorf("midpoint parents = %v, want [0 2]", parents)
	}
	for f := int32(0); f < int32(m.FaceCount()); f++ {
		if m.FaceLevel(f) != 1 {
			t.Errorf("face %d level = %d, want 1", f, m.FaceLevel(f))
		}
	}
	// Material inheritance: faces on the (0,2,3) side keep material 1.
	mat0 := 0
	for f := int32(0); f < int32(m.FaceCount()); f++ {
		if m.FaceMaterial(f) == 0 {
			mat0++
		}
	}
	if mat0 != 2 {
		t.Errorf("faces with material 0 = %d, want 2", mat0)
	}
}

func TestSplitEdgeBoundary(t *testing.T) {
	positions := []ms3.Vec{{}, {X: 1}, {Y: 1}}
	m, err := hemesh.NewMesh(positions, nil, []int32{0, 1, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	he := findHalfEdge(m, 0, 1)
	mid := m.SplitEdge(he)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 4 || m.FaceCount() != 2 || m.HalfEdgeCount() != 6 {
		t.Errorf("counts = %d/%d/%d, want 4/2/6", m.VertexCount(), m.FaceCount(), m.HalfEdgeCount())
	}
	sub1 := findHalfEdge(m, 0, mid)
	sub2 := findHalfEdge(m, mid, 1)
	if sub1 == hemesh.NoIndex || sub2 == hemesh.NoIndex {
		t.Fatal("boundary halves not found")
	}
	if !m.IsBoundary(sub1) || !m.IsBoundary(sub2) {
		t.Error("split boundary halves should remain boundary")
	}
	total := m.FaceArea(0) + m.FaceArea(1)
	if math.Abs(total-0.5) > 1e-6 {
		t.Errorf("area after split = %v, want 0.5", total)
	}
}

func TestSubdivideFaces4SingleTriangle(t *testing.T) {
	positions := []ms3.Vec{{}, {X: 1}, {Y: 1}}
	m, err := hemesh.NewMesh(positions, nil, []int32{0, 1, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	added := m.SubdivideFaces4()
	if added != 3 {
		t.Errorf("SubdivideFaces4() = %d faces added, want 3", added)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 6 || m.FaceCount() != 4 {
		t.Errorf("counts = %d/%d, want 6/4", m.VertexCount(), m.FaceCount())
	}
	if got := len(m.AppendTriangles(nil)); got != 12 {
		t.Errorf("index buffer length = %d, want 12", got)
	}
	total := float32(0)
	for f := int32(0); f < int32(m.FaceCount()); f++ {
		if m.FaceLevel(f) != 1 {
			t.Errorf("face %d level = %d, want 1", f, m.FaceLevel(f))
		}
		total += m.FaceArea(f)
	}
	if math.Abs(total-0.5) > 1e-6 {
		t.Errorf("total area = %v, want 0.5", total)
	}
	// Children preserve the parent's winding.
	for f := int32(0); f < int32(m.FaceCount()); f++ {
		tri := m.FaceTriangle(f)
		n := ms3.Cross(ms3.Sub(tri[1], tri[0]), ms3.Sub(tri[2], tri[0]))
		if n.Z <= 0 {
			t.Errorf("face %d flipped winding, normal %v", f, n)
		}
	}
}

func TestSubdivideFaces4SharesMidpoints(t *testing.T) {
	m := quadMesh(t)
	m.SubdivideFaces4()
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	// 4 corners + one midpoint per unique edge (4 rim + 1 diagonal).
	if m.VertexCount() != 9 || m.FaceCount() != 8 {
		t.Errorf("counts = %d/%d, want 9/8", m.VertexCount(), m.FaceCount())
	}
	m.SubdivideFaces4()
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 32 {
		t.Errorf("FaceCount() after two levels = %d, want 32", m.FaceCount())
	}
	for f := int32(0); f < int32(m.FaceCount()); f++ {
		if m.FaceLevel(f) != 2 {
			t.Errorf("face %d level = %d, want 2", f, m.FaceLevel(f))
		}
	}
	if m.OriginalVertexCount() != 4 {
		t.Errorf("OriginalVertexCount() = %d, want 4", m.OriginalVertexCount())
	}
}

func TestFaceMarks(t *testing.T) {
	m := quadMesh(t)
	m.MarkFace(1, true)
	if !m.FaceMarked(1) || m.FaceMarked(0) {
		t.Error("MarkFace did not set exactly face 1")
	}
	m.ClearMarks()
	if m.FaceMarked(1) {
		t.Error("ClearMarks left face 1 marked")
	}
}

func TestNewMeshFromTriangles(t *testing.T) {
	a := ms3.Vec{X: 0, Y: 0, Z: 0}
	b := ms3.Vec{X: 1, Y: 0, Z: 0}
	c := ms3.Vec{X: 1, Y: 1, Z: 0}
	d := ms3.Vec{X: 0, Y: 1, Z: 0}
	// jitter lands in c's weld cell; the sliver collapses and is dropped.
	jitter := ms3.Vec{X: 1 + 2e-6, Y: 1 + 2e-6, Z: 0}
	sliver := ms3.Triangle{b, ms3.Add(b, ms3.Vec{X: 1e-6}), c}
	soup := []ms3.Triangle{
		{a, b, c},
		{a, jitter, d},
		sliver,
	}
	m, err := hemesh.NewMeshFromTriangles(soup, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 4 || m.FaceCount() != 2 {
		t.Errorf("welded counts = %d/%d, want 4/2", m.VertexCount(), m.FaceCount())
	}
	diag := findHalfEdge(m, 2, 0)
	if diag == hemesh.NoIndex || m.IsBoundary(diag) {
		t.Error("welded diagonal not twinned")
	}
}

func TestNewMeshFromTrianglesErrors(t *testing.T) {
	_, err := hemesh.NewMeshFromTriangles(nil, 0)
	if !errors.Is(err, hemesh.ErrEmptyMesh) {
		t.Errorf("empty soup error = %v, want ErrEmptyMesh", err)
	}
	tri := []ms3.Triangle{{{X: 0}, {X: 1}, {Y: 1}}}
	_, err = hemesh.NewMeshFromTriangles(tri, 10)
	if err == nil {
		t.Error("oversized weld tolerance should fail")
	}
	degenerate := []ms3.Triangle{{{X: 1}, {X: 1}, {X: 1}}}
	_, err = hemesh.NewMeshFromTriangles(degenerate, 0)
	if err == nil {
		t.Error("fully degenerate soup should fail")
	}
}

func TestNewMeshFromTrianglesFarFromOrigin(t *testing.T) {
	// Vertex magnitude drives the grid overflow guard, so the same
	// triangle must weld near the origin and be rejected once its
	// coordinates dwarf the tolerance.
	tri := func(offset float32) []ms3.Triangle {
		return []ms3.Triangle{{
			{X: offset, Y: 0, Z: 0},
			{X: offset + 1, Y: 0, Z: 0},
			{X: offset, Y: 1, Z: 0},
		}}
	}
	const tol = 1e-4
	m, err := hemesh.NewMeshFromTriangles(tri(0), tol)
	if err != nil {
		t.Fatalf("NewMeshFromTriangles near origin: %v", err)
	}
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount() = %d, want 3", m.VertexCount())
	}
	_, err = hemesh.NewMeshFromTriangles(tri(1e15), tol)
	if err == nil {
		t.Fatal("NewMeshFromTriangles() far from origin = nil error, want overflow rejection")
	}
}
