package ringfield_test

import (
	"testing"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/ringfield"
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

func generateTestRing(t *testing.T, radius, width float32, res int) *ringfield.Field {
	t.Helper()
	var bld fleshring.Builder
	ring := bld.NewRing(ms3.Vec{}, ms3.Vec{Y: 1}, radius, width)
	f, err := ringfield.GenerateRing(ring, res)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// sampleAt returns the field value at the cell containing the local point.
func sampleAt(t *testing.T, f *ringfield.Field, p ms3.Vec) float32 {
	t.Helper()
	bb := f.Bounds()
	nx, ny, nz := f.Resolution()
	cell := f.CellSize()
	i := int((p.X - bb.Min.X) / cell)
	j := int((p.Y - bb.Min.Y) / cell)
	k := int((p.Z - bb.Min.Z) / cell)
	if i < 0 || i >= nx || j < 0 || j >= ny || k < 0 || k >= nz {
		t.Fatalf("point %v outside field grid %dx%dx%d", p, nx, ny, nz)
	}
	return f.At(i, j, k)
}

func TestGenerateRingSigns(t *testing.T) {
	const radius, width = 1, 0.3
	f := generateTestRing(t, radius, width, 32)
	// The tube centerline is the deepest inside point.
	if d := sampleAt(t, f, ms3.Vec{X: radius}); d >= 0 {
		t.Errorf("tube centerline distance = %v, want negative", d)
	}
	// The ring hole and the grid corners are outside.
	if d := sampleAt(t, f, ms3.Vec{}); d <= 0 {
		t.Errorf("ring center distance = %v, want positive", d)
	}
	corner := ms3.Add(f.Bounds().Min, ms3.Vec{X: 1e-4, Y: 1e-4, Z: 1e-4})
	if d := sampleAt(t, f, corner); d <= 0 {
		t.Errorf("grid corner distance = %v, want positive", d)
	}
}

func TestGenerateRingDistanceMagnitude(t *testing.T) {
	const radius, width = 1, 0.3
	f := generateTestRing(t, radius, width, 48)
	// On the tube centerline the surface is width away; voxelization and
	// tessellation cost up to about a cell of accuracy.
	d := sampleAt(t, f, ms3.Vec{X: radius})
	tol := 2 * f.CellSize()
	if math.Abs(-d-width) > tol {
		t.Errorf("centerline distance = %v, want about %v within %v", d, -width, tol)
	}
}

func TestTightBoundsWithinBounds(t *testing.T) {
	f := generateTestRing(t, 1, 0.25, 24)
	tight := f.TightBounds()
	bb := f.Bounds()
	if tight.Size() == (ms3.Vec{}) {
		t.Fatal("tight bounds empty for a solid ring")
	}
	if tight.Min.X < bb.Min.X || tight.Min.Y < bb.Min.Y || tight.Min.Z < bb.Min.Z ||
		tight.Max.X > bb.Max.X || tight.Max.Y > bb.Max.Y || tight.Max.Z > bb.Max.Z {
		t.Errorf("tight bounds %v exceed grid bounds %v", tight, bb)
	}
	// The torus is (radius+width) wide and 2*width tall; the tight box
	// must be close to that and much smaller than the padded grid on Y.
	sz := tight.Size()
	if sz.Y > 3*0.25*2 {
		t.Errorf("tight Y extent %v too large for tube height %v", sz.Y, 2*0.25)
	}
	if sz.X < 2*(1-0.25) {
		t.Errorf("tight X extent %v too small for ring diameter", sz.X)
	}
}

func TestGenerateRingTransform(t *testing.T) {
	var bld fleshring.Builder
	ring := bld.NewRing(ms3.Vec{X: 2, Y: 1}, ms3.Vec{X: 1}, 0.8, 0.2)
	f, err := ringfield.GenerateRing(ring, 16)
	if err != nil {
		t.Fatal(err)
	}
	tr := f.Transform()
	// The field origin maps to the ring center and local +Y to the axis.
	if d := ms3.Norm(ms3.Sub(tr.Apply(ms3.Vec{}), ring.Center)); d > 1e-6 {
		t.Errorf("transform moves local origin %v away from ring center", d)
	}
	if d := ms3.Norm(ms3.Sub(tr.ApplyDir(ms3.Vec{Y: 1}), ring.Axis)); d > 1e-6 {
		t.Errorf("transform maps local +Y %v away from ring axis", d)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	var gen ringfield.CPUGenerator
	if _, err := gen.Generate(nil, 16); err == nil {
		t.Error("empty geometry accepted")
	}
	tris := ringfield.AppendRingProxy(nil, 1, 0.25, 16, 8)
	if _, err := gen.Generate(tris, 1); err == nil {
		t.Error("resolution 1 accepted")
	}
	if _, err := gen.Generate(tris, 100000); err == nil {
		t.Error("absurd resolution accepted")
	}
}

func TestFloodFillClosesLeaks(t *testing.T) {
	// A square tube open along X is invisible to the +X parity rays:
	// every wall is parallel to the cast direction, so parity marks
	// nothing. The per-slice flood fill cannot reach the cavity through
	// the walls and must classify it as inside.
	quad := func(a, b, c, d ms3.Vec) []ms3.Triangle {
		return []ms3.Triangle{{a, b, c}, {a, c, d}}
	}
	lo := ms3.Vec{X: -1, Y: -1, Z: -1}
	hi := ms3.Vec{X: 1, Y: 1, Z: 1}
	var tris []ms3.Triangle
	// +Y / -Y walls.
	tris = append(tris, quad(
		ms3.Vec{X: lo.X, Y: hi.Y, Z: lo.Z}, ms3.Vec{X: hi.X, Y: hi.Y, Z: lo.Z},
		ms3.Vec{X: hi.X, Y: hi.Y, Z: hi.Z}, ms3.Vec{X: lo.X, Y: hi.Y, Z: hi.Z})...)
	tris = append(tris, quad(
		ms3.Vec{X: lo.X, Y: lo.Y, Z: lo.Z}, ms3.Vec{X: lo.X, Y: lo.Y, Z: hi.Z},
		ms3.Vec{X: hi.X, Y: lo.Y, Z: hi.Z}, ms3.Vec{X: hi.X, Y: lo.Y, Z: lo.Z})...)
	// +Z / -Z walls.
	tris = append(tris, quad(
		ms3.Vec{X: lo.X, Y: lo.Y, Z: hi.Z}, ms3.Vec{X: lo.X, Y: hi.Y, Z: hi.Z},
		ms3.Vec{X: hi.X, Y: hi.Y, Z: hi.Z}, ms3.Vec{X: hi.X, Y: lo.Y, Z: hi.Z})...)
	tris = append(tris, quad(
		ms3.Vec{X: lo.X, Y: lo.Y, Z: lo.Z}, ms3.Vec{X: hi.X, Y: lo.Y, Z: lo.Z},
		ms3.Vec{X: hi.X, Y: hi.Y, Z: lo.Z}, ms3.Vec{X: lo.X, Y: hi.Y, Z: lo.Z})...)

	var gen ringfield.CPUGenerator
	f, err := gen.Generate(tris, 16)
	if err != nil {
		t.Fatal(err)
	}
	if d := sampleAt(t, f, ms3.Vec{}); d >= 0 {
		t.Errorf("cavity center distance = %v, want negative after flood-fill correction", d)
	}
	// The grid corner is outside the tube and stays positive.
	corner := ms3.Add(f.Bounds().Min, ms3.Vec{X: 1e-4, Y: 1e-4, Z: 1e-4})
	if d := sampleAt(t, f, corner); d <= 0 {
		t.Errorf("corner distance = %v, want positive", d)
	}
}
