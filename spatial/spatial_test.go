package spatial_test

import (
	"math/rand"
	"testing"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/spatial"
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

func randomPoints(n int, span float32) []ms3.Vec {
	rng := rand.New(rand.NewSource(1))
	pts := make([]ms3.Vec, n)
	for i := range pts {
		pts[i] = ms3.Vec{
			X: span * (2*rng.Float32() - 1),
			Y: span * (2*rng.Float32() - 1),
			Z: span * (2*rng.Float32() - 1),
		}
	}
	return pts
}

func inBox(p, min, max ms3.Vec) bool {
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

func TestAppendAABBSupersetEquivalence(t *testing.T) {
	pts := randomPoints(500, 5)
	h, err := spatial.New(pts, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	min := ms3.Vec{X: -2.3, Y: -1.1, Z: -3.7}
	max := ms3.Vec{X: 1.9, Y: 3.3, Z: 0.4}
	candidates := h.AppendAABB(nil, min, max)
	got := make(map[int32]bool, len(candidates))
	for _, i := range candidates {
		if got[i] {
			t.Fatalf("candidate %d appended twice", i)
		}
		got[i] = true
	}
	exactHash := 0
	exactBrute := 0
	for i, p := range pts {
		inside := inBox(p, min, max)
		if inside {
			exactBrute++
			if !got[int32(i)] {
				t.Errorf("point %d inside box missing from candidates", i)
			}
		}
		if got[int32(i)] && inside {
			exactHash++
		}
	}
	if exactHash != exactBrute {
		t.Errorf("filtered candidates = %d points, brute force = %d", exactHash, exactBrute)
	}
	if len(candidates) < exactBrute {
		t.Errorf("candidate count %d below exact count %d", len(candidates), exactBrute)
	}
}

func TestAppendOBBCoversRotatedBox(t *testing.T) {
	pts := randomPoints(400, 4)
	h, err := spatial.New(pts, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// Box rotated 45 degrees about Z and shifted off origin.
	s, c := math.Sincos(math.Pi / 4)
	linear := fleshring.BasisMat3(
		ms3.Vec{X: c, Y: s},
		ms3.Vec{X: -s, Y: c},
		ms3.Vec{Z: 1},
	)
	translation := ms3.Vec{X: 1, Y: -0.5, Z: 0.25}
	localMin := ms3.Vec{X: -1, Y: -0.5, Z: -2}
	localMax := ms3.Vec{X: 1, Y: 0.5, Z: 2}

	candidates := h.AppendOBB(nil, translation, linear, localMin, localMax)
	got := make(map[int32]bool, len(candidates))
	for _, i := range candidates {
		got[i] = true
	}
	inv := linear.Inverse()
	for i, p := range pts {
		local := ms3.MulMatVec(inv, ms3.Sub(p, translation))
		if inBox(local, localMin, localMax) && !got[int32(i)] {
			t.Errorf("point %d inside oriented box missing from candidates", i)
		}
	}
}

func TestResetRebuilds(t *testing.T) {
	a := []ms3.Vec{{X: 0.1}, {X: 0.2}, {X: 8}}
	h, err := spatial.New(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 3 || h.CellSize() != 1 {
		t.Errorf("Len/CellSize = %d/%v, want 3/1", h.Len(), h.CellSize())
	}
	near := h.AppendAABB(nil, ms3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	if len(near) != 2 {
		t.Errorf("query near origin = %d candidates, want 2", len(near))
	}
	b := []ms3.Vec{{X: 8.2}}
	if err := h.Reset(b, 2); err != nil {
		t.Fatal(err)
	}
	if h.Len() != 1 || h.CellSize() != 2 {
		t.Errorf("after Reset Len/CellSize = %d/%v, want 1/2", h.Len(), h.CellSize())
	}
	near = h.AppendAABB(nil, ms3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	if len(near) != 0 {
		t.Errorf("stale indices survived Reset: %v", near)
	}
	far := h.AppendAABB(nil, ms3.Vec{X: 7, Y: -1, Z: -1}, ms3.Vec{X: 9, Y: 1, Z: 1})
	if len(far) != 1 || far[0] != 0 {
		t.Errorf("rebuilt query = %v, want [0]", far)
	}
}

func TestNewRejectsBadCellSize(t *testing.T) {
	nan := float32(0)
	nan /= nan
	for _, size := range []float32{0, -1, nan} {
		if _, err := spatial.New(nil, size); err == nil {
			t.Errorf("New(cellSize=%v) accepted", size)
		}
	}
}

func TestNegativeCoordinateCells(t *testing.T) {
	pts := []ms3.Vec{{X: -0.25, Y: -0.25, Z: -0.25}}
	h, err := spatial.New(pts, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Floor cell addressing must find the point from a query box that
	// stays on the negative side of the origin.
	got := h.AppendAABB(nil, ms3.Vec{X: -0.9, Y: -0.9, Z: -0.9}, ms3.Vec{X: -0.1, Y: -0.1, Z: -0.1})
	if len(got) != 1 {
		t.Errorf("negative-side query = %v, want the single point", got)
	}
}
