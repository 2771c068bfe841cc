package spatial

import (
	"errors"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Hash buckets the indices of a fixed point snapshot into a sparse uniform
// grid for box-range candidate queries. It stores indices, not positions:
// queries are over-inclusive at cell granularity and callers do the exact
// per-point test on the array the hash was built over. A hash goes stale
// the moment that array is replaced; rebuild with Reset.
type Hash struct {
	cells map[[3]int32][]int32
	inv   float32
	size  float32
	n     int
}

// New buckets every position into a grid of the given cell size.
func New(positions []ms3.Vec, cellSize float32) (*Hash, error) {
	h := &Hash{}
	if err := h.Reset(positions, cellSize); err != nil {
		return nil, err
	}
	return h, nil
}

// Reset rebuilds the hash over a new position snapshot, reusing the cell
// table allocation.
func (h *Hash) Reset(positions []ms3.Vec, cellSize float32) error {
	if cellSize <= 0 || cellSize != cellSize {
		return errors.New("invalid spatial hash cell size")
	}
	if h.cells == nil {
		h.cells = make(map[[3]int32][]int32, len(positions))
	} else {
		clear(h.cells)
	}
	h.inv = 1 / cellSize
	h.size = cellSize
	h.n = len(positions)
	for i, p := range positions {
		k := h.cell(p)
		h.cells[k] = append(h.cells[k], int32(i))
	}
	return nil
}

func (h *Hash) cell(p ms3.Vec) [3]int32 {
	return [3]int32{
		int32(math.Floor(p.X * h.inv)),
		int32(math.Floor(p.Y * h.inv)),
		int32(math.Floor(p.Z * h.inv)),
	}
}

// CellSize returns the grid cell edge length the hash was built with.
func (h *Hash) CellSize() float32 { return h.size }

// Len returns how many points the hash was built over.
func (h *Hash) Len() int { return h.n }

// AppendAABB appends the indices of every point whose cell overlaps the
// axis-aligned box to dst and returns it. The result is a superset of the
// points inside the box, never missing one, and holds no duplicates since
// each point lives in exactly one cell.
func (h *Hash) AppendAABB(dst []int32, min, max ms3.Vec) []int32 {
	lo := h.cell(min)
	hi := h.cell(max)
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				dst = append(dst, h.cells[[3]int32{x, y, z}]...)
			}
		}
	}
	return dst
}

// AppendOBB appends candidates for an oriented box given by local bounds
// and a local-to-world transform decomposed into a linear part and a
// translation. The box's eight world corners give a conservative
// axis-aligned cover which is then queried like any other box.
func (h *Hash) AppendOBB(dst []int32, translation ms3.Vec, linear ms3.Mat3, localMin, localMax ms3.Vec) []int32 {
	var wmin, wmax ms3.Vec
	for i := 0; i < 8; i++ {
		c := localMin
		if i&1 != 0 {
			c.X = localMax.X
		}
		if i&2 != 0 {
			c.Y = localMax.Y
		}
		if i&4 != 0 {
			c.Z = localMax.Z
		}
		w := ms3.Add(translation, ms3.MulMatVec(linear, c))
		if i == 0 {
			wmin, wmax = w, w
			continue
		}
		wmin = minElem(wmin, w)
		wmax = ms3.MaxElem(wmax, w)
	}
	return h.AppendAABB(dst, wmin, wmax)
}

func minElem(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}
