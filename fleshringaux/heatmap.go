package fleshringaux

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/deform"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
	"golang.org/x/image/draw"
)

// Heatmap renders the affected-vertex weights over positions into a square
// size by size image of the ring plane: vertices are projected into the
// ring's local XZ frame, the strongest weight falling in each cell wins and
// cells are colored from cold to hot. The low-resolution splat is upscaled
// with Catmull-Rom so sparse selections still read as a smooth field.
func Heatmap(positions []ms3.Vec, aff *deform.Affected, ring fleshring.Ring, size int) (*image.RGBA, error) {
	if size < 8 {
		return nil, errors.New("heatmap size too small")
	}
	grid := size / 4
	if grid < 8 {
		grid = 8
	}
	inv := ring.Frame().Inverse()
	extent := ring.Radius + 2*ring.Width
	scale := float32(grid) / (2 * extent)

	weights := make([]float32, grid*grid)
	for k, idx := range aff.Indices {
		local := inv.Apply(positions[idx])
		x := int((local.X + extent) * scale)
		y := int((local.Z + extent) * scale)
		if x < 0 || x >= grid || y < 0 || y >= grid {
			continue
		}
		if w := aff.Weights[k]; w > weights[y*grid+x] {
			weights[y*grid+x] = w
		}
	}

	low := image.NewRGBA(image.Rect(0, 0, grid, grid))
	for y := 0; y < grid; y++ {
		for x := 0; x < grid; x++ {
			low.SetRGBA(x, y, weightColor(weights[y*grid+x]))
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(img, img.Bounds(), low, low.Bounds(), draw.Src, nil)
	return img, nil
}

var (
	coldColor = ms3.Vec{X: 0.08, Y: 0.10, Z: 0.25}
	warmColor = ms3.Vec{X: 0.95, Y: 0.55, Z: 0.10}
	hotColor  = ms3.Vec{X: 1.00, Y: 0.95, Z: 0.85}
)

// weightColor maps an influence weight to the heat ramp, smoothing through
// a warm midpoint so mid weights stay distinguishable from both ends.
func weightColor(w float32) color.RGBA {
	w = ms1.Clamp(w, 0, 1)
	var c ms3.Vec
	if w < 0.5 {
		t := ms1.SmoothStep(0, 0.5, w)
		c = ms3.InterpElem(coldColor, warmColor, ms3.Vec{X: t, Y: t, Z: t})
	} else {
		t := ms1.SmoothStep(0.5, 1, w)
		c = ms3.InterpElem(warmColor, hotColor, ms3.Vec{X: t, Y: t, Z: t})
	}
	return color.RGBA{
		R: uint8(c.X * 255),
		G: uint8(c.Y * 255),
		B: uint8(c.Z * 255),
		A: 255,
	}
}

// WriteHeatmapPNG encodes the heatmap of one pipeline result as PNG.
func WriteHeatmapPNG(w io.Writer, res *Result, size int) error {
	img, err := Heatmap(res.Positions, &res.Affected, res.Ring, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteHeatmapWebP encodes the heatmap of one pipeline result as lossless
// WebP.
func WriteHeatmapWebP(w io.Writer, res *Result, size int) error {
	img, err := Heatmap(res.Positions, &res.Affected, res.Ring, size)
	if err != nil {
		return err
	}
	return nativewebp.Encode(w, img, nil)
}
