// Package pattern generates 8-bit test images for exercising the smoothing
// filter. Every generator returns a row-major buffer with the given stride.
package pattern

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Generator builds a stride x height buffer whose width x height region holds
// the pattern. seed is ignored by deterministic patterns.
type Generator func(stride, width, height int, seed int64) []uint8

var generators = map[string]Generator{
	"spiral":  func(stride, width, height int, _ int64) []uint8 { return SpiralWindow(stride, width, height) },
	"random":  Random,
	"impulse": func(stride, width, height int, _ int64) []uint8 { return Impulse(stride, height, height/2, width/2) },
	"zero":    func(stride, _, height int, _ int64) []uint8 { return Constant(stride, height, 0) },
	"max":     func(stride, _, height int, _ int64) []uint8 { return Constant(stride, height, 0xff) },
}

// Names lists the registered pattern names in sorted order.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds the named pattern.
func Generate(name string, stride, width, height int, seed int64) ([]uint8, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q", name)
	}
	if stride < width || width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid dimensions: stride=%d width=%d height=%d", stride, width, height)
	}
	if height > stride && name == "spiral" {
		return nil, fmt.Errorf("spiral needs height <= stride, got %d > %d", height, stride)
	}
	return gen(stride, width, height, seed), nil
}

// Spiral draws both arms of a golden-ratio logarithmic spiral in 0xFF on a
// zero stride x stride canvas, centered at (stride/3, stride/3). The curve
// stays away from the canvas corner, so regions that should cross it come
// from SpiralWindow.
func Spiral(stride int) []uint8 {
	return cloneRows(spiralCanvas(stride), stride*stride)
}

// SpiralWindow cuts the width x height region around the spiral center out
// of the stride x stride canvas and returns it as a stride x height buffer.
// The window is shifted inward where it would leave the canvas. Padding past
// width is zero.
func SpiralWindow(stride, width, height int) []uint8 {
	canvas := spiralCanvas(stride)
	r0, c0 := SpiralOrigin(stride, width, height)

	buf := make([]uint8, stride*height)
	for i := 0; i < height; i++ {
		copy(buf[i*stride:i*stride+width], canvas[(r0+i)*stride+c0:])
	}
	return buf
}

// SpiralOrigin is the canvas row and column of the top-left sample that
// SpiralWindow copies.
func SpiralOrigin(stride, width, height int) (row, col int) {
	center := stride / 3
	row = max(0, min(center-height/2, stride-height))
	col = max(0, min(center-width/2, stride-width))
	return row, col
}

// spirals caches one canvas per stride; callers only ever receive copies.
var spirals sync.Map

func spiralCanvas(stride int) []uint8 {
	if v, ok := spirals.Load(stride); ok {
		return v.([]uint8)
	}
	v, _ := spirals.LoadOrStore(stride, drawSpiral(stride))
	return v.([]uint8)
}

func cloneRows(src []uint8, n int) []uint8 {
	dst := make([]uint8, n)
	copy(dst, src)
	return dst
}

func drawSpiral(stride int) []uint8 {
	canvas := make([]uint8, stride*stride)

	// Single precision throughout; the pixel a point lands on depends on it.
	phi := (1 + float32(math.Sqrt(5))) / 2
	center := float32(stride / 3)

	plot := func(y, x float32) {
		i := int(y + center)
		j := int(x + center)
		if 0 <= i && i < stride && 0 <= j && j < stride {
			canvas[i*stride+j] = 0xff
		}
	}

	for theta := float32(0); theta < 20; theta = float32(float64(theta) + 0.01) {
		r := float32(math.Pow(float64(phi), float64(float32(float64(theta)*(2/math.Pi)))))
		x := r * float32(math.Cos(float64(theta)))
		y := r * float32(math.Sin(float64(theta)))

		plot(y, x)
		plot(-y, -x)
	}

	return canvas
}

// Random fills the width x height region with seeded uniform bytes; the
// padding past width stays zero.
func Random(stride, width, height int, seed int64) []uint8 {
	buf := make([]uint8, stride*height)
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < height; i++ {
		row := buf[i*stride : i*stride+width]
		for j := range row {
			row[j] = uint8(rng.Intn(256))
		}
	}
	return buf
}

// Impulse is a zero image with a single 0xFF sample at (row, col).
func Impulse(stride, height, row, col int) []uint8 {
	buf := make([]uint8, stride*height)
	if row >= 0 && row < height && col >= 0 && col < stride {
		buf[row*stride+col] = 0xff
	}
	return buf
}

// Constant is a stride x height image filled with v.
func Constant(stride, height int, v uint8) []uint8 {
	buf := make([]uint8, stride*height)
	for i := range buf {
		buf[i] = v
	}
	return buf
}
