// Package mask turns an uploaded land mask into binary occupancy and finds
// the largest axis-aligned rectangle inside it.
package mask

import (
	"image"
	"image/color"

	"floorplan/pkg/geometry"
)

// DefaultThreshold separates land (dark) from background. Gray values at or
// below it count as land.
const DefaultThreshold = 50

// DefaultStep is the sampling pitch of the inscribed-rectangle search.
const DefaultStep = 5

// Grid is a binary occupancy map in row-major order.
type Grid struct {
	W, H  int
	Cells []bool
}

// NewGrid returns an empty w x h grid.
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, Cells: make([]bool, w*h)}
}

// At reports occupancy; out of range is empty.
func (g *Grid) At(x, y int) bool {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return false
	}
	return g.Cells[y*g.W+x]
}

// Set marks a cell.
func (g *Grid) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return
	}
	g.Cells[y*g.W+x] = v
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.Cells {
		if c {
			n++
		}
	}
	return n
}

// Binarize marks pixels whose gray level is at or below threshold.
// Transparent pixels are background.
func Binarize(img image.Image, threshold uint8) *Grid {
	b := img.Bounds()
	g := NewGrid(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}
			gray := color.GrayModel.Convert(c).(color.Gray)
			g.Cells[y*g.W+x] = gray.Y <= threshold
		}
	}
	return g
}

// MaxRect finds the largest axis-aligned rectangle whose sample points,
// taken every step pixels, all lie on occupied cells. ok is false when no
// sample point is occupied.
func MaxRect(g *Grid, step int) (geometry.Rect, bool) {
	if step <= 0 {
		step = DefaultStep
	}
	cols := (g.W + step - 1) / step
	rows := (g.H + step - 1) / step
	if cols == 0 || rows == 0 {
		return geometry.Rect{}, false
	}

	// heights[c] is the run of occupied samples ending at the current row.
	heights := make([]int, cols)
	best, bestArea := geometry.Rect{}, -1
	stack := make([]int, 0, cols+1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.At(c*step, r*step) {
				heights[c]++
			} else {
				heights[c] = 0
			}
		}
		stack = stack[:0]
		for c := 0; c <= cols; c++ {
			h := 0
			if c < cols {
				h = heights[c]
			}
			for len(stack) > 0 && heights[stack[len(stack)-1]] >= h {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				height := heights[top]
				if height == 0 {
					continue
				}
				left := 0
				if len(stack) > 0 {
					left = stack[len(stack)-1] + 1
				}
				// sample span in pixels between the outermost sample points
				w := (c - 1 - left) * step
				ht := (height - 1) * step
				if area := w * ht; area > bestArea {
					bestArea = area
					best = geometry.Rect{
						X:      float64(left * step),
						Y:      float64((r - height + 1) * step),
						Width:  float64(w),
						Height: float64(ht),
					}
				}
			}
			stack = append(stack, c)
		}
	}
	return best, bestArea >= 0
}
