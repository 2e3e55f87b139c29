// Package contour extracts the land boundary polygon from a mask image
// with OpenCV.
package contour

import (
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"floorplan/internal/mask"
	"floorplan/pkg/geometry"
)

var ErrNoContour = errors.New("mask contains no land region")

// Params controls boundary extraction.
type Params struct {
	// Threshold is the gray level at or below which a pixel is land.
	Threshold uint8
	// Epsilon is the polygon simplification tolerance as a fraction of the
	// contour perimeter.
	Epsilon float64
	// Step is the sampling pitch of the inscribed rectangle search; zero
	// skips the search.
	Step int
}

// DefaultParams returns the extraction defaults.
func DefaultParams() Params {
	return Params{Threshold: mask.DefaultThreshold, Epsilon: 0.01, Step: mask.DefaultStep}
}

// Result is the extracted boundary.
type Result struct {
	Polygon []geometry.Point `json:"polygon"`
	// Area is the contour area in square pixels.
	Area   float64       `json:"area"`
	Bounds geometry.Rect `json:"bounds"`
	// Inscribed is the largest axis-aligned rectangle inside the contour.
	Inscribed *geometry.Rect `json:"inscribed,omitempty"`
}

// Boundary thresholds img, takes the largest external contour and
// simplifies it into a polygon.
func Boundary(img image.Image, params Params) (*Result, error) {
	grid := mask.Binarize(img, params.Threshold)
	if grid.Count() == 0 {
		return nil, ErrNoContour
	}

	bin := gridToMat(grid)
	defer bin.Close()

	contours := gocv.FindContours(bin, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); best < 0 || a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return nil, ErrNoContour
	}
	largest := contours.At(best)

	epsilon := params.Epsilon * gocv.ArcLength(largest, true)
	approx := gocv.ApproxPolyDP(largest, epsilon, true)
	defer approx.Close()

	pts := approx.ToPoints()
	if len(pts) < 3 {
		pts = largest.ToPoints()
	}
	if len(pts) < 3 {
		return nil, ErrNoContour
	}

	poly := make([]geometry.Point, len(pts))
	for i, p := range pts {
		poly[i] = geometry.Pt(float64(p.X), float64(p.Y))
	}
	rect := gocv.BoundingRect(largest)
	res := &Result{
		Polygon: poly,
		Area:    bestArea,
		Bounds: geometry.Rect{
			X: float64(rect.Min.X), Y: float64(rect.Min.Y),
			Width: float64(rect.Dx()), Height: float64(rect.Dy()),
		},
	}

	if params.Step > 0 {
		filled := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), grid.H, grid.W, gocv.MatTypeCV8U)
		defer filled.Close()
		only := gocv.NewPointsVectorFromPoints([][]image.Point{largest.ToPoints()})
		defer only.Close()
		gocv.FillPoly(&filled, only, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		if r, ok := mask.MaxRect(matToGrid(filled), params.Step); ok {
			res.Inscribed = &r
		}
	}
	return res, nil
}

func gridToMat(g *mask.Grid) gocv.Mat {
	m := gocv.NewMatWithSize(g.H, g.W, gocv.MatTypeCV8U)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.At(x, y) {
				m.SetUCharAt(y, x, 255)
			} else {
				m.SetUCharAt(y, x, 0)
			}
		}
	}
	return m
}

func matToGrid(m gocv.Mat) *mask.Grid {
	g := mask.NewGrid(m.Cols(), m.Rows())
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			g.Set(x, y, m.GetUCharAt(y, x) > 0)
		}
	}
	return g
}
