package geometry

import "math"

// Segment is a directed edge between two points.
type Segment struct {
	From, To Point
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.From.Distance(s.To)
}

// Midpoint returns the point halfway along the segment.
func (s Segment) Midpoint() Point {
	return Point{X: (s.From.X + s.To.X) / 2, Y: (s.From.Y + s.To.Y) / 2}
}

// Edges returns consecutive segments of a polyline. When closed is true the
// wrap-around edge from the last point back to the first is included.
func Edges(points []Point, closed bool) []Segment {
	if len(points) < 2 {
		return nil
	}
	edges := make([]Segment, 0, len(points))
	for i := 0; i+1 < len(points); i++ {
		edges = append(edges, Segment{From: points[i], To: points[i+1]})
	}
	if closed && len(points) > 2 {
		edges = append(edges, Segment{From: points[len(points)-1], To: points[0]})
	}
	return edges
}

// PolygonArea returns the unsigned shoelace area of a simple polygon.
func PolygonArea(polygon []Point) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	for i := range polygon {
		j := (i + 1) % len(polygon)
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// PointInPolygon tests containment with the even-odd ray casting rule.
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	for i := range polygon {
		a, b := polygon[i], polygon[(i+1)%len(polygon)]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// DistanceToSegment returns the shortest distance from p to segment s.
func DistanceToSegment(p Point, s Segment) float64 {
	d := s.To.Sub(s.From)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Distance(s.From)
	}
	t := ((p.X-s.From.X)*d.X + (p.Y-s.From.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point{X: s.From.X + t*d.X, Y: s.From.Y + t*d.Y})
}

// NearestEdge returns the index i of the closed-polygon edge (i, i+1 mod n)
// closest to p, and its distance. It returns -1 for fewer than two points.
func NearestEdge(p Point, polygon []Point) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, e := range Edges(polygon, true) {
		if d := DistanceToSegment(p, e); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
