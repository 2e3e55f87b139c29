package geoproj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xeipuuv/gojsonschema"
)

// MinRingPoints is the smallest ring accepted.
const MinRingPoints = 3

var (
	ErrMalformed    = errors.New("malformed geographic input")
	ErrTooFewPoints = errors.New("ring needs at least 3 coordinate pairs")
	ErrNonFinite    = errors.New("coordinate is not a finite number")
)

// ringSchema describes the raw input form: [[lon, lat], ...].
const ringSchema = `{
  "type": "array",
  "minItems": 3,
  "items": {
    "type": "array",
    "minItems": 2,
    "maxItems": 2,
    "items": {"type": "number"}
  }
}`

var ringSchemaLoader = gojsonschema.NewStringLoader(ringSchema)

// ParseRing decodes geographic input. Two forms are accepted: a raw JSON
// array of [longitude, latitude] pairs, or a GeoJSON Polygon, Feature or
// FeatureCollection whose first polygon's exterior ring is used. A repeated
// closing point is dropped.
func ParseRing(data []byte) (orb.Ring, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	var ring orb.Ring
	var err error
	if trimmed[0] == '{' {
		ring, err = parseGeoJSON(trimmed)
	} else {
		ring, err = parsePairs(trimmed)
	}
	if err != nil {
		return nil, err
	}
	return ValidateRing(ring)
}

// ValidateRing checks finiteness and length, dropping a repeated closing
// point. The returned ring never repeats its first point.
func ValidateRing(ring orb.Ring) (orb.Ring, error) {
	for i, p := range ring {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: pair %d", ErrNonFinite, i)
			}
		}
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < MinRingPoints {
		return nil, ErrTooFewPoints
	}
	return append(orb.Ring(nil), ring...), nil
}

func parsePairs(data []byte) (orb.Ring, error) {
	result, err := gojsonschema.Validate(ringSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		tooFew := false
		for _, desc := range result.Errors() {
			if desc.Field() == "(root)" && desc.Type() == "array_min_items" {
				tooFew = true
			}
			msgs = append(msgs, desc.String())
		}
		if tooFew {
			return nil, ErrTooFewPoints
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
	}

	var pairs [][2]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ring := make(orb.Ring, len(pairs))
	for i, p := range pairs {
		ring[i] = orb.Point{p[0], p[1]}
	}
	return ring, nil
}

func parseGeoJSON(data []byte) (orb.Ring, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var g orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for _, f := range fc.Features {
			if polygonOf(f.Geometry) != nil {
				g = f.Geometry
				break
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		g = f.Geometry
	default:
		geom, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		g = geom.Geometry()
	}

	poly := polygonOf(g)
	if poly == nil || len(poly) == 0 {
		return nil, fmt.Errorf("%w: no polygon found", ErrMalformed)
	}
	return poly[0], nil
}

func polygonOf(g orb.Geometry) orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return v
	case orb.MultiPolygon:
		if len(v) > 0 {
			return v[0]
		}
	case orb.Ring:
		return orb.Polygon{v}
	}
	return nil
}
