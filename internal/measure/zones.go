// Package measure classifies raster pixels into named zones and converts
// pixel counts and canvas distances into real-world units.
package measure

import (
	"floorplan/internal/raster"
	"floorplan/pkg/colorutil"
)

// DefaultZoneThreshold is the maximum summed RGB delta for a zone match.
const DefaultZoneThreshold = 30

// Zone is a semantic region identified by its reference color.
type Zone struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Color colorutil.RGB `json:"-"`
}

// Hex returns the reference color as #RRGGBB.
func (z Zone) Hex() string { return z.Color.Hex() }

// Zones is the classification table in match order. The first entry whose
// reference color is similar to a pixel wins.
var Zones = []Zone{
	{ID: "north", Name: "Utara", Color: colorutil.MustHex("#0000FF")},
	{ID: "bale-daja", Name: "Bale Daja", Color: colorutil.MustHex("#DEAA25")},
	{ID: "merajan", Name: "Merajan", Color: colorutil.MustHex("#FF0000")},
	{ID: "bale-dangin", Name: "Bale Dangin", Color: colorutil.MustHex("#0085FF")},
	{ID: "bale-dauh", Name: "Bale Dauh", Color: colorutil.MustHex("#0E971C")},
	{ID: "bale-delod", Name: "Bale Delod", Color: colorutil.MustHex("#50019F")},
	{ID: "paon", Name: "Paon", Color: colorutil.MustHex("#FF00A8")},
	{ID: "jineng", Name: "Jineng", Color: colorutil.MustHex("#65200A")},
	{ID: "penungun-karang", Name: "Penungun Karang", Color: colorutil.MustHex("#00FFF0")},
	{ID: "angkul-angkul", Name: "Angkul-Angkul", Color: colorutil.MustHex("#D9D9D9")},
}

// UnknownZone is the histogram key for pixels matching no zone.
const UnknownZone = "unknown"

// Classifier matches colors against a zone table.
type Classifier struct {
	Zones     []Zone
	Threshold int
}

// NewClassifier returns a classifier over the default table. A non-positive
// threshold selects DefaultZoneThreshold.
func NewClassifier(threshold int) *Classifier {
	if threshold <= 0 {
		threshold = DefaultZoneThreshold
	}
	return &Classifier{Zones: Zones, Threshold: threshold}
}

// Classify returns the first zone similar to c. ok is false when nothing
// matches, which is an expected outcome rather than an error.
func (c *Classifier) Classify(rgb colorutil.RGB) (Zone, bool) {
	for _, z := range c.Zones {
		if colorutil.Similar(rgb, z.Color, c.Threshold) {
			return z, true
		}
	}
	return Zone{}, false
}

// Sample classifies the pixel at (x, y). Alpha is ignored. Coordinates
// outside the raster classify as unknown.
func (c *Classifier) Sample(r *raster.Raster, x, y int) (Zone, bool) {
	if !r.InBounds(x, y) {
		return Zone{}, false
	}
	px := r.NRGBAAt(x, y)
	return c.Classify(colorutil.RGB{R: px.R, G: px.G, B: px.B})
}
