// Package geometry converts between ArcGIS rings, shapefile shapes, and the
// EWKB/WKT encodings stored and served by ratesmap. All council geometry is
// NZGD2000 / NZTM (SRID 2193).
package geometry

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// SRID is the spatial reference of all stored geometry: NZGD2000 / New
// Zealand Transverse Mercator.
const SRID = 2193

// RingToPolygon converts an ArcGIS exterior ring ([x, y] pairs) to a go-geom
// polygon. The ring is closed if the source left it open. Returns nil for
// rings with fewer than three distinct points.
func RingToPolygon(ring [][]float64) *geom.Polygon {
	if len(ring) < 3 {
		return nil
	}

	flat := make([]float64, 0, (len(ring)+1)*2)
	for _, pt := range ring {
		if len(pt) < 2 {
			return nil
		}
		flat = append(flat, pt[0], pt[1])
	}

	// Close the ring if the source left it open.
	n := len(flat)
	if flat[0] != flat[n-2] || flat[1] != flat[n-1] {
		flat = append(flat, flat[0], flat[1])
	}

	poly := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)
	return poly
}

// EncodeEWKB marshals a geometry to EWKB bytes (NDR byte order, SRID
// embedded).
func EncodeEWKB(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geometry: encode EWKB")
	}
	return data, nil
}

// DecodeEWKB unmarshals EWKB bytes back into a geometry.
func DecodeEWKB(data []byte) (geom.T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "geometry: decode EWKB")
	}
	return g, nil
}

// ToWKT renders a geometry as WKT for display and export.
func ToWKT(g geom.T) (string, error) {
	if g == nil {
		return "", nil
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return "", eris.Wrap(err, "geometry: encode WKT")
	}
	return s, nil
}

// EWKBToWKT decodes stored EWKB and renders it as WKT. Empty input yields an
// empty string.
func EWKBToWKT(data []byte) (string, error) {
	g, err := DecodeEWKB(data)
	if err != nil || g == nil {
		return "", err
	}
	return ToWKT(g)
}
