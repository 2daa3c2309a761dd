package geometry

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Boundary is one district boundary read from a shapefile: its attribute
// fields plus the polygon encoded as EWKB.
type Boundary struct {
	Fields map[string]string
	EWKB   []byte
}

// ReadBoundaries parses a polygon shapefile and returns one Boundary per
// shape. Non-polygon shapes are skipped with a debug log.
func ReadBoundaries(path string) ([]Boundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open shapefile %s", path)
	}
	defer reader.Close() //nolint:errcheck

	fields := reader.Fields()

	var out []Boundary
	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			zap.L().Debug("skipping non-polygon shape", zap.Int("index", n))
			continue
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			zap.L().Debug("skipping malformed polygon", zap.Int("index", n))
			continue
		}

		data, err := EncodeEWKB(mp)
		if err != nil {
			return nil, eris.Wrapf(err, "geometry: encode shape %d", n)
		}

		attrs := make(map[string]string, len(fields))
		for i, field := range fields {
			name := strings.TrimRight(field.String(), "\x00")
			val := strings.TrimRight(reader.Attribute(i), "\x00")
			attrs[name] = strings.TrimSpace(val)
		}

		out = append(out, Boundary{Fields: attrs, EWKB: data})
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "geometry: read shapefile")
	}

	return out, nil
}

// polygonToMultiPolygon converts a shapefile polygon to a go-geom
// multipolygon. Shapefile polygons store all rings flat with a parts index;
// each part becomes a single-ring polygon. Rings with fewer than four points
// are skipped.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)

	numParts := len(p.Parts)
	for i := range numParts {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i < numParts-1 {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for _, pt := range p.Points[start:end] {
			flat = append(flat, pt.X, pt.Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat).SetSRID(SRID)
		poly := geom.NewPolygon(geom.XY).SetSRID(SRID)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// ExtractShapefile unpacks a zip archive into destDir and returns the path of
// the first .shp file found. Member paths are flattened to their base name so
// hostile archives cannot write outside destDir.
func ExtractShapefile(archivePath string, destDir string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", eris.Wrapf(err, "geometry: open archive %s", archivePath)
	}
	defer zr.Close() //nolint:errcheck

	var shpPath string
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}

		name := filepath.Base(member.Name)
		target := filepath.Join(destDir, name)

		src, err := member.Open()
		if err != nil {
			return "", eris.Wrapf(err, "geometry: open archive member %s", member.Name)
		}

		dst, err := os.Create(target)
		if err != nil {
			_ = src.Close()
			return "", eris.Wrapf(err, "geometry: create %s", target)
		}

		_, copyErr := io.Copy(dst, src)
		_ = src.Close()
		if closeErr := dst.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			return "", eris.Wrapf(copyErr, "geometry: extract %s", member.Name)
		}

		if strings.EqualFold(filepath.Ext(name), ".shp") {
			shpPath = target
		}
	}

	if shpPath == "" {
		return "", eris.New("geometry: no .shp file in archive")
	}

	return shpPath, nil
}
