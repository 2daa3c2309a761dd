package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/geometry"
	"github.com/ratesmap/ratesmap/internal/property"
)

// arcgisPageSize is the number of features requested per page. Council
// servers cap responses at 1000 regardless of what is asked for.
const arcgisPageSize = 1000

// Feature is a single feature from an ArcGIS query response.
type Feature struct {
	Attributes map[string]any   `json:"attributes"`
	Geometry   *FeatureGeometry `json:"geometry"`
}

// FeatureGeometry holds the polygon rings of a feature. Only the exterior
// ring (the first one) is used.
type FeatureGeometry struct {
	Rings [][][]float64 `json:"rings"`
}

// EWKB encodes the feature's exterior ring as an EWKB polygon. Returns nil
// when the feature has no usable geometry.
func (g *FeatureGeometry) EWKB() []byte {
	if g == nil || len(g.Rings) == 0 {
		return nil
	}
	poly := geometry.RingToPolygon(g.Rings[0])
	if poly == nil {
		return nil
	}
	data, err := geometry.EncodeEWKB(poly)
	if err != nil {
		return nil
	}
	return data
}

type queryResponse struct {
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// arcgisClient pages through an ArcGIS REST query endpoint.
type arcgisClient struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// Count returns the total number of features matching the where clause.
func (c *arcgisClient) Count(ctx context.Context, where string) (int64, error) {
	params := url.Values{
		"where":           {where},
		"returnCountOnly": {"true"},
		"f":               {"json"},
	}

	var resp countResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return 0, eris.Wrap(err, "ingest: fetch feature count")
	}
	return resp.Count, nil
}

// Page fetches one page of features at the given offset.
func (c *arcgisClient) Page(ctx context.Context, where string, outFields []string, offset int) (*queryResponse, error) {
	params := url.Values{
		"where":             {where},
		"outFields":         {strings.Join(outFields, ",")},
		"returnGeometry":    {"true"},
		"outSR":             {strconv.Itoa(geometry.SRID)},
		"resultRecordCount": {strconv.Itoa(arcgisPageSize)},
		"resultOffset":      {strconv.Itoa(offset)},
		"f":                 {"json"},
	}

	var resp queryResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, eris.Wrapf(err, "ingest: fetch page at offset %d", offset)
	}
	return &resp, nil
}

func (c *arcgisClient) get(ctx context.Context, params url.Values, out any) error {
	body, err := c.fetcher.Download(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return eris.Wrap(err, "ingest: read response body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "ingest: decode arcgis response")
	}
	return nil
}

// syncPaged drives a full paged download for one source: count, page, map,
// upsert. Features without an object ID are skipped. The mapper returns
// false to drop a feature.
func syncPaged(
	ctx context.Context,
	store property.Store,
	f fetcher.Fetcher,
	name string,
	district string,
	baseURL string,
	where string,
	outFields []string,
	mapFeature func(Feature) (property.Record, bool),
) (*SyncResult, error) {
	log := zap.L().With(zap.String("source", name))

	client := &arcgisClient{fetcher: f, baseURL: baseURL}

	total, err := client.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		log.Info("no records match, nothing to sync")
		return &SyncResult{}, nil
	}
	log.Info("starting roll download", zap.Int64("total", total))

	var (
		offset    int
		processed int64
		upserted  int64
	)

	for {
		page, err := client.Page(ctx, where, outFields, offset)
		if err != nil {
			return nil, err
		}
		if len(page.Features) == 0 {
			break
		}

		now := time.Now().UTC()
		records := make([]property.Record, 0, len(page.Features))
		for _, feat := range page.Features {
			rec, ok := mapFeature(feat)
			if !ok {
				continue
			}
			rec.District = district
			rec.UpdatedAt = now
			records = append(records, rec)
		}

		n, err := store.BulkUpsert(ctx, records)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: upsert %s page at offset %d", name, offset)
		}

		processed += int64(len(page.Features))
		upserted += n
		log.Debug("page loaded",
			zap.Int("offset", offset),
			zap.Int("fetched", len(page.Features)),
			zap.Int64("upserted", n),
		)

		if len(page.Features) < arcgisPageSize && !page.ExceededTransferLimit {
			break
		}
		offset += arcgisPageSize
	}

	log.Info("roll sync complete",
		zap.Int64("processed", processed),
		zap.Int64("upserted", upserted),
	)

	return &SyncResult{
		RowsSynced: upserted,
		Metadata: map[string]any{
			"processed": processed,
			"total":     total,
		},
	}, nil
}

// Attribute helpers. ArcGIS JSON attributes arrive as any; numbers decode as
// float64, and most councils null out fields they don't populate.

func attrString(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func attrFloat(attrs map[string]any, key string) float64 {
	if v, ok := attrs[key].(float64); ok {
		return v
	}
	return 0
}

func attrFloatPtr(attrs map[string]any, key string) *float64 {
	if v, ok := attrs[key].(float64); ok {
		return &v
	}
	return nil
}

func attrInt64(attrs map[string]any, key string) (int64, bool) {
	if v, ok := attrs[key].(float64); ok {
		return int64(v), true
	}
	return 0, false
}

// attrEpochDate parses an epoch-milliseconds attribute into a UTC date.
func attrEpochDate(attrs map[string]any, key string) *time.Time {
	ms, ok := attrs[key].(float64)
	if !ok || ms == 0 {
		return nil
	}
	t := time.UnixMilli(int64(ms)).UTC().Truncate(24 * time.Hour)
	return &t
}
