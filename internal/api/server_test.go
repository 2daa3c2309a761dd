package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratesmap/ratesmap/internal/filter"
	"github.com/ratesmap/ratesmap/internal/property"
)

// stubStore serves canned data for handler tests.
type stubStore struct {
	categories []property.CategoryCount
	err        error
}

func (s *stubStore) BulkUpsert(context.Context, []property.Record) (int64, error) { return 0, nil }
func (s *stubStore) ListAll(context.Context) ([]property.Record, error)           { return nil, nil }
func (s *stubStore) ListByDistrict(context.Context, string) ([]property.Record, error) {
	return nil, nil
}
func (s *stubStore) Categories(context.Context) ([]property.CategoryCount, error) {
	return s.categories, s.err
}
func (s *stubStore) Count(context.Context) (int64, error) { return 0, nil }
func (s *stubStore) Close() error                         { return nil }

func testRecords() []property.Record {
	return []property.Record{
		{ObjectID: 1, CapitalValue: 800000, LandValue: 500000, ImprovementsValue: 300000, PropertyType: "Residential", District: "Auckland", Address: "7 Ward Street"},
		{ObjectID: 2, CapitalValue: 400000, LandValue: 250000, ImprovementsValue: 150000, PropertyType: "Residential", District: "Auckland"},
		{ObjectID: 3, CapitalValue: 5000000, LandValue: 3000000, ImprovementsValue: 2000000, PropertyType: "Commercial", District: "Wellington"},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *filter.Engine) {
	t.Helper()

	engine := filter.NewEngine(filter.Options{
		ValueDelay:    30 * time.Millisecond,
		CategoryDelay: 10 * time.Millisecond,
	})
	t.Cleanup(engine.Close)
	engine.OnDataLoaded(testRecords())

	store := &stubStore{categories: []property.CategoryCount{
		{PropertyType: "Residential", Count: 2},
		{PropertyType: "Commercial", Count: 1},
	}}

	srv := httptest.NewServer(NewServer(engine, store).Router())
	t.Cleanup(srv.Close)
	return srv, engine
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func putJSON(t *testing.T, url string, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestFilterSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap filter.Snapshot
	status := getJSON(t, srv.URL+"/api/filter", &snap)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, []string{"Commercial", "Residential"}, snap.SelectedCategories)
	assert.Equal(t, 3, snap.TotalRecords)
	assert.Equal(t, 3, snap.VisibleCount)
	assert.Equal(t, 400000.0, snap.Bounds.Capital.Min)
	assert.Equal(t, 5000000.0, snap.Bounds.Capital.Max)
}

func TestProperties_ReflectsCommittedFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	var before struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/properties", &before)
	assert.Equal(t, 3, before.Count)

	// Narrow capital to just the two Residential records.
	var snap filter.Snapshot
	status := putJSON(t, srv.URL+"/api/filter/value",
		`{"field":"capital","low":400000,"high":800000}`, &snap)
	require.Equal(t, http.StatusOK, status)

	// Live range moves immediately; the visible set waits out the debounce.
	assert.Equal(t, 800000.0, snap.Live.Capital.High)
	assert.Equal(t, 3, snap.VisibleCount)

	time.Sleep(80 * time.Millisecond)

	var after struct {
		Count      int `json:"count"`
		Properties []struct {
			ObjectID     int64  `json:"object_id"`
			PropertyType string `json:"property_type"`
		} `json:"properties"`
	}
	getJSON(t, srv.URL+"/api/properties", &after)
	require.Equal(t, 2, after.Count)
	assert.Equal(t, int64(1), after.Properties[0].ObjectID)
	assert.Equal(t, int64(2), after.Properties[1].ObjectID)
}

func TestValueEdit_PositionUnit(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap filter.Snapshot
	status := putJSON(t, srv.URL+"/api/filter/value",
		`{"field":"capital","low":0,"high":100,"unit":"position"}`, &snap)
	require.Equal(t, http.StatusOK, status)

	// Full slider sweep maps back to the full bounds.
	assert.Equal(t, 400000.0, snap.Live.Capital.Low)
	assert.Equal(t, 5000000.0, snap.Live.Capital.High)
}

func TestValueEdit_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		putJSON(t, srv.URL+"/api/filter/value", `{not json`, nil))
	assert.Equal(t, http.StatusBadRequest,
		putJSON(t, srv.URL+"/api/filter/value", `{"field":"rates","low":1,"high":2}`, nil))
	assert.Equal(t, http.StatusBadRequest,
		putJSON(t, srv.URL+"/api/filter/value", `{"field":"capital","low":1,"high":2,"unit":"furlongs"}`, nil))
}

func TestCategoryChange_ResetsBounds(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap filter.Snapshot
	status := putJSON(t, srv.URL+"/api/filter/categories",
		`{"categories":["Residential"]}`, &snap)
	require.Equal(t, http.StatusOK, status)

	// Bounds recompute synchronously for the new selection.
	assert.Equal(t, []string{"Residential"}, snap.SelectedCategories)
	assert.Equal(t, 400000.0, snap.Bounds.Capital.Min)
	assert.Equal(t, 800000.0, snap.Bounds.Capital.Max)

	time.Sleep(50 * time.Millisecond)

	var after struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/properties", &after)
	assert.Equal(t, 2, after.Count)
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	var body struct {
		Categories []property.CategoryCount `json:"categories"`
	}
	status := getJSON(t, srv.URL+"/api/categories", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Categories, 2)
	assert.Equal(t, "Residential", body.Categories[0].PropertyType)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Prime the request counter so the scrape has something to show.
	getJSON(t, srv.URL+"/health", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ratesmap_http_requests_total")
}
