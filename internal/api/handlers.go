package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/filter"
	"github.com/ratesmap/ratesmap/internal/geometry"
	"github.com/ratesmap/ratesmap/internal/metrics"
	"github.com/ratesmap/ratesmap/internal/property"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// propertyView is a property record shaped for map rendering, with the
// stored geometry rendered as WKT.
type propertyView struct {
	ObjectID          int64      `json:"object_id"`
	Address           string     `json:"address,omitempty"`
	Street            string     `json:"street,omitempty"`
	Locality          string     `json:"locality,omitempty"`
	Postcode          string     `json:"postcode,omitempty"`
	LandValue         float64    `json:"land_value"`
	CapitalValue      float64    `json:"capital_value"`
	ImprovementsValue float64    `json:"improvements_value"`
	PropertyType      string     `json:"property_type,omitempty"`
	District          string     `json:"district"`
	ValuationDate     *time.Time `json:"valuation_date,omitempty"`
	GeomWKT           string     `json:"geom_wkt,omitempty"`
}

func toView(rec property.Record) propertyView {
	wkt, err := geometry.EWKBToWKT(rec.Geom)
	if err != nil {
		zap.L().Debug("api: geometry decode failed",
			zap.Int64("object_id", rec.ObjectID),
			zap.Error(err),
		)
	}
	return propertyView{
		ObjectID:          rec.ObjectID,
		Address:           rec.Address,
		Street:            rec.Street,
		Locality:          rec.Locality,
		Postcode:          rec.Postcode,
		LandValue:         rec.LandValue,
		CapitalValue:      rec.CapitalValue,
		ImprovementsValue: rec.ImprovementsValue,
		PropertyType:      rec.PropertyType,
		District:          rec.District,
		ValuationDate:     rec.ValuationDate,
		GeomWKT:           wkt,
	}
}

// handleProperties returns the committed visible set.
func (s *Server) handleProperties(w http.ResponseWriter, _ *http.Request) {
	visible := s.engine.Visible()

	views := make([]propertyView, len(visible))
	for i, rec := range visible {
		views[i] = toView(rec)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":      len(views),
		"properties": views,
	})
}

// handleCategories returns distinct property types with counts from the store.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories(r.Context())
	if err != nil {
		zap.L().Error("api: list categories", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// handleFilterSnapshot returns the current filter state.
func (s *Server) handleFilterSnapshot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Snapshot())
}

// valueEditRequest is a slider edit. Unit "value" (default) takes low/high in
// dollars; unit "position" takes them as 0-100 slider positions and converts
// against the current bounds for the field.
type valueEditRequest struct {
	Field string  `json:"field"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Unit  string  `json:"unit,omitempty"`
}

func (s *Server) handleValueEdit(w http.ResponseWriter, r *http.Request) {
	var req valueEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	field, err := filter.ParseField(req.Field)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var edit filter.Range
	switch req.Unit {
	case "", "value":
		edit = filter.Range{Low: req.Low, High: req.High}
	case "position":
		bounds := s.engine.Snapshot().Bounds.Get(field)
		edit = filter.PositionsToRange(filter.PositionRange{Low: req.Low, High: req.High}, bounds)
	default:
		respondError(w, http.StatusBadRequest, "unit must be \"value\" or \"position\"")
		return
	}

	start := time.Now()
	s.engine.OnValueEdit(field, edit)
	metrics.FilterEvalDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	metrics.FilterEditsTotal.WithLabelValues("value").Inc()

	respondJSON(w, http.StatusOK, s.engine.Snapshot())
}

type categoryChangeRequest struct {
	Categories []string `json:"categories"`
}

func (s *Server) handleCategoryChange(w http.ResponseWriter, r *http.Request) {
	var req categoryChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	s.engine.OnCategoryChange(req.Categories)
	metrics.FilterEvalDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	metrics.FilterEditsTotal.WithLabelValues("category").Inc()

	respondJSON(w, http.StatusOK, s.engine.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
