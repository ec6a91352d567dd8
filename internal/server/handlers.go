package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
	"github.com/urbanclimate/lcz-planner/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLCZData serves the zone polygons as GeoJSON with center and bounds
// for the map view.
func (s *Server) handleLCZData(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Zones == nil || s.deps.Zones.Len() == 0 {
		writeError(w, http.StatusOK, "No LCZ data available")
		return
	}

	bounds, ok := s.deps.Zones.Bounds()
	if !ok {
		writeError(w, http.StatusOK, "Unable to determine area bounds")
		return
	}
	lat, lon := bounds.Center()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"geojson": s.deps.Zones.FeatureCollection(),
		"center":  []float64{lat, lon},
		"bounds":  []float64{bounds.West, bounds.South, bounds.East, bounds.North},
	})
}

func (s *Server) handleTemperature(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "Missing coordinates")
		return
	}

	reading, err := s.deps.Weather.Temperature(r.Context(), lat, lon)
	if err != nil {
		s.deps.Metrics.WeatherRequests.WithLabelValues(s.deps.Weather.Name(), "error").Inc()
		zap.L().Warn("server: temperature lookup failed",
			zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		writeError(w, http.StatusOK, "Unable to fetch temperature data. Check API credentials.")
		return
	}
	s.deps.Metrics.WeatherRequests.WithLabelValues(s.deps.Weather.Name(), "success").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"temperature": reading.TempC,
		"lat":         lat,
		"lon":         lon,
	})
}

// handleTemperatureGrid resolves a regular grid over the zone bounds.
func (s *Server) handleTemperatureGrid(w http.ResponseWriter, r *http.Request) {
	if s.deps.Zones == nil || s.deps.Zones.Len() == 0 {
		writeError(w, http.StatusOK, "LCZ data not loaded")
		return
	}
	bounds, ok := s.deps.Zones.Bounds()
	if !ok {
		writeError(w, http.StatusOK, "Unable to determine area bounds")
		return
	}

	coords := sampler.GridCoordinates(bounds, s.cfg.GridResolution, gridMaxPoints)
	readings, err := s.deps.Weather.Temperatures(r.Context(), coords)
	if err != nil {
		s.deps.Metrics.WeatherRequests.WithLabelValues(s.deps.Weather.Name(), "error").Inc()
		zap.L().Warn("server: temperature grid failed", zap.Error(err))
		writeError(w, http.StatusOK, "Unable to fetch temperature grid. Check API credentials.")
		return
	}
	s.deps.Metrics.WeatherRequests.WithLabelValues(s.deps.Weather.Name(), "success").Inc()

	points := make([]map[string]float64, len(readings))
	values := make([]float64, len(readings))
	for i, rd := range readings {
		points[i] = map[string]float64{"lat": rd.Lat, "lon": rd.Lon}
		values[i] = rd.TempC
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"coordinates": points,
			"values":      values,
		},
	})
}

// scenarioRequest is the calculate-scenario request body. Pointer fields
// distinguish absent parameters from zero values.
type scenarioRequest struct {
	ZoneID          *string  `json:"zone_id"`
	FromLCZ         *string  `json:"from_lcz"`
	ToLCZ           *string  `json:"to_lcz"`
	BaseTemperature *float64 `json:"base_temperature"`
}

func (s *Server) handleCalculateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.deps.Metrics.ScenarioCalculations.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ZoneID == nil || req.FromLCZ == nil || req.ToLCZ == nil || req.BaseTemperature == nil {
		s.deps.Metrics.ScenarioCalculations.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	from := lcz.Canonical(*req.FromLCZ)
	to := lcz.Canonical(*req.ToLCZ)

	result, err := s.calc.Compute(*req.BaseTemperature, from, to)
	if err != nil {
		if lcz.IsUnknownZoneClass(err) {
			s.deps.Metrics.ScenarioCalculations.WithLabelValues("invalid_class").Inc()
			writeError(w, http.StatusUnprocessableEntity, "Invalid LCZ classes")
			return
		}
		s.deps.Metrics.ScenarioCalculations.WithLabelValues("error").Inc()
		zap.L().Error("server: scenario calculation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Scenario calculation failed")
		return
	}
	s.deps.Metrics.ScenarioCalculations.WithLabelValues("success").Inc()

	if s.deps.Store != nil {
		if _, err := s.deps.Store.SaveScenario(r.Context(), result); err != nil {
			zap.L().Warn("server: persist scenario", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

// classPayload is the per-class shape served by lcz-classes and
// lcz-properties.
type classPayload struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Color         string  `json:"color"`
	ThermalOffset float64 `json:"thermal_offset"`
}

func (s *Server) classMap() map[string]classPayload {
	out := make(map[string]classPayload, s.deps.Registry.Len())
	for _, c := range s.deps.Registry.All() {
		out[c.ID] = classPayload{
			Name:          c.Name,
			Category:      string(c.Category),
			Color:         c.Color,
			ThermalOffset: c.ThermalOffset,
		}
	}
	return out
}

func (s *Server) handleClasses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"classes": s.classMap(),
	})
}

func (s *Server) handleProperties(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"properties": s.classMap(),
	})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, http.StatusOK, "Scenario history not available")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	recs, err := s.deps.Store.ListScenarios(r.Context(), limit)
	if err != nil {
		zap.L().Error("server: list scenarios", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Unable to load scenario history")
		return
	}
	if recs == nil {
		recs = []store.ScenarioRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"scenarios": recs,
	})
}
