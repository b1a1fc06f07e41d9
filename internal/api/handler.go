package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/enginewatch/enginewatch/internal/acquisition"
	"github.com/enginewatch/enginewatch/internal/alerts"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// Handler is the HTTP handler for all /api/v1/* endpoints and /metrics.
// It reads live state from the acquisition manager and the alert engine
// and returns JSON responses.
type Handler struct {
	mgr     *acquisition.Manager
	alerts  *alerts.Engine
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler wired to the given manager and alert engine and
// registers all routes.
func New(mgr *acquisition.Manager, eng *alerts.Engine) *Handler {
	h := &Handler{
		mgr:     mgr,
		alerts:  eng,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/engines", h.listEngines)
	h.mux.HandleFunc("/api/v1/engines/", h.engineSubtree) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/alerts/", h.alertActions) // subtree, acknowledge
	h.mux.HandleFunc("/api/v1/phase", h.setPhase)
	h.mux.HandleFunc("/api/v1/stats", h.stats)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health serves GET /api/v1/health, the system-level summary.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := h.mgr.Stats()
	caution, warning := h.alerts.Masters()
	resp := HealthResponse{
		EngineCount:    st.Engines,
		MasterCaution:  caution,
		MasterWarning:  warning,
		ActiveAlerts:   h.alerts.ActiveCount(),
		SampleRateHz:   st.SampleRateHz,
		CyclesComplete: st.Cycles,
	}

	if !st.Initialized {
		resp.State = "unknown"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	worst := telemetry.HealthNormal
	for id := telemetry.EngineID(0); int(id) < st.Engines; id++ {
		snap, err := h.mgr.EngineSnapshot(id)
		if err != nil {
			resp.State = "unknown"
			jsonResp(w, http.StatusOK, resp)
			return
		}
		switch snap.Health {
		case telemetry.HealthNormal:
			resp.NormalCount++
		case telemetry.HealthMonitor:
			resp.MonitorCount++
		case telemetry.HealthCaution:
			resp.CautionCount++
		case telemetry.HealthActionRequired:
			resp.ActionCount++
		case telemetry.HealthCritical:
			resp.CriticalCount++
		}
		if snap.Health > worst {
			worst = snap.Health
		}
	}
	resp.State = worst.String()
	jsonResp(w, http.StatusOK, resp)
}

// listEngines serves GET /api/v1/engines, the per-engine summaries.
func (h *Handler) listEngines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := h.mgr.Stats()
	out := make([]EngineResponse, 0, st.Engines)
	for id := telemetry.EngineID(0); int(id) < st.Engines; id++ {
		snap, err := h.mgr.EngineSnapshot(id)
		if err != nil {
			jsonErr(w, errStatus(err), err.Error())
			return
		}
		out = append(out, toEngineSummary(&snap))
	}
	jsonResp(w, http.StatusOK, out)
}

// engineSubtree serves GET /api/v1/engines/{id} and
// GET /api/v1/engines/{id}/params/{name}.
func (h *Handler) engineSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/engines/")
	if rest == "" {
		h.listEngines(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	id, ok := parseEngineID(parts[0])
	if !ok {
		jsonErr(w, http.StatusNotFound, "engine not found")
		return
	}

	switch {
	case len(parts) == 1:
		h.getEngine(w, id)
	case len(parts) == 3 && parts[1] == "params" && parts[2] != "":
		h.getParameter(w, id, parts[2])
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

// getEngine returns the full verified snapshot for one engine, with
// per-parameter detail and maintenance diagnostics.
func (h *Handler) getEngine(w http.ResponseWriter, id telemetry.EngineID) {
	snap, err := h.mgr.EngineSnapshot(id)
	if err != nil {
		jsonErr(w, errStatus(err), err.Error())
		return
	}

	resp := toEngineSummary(&snap)
	resp.Parameters = make([]ParameterResponse, 0, telemetry.ParamCount)
	for p := telemetry.ParamID(0); p.Valid(); p++ {
		resp.Parameters = append(resp.Parameters, toParameterResponse(p, snap.Parameters[p]))
	}
	resp.Diagnostics = computeDiagnostics(&snap, h.mgr.Stats().Sources)
	jsonResp(w, http.StatusOK, resp)
}

// getParameter returns one parameter of one engine.
func (h *Handler) getParameter(w http.ResponseWriter, id telemetry.EngineID, name string) {
	p, ok := telemetry.ParamIDByName(name)
	if !ok {
		jsonErr(w, http.StatusNotFound, "parameter not found")
		return
	}
	param, err := h.mgr.Parameter(id, p)
	if err != nil {
		jsonErr(w, errStatus(err), err.Error())
		return
	}
	jsonResp(w, http.StatusOK, toParameterResponse(p, param))
}

// listAlerts serves GET /api/v1/alerts: active alerts plus masters;
// ?history=1 appends the resolved-alert ring.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	caution, warning := h.alerts.Masters()
	resp := AlertsResponse{
		MasterCaution: caution,
		MasterWarning: warning,
		Highest:       h.alerts.Highest().String(),
		Active:        make([]AlertResponse, 0),
	}
	for _, a := range h.alerts.Active() {
		resp.Active = append(resp.Active, BuildAlert(a))
	}
	if r.URL.Query().Get("history") == "1" {
		for _, a := range h.alerts.History() {
			resp.History = append(resp.History, BuildAlert(a))
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// alertActions serves POST /api/v1/alerts/acknowledge (master flags, body
// {"level":"caution"|"warning"}) and POST /api/v1/alerts/{id}/acknowledge
// (single-alert clear).
func (h *Handler) alertActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	if rest == "acknowledge" {
		h.acknowledgeMaster(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "acknowledge" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		jsonErr(w, http.StatusNotFound, "alert not found")
		return
	}
	if err := h.alerts.AcknowledgeAlert(uint32(id)); err != nil {
		jsonErr(w, http.StatusNotFound, "alert not found")
		return
	}
	jsonResp(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (h *Handler) acknowledgeMaster(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	level, err := alerts.ParseLevel(body.Level)
	if err != nil || level < alerts.LevelCaution {
		jsonErr(w, http.StatusBadRequest, "level must be caution or warning")
		return
	}
	h.alerts.Acknowledge(level)
	caution, warning := h.alerts.Masters()
	jsonResp(w, http.StatusOK, map[string]bool{
		"master_caution": caution,
		"master_warning": warning,
	})
}

// setPhase serves POST /api/v1/phase, bench control for the flight phase
// used by alert inhibits. Body: {"phase":"takeoff"}.
func (h *Handler) setPhase(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, http.StatusOK, map[string]string{"phase": h.mgr.FlightPhase().String()})
		return
	case http.MethodPost:
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Phase string `json:"phase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	phase, ok := telemetry.PhaseByName(body.Phase)
	if !ok {
		jsonErr(w, http.StatusBadRequest, "unknown flight phase")
		return
	}
	h.mgr.SetFlightPhase(phase)
	jsonResp(w, http.StatusOK, map[string]string{"phase": phase.String()})
}

// stats serves GET /api/v1/stats, the cycle and per-source counters.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	st := h.mgr.Stats()
	resp := StatsResponse{
		Initialized:  st.Initialized,
		Engines:      st.Engines,
		SampleRateHz: st.SampleRateHz,
		Cycles:       st.Cycles,
		Overruns:     st.Overruns,
		UptimeSec:    time.Since(h.started).Seconds(),
		Sources:      make([]SourceStatsResponse, 0, len(st.Sources)),
	}
	if !st.LastCycle.IsZero() {
		resp.LastCycle = st.LastCycle.UTC().Format(time.RFC3339Nano)
	}
	for _, s := range st.Sources {
		sr := SourceStatsResponse{
			ID:          int(s.ID),
			Name:        s.Name,
			Primary:     s.Primary,
			Active:      s.Active,
			Samples:     s.Samples,
			Errors:      s.Errors,
			Consecutive: s.Consecutive,
		}
		if !s.LastUpdate.IsZero() {
			sr.LastUpdate = s.LastUpdate.UTC().Format(time.RFC3339Nano)
		}
		resp.Sources = append(resp.Sources, sr)
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- builders ---------------------------------------------------------------

// BuildStatus assembles the status frame broadcast by the WebSocket
// annunciator. Engines that fail snapshot verification are reported with
// health "unknown" rather than dropped.
func BuildStatus(mgr *acquisition.Manager, eng *alerts.Engine) StatusResponse {
	caution, warning := eng.Masters()
	resp := StatusResponse{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		MasterCaution: caution,
		MasterWarning: warning,
		Highest:       eng.Highest().String(),
		ActiveAlerts:  eng.ActiveCount(),
	}
	st := mgr.Stats()
	for id := telemetry.EngineID(0); int(id) < st.Engines; id++ {
		snap, err := mgr.EngineSnapshot(id)
		if err != nil {
			resp.Engines = append(resp.Engines, EngineResponse{
				Engine: id.String(),
				Health: "unknown",
			})
			continue
		}
		resp.Engines = append(resp.Engines, toEngineSummary(&snap))
	}
	return resp
}

// BuildAlert maps an alert to its JSON representation.
func BuildAlert(a alerts.Alert) AlertResponse {
	resp := AlertResponse{
		ID:        a.ID,
		Engine:    a.Engine.String(),
		Param:     a.Param.String(),
		Level:     a.Level.String(),
		Code:      a.Code,
		Message:   a.Message,
		Value:     a.Value,
		Onset:     a.Onset.UTC().Format(time.RFC3339Nano),
		Active:    a.Active,
		Latched:   a.Latched,
		Inhibited: a.Inhibited,
	}
	if !a.Cleared.IsZero() {
		resp.Cleared = a.Cleared.UTC().Format(time.RFC3339Nano)
	}
	return resp
}

func toEngineSummary(snap *telemetry.Snapshot) EngineResponse {
	return EngineResponse{
		Engine:     snap.Engine.String(),
		Health:     snap.Health.String(),
		Phase:      snap.Phase.String(),
		SampleTime: snap.SampleTime.UTC().Format(time.RFC3339Nano),
		Version:    snap.Version,
	}
}

func toParameterResponse(id telemetry.ParamID, p telemetry.Parameter) ParameterResponse {
	resp := ParameterResponse{
		Name:   id.String(),
		Value:  p.Value,
		Raw:    p.Raw,
		Status: p.Status.String(),
		Source: int(p.Source),
	}
	if !p.SampledAt.IsZero() {
		resp.SampledAt = p.SampledAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}

// --- helpers ----------------------------------------------------------------

// parseEngineID resolves a one-based engine number from a URL segment.
func parseEngineID(s string) (telemetry.EngineID, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > telemetry.MaxEngines {
		return 0, false
	}
	return telemetry.EngineID(n - 1), true
}

// errStatus maps domain errors to HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, telemetry.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, telemetry.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, telemetry.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
