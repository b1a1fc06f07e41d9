package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State          string `json:"state"`
	EngineCount    int    `json:"engine_count"`
	NormalCount    int    `json:"normal_count"`
	MonitorCount   int    `json:"monitor_count"`
	CautionCount   int    `json:"caution_count"`
	ActionCount    int    `json:"action_required_count"`
	CriticalCount  int    `json:"critical_count"`
	MasterCaution  bool   `json:"master_caution"`
	MasterWarning  bool   `json:"master_warning"`
	ActiveAlerts   int    `json:"active_alerts"`
	SampleRateHz   int    `json:"sample_rate_hz"`
	CyclesComplete uint64 `json:"cycles_complete"`
}

// EngineResponse is one engine entry in GET /api/v1/engines or
// GET /api/v1/engines/{id}. Parameters and Diagnostics are populated on
// the detail endpoint only.
type EngineResponse struct {
	Engine      string              `json:"engine"`
	Health      string              `json:"health"`
	Phase       string              `json:"phase"`
	SampleTime  string              `json:"sample_time"` // RFC3339Nano
	Version     uint64              `json:"version"`
	Parameters  []ParameterResponse `json:"parameters,omitempty"`
	Diagnostics []DiagnosticHint    `json:"diagnostics,omitempty"`
}

// ParameterResponse is one monitored parameter's latest state.
type ParameterResponse struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Raw       int32   `json:"raw"`
	Status    string  `json:"status"`
	Source    int     `json:"source"`
	SampledAt string  `json:"sampled_at"` // RFC3339Nano
}

// AlertResponse is one alert in GET /api/v1/alerts.
type AlertResponse struct {
	ID        uint32  `json:"id"`
	Engine    string  `json:"engine"`
	Param     string  `json:"param"`
	Level     string  `json:"level"`
	Code      uint16  `json:"code"`
	Message   string  `json:"message"`
	Value     float64 `json:"value"`
	Onset     string  `json:"onset"` // RFC3339Nano
	Cleared   string  `json:"cleared,omitempty"`
	Active    bool    `json:"active"`
	Latched   bool    `json:"latched"`
	Inhibited bool    `json:"inhibited"`
}

// AlertsResponse is the payload for GET /api/v1/alerts.
type AlertsResponse struct {
	MasterCaution bool            `json:"master_caution"`
	MasterWarning bool            `json:"master_warning"`
	Highest       string          `json:"highest"`
	Active        []AlertResponse `json:"active"`
	History       []AlertResponse `json:"history,omitempty"`
}

// SourceStatsResponse is one source's counters in GET /api/v1/stats.
type SourceStatsResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Primary     bool   `json:"primary"`
	Active      bool   `json:"active"`
	Samples     uint64 `json:"samples"`
	Errors      uint64 `json:"errors"`
	Consecutive int    `json:"consecutive_failures"`
	LastUpdate  string `json:"last_update,omitempty"` // RFC3339Nano
}

// StatsResponse is the payload for GET /api/v1/stats.
type StatsResponse struct {
	Initialized  bool                  `json:"initialized"`
	Engines      int                   `json:"engines"`
	SampleRateHz int                   `json:"sample_rate_hz"`
	Cycles       uint64                `json:"cycles"`
	Overruns     uint64                `json:"overruns"`
	LastCycle    string                `json:"last_cycle,omitempty"` // RFC3339Nano
	UptimeSec    float64               `json:"uptime_sec"`
	Sources      []SourceStatsResponse `json:"sources"`
}

// StatusResponse is the periodic status frame pushed over the WebSocket
// annunciator and reused by clients that poll GET /api/v1/health.
type StatusResponse struct {
	GeneratedAt   string           `json:"generated_at"` // RFC3339
	MasterCaution bool             `json:"master_caution"`
	MasterWarning bool             `json:"master_warning"`
	Highest       string           `json:"highest"`
	ActiveAlerts  int              `json:"active_alerts"`
	Engines       []EngineResponse `json:"engines"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
