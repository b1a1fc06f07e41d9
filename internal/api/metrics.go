package api

import (
	"net/http"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// metrics serves GET /metrics, the live counters in Prometheus text
// exposition format.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range h.buildMetricFamilies() {
		if err := enc.Encode(mf); err != nil {
			return
		}
	}
}

// buildMetricFamilies assembles the exposition from manager and alert
// engine state. Families are built by hand from the domain structs; there
// is no metrics registry.
func (h *Handler) buildMetricFamilies() []*dto.MetricFamily {
	st := h.mgr.Stats()
	caution, warning := h.alerts.Masters()

	fams := []*dto.MetricFamily{
		family("enginewatch_cycles_total", dto.MetricType_COUNTER,
			"Completed acquisition cycles.",
			counterMetric(float64(st.Cycles))),
		family("enginewatch_cycle_overruns_total", dto.MetricType_COUNTER,
			"Cycles that exceeded their period budget.",
			counterMetric(float64(st.Overruns))),
		family("enginewatch_alerts_active", dto.MetricType_GAUGE,
			"Currently active alerts.",
			gaugeMetric(float64(h.alerts.ActiveCount()))),
		family("enginewatch_master_caution", dto.MetricType_GAUGE,
			"Master caution flag (1=set).",
			gaugeMetric(boolVal(caution))),
		family("enginewatch_master_warning", dto.MetricType_GAUGE,
			"Master warning flag (1=set).",
			gaugeMetric(boolVal(warning))),
	}

	samples := family("enginewatch_source_samples_total", dto.MetricType_COUNTER,
		"Read attempts per source.")
	readErrs := family("enginewatch_source_read_errors_total", dto.MetricType_COUNTER,
		"Failed read attempts per source.")
	active := family("enginewatch_source_active", dto.MetricType_GAUGE,
		"Source availability (1=active, 0=deactivated).")
	for _, s := range st.Sources {
		samples.Metric = append(samples.Metric, counterMetric(float64(s.Samples), "source", s.Name))
		readErrs.Metric = append(readErrs.Metric, counterMetric(float64(s.Errors), "source", s.Name))
		active.Metric = append(active.Metric, gaugeMetric(boolVal(s.Active), "source", s.Name))
	}
	fams = append(fams, samples, readErrs, active)

	health := family("enginewatch_engine_health", dto.MetricType_GAUGE,
		"Per-engine health level (0=normal .. 4=critical).")
	values := family("enginewatch_param_value", dto.MetricType_GAUGE,
		"Latest engineering-unit parameter values.")
	for id := telemetry.EngineID(0); int(id) < st.Engines; id++ {
		snap, err := h.mgr.EngineSnapshot(id)
		if err != nil {
			continue
		}
		eng := strconv.Itoa(id.Number())
		health.Metric = append(health.Metric, gaugeMetric(float64(snap.Health), "engine", eng))
		for p := telemetry.ParamID(0); p.Valid(); p++ {
			param := snap.Parameters[p]
			if param.Status == telemetry.StatusNoComputedData {
				continue
			}
			values.Metric = append(values.Metric,
				gaugeMetric(param.Value, "engine", eng, "param", p.String()))
		}
	}
	fams = append(fams, health, values)

	// The text encoder rejects a family with no metrics, which happens for
	// the labeled families before Init.
	out := fams[:0]
	for _, mf := range fams {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}

// --- dto constructors -------------------------------------------------------

func family(name string, t dto.MetricType, help string, ms ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   t.Enum(),
		Metric: ms,
	}
}

func counterMetric(v float64, labels ...string) *dto.Metric {
	return &dto.Metric{
		Label:   labelPairs(labels),
		Counter: &dto.Counter{Value: proto.Float64(v)},
	}
}

func gaugeMetric(v float64, labels ...string) *dto.Metric {
	return &dto.Metric{
		Label: labelPairs(labels),
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	}
}

// labelPairs builds LabelPair values from alternating name/value strings.
func labelPairs(kv []string) []*dto.LabelPair {
	if len(kv) == 0 {
		return nil
	}
	out := make([]*dto.LabelPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, &dto.LabelPair{
			Name:  proto.String(kv[i]),
			Value: proto.String(kv[i+1]),
		})
	}
	return out
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
