package api

import (
	"fmt"
	"strings"

	"github.com/enginewatch/enginewatch/internal/acquisition"
	"github.com/enginewatch/enginewatch/internal/telemetry"
)

// DiagnosticHint is one human-readable insight about an engine's condition.
// Ground crews see these on the maintenance page; Detail is written in
// plain English with a concrete next action.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the hint chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives maintenance hints from an engine snapshot and
// the source counters, most serious first.
func computeDiagnostics(snap *telemetry.Snapshot, sources []acquisition.SourceStats) []DiagnosticHint {
	var hints []DiagnosticHint

	// First cycle not yet complete.
	if snap.Version <= 1 {
		hints = append(hints, DiagnosticHint{
			Key:   "awaiting_data",
			Level: "info",
			Title: "Awaiting data",
			Detail: "The monitor has initialized but has not completed an " +
				"acquisition cycle for this engine yet. All parameters show " +
				"no-computed-data until the first cycle lands, typically within " +
				"one sample period. No action needed.",
		})
		return hints
	}

	// Offline sources.
	for _, src := range sources {
		if src.Active {
			continue
		}
		detail := fmt.Sprintf(
			"Data source %q stopped responding and was taken offline after %d "+
				"consecutive read failures. Parameters mapped to it fall back to "+
				"the backup bus where one is configured; parameters without a "+
				"backup will go stale. Check the bus coupler, receiver wiring, "+
				"and terminating resistors, then restart the monitor to bring "+
				"the source back.",
			src.Name, src.Consecutive,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "source_offline_" + strings.ToLower(src.Name),
			Level:  "critical",
			Title:  fmt.Sprintf("%s offline", src.Name),
			Detail: detail,
		})
	}

	// Failed parameters.
	for p := telemetry.ParamID(0); p.Valid(); p++ {
		param := snap.Parameters[p]
		if param.Status != telemetry.StatusFailed {
			continue
		}
		level := "warning"
		if p == telemetry.ParamN1 || p == telemetry.ParamEGT || p == telemetry.ParamOilPressure {
			level = "critical"
		}
		v := param.Value
		detail := fmt.Sprintf(
			"%s reads %.2f, which is outside its plausible sensor range or was "+
				"flagged as a failure by the source. The value is excluded from "+
				"health assessment until a valid reading arrives. If it persists "+
				"across flights, suspect the transducer or its signal conditioning "+
				"rather than the engine itself.",
			p.String(), param.Value,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "param_failed_" + strings.ToLower(p.String()),
			Level:  level,
			Title:  fmt.Sprintf("%s invalid", p.String()),
			Detail: detail,
			Value:  &v,
		})
	}

	// Stale parameters.
	var stale []string
	for p := telemetry.ParamID(0); p.Valid(); p++ {
		if snap.Parameters[p].Status == telemetry.StatusStale {
			stale = append(stale, p.String())
		}
	}
	if len(stale) > 0 {
		n := float64(len(stale))
		detail := fmt.Sprintf(
			"%d parameter(s) have not updated within the staleness window: %s. "+
				"The last known values are still displayed but are not trusted "+
				"for alerting. Intermittent staleness usually points at a noisy "+
				"bus or a loose connector; continuous staleness at a dead source.",
			len(stale), strings.Join(stale, ", "),
		)
		hints = append(hints, DiagnosticHint{
			Key:    "stale_params",
			Level:  "warning",
			Title:  fmt.Sprintf("%d stale", len(stale)),
			Detail: detail,
			Value:  &n,
		})
	}

	hints = append(hints, vibrationHints(snap)...)

	// Oil pressure margin.
	if op := snap.Parameters[telemetry.ParamOilPressure]; op.Status == telemetry.StatusValid &&
		op.Value > 25 && op.Value < 30 {
		v := op.Value
		detail := fmt.Sprintf(
			"Oil pressure is %.1f psi, inside normal limits but within 5 psi of "+
				"the caution threshold. Worth comparing against the other engine "+
				"at the same power setting. A slow decline over several flights "+
				"suggests a wearing pump or a clogging filter; check the filter "+
				"differential pressure indicator at the next opportunity.",
			op.Value,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "oil_press_margin",
			Level:  "info",
			Title:  "Oil press margin low",
			Detail: detail,
			Value:  &v,
		})
	}

	// Intermittent sources.
	for _, src := range sources {
		if !src.Active || src.Consecutive == 0 {
			continue
		}
		detail := fmt.Sprintf(
			"Source %q is answering but has %d consecutive failed reads right "+
				"now (%d errors over %d samples total). Below the deactivation "+
				"threshold this is tolerated, but a rising error count is the "+
				"usual precursor to losing the source entirely.",
			src.Name, src.Consecutive, src.Errors, src.Samples,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "source_intermittent_" + strings.ToLower(src.Name),
			Level:  "info",
			Title:  fmt.Sprintf("%s intermittent", src.Name),
			Detail: detail,
		})
	}

	// All clear.
	if len(hints) == 0 {
		detail := fmt.Sprintf(
			"All %d parameters are valid and inside limits, and every data "+
				"source is healthy. Health state is %q. Trend monitoring "+
				"continues in the background; nothing requires attention.",
			telemetry.ParamCount, snap.Health.String(),
		)
		hints = append(hints, DiagnosticHint{
			Key:    "healthy",
			Level:  "ok",
			Title:  "All clear",
			Detail: detail,
		})
	}

	return hints
}

// vibrationHints flags vibration channels that are valid and elevated but
// still below their caution thresholds.
func vibrationHints(snap *telemetry.Snapshot) []DiagnosticHint {
	var hints []DiagnosticHint

	type vibCheck struct {
		param   telemetry.ParamID
		warn    float64
		caution float64
		rotor   string
	}
	checks := []vibCheck{
		{telemetry.ParamVibFan, 2.4, 3.0, "fan"},
		{telemetry.ParamVibCore, 3.2, 4.0, "core"},
	}

	for _, c := range checks {
		p := snap.Parameters[c.param]
		if p.Status != telemetry.StatusValid || p.Value < c.warn || p.Value >= c.caution {
			continue
		}
		v := p.Value
		detail := fmt.Sprintf(
			"%s vibration is %.2f units, elevated but still below the %.1f "+
				"caution threshold. On the %s rotor this is often imbalance from "+
				"blade erosion or a shifted blade after a bird encounter. Compare "+
				"against the trend for this engine; a step change warrants a fan "+
				"blade inspection before it reaches alert levels.",
			c.param.String(), p.Value, c.caution, c.rotor,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "vib_elevated_" + c.rotor,
			Level:  "info",
			Title:  fmt.Sprintf("%s vib elevated", strings.ToUpper(c.rotor[:1])+c.rotor[1:]),
			Detail: detail,
			Value:  &v,
		})
	}
	return hints
}
