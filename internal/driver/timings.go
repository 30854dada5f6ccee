package driver

import (
	"encoding/json"
	"fmt"

	"nihil/internal/diag"
	"nihil/internal/observ"
	"nihil/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Unit    string               `json:"unit,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic attaches the phase report to the bag as an
// info entry, message for humans and a JSON note for tooling. A full
// bag grows by one so the report is never the entry that gets cut.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "check"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	scope := payload.Kind
	if payload.Unit != "" {
		scope += " " + payload.Unit
	}
	entry := diag.New(
		diag.SevInfo,
		diag.ObsTimings,
		source.Span{},
		fmt.Sprintf("timings (%s): total %.2f ms", scope, payload.TotalMS),
	).WithNote(source.Span{}, string(data))

	if !bag.Add(entry) {
		grown := diag.NewBag(bag.Len() + 1)
		grown.Add(entry)
		bag.Merge(grown)
	}
}
