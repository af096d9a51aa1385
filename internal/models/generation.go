// internal/models/generation.go
package models

import "time"

type Mode string

const (
	ModePreview Mode = "preview"
	ModeFull    Mode = "full"
)

type Provenance string

const (
	ProvenanceAI       Provenance = "ai"
	ProvenanceFallback Provenance = "fallback"
)

type FailureClass string

const (
	FailureNone           FailureClass = ""
	FailureEmptyResponse  FailureClass = "empty-response"
	FailureGenericContent FailureClass = "generic-content-detected"
	FailureTransport      FailureClass = "transport-error"
	FailureTimeout        FailureClass = "timeout"
)

type GenerationResult struct {
	ID           string        `json:"id"`
	Mode         Mode          `json:"mode"`
	Content      string        `json:"content"`
	Provenance   Provenance    `json:"provenance"`
	FailureClass FailureClass  `json:"failureClass,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	Attempts     int           `json:"attempts"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// PlanRecord is the opaque record handed to external plan stores.
type PlanRecord struct {
	ID         string      `json:"id"`
	Request    TripRequest `json:"request"`
	Document   string      `json:"document"`
	Provenance Provenance  `json:"provenance"`
	Mode       Mode        `json:"mode"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// WidgetDescriptor describes one commerce block anchored under a canonical section.
type WidgetDescriptor struct {
	ID                  string `json:"id"`
	TargetSectionMarker string `json:"targetSectionMarker"`
	RenderFragment      string `json:"renderFragment"`
	DedupKey            string `json:"dedupKey"`
}
