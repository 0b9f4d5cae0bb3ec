// Package records defines the quality-record modules the workflow engine can
// create and link: audit findings, non-conformances, CAPAs, complaints and
// training assignments. Creation payloads are a closed set of typed variants
// keyed by module, validated before anything is written.
package records

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator"

	"github.com/openfsq/qms/backend/internal/workflow"
)

var validate = validator.New()

// Provenance carries the origin of an engine-created record. The engine
// merges these fields into the payload before dispatch; manually created
// records leave them empty.
type Provenance struct {
	SourceTitle       string `json:"source_title,omitempty"`
	GeneratedFromType string `json:"generated_from_type,omitempty"`
	GeneratedFromID   string `json:"generated_from_id,omitempty"`
}

// AuditFindingPayload creates an audit finding.
type AuditFindingPayload struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	AuditRef    string `json:"audit_ref,omitempty"`
	Severity    string `json:"severity" validate:"required,oneof=minor major critical"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	Provenance
}

// NonConformancePayload creates a non-conformance.
type NonConformancePayload struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Severity    string     `json:"severity" validate:"required,oneof=minor major critical"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Provenance
}

// CAPAPayload creates a corrective/preventive action.
type CAPAPayload struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Provenance
}

// ComplaintPayload creates a customer complaint.
type ComplaintPayload struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Provenance
}

// TrainingPayload creates a training assignment.
type TrainingPayload struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assigned_to" validate:"required"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Provenance
}

// InitialStatus is the status a freshly created record of the module starts in.
func InitialStatus(module string) string {
	switch module {
	case workflow.ModuleComplaint:
		return "under-investigation"
	case workflow.ModuleTraining:
		return "assigned"
	default:
		return "open"
	}
}

// Decode converts an untyped payload into the module's typed variant and
// validates it. Unknown modules and payloads failing validation are rejected
// before any storage write happens.
func Decode(module string, payload map[string]any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload for %s: %w", module, err)
	}

	var target any
	switch module {
	case workflow.ModuleAuditFinding:
		target = &AuditFindingPayload{}
	case workflow.ModuleNonConformance:
		target = &NonConformancePayload{}
	case workflow.ModuleCAPA:
		target = &CAPAPayload{}
	case workflow.ModuleComplaint:
		target = &ComplaintPayload{}
	case workflow.ModuleTraining:
		target = &TrainingPayload{}
	default:
		return nil, fmt.Errorf("unknown record module %q", module)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("invalid payload for %s: %w", module, err)
	}
	if err := validate.Struct(target); err != nil {
		return nil, fmt.Errorf("invalid payload for %s: %w", module, err)
	}
	return target, nil
}
