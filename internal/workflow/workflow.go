// Package workflow contains the cross-module workflow engine: a declarative
// rule table that maps quality records to suggested follow-up actions, and an
// engine that executes those actions by creating the target record and linking
// it to its source with a typed relationship edge.
//
// The package has no persistence of its own. Storage is supplied through the
// interfaces in store.go, so the engine can run against Postgres in production
// and against the in-memory implementations in workflow/memory under test.
package workflow

import "time"

// Known quality-record modules.
const (
	ModuleAuditFinding   = "audit-finding"
	ModuleNonConformance = "non-conformance"
	ModuleCAPA           = "capa"
	ModuleComplaint      = "complaint"
	ModuleTraining       = "training-assignment"
)

// RelationshipType classifies a directed edge between two quality records.
type RelationshipType string

const (
	RelationshipGeneratedFrom RelationshipType = "generated-from"
	RelationshipRequires      RelationshipType = "requires"
	RelationshipReferences    RelationshipType = "references"
	RelationshipTriggers      RelationshipType = "triggers"
)

// EntityRef identifies a quality record by module and public ID.
type EntityRef struct {
	Type string `json:"type" validate:"required"`
	ID   string `json:"id" validate:"required"`
}

// Relationship is a typed, directed edge between two quality records.
// Edges are immutable once written; they are removed only when an endpoint
// record is deleted.
type Relationship struct {
	ID            string           `json:"id"`
	Source        EntityRef        `json:"source"`
	Target        EntityRef        `json:"target"`
	Type          RelationshipType `json:"relationship_type"`
	AutoGenerated bool             `json:"auto_generated"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ExecutionStatus is the state of a fired workflow action.
// pending -> completed and pending -> failed are the only transitions.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// Execution is the audit-trail record of one fired workflow action.
type Execution struct {
	ID          string          `json:"id"`
	Action      string          `json:"action"`
	Source      EntityRef       `json:"source"`
	Target      *EntityRef      `json:"target,omitempty"`
	Payload     map[string]any  `json:"payload,omitempty"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	TriggeredBy string          `json:"triggered_by"`
	TriggeredAt time.Time       `json:"triggered_at"`
}

// SuggestedAction is one follow-up action the rule table recommends for a
// source record, together with the module and edge type the action resolves to.
type SuggestedAction struct {
	Label            string           `json:"label"`
	TargetModule     string           `json:"target_module"`
	RelationshipType RelationshipType `json:"relationship_type"`
}

// RecordRef is the minimal result of creating a target record.
type RecordRef struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
