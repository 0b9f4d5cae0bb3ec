package workflow

import "context"

// RelationshipStore persists relationship edges. Implementations must enforce
// uniqueness of the (source, target, type) tuple and of one auto-generated
// edge per (source, type) at the storage layer, so concurrent triggers cannot
// both commit.
type RelationshipStore interface {
	// CreateRelationship writes a new edge. It returns a
	// *DuplicateRelationshipError if the tuple already exists, or if auto is
	// set and the source already owns an auto-generated edge of this type to
	// the target's module.
	CreateRelationship(ctx context.Context, source, target EntityRef, relType RelationshipType, auto bool, createdBy string) (Relationship, error)

	// ListRelationships returns every edge where the entity appears as source
	// or target, newest first. A record with no edges yields an empty slice.
	ListRelationships(ctx context.Context, entityType, entityID string) ([]Relationship, error)

	// FindAutoGenerated returns the auto-generated edge of the given type from
	// source to a record of targetType, or nil if none exists. Target module
	// is part of the key: one source can own generated-from edges to both a
	// CAPA and a non-conformance, but never two to the same module.
	FindAutoGenerated(ctx context.Context, source EntityRef, targetType string, relType RelationshipType) (*Relationship, error)

	// DeleteRelationshipsFor removes all edges touching the entity. Called by
	// record modules on record deletion; idempotent.
	DeleteRelationshipsFor(ctx context.Context, entityType, entityID string) error
}

// ExecutionStore persists the workflow audit trail. Executions are append-only
// apart from the single pending -> completed/failed status transition.
type ExecutionStore interface {
	CreateExecution(ctx context.Context, exec Execution) (Execution, error)
	CompleteExecution(ctx context.Context, id string, target EntityRef) error
	FailExecution(ctx context.Context, id string, reason string) error

	// FindCompleted returns the completed execution for the given action and
	// source, or nil if the action never completed for that source.
	FindCompleted(ctx context.Context, action string, source EntityRef) (*Execution, error)

	// ListExecutions returns executions whose source or target is the given
	// entity, newest first.
	ListExecutions(ctx context.Context, entityType, entityID string) ([]Execution, error)
}

// RecordCreator is the narrow creation contract a target record module exposes
// to the engine. Any returned error is treated as a creation failure.
type RecordCreator interface {
	Create(ctx context.Context, payload map[string]any, actor string) (RecordRef, error)
}

// Notifier receives completed executions for fan-out to stakeholders.
// Notification is a side channel: implementations may fail without affecting
// the outcome of the trigger.
type Notifier interface {
	NotifyStakeholders(ctx context.Context, exec Execution) error
}
