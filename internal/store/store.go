// Package store implements the workflow store interfaces on Postgres via the
// internal/db query layer. The relationships table carries the uniqueness
// constraints that make concurrent triggers safe; unique violations are mapped
// to workflow.DuplicateRelationshipError here.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/openfsq/qms/backend/internal/db"
	"github.com/openfsq/qms/backend/internal/workflow"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// RelationshipStore is the Postgres workflow.RelationshipStore.
type RelationshipStore struct {
	conn *pgxpool.Pool
}

func NewRelationshipStore(conn *pgxpool.Pool) *RelationshipStore {
	return &RelationshipStore{conn: conn}
}

func (s *RelationshipStore) CreateRelationship(ctx context.Context, source, target workflow.EntityRef, relType workflow.RelationshipType, auto bool, createdBy string) (workflow.Relationship, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return workflow.Relationship{}, err
	}

	q := db.New(s.conn)
	row, err := q.AddRelationship(ctx, db.AddRelationshipParams{
		PublicID:         publicID,
		SourceType:       source.Type,
		SourceID:         source.ID,
		TargetType:       target.Type,
		TargetID:         target.ID,
		RelationshipType: string(relType),
		AutoGenerated:    auto,
		CreatedBy:        createdBy,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return workflow.Relationship{}, &workflow.DuplicateRelationshipError{Source: source, Target: target, Type: relType}
		}
		return workflow.Relationship{}, err
	}
	return toRelationship(row), nil
}

func (s *RelationshipStore) ListRelationships(ctx context.Context, entityType, entityID string) ([]workflow.Relationship, error) {
	rows, err := db.New(s.conn).GetRelationshipsForEntity(ctx, db.GetRelationshipsForEntityParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		return nil, err
	}

	out := make([]workflow.Relationship, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRelationship(row))
	}
	return out, nil
}

func (s *RelationshipStore) FindAutoGenerated(ctx context.Context, source workflow.EntityRef, targetType string, relType workflow.RelationshipType) (*workflow.Relationship, error) {
	row, err := db.New(s.conn).FindAutoGeneratedRelationship(ctx, db.FindAutoGeneratedRelationshipParams{
		SourceType:       source.Type,
		SourceID:         source.ID,
		TargetType:       targetType,
		RelationshipType: string(relType),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rel := toRelationship(row)
	return &rel, nil
}

func (s *RelationshipStore) DeleteRelationshipsFor(ctx context.Context, entityType, entityID string) error {
	return db.New(s.conn).DeleteRelationshipsForEntity(ctx, db.DeleteRelationshipsForEntityParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
}

func toRelationship(row db.Relationship) workflow.Relationship {
	return workflow.Relationship{
		ID:            row.PublicID,
		Source:        workflow.EntityRef{Type: row.SourceType, ID: row.SourceID},
		Target:        workflow.EntityRef{Type: row.TargetType, ID: row.TargetID},
		Type:          workflow.RelationshipType(row.RelationshipType),
		AutoGenerated: row.AutoGenerated,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
	}
}

// ExecutionStore is the Postgres workflow.ExecutionStore.
type ExecutionStore struct {
	conn *pgxpool.Pool
}

func NewExecutionStore(conn *pgxpool.Pool) *ExecutionStore {
	return &ExecutionStore{conn: conn}
}

func (s *ExecutionStore) CreateExecution(ctx context.Context, exec workflow.Execution) (workflow.Execution, error) {
	payload, err := json.Marshal(exec.Payload)
	if err != nil {
		return workflow.Execution{}, err
	}

	row, err := db.New(s.conn).AddWorkflowExecution(ctx, db.AddWorkflowExecutionParams{
		PublicID:    exec.ID,
		Action:      exec.Action,
		SourceType:  exec.Source.Type,
		SourceID:    exec.Source.ID,
		Payload:     payload,
		Status:      string(exec.Status),
		TriggeredBy: exec.TriggeredBy,
		TriggeredAt: exec.TriggeredAt,
	})
	if err != nil {
		return workflow.Execution{}, err
	}
	return toExecution(row), nil
}

func (s *ExecutionStore) CompleteExecution(ctx context.Context, id string, target workflow.EntityRef) error {
	return db.New(s.conn).CompleteWorkflowExecution(ctx, db.CompleteWorkflowExecutionParams{
		PublicID:   id,
		TargetType: target.Type,
		TargetID:   target.ID,
	})
}

func (s *ExecutionStore) FailExecution(ctx context.Context, id string, reason string) error {
	return db.New(s.conn).FailWorkflowExecution(ctx, db.FailWorkflowExecutionParams{
		PublicID: id,
		Error:    reason,
	})
}

func (s *ExecutionStore) FindCompleted(ctx context.Context, action string, source workflow.EntityRef) (*workflow.Execution, error) {
	row, err := db.New(s.conn).FindCompletedExecution(ctx, db.FindCompletedExecutionParams{
		Action:     action,
		SourceType: source.Type,
		SourceID:   source.ID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	exec := toExecution(row)
	return &exec, nil
}

func (s *ExecutionStore) ListExecutions(ctx context.Context, entityType, entityID string) ([]workflow.Execution, error) {
	rows, err := db.New(s.conn).GetExecutionsForEntity(ctx, db.GetExecutionsForEntityParams{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		return nil, err
	}

	out := make([]workflow.Execution, 0, len(rows))
	for _, row := range rows {
		out = append(out, toExecution(row))
	}
	return out, nil
}

func toExecution(row db.WorkflowExecution) workflow.Execution {
	exec := workflow.Execution{
		ID:          row.PublicID,
		Action:      row.Action,
		Source:      workflow.EntityRef{Type: row.SourceType, ID: row.SourceID},
		Status:      workflow.ExecutionStatus(row.Status),
		TriggeredBy: row.TriggeredBy,
		TriggeredAt: row.TriggeredAt,
	}
	if row.TargetType != nil && row.TargetID != nil {
		exec.Target = &workflow.EntityRef{Type: *row.TargetType, ID: *row.TargetID}
	}
	if row.Error != nil {
		exec.Error = *row.Error
	}
	if len(row.Payload) > 0 {
		_ = json.Unmarshal(row.Payload, &exec.Payload)
	}
	return exec
}
