// Package memory provides in-memory implementations of the workflow store
// interfaces. They back the engine in tests and local development; production
// uses the Postgres implementations in internal/store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/openfsq/qms/backend/internal/workflow"
)

func now() time.Time {
	return time.Now().UTC()
}

// RelationshipStore is a mutex-guarded, map-backed workflow.RelationshipStore.
// It enforces the same uniqueness rules as the Postgres schema.
type RelationshipStore struct {
	mu    sync.RWMutex
	edges []workflow.Relationship
}

func NewRelationshipStore() *RelationshipStore {
	return &RelationshipStore{}
}

func (s *RelationshipStore) CreateRelationship(ctx context.Context, source, target workflow.EntityRef, relType workflow.RelationshipType, auto bool, createdBy string) (workflow.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return workflow.Relationship{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.edges {
		if e.Source == source && e.Target == target && e.Type == relType {
			return workflow.Relationship{}, &workflow.DuplicateRelationshipError{Source: source, Target: target, Type: relType}
		}
		if auto && e.AutoGenerated && e.Source == source && e.Type == relType && e.Target.Type == target.Type {
			return workflow.Relationship{}, &workflow.DuplicateRelationshipError{Source: source, Target: e.Target, Type: relType}
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		return workflow.Relationship{}, err
	}
	edge := workflow.Relationship{
		ID:            id,
		Source:        source,
		Target:        target,
		Type:          relType,
		AutoGenerated: auto,
		CreatedBy:     createdBy,
		CreatedAt:     now(),
	}
	s.edges = append(s.edges, edge)
	return edge, nil
}

func (s *RelationshipStore) ListRelationships(ctx context.Context, entityType, entityID string) ([]workflow.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := workflow.EntityRef{Type: entityType, ID: entityID}
	out := make([]workflow.Relationship, 0)
	for _, e := range s.edges {
		if e.Source == ref || e.Target == ref {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *RelationshipStore) FindAutoGenerated(ctx context.Context, source workflow.EntityRef, targetType string, relType workflow.RelationshipType) (*workflow.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.edges {
		if e.AutoGenerated && e.Source == source && e.Type == relType && e.Target.Type == targetType {
			edge := e
			return &edge, nil
		}
	}
	return nil, nil
}

func (s *RelationshipStore) DeleteRelationshipsFor(ctx context.Context, entityType, entityID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := workflow.EntityRef{Type: entityType, ID: entityID}
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != ref && e.Target != ref {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	return nil
}

// ExecutionStore is a mutex-guarded, map-backed workflow.ExecutionStore.
type ExecutionStore struct {
	mu    sync.RWMutex
	execs map[string]workflow.Execution
	order []string
}

func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		execs: make(map[string]workflow.Execution),
	}
}

func (s *ExecutionStore) CreateExecution(ctx context.Context, exec workflow.Execution) (workflow.Execution, error) {
	if err := ctx.Err(); err != nil {
		return workflow.Execution{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.execs[exec.ID] = exec
	s.order = append(s.order, exec.ID)
	return exec, nil
}

func (s *ExecutionStore) CompleteExecution(ctx context.Context, id string, target workflow.EntityRef) error {
	return s.transition(ctx, id, func(e *workflow.Execution) {
		e.Status = workflow.ExecutionCompleted
		e.Target = &target
	})
}

func (s *ExecutionStore) FailExecution(ctx context.Context, id string, reason string) error {
	return s.transition(ctx, id, func(e *workflow.Execution) {
		e.Status = workflow.ExecutionFailed
		e.Error = reason
	})
}

func (s *ExecutionStore) transition(ctx context.Context, id string, apply func(*workflow.Execution)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exec, ok := s.execs[id]
	if !ok || exec.Status != workflow.ExecutionPending {
		return nil
	}
	apply(&exec)
	s.execs[id] = exec
	return nil
}

func (s *ExecutionStore) FindCompleted(ctx context.Context, action string, source workflow.EntityRef) (*workflow.Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		e := s.execs[id]
		if e.Action == action && e.Source == source && e.Status == workflow.ExecutionCompleted {
			exec := e
			return &exec, nil
		}
	}
	return nil, nil
}

func (s *ExecutionStore) ListExecutions(ctx context.Context, entityType, entityID string) ([]workflow.Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := workflow.EntityRef{Type: entityType, ID: entityID}
	out := make([]workflow.Execution, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		e := s.execs[s.order[i]]
		if e.Source == ref || (e.Target != nil && *e.Target == ref) {
			out = append(out, e)
		}
	}
	return out, nil
}
