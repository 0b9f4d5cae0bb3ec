package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/openfsq/qms/backend/pkg/logger"
)

// Engine executes workflow actions: it resolves an action label through the
// rule table, creates the target record, writes the relationship edge and
// records the execution in the audit trail.
//
// Triggering is idempotent per (source, action): the engine checks for an
// existing auto-generated edge of the resolved type before creating anything,
// and the relationship store's uniqueness constraint closes the race between
// concurrent triggers that both pass the check.
type Engine struct {
	rules         *RuleTable
	relationships RelationshipStore
	executions    ExecutionStore
	creators      map[string]RecordCreator
	notifier      Notifier
}

// EngineParams contains the collaborators an Engine is constructed with.
// Notifier may be nil; everything else is required.
type EngineParams struct {
	Rules         *RuleTable
	Relationships RelationshipStore
	Executions    ExecutionStore
	Creators      map[string]RecordCreator
	Notifier      Notifier
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Rules == nil {
		return nil, errors.New("engine requires a rule table")
	}
	if params.Relationships == nil || params.Executions == nil {
		return nil, errors.New("engine requires relationship and execution stores")
	}
	if len(params.Creators) == 0 {
		return nil, errors.New("engine requires at least one record creator")
	}
	return &Engine{
		rules:         params.Rules,
		relationships: params.Relationships,
		executions:    params.Executions,
		creators:      params.Creators,
		notifier:      params.Notifier,
	}, nil
}

// Suggestions exposes the rule table for UI consumption.
func (e *Engine) Suggestions(sourceModule, sourceStatus string, attrs map[string]any) []SuggestedAction {
	return e.rules.Suggestions(sourceModule, sourceStatus, attrs)
}

// ListRelationships exposes the relationship store for UI consumption.
func (e *Engine) ListRelationships(ctx context.Context, entityType, entityID string) ([]Relationship, error) {
	return e.relationships.ListRelationships(ctx, entityType, entityID)
}

// ListExecutions exposes the audit trail for UI consumption.
func (e *Engine) ListExecutions(ctx context.Context, entityType, entityID string) ([]Execution, error) {
	return e.executions.ListExecutions(ctx, entityType, entityID)
}

// Trigger fires actionLabel against the source record. On success the returned
// execution is completed and carries the target reference, and created reports
// whether this call did the work: re-triggering a (source, action) pair that
// already completed returns the prior execution with created false instead of
// creating a second target.
//
// Failure to create the target record returns a *TargetCreationError and
// leaves only a failed execution behind: no edge is written without a real
// target record.
func (e *Engine) Trigger(ctx context.Context, actionLabel string, source EntityRef, payload map[string]any, actor string) (Execution, bool, error) {
	action, err := e.rules.Resolve(source.Type, actionLabel)
	if err != nil {
		return Execution{}, false, err
	}

	creator, ok := e.creators[action.TargetModule]
	if !ok {
		return Execution{}, false, &UnknownActionError{Action: actionLabel, SourceModule: source.Type}
	}

	// Idempotent pre-check: an auto-generated edge of this type into the
	// target module means the action already ran for this source.
	if prior, err := e.findPrior(ctx, actionLabel, source, action); err != nil {
		return Execution{}, false, err
	} else if prior != nil {
		logger.Debug("[Workflow] Trigger already completed", "action", actionLabel, "source_type", source.Type, "source_id", source.ID)
		return *prior, false, nil
	}

	execID, err := gonanoid.New()
	if err != nil {
		return Execution{}, false, err
	}
	exec, err := e.executions.CreateExecution(ctx, Execution{
		ID:          execID,
		Action:      actionLabel,
		Source:      source,
		Payload:     payload,
		Status:      ExecutionPending,
		TriggeredBy: actor,
		TriggeredAt: time.Now().UTC(),
	})
	if err != nil {
		return Execution{}, false, fmt.Errorf("failed to record execution: %w", err)
	}

	target, err := creator.Create(ctx, withProvenance(payload, source), actor)
	if err != nil {
		if failErr := e.executions.FailExecution(ctx, exec.ID, err.Error()); failErr != nil {
			logger.Error("[Workflow] Failed to mark execution failed", "execution_id", exec.ID, "err", failErr)
		}
		return Execution{}, false, &TargetCreationError{Action: actionLabel, Source: source, Err: err}
	}

	targetRef := EntityRef{Type: action.TargetModule, ID: target.ID}
	_, err = e.relationships.CreateRelationship(ctx, source, targetRef, action.RelationshipType, true, actor)
	if err != nil {
		var dup *DuplicateRelationshipError
		if errors.As(err, &dup) {
			// Lost the race to a concurrent trigger. The winner's edge and
			// target stand; our target record is surplus and our execution is
			// closed as failed so the trail explains the orphan.
			if failErr := e.executions.FailExecution(ctx, exec.ID, "duplicate trigger: "+err.Error()); failErr != nil {
				logger.Error("[Workflow] Failed to mark execution failed", "execution_id", exec.ID, "err", failErr)
			}
			if prior, findErr := e.findPrior(ctx, actionLabel, source, action); findErr == nil && prior != nil {
				return *prior, false, nil
			}
			return Execution{}, false, err
		}
		if failErr := e.executions.FailExecution(ctx, exec.ID, err.Error()); failErr != nil {
			logger.Error("[Workflow] Failed to mark execution failed", "execution_id", exec.ID, "err", failErr)
		}
		return Execution{}, false, fmt.Errorf("failed to create relationship: %w", err)
	}

	if err := e.executions.CompleteExecution(ctx, exec.ID, targetRef); err != nil {
		return Execution{}, false, fmt.Errorf("failed to complete execution: %w", err)
	}
	exec.Status = ExecutionCompleted
	exec.Target = &targetRef

	if e.notifier != nil {
		if err := e.notifier.NotifyStakeholders(ctx, exec); err != nil {
			logger.Error("[Workflow] Failed to notify stakeholders", "execution_id", exec.ID, "err", err)
		}
	}

	logger.Info(
		"[Workflow] Action completed",
		"action", actionLabel,
		"source_type", source.Type,
		"source_id", source.ID,
		"target_type", targetRef.Type,
		"target_id", targetRef.ID,
	)
	return exec, true, nil
}

// Link records a manual relationship between two existing records. Manual
// links bypass the execution trail and carry no idempotent-trigger semantics
// beyond tuple uniqueness.
func (e *Engine) Link(ctx context.Context, source, target EntityRef, relType RelationshipType, actor string) (Relationship, error) {
	return e.relationships.CreateRelationship(ctx, source, target, relType, false, actor)
}

func (e *Engine) findPrior(ctx context.Context, actionLabel string, source EntityRef, action SuggestedAction) (*Execution, error) {
	edge, err := e.relationships.FindAutoGenerated(ctx, source, action.TargetModule, action.RelationshipType)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing relationships: %w", err)
	}
	if edge == nil {
		return nil, nil
	}

	prior, err := e.executions.FindCompleted(ctx, actionLabel, source)
	if err != nil {
		return nil, fmt.Errorf("failed to look up prior execution: %w", err)
	}
	if prior != nil {
		return prior, nil
	}

	// Edge exists but no execution: synthesize a completed result from the
	// edge so the caller still gets the existing target back.
	return &Execution{
		Action:      actionLabel,
		Source:      source,
		Target:      &edge.Target,
		Status:      ExecutionCompleted,
		TriggeredAt: edge.CreatedAt,
	}, nil
}

func withProvenance(payload map[string]any, source EntityRef) map[string]any {
	merged := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		merged[k] = v
	}
	merged["generated_from_type"] = source.Type
	merged["generated_from_id"] = source.ID
	return merged
}
