package db

import (
	"context"
	"encoding/json"
	"time"
)

const addWorkflowExecution = `
INSERT INTO workflow_executions (
	public_id, action, source_type, source_id, payload, status, triggered_by, triggered_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, public_id, action, source_type, source_id, target_type, target_id,
	payload, status, error, triggered_by, triggered_at
`

type AddWorkflowExecutionParams struct {
	PublicID    string
	Action      string
	SourceType  string
	SourceID    string
	Payload     json.RawMessage
	Status      string
	TriggeredBy string
	TriggeredAt time.Time
}

func (q *Queries) AddWorkflowExecution(ctx context.Context, arg AddWorkflowExecutionParams) (WorkflowExecution, error) {
	row := q.db.QueryRow(ctx, addWorkflowExecution,
		arg.PublicID,
		arg.Action,
		arg.SourceType,
		arg.SourceID,
		arg.Payload,
		arg.Status,
		arg.TriggeredBy,
		arg.TriggeredAt,
	)
	return scanExecution(row)
}

const completeWorkflowExecution = `
UPDATE workflow_executions
SET status = 'completed', target_type = $2, target_id = $3
WHERE public_id = $1 AND status = 'pending'
`

type CompleteWorkflowExecutionParams struct {
	PublicID   string
	TargetType string
	TargetID   string
}

func (q *Queries) CompleteWorkflowExecution(ctx context.Context, arg CompleteWorkflowExecutionParams) error {
	_, err := q.db.Exec(ctx, completeWorkflowExecution, arg.PublicID, arg.TargetType, arg.TargetID)
	return err
}

const failWorkflowExecution = `
UPDATE workflow_executions
SET status = 'failed', error = $2
WHERE public_id = $1 AND status = 'pending'
`

type FailWorkflowExecutionParams struct {
	PublicID string
	Error    string
}

func (q *Queries) FailWorkflowExecution(ctx context.Context, arg FailWorkflowExecutionParams) error {
	_, err := q.db.Exec(ctx, failWorkflowExecution, arg.PublicID, arg.Error)
	return err
}

const findCompletedExecution = `
SELECT id, public_id, action, source_type, source_id, target_type, target_id,
	payload, status, error, triggered_by, triggered_at
FROM workflow_executions
WHERE action = $1 AND source_type = $2 AND source_id = $3 AND status = 'completed'
ORDER BY triggered_at ASC
LIMIT 1
`

type FindCompletedExecutionParams struct {
	Action     string
	SourceType string
	SourceID   string
}

func (q *Queries) FindCompletedExecution(ctx context.Context, arg FindCompletedExecutionParams) (WorkflowExecution, error) {
	row := q.db.QueryRow(ctx, findCompletedExecution, arg.Action, arg.SourceType, arg.SourceID)
	return scanExecution(row)
}

const getExecutionsForEntity = `
SELECT id, public_id, action, source_type, source_id, target_type, target_id,
	payload, status, error, triggered_by, triggered_at
FROM workflow_executions
WHERE (source_type = $1 AND source_id = $2)
   OR (target_type = $1 AND target_id = $2)
ORDER BY triggered_at DESC, id DESC
`

type GetExecutionsForEntityParams struct {
	EntityType string
	EntityID   string
}

func (q *Queries) GetExecutionsForEntity(ctx context.Context, arg GetExecutionsForEntityParams) ([]WorkflowExecution, error) {
	rows, err := q.db.Query(ctx, getExecutionsForEntity, arg.EntityType, arg.EntityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]WorkflowExecution, 0)
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, exec)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (WorkflowExecution, error) {
	var e WorkflowExecution
	err := row.Scan(
		&e.ID,
		&e.PublicID,
		&e.Action,
		&e.SourceType,
		&e.SourceID,
		&e.TargetType,
		&e.TargetID,
		&e.Payload,
		&e.Status,
		&e.Error,
		&e.TriggeredBy,
		&e.TriggeredAt,
	)
	return e, err
}
