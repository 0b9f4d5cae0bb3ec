package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"

	"github.com/openfsq/qms/backend/internal/db"
	"github.com/openfsq/qms/backend/internal/workflow"
	"github.com/openfsq/qms/backend/pkg/logger"
)

// ExecutionMsg is the fan-out message published when a workflow action
// completes. The worker turns it into audit-log and notification rows.
type ExecutionMsg struct {
	CorrelationID string             `json:"correlation_id"`
	ExecutionID   string             `json:"execution_id"`
	Action        string             `json:"action"`
	Source        workflow.EntityRef `json:"source"`
	Target        workflow.EntityRef `json:"target"`
	TriggeredBy   string             `json:"triggered_by"`
	Recipients    []string           `json:"recipients,omitempty"`
}

// Notifier publishes completed executions to the notify queue. It implements
// workflow.Notifier; publish failures are returned for the engine to log and
// swallow, never to fail the trigger.
type Notifier struct {
	ch *amqp091.Channel
}

func NewNotifier(ch *amqp091.Channel) *Notifier {
	return &Notifier{ch: ch}
}

func (n *Notifier) NotifyStakeholders(ctx context.Context, exec workflow.Execution) error {
	if exec.Target == nil {
		return fmt.Errorf("execution %s has no target", exec.ID)
	}

	msg := ExecutionMsg{
		CorrelationID: uuid.NewString(),
		ExecutionID:   exec.ID,
		Action:        exec.Action,
		Source:        exec.Source,
		Target:        *exec.Target,
		TriggeredBy:   exec.TriggeredBy,
		Recipients:    recipientsFor(exec),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(n.ch, NotifyQueue, data)
}

// recipientsFor collects the identities interested in a completed action: the
// user who triggered it and, when the payload assigns the new record to
// someone, the assignee.
func recipientsFor(exec workflow.Execution) []string {
	seen := map[string]bool{}
	recipients := make([]string, 0, 2)
	add := func(who string) {
		if who != "" && !seen[who] {
			seen[who] = true
			recipients = append(recipients, who)
		}
	}

	add(exec.TriggeredBy)
	if assigned, ok := exec.Payload["assigned_to"].(string); ok {
		add(assigned)
	}
	return recipients
}

// ProcessNotifyMessage handles one ExecutionMsg on the worker: an append-only
// audit-log row plus one notification per recipient, in a single transaction
// so a retried message never half-applies.
func ProcessNotifyMessage(ctx context.Context, conn *pgxpool.Pool, body string) error {
	var msg ExecutionMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to decode notify message: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	qtx := db.New(conn).WithTx(tx)

	err = qtx.AddAuditLogEntry(ctx, db.AddAuditLogEntryParams{
		ExecutionID: msg.ExecutionID,
		Action:      msg.Action,
		SourceType:  msg.Source.Type,
		SourceID:    msg.Source.ID,
		TargetType:  msg.Target.Type,
		TargetID:    msg.Target.ID,
		Actor:       msg.TriggeredBy,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	subject := fmt.Sprintf("%s completed", msg.Action)
	bodyText := fmt.Sprintf(
		"%s on %s %s created %s %s",
		msg.Action, msg.Source.Type, msg.Source.ID, msg.Target.Type, msg.Target.ID,
	)
	for _, recipient := range msg.Recipients {
		err = qtx.AddNotification(ctx, db.AddNotificationParams{
			Recipient:   recipient,
			Subject:     subject,
			Body:        bodyText,
			ExecutionID: msg.ExecutionID,
		})
		if err != nil {
			return fmt.Errorf("failed to write notification for %s: %w", recipient, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info(
		"[Notify] Fan-out complete",
		"correlation_id", msg.CorrelationID,
		"execution_id", msg.ExecutionID,
		"recipients", len(msg.Recipients),
	)
	return nil
}
