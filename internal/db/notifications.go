package db

import "context"

const addAuditLogEntry = `
INSERT INTO audit_log (
	execution_id, action, source_type, source_id, target_type, target_id, actor
) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type AddAuditLogEntryParams struct {
	ExecutionID string
	Action      string
	SourceType  string
	SourceID    string
	TargetType  string
	TargetID    string
	Actor       string
}

func (q *Queries) AddAuditLogEntry(ctx context.Context, arg AddAuditLogEntryParams) error {
	_, err := q.db.Exec(ctx, addAuditLogEntry,
		arg.ExecutionID,
		arg.Action,
		arg.SourceType,
		arg.SourceID,
		arg.TargetType,
		arg.TargetID,
		arg.Actor,
	)
	return err
}

const addNotification = `
INSERT INTO notifications (recipient, subject, body, execution_id)
VALUES ($1, $2, $3, $4)
`

type AddNotificationParams struct {
	Recipient   string
	Subject     string
	Body        string
	ExecutionID string
}

func (q *Queries) AddNotification(ctx context.Context, arg AddNotificationParams) error {
	_, err := q.db.Exec(ctx, addNotification,
		arg.Recipient,
		arg.Subject,
		arg.Body,
		arg.ExecutionID,
	)
	return err
}

const getNotificationsForRecipient = `
SELECT id, recipient, subject, body, execution_id, read_at, created_at
FROM notifications
WHERE recipient = $1
ORDER BY created_at DESC, id DESC
`

func (q *Queries) GetNotificationsForRecipient(ctx context.Context, recipient string) ([]Notification, error) {
	rows, err := q.db.Query(ctx, getNotificationsForRecipient, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Subject, &n.Body, &n.ExecutionID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
