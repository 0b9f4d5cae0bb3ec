package db

import (
	"context"
	"fmt"
	"time"
)

const createAuditFinding = `
INSERT INTO audit_findings (
	public_id, title, description, audit_ref, severity, status, assigned_to,
	generated_from_type, generated_from_id, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, public_id, title, description, audit_ref, severity, status, assigned_to,
	generated_from_type, generated_from_id, created_by, created_at
`

type CreateAuditFindingParams struct {
	PublicID          string
	Title             string
	Description       string
	AuditRef          string
	Severity          string
	Status            string
	AssignedTo        string
	GeneratedFromType string
	GeneratedFromID   string
	CreatedBy         string
}

func (q *Queries) CreateAuditFinding(ctx context.Context, arg CreateAuditFindingParams) (AuditFinding, error) {
	row := q.db.QueryRow(ctx, createAuditFinding,
		arg.PublicID, arg.Title, arg.Description, arg.AuditRef, arg.Severity,
		arg.Status, arg.AssignedTo, arg.GeneratedFromType, arg.GeneratedFromID, arg.CreatedBy,
	)
	var r AuditFinding
	err := row.Scan(
		&r.ID, &r.PublicID, &r.Title, &r.Description, &r.AuditRef, &r.Severity,
		&r.Status, &r.AssignedTo, &r.GeneratedFromType, &r.GeneratedFromID,
		&r.CreatedBy, &r.CreatedAt,
	)
	return r, err
}

const createNonConformance = `
INSERT INTO non_conformances (
	public_id, title, description, severity, status, assigned_to, due_date,
	generated_from_type, generated_from_id, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, public_id, title, description, severity, status, assigned_to, due_date,
	generated_from_type, generated_from_id, created_by, created_at
`

type CreateNonConformanceParams struct {
	PublicID          string
	Title             string
	Description       string
	Severity          string
	Status            string
	AssignedTo        string
	DueDate           *time.Time
	GeneratedFromType string
	GeneratedFromID   string
	CreatedBy         string
}

func (q *Queries) CreateNonConformance(ctx context.Context, arg CreateNonConformanceParams) (NonConformance, error) {
	row := q.db.QueryRow(ctx, createNonConformance,
		arg.PublicID, arg.Title, arg.Description, arg.Severity, arg.Status,
		arg.AssignedTo, arg.DueDate, arg.GeneratedFromType, arg.GeneratedFromID, arg.CreatedBy,
	)
	var r NonConformance
	err := row.Scan(
		&r.ID, &r.PublicID, &r.Title, &r.Description, &r.Severity, &r.Status,
		&r.AssignedTo, &r.DueDate, &r.GeneratedFromType, &r.GeneratedFromID,
		&r.CreatedBy, &r.CreatedAt,
	)
	return r, err
}

const createCapa = `
INSERT INTO capas (
	public_id, title, description, priority, status, assigned_to, due_date,
	generated_from_type, generated_from_id, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, public_id, title, description, priority, status, assigned_to, due_date,
	generated_from_type, generated_from_id, created_by, created_at
`

type CreateCapaParams struct {
	PublicID          string
	Title             string
	Description       string
	Priority          string
	Status            string
	AssignedTo        string
	DueDate           *time.Time
	GeneratedFromType string
	GeneratedFromID   string
	CreatedBy         string
}

func (q *Queries) CreateCapa(ctx context.Context, arg CreateCapaParams) (Capa, error) {
	row := q.db.QueryRow(ctx, createCapa,
		arg.PublicID, arg.Title, arg.Description, arg.Priority, arg.Status,
		arg.AssignedTo, arg.DueDate, arg.GeneratedFromType, arg.GeneratedFromID, arg.CreatedBy,
	)
	var r Capa
	err := row.Scan(
		&r.ID, &r.PublicID, &r.Title, &r.Description, &r.Priority, &r.Status,
		&r.AssignedTo, &r.DueDate, &r.GeneratedFromType, &r.GeneratedFromID,
		&r.CreatedBy, &r.CreatedAt,
	)
	return r, err
}

const createComplaint = `
INSERT INTO complaints (
	public_id, title, description, category, priority, status, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, public_id, title, description, category, priority, status, created_by, created_at
`

type CreateComplaintParams struct {
	PublicID    string
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	CreatedBy   string
}

func (q *Queries) CreateComplaint(ctx context.Context, arg CreateComplaintParams) (Complaint, error) {
	row := q.db.QueryRow(ctx, createComplaint,
		arg.PublicID, arg.Title, arg.Description, arg.Category, arg.Priority,
		arg.Status, arg.CreatedBy,
	)
	var r Complaint
	err := row.Scan(
		&r.ID, &r.PublicID, &r.Title, &r.Description, &r.Category, &r.Priority,
		&r.Status, &r.CreatedBy, &r.CreatedAt,
	)
	return r, err
}

const createTrainingAssignment = `
INSERT INTO training_assignments (
	public_id, title, description, status, assigned_to, due_date,
	generated_from_type, generated_from_id, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, public_id, title, description, status, assigned_to, due_date,
	generated_from_type, generated_from_id, created_by, created_at
`

type CreateTrainingAssignmentParams struct {
	PublicID          string
	Title             string
	Description       string
	Status            string
	AssignedTo        string
	DueDate           *time.Time
	GeneratedFromType string
	GeneratedFromID   string
	CreatedBy         string
}

func (q *Queries) CreateTrainingAssignment(ctx context.Context, arg CreateTrainingAssignmentParams) (TrainingAssignment, error) {
	row := q.db.QueryRow(ctx, createTrainingAssignment,
		arg.PublicID, arg.Title, arg.Description, arg.Status, arg.AssignedTo,
		arg.DueDate, arg.GeneratedFromType, arg.GeneratedFromID, arg.CreatedBy,
	)
	var r TrainingAssignment
	err := row.Scan(
		&r.ID, &r.PublicID, &r.Title, &r.Description, &r.Status, &r.AssignedTo,
		&r.DueDate, &r.GeneratedFromType, &r.GeneratedFromID,
		&r.CreatedBy, &r.CreatedAt,
	)
	return r, err
}

// The record tables share the summary surface the HTTP list/get/delete
// handlers need. Table names come from a fixed whitelist, never from input.

var recordTables = map[string]string{
	"audit-finding":       "audit_findings",
	"non-conformance":     "non_conformances",
	"capa":                "capas",
	"complaint":           "complaints",
	"training-assignment": "training_assignments",
}

// RecordTable maps a module name to its table, or "" for unknown modules.
func RecordTable(module string) string {
	return recordTables[module]
}

type RecordSummary struct {
	PublicID  string
	Title     string
	Status    string
	CreatedBy string
	CreatedAt time.Time
}

func (q *Queries) ListRecords(ctx context.Context, module string) ([]RecordSummary, error) {
	table := RecordTable(module)
	if table == "" {
		return nil, fmt.Errorf("unknown record module %q", module)
	}

	query := fmt.Sprintf(
		`SELECT public_id, title, status, created_by, created_at FROM %s ORDER BY created_at DESC, id DESC`,
		table,
	)
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RecordSummary, 0)
	for rows.Next() {
		var r RecordSummary
		if err := rows.Scan(&r.PublicID, &r.Title, &r.Status, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) GetRecordByPublicID(ctx context.Context, module, publicID string) (RecordSummary, error) {
	table := RecordTable(module)
	if table == "" {
		return RecordSummary{}, fmt.Errorf("unknown record module %q", module)
	}

	query := fmt.Sprintf(
		`SELECT public_id, title, status, created_by, created_at FROM %s WHERE public_id = $1`,
		table,
	)
	var r RecordSummary
	err := q.db.QueryRow(ctx, query, publicID).Scan(&r.PublicID, &r.Title, &r.Status, &r.CreatedBy, &r.CreatedAt)
	return r, err
}

func (q *Queries) DeleteRecordByPublicID(ctx context.Context, module, publicID string) (int64, error) {
	table := RecordTable(module)
	if table == "" {
		return 0, fmt.Errorf("unknown record module %q", module)
	}

	tag, err := q.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE public_id = $1`, table), publicID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
