package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/openfsq/qms/backend/internal/db"
	"github.com/openfsq/qms/backend/internal/records"
	"github.com/openfsq/qms/backend/internal/workflow"
)

// RecordCreator creates records of one module in Postgres. It satisfies
// workflow.RecordCreator; payloads are decoded and validated through the
// records package before any write.
type RecordCreator struct {
	conn   *pgxpool.Pool
	module string
}

func NewRecordCreator(conn *pgxpool.Pool, module string) (*RecordCreator, error) {
	if db.RecordTable(module) == "" {
		return nil, fmt.Errorf("unknown record module %q", module)
	}
	return &RecordCreator{conn: conn, module: module}, nil
}

// NewRecordCreators returns one creator per known record module, keyed by
// module name, ready to hand to the engine.
func NewRecordCreators(conn *pgxpool.Pool) map[string]workflow.RecordCreator {
	modules := []string{
		workflow.ModuleAuditFinding,
		workflow.ModuleNonConformance,
		workflow.ModuleCAPA,
		workflow.ModuleComplaint,
		workflow.ModuleTraining,
	}
	creators := make(map[string]workflow.RecordCreator, len(modules))
	for _, m := range modules {
		creator, _ := NewRecordCreator(conn, m)
		creators[m] = creator
	}
	return creators
}

func (c *RecordCreator) Create(ctx context.Context, payload map[string]any, actor string) (workflow.RecordRef, error) {
	decoded, err := records.Decode(c.module, payload)
	if err != nil {
		return workflow.RecordRef{}, err
	}

	publicID, err := gonanoid.New()
	if err != nil {
		return workflow.RecordRef{}, err
	}
	status := records.InitialStatus(c.module)
	q := db.New(c.conn)

	switch p := decoded.(type) {
	case *records.AuditFindingPayload:
		row, err := q.CreateAuditFinding(ctx, db.CreateAuditFindingParams{
			PublicID:          publicID,
			Title:             p.Title,
			Description:       p.Description,
			AuditRef:          p.AuditRef,
			Severity:          p.Severity,
			Status:            status,
			AssignedTo:        p.AssignedTo,
			GeneratedFromType: p.GeneratedFromType,
			GeneratedFromID:   p.GeneratedFromID,
			CreatedBy:         actor,
		})
		if err != nil {
			return workflow.RecordRef{}, err
		}
		return workflow.RecordRef{ID: row.PublicID, Status: row.Status}, nil

	case *records.NonConformancePayload:
		row, err := q.CreateNonConformance(ctx, db.CreateNonConformanceParams{
			PublicID:          publicID,
			Title:             p.Title,
			Description:       p.Description,
			Severity:          p.Severity,
			Status:            status,
			AssignedTo:        p.AssignedTo,
			DueDate:           p.DueDate,
			GeneratedFromType: p.GeneratedFromType,
			GeneratedFromID:   p.GeneratedFromID,
			CreatedBy:         actor,
		})
		if err != nil {
			return workflow.RecordRef{}, err
		}
		return workflow.RecordRef{ID: row.PublicID, Status: row.Status}, nil

	case *records.CAPAPayload:
		row, err := q.CreateCapa(ctx, db.CreateCapaParams{
			PublicID:          publicID,
			Title:             p.Title,
			Description:       p.Description,
			Priority:          p.Priority,
			Status:            status,
			AssignedTo:        p.AssignedTo,
			DueDate:           p.DueDate,
			GeneratedFromType: p.GeneratedFromType,
			GeneratedFromID:   p.GeneratedFromID,
			CreatedBy:         actor,
		})
		if err != nil {
			return workflow.RecordRef{}, err
		}
		return workflow.RecordRef{ID: row.PublicID, Status: row.Status}, nil

	case *records.ComplaintPayload:
		row, err := q.CreateComplaint(ctx, db.CreateComplaintParams{
			PublicID:    publicID,
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Priority:    p.Priority,
			Status:      status,
			CreatedBy:   actor,
		})
		if err != nil {
			return workflow.RecordRef{}, err
		}
		return workflow.RecordRef{ID: row.PublicID, Status: row.Status}, nil

	case *records.TrainingPayload:
		row, err := q.CreateTrainingAssignment(ctx, db.CreateTrainingAssignmentParams{
			PublicID:          publicID,
			Title:             p.Title,
			Description:       p.Description,
			Status:            status,
			AssignedTo:        p.AssignedTo,
			DueDate:           p.DueDate,
			GeneratedFromType: p.GeneratedFromType,
			GeneratedFromID:   p.GeneratedFromID,
			CreatedBy:         actor,
		})
		if err != nil {
			return workflow.RecordRef{}, err
		}
		return workflow.RecordRef{ID: row.PublicID, Status: row.Status}, nil
	}

	return workflow.RecordRef{}, fmt.Errorf("unknown record module %q", c.module)
}
