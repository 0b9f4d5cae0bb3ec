package db

import (
	"context"
)

const addRelationship = `
INSERT INTO relationships (
	public_id, source_type, source_id, target_type, target_id,
	relationship_type, auto_generated, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, public_id, source_type, source_id, target_type, target_id,
	relationship_type, auto_generated, created_by, created_at
`

type AddRelationshipParams struct {
	PublicID         string
	SourceType       string
	SourceID         string
	TargetType       string
	TargetID         string
	RelationshipType string
	AutoGenerated    bool
	CreatedBy        string
}

func (q *Queries) AddRelationship(ctx context.Context, arg AddRelationshipParams) (Relationship, error) {
	row := q.db.QueryRow(ctx, addRelationship,
		arg.PublicID,
		arg.SourceType,
		arg.SourceID,
		arg.TargetType,
		arg.TargetID,
		arg.RelationshipType,
		arg.AutoGenerated,
		arg.CreatedBy,
	)
	var r Relationship
	err := row.Scan(
		&r.ID,
		&r.PublicID,
		&r.SourceType,
		&r.SourceID,
		&r.TargetType,
		&r.TargetID,
		&r.RelationshipType,
		&r.AutoGenerated,
		&r.CreatedBy,
		&r.CreatedAt,
	)
	return r, err
}

const getRelationshipsForEntity = `
SELECT id, public_id, source_type, source_id, target_type, target_id,
	relationship_type, auto_generated, created_by, created_at
FROM relationships
WHERE (source_type = $1 AND source_id = $2)
   OR (target_type = $1 AND target_id = $2)
ORDER BY created_at DESC, id DESC
`

type GetRelationshipsForEntityParams struct {
	EntityType string
	EntityID   string
}

func (q *Queries) GetRelationshipsForEntity(ctx context.Context, arg GetRelationshipsForEntityParams) ([]Relationship, error) {
	rows, err := q.db.Query(ctx, getRelationshipsForEntity, arg.EntityType, arg.EntityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Relationship, 0)
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(
			&r.ID,
			&r.PublicID,
			&r.SourceType,
			&r.SourceID,
			&r.TargetType,
			&r.TargetID,
			&r.RelationshipType,
			&r.AutoGenerated,
			&r.CreatedBy,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const findAutoGeneratedRelationship = `
SELECT id, public_id, source_type, source_id, target_type, target_id,
	relationship_type, auto_generated, created_by, created_at
FROM relationships
WHERE source_type = $1 AND source_id = $2
  AND target_type = $3 AND relationship_type = $4
  AND auto_generated
LIMIT 1
`

type FindAutoGeneratedRelationshipParams struct {
	SourceType       string
	SourceID         string
	TargetType       string
	RelationshipType string
}

func (q *Queries) FindAutoGeneratedRelationship(ctx context.Context, arg FindAutoGeneratedRelationshipParams) (Relationship, error) {
	row := q.db.QueryRow(ctx, findAutoGeneratedRelationship,
		arg.SourceType,
		arg.SourceID,
		arg.TargetType,
		arg.RelationshipType,
	)
	var r Relationship
	err := row.Scan(
		&r.ID,
		&r.PublicID,
		&r.SourceType,
		&r.SourceID,
		&r.TargetType,
		&r.TargetID,
		&r.RelationshipType,
		&r.AutoGenerated,
		&r.CreatedBy,
		&r.CreatedAt,
	)
	return r, err
}

const deleteRelationshipsForEntity = `
DELETE FROM relationships
WHERE (source_type = $1 AND source_id = $2)
   OR (target_type = $1 AND target_id = $2)
`

type DeleteRelationshipsForEntityParams struct {
	EntityType string
	EntityID   string
}

func (q *Queries) DeleteRelationshipsForEntity(ctx context.Context, arg DeleteRelationshipsForEntityParams) error {
	_, err := q.db.Exec(ctx, deleteRelationshipsForEntity, arg.EntityType, arg.EntityID)
	return err
}
