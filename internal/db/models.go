package db

import (
	"encoding/json"
	"time"
)

type Relationship struct {
	ID               int64
	PublicID         string
	SourceType       string
	SourceID         string
	TargetType       string
	TargetID         string
	RelationshipType string
	AutoGenerated    bool
	CreatedBy        string
	CreatedAt        time.Time
}

type WorkflowExecution struct {
	ID          int64
	PublicID    string
	Action      string
	SourceType  string
	SourceID    string
	TargetType  *string
	TargetID    *string
	Payload     json.RawMessage
	Status      string
	Error       *string
	TriggeredBy string
	TriggeredAt time.Time
}

type AuditLogEntry struct {
	ID          int64
	ExecutionID string
	Action      string
	SourceType  string
	SourceID    string
	TargetType  string
	TargetID    string
	Actor       string
	LoggedAt    time.Time
}

type Notification struct {
	ID          int64
	Recipient   string
	Subject     string
	Body        string
	ExecutionID string
	ReadAt      *time.Time
	CreatedAt   time.Time
}

type AuditFinding struct {
	ID                int64
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
	CreatedAt         time.Time
}

type NonConformance struct {
	ID                int64
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
	CreatedAt         time.Time
}

type Capa struct {
	ID                int64
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
	CreatedAt         time.Time
}

type Complaint struct {
	ID          int64
	PublicID    string
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
}

type TrainingAssignment struct {
	ID                int64
	PublicID          string
	Title             string
	Description       string
	Status            string
	AssignedTo        string
	DueDate           *time.Time
	GeneratedFromType string
	GeneratedFromID   string
	CreatedBy         string
	CreatedAt         time.Time
}
