package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/openfsq/qms/backend/internal/workflow"
)

func TestRelationshipStoreSymmetry(t *testing.T) {
	t.Parallel()
	store := NewRelationshipStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}
	target := workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-1"}

	if _, err := store.CreateRelationship(ctx, source, target, workflow.RelationshipGeneratedFrom, true, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// The edge is visible from both ends.
	for _, ref := range []workflow.EntityRef{source, target} {
		edges, err := store.ListRelationships(ctx, ref.Type, ref.ID)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(edges) != 1 {
			t.Fatalf("expected 1 edge for %v, got %d", ref, len(edges))
		}
	}

	// An unrelated entity sees nothing.
	edges, err := store.ListRelationships(ctx, workflow.ModuleComplaint, "C-9")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges, got %d", len(edges))
	}
}

func TestRelationshipStoreRejectsDuplicateTuple(t *testing.T) {
	t.Parallel()
	store := NewRelationshipStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleComplaint, ID: "C-1"}
	target := workflow.EntityRef{Type: workflow.ModuleNonConformance, ID: "NC-1"}

	if _, err := store.CreateRelationship(ctx, source, target, workflow.RelationshipReferences, false, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	_, err := store.CreateRelationship(ctx, source, target, workflow.RelationshipReferences, false, "user-2")
	var dup *workflow.DuplicateRelationshipError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateRelationshipError, got %T", err)
	}

	// Same pair with a different type is a different edge.
	if _, err := store.CreateRelationship(ctx, source, target, workflow.RelationshipRequires, false, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRelationshipStoreAutoGeneratedUniqueness(t *testing.T) {
	t.Parallel()
	store := NewRelationshipStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}

	if _, err := store.CreateRelationship(ctx, source, workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-1"}, workflow.RelationshipGeneratedFrom, true, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// A second auto edge into the same target module collides even though the
	// target record differs: this mirrors the partial unique index.
	_, err := store.CreateRelationship(ctx, source, workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-2"}, workflow.RelationshipGeneratedFrom, true, "user-1")
	var dup *workflow.DuplicateRelationshipError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateRelationshipError, got %T", err)
	}

	// A manual edge into a different record of the same module is fine.
	if _, err := store.CreateRelationship(ctx, source, workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-2"}, workflow.RelationshipGeneratedFrom, false, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// An auto edge into another module is fine too.
	if _, err := store.CreateRelationship(ctx, source, workflow.EntityRef{Type: workflow.ModuleNonConformance, ID: "NC-1"}, workflow.RelationshipGeneratedFrom, true, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRelationshipStoreFindAutoGenerated(t *testing.T) {
	t.Parallel()
	store := NewRelationshipStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}
	target := workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-1"}

	edge, err := store.FindAutoGenerated(ctx, source, workflow.ModuleCAPA, workflow.RelationshipGeneratedFrom)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if edge != nil {
		t.Fatalf("expected no edge, got %+v", edge)
	}

	// Manual edges never satisfy the lookup.
	if _, err := store.CreateRelationship(ctx, source, target, workflow.RelationshipGeneratedFrom, false, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	edge, err = store.FindAutoGenerated(ctx, source, workflow.ModuleCAPA, workflow.RelationshipGeneratedFrom)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if edge != nil {
		t.Fatalf("expected manual edge to be ignored, got %+v", edge)
	}

	auto := workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-2"}
	if _, err := store.CreateRelationship(ctx, source, auto, workflow.RelationshipGeneratedFrom, true, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	edge, err = store.FindAutoGenerated(ctx, source, workflow.ModuleCAPA, workflow.RelationshipGeneratedFrom)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if edge == nil || edge.Target != auto {
		t.Fatalf("expected auto edge to %v, got %+v", auto, edge)
	}
}

func TestRelationshipStoreDelete(t *testing.T) {
	t.Parallel()
	store := NewRelationshipStore()
	ctx := context.Background()

	af := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}
	capa := workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-1"}
	nc := workflow.EntityRef{Type: workflow.ModuleNonConformance, ID: "NC-1"}

	if _, err := store.CreateRelationship(ctx, af, capa, workflow.RelationshipGeneratedFrom, true, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := store.CreateRelationship(ctx, nc, capa, workflow.RelationshipReferences, false, "user-1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// Deleting the capa removes both edges it participates in.
	if err := store.DeleteRelationshipsFor(ctx, capa.Type, capa.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	for _, ref := range []workflow.EntityRef{af, nc} {
		edges, _ := store.ListRelationships(ctx, ref.Type, ref.ID)
		if len(edges) != 0 {
			t.Fatalf("expected no edges for %v, got %d", ref, len(edges))
		}
	}

	// Deleting again is a no-op.
	if err := store.DeleteRelationshipsFor(ctx, capa.Type, capa.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestExecutionStoreTransitions(t *testing.T) {
	t.Parallel()
	store := NewExecutionStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}
	target := workflow.EntityRef{Type: workflow.ModuleCAPA, ID: "CAPA-1"}

	if _, err := store.CreateExecution(ctx, workflow.Execution{
		ID:     "exec-1",
		Action: "Generate CAPA",
		Source: source,
		Status: workflow.ExecutionPending,
	}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if err := store.CompleteExecution(ctx, "exec-1", target); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// A terminal execution stays terminal.
	if err := store.FailExecution(ctx, "exec-1", "late failure"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	found, err := store.FindCompleted(ctx, "Generate CAPA", source)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if found == nil || found.Status != workflow.ExecutionCompleted {
		t.Fatalf("expected completed execution, got %+v", found)
	}
	if found.Target == nil || *found.Target != target {
		t.Fatalf("expected target %v, got %+v", target, found.Target)
	}
	if found.Error != "" {
		t.Fatalf("expected no error on completed execution, got %q", found.Error)
	}
}

func TestExecutionStoreFindCompletedSkipsFailed(t *testing.T) {
	t.Parallel()
	store := NewExecutionStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}

	if _, err := store.CreateExecution(ctx, workflow.Execution{
		ID:     "exec-1",
		Action: "Generate CAPA",
		Source: source,
		Status: workflow.ExecutionPending,
	}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := store.FailExecution(ctx, "exec-1", "creation failed"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	found, err := store.FindCompleted(ctx, "Generate CAPA", source)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if found != nil {
		t.Fatalf("expected no completed execution, got %+v", found)
	}
}

func TestExecutionStoreListNewestFirst(t *testing.T) {
	t.Parallel()
	store := NewExecutionStore()
	ctx := context.Background()

	source := workflow.EntityRef{Type: workflow.ModuleAuditFinding, ID: "AF-1"}
	for _, id := range []string{"exec-1", "exec-2", "exec-3"} {
		if _, err := store.CreateExecution(ctx, workflow.Execution{
			ID:     id,
			Action: "Generate CAPA",
			Source: source,
			Status: workflow.ExecutionPending,
		}); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	execs, err := store.ListExecutions(ctx, source.Type, source.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(execs) != 3 {
		t.Fatalf("expected 3 executions, got %d", len(execs))
	}
	if execs[0].ID != "exec-3" || execs[2].ID != "exec-1" {
		t.Fatalf("expected newest first, got %q then %q then %q", execs[0].ID, execs[1].ID, execs[2].ID)
	}
}
