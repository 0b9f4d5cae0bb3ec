package records

import (
	"testing"

	"github.com/openfsq/qms/backend/internal/workflow"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		module  string
		payload map[string]any
		wantErr bool
	}{
		{
			name:   "valid_audit_finding",
			module: workflow.ModuleAuditFinding,
			payload: map[string]any{
				"title":    "Broken seal on line 3",
				"severity": "major",
			},
		},
		{
			name:   "finding_rejects_unknown_severity",
			module: workflow.ModuleAuditFinding,
			payload: map[string]any{
				"title":    "Broken seal on line 3",
				"severity": "catastrophic",
			},
			wantErr: true,
		},
		{
			name:   "finding_requires_title",
			module: workflow.ModuleAuditFinding,
			payload: map[string]any{
				"severity": "minor",
			},
			wantErr: true,
		},
		{
			name:   "valid_capa_without_priority",
			module: workflow.ModuleCAPA,
			payload: map[string]any{
				"title": "Replace gasket stock",
			},
		},
		{
			name:   "capa_rejects_bad_priority",
			module: workflow.ModuleCAPA,
			payload: map[string]any{
				"title":    "Replace gasket stock",
				"priority": "urgent",
			},
			wantErr: true,
		},
		{
			name:   "training_requires_assignee",
			module: workflow.ModuleTraining,
			payload: map[string]any{
				"title": "Allergen handling refresher",
			},
			wantErr: true,
		},
		{
			name:   "valid_training",
			module: workflow.ModuleTraining,
			payload: map[string]any{
				"title":       "Allergen handling refresher",
				"assigned_to": "user-7",
			},
		},
		{
			name:   "provenance_fields_pass_through",
			module: workflow.ModuleNonConformance,
			payload: map[string]any{
				"title":               "Temperature excursion",
				"severity":            "critical",
				"generated_from_type": workflow.ModuleAuditFinding,
				"generated_from_id":   "AF-1",
			},
		},
		{
			name:   "unknown_module",
			module: "document",
			payload: map[string]any{
				"title": "SOP-12",
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := Decode(tc.module, tc.payload)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if decoded == nil {
				t.Fatal("expected decoded payload, got nil")
			}
		})
	}
}

func TestDecodeKeepsProvenance(t *testing.T) {
	t.Parallel()

	decoded, err := Decode(workflow.ModuleNonConformance, map[string]any{
		"title":               "Temperature excursion",
		"severity":            "critical",
		"generated_from_type": workflow.ModuleAuditFinding,
		"generated_from_id":   "AF-1",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	payload, ok := decoded.(*NonConformancePayload)
	if !ok {
		t.Fatalf("expected *NonConformancePayload, got %T", decoded)
	}
	if payload.GeneratedFromType != workflow.ModuleAuditFinding || payload.GeneratedFromID != "AF-1" {
		t.Fatalf("expected provenance to survive decoding, got %+v", payload.Provenance)
	}
}

func TestInitialStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		module string
		want   string
	}{
		{workflow.ModuleAuditFinding, "open"},
		{workflow.ModuleNonConformance, "open"},
		{workflow.ModuleCAPA, "open"},
		{workflow.ModuleComplaint, "under-investigation"},
		{workflow.ModuleTraining, "assigned"},
	}
	for _, tc := range tests {
		if got := InitialStatus(tc.module); got != tc.want {
			t.Fatalf("InitialStatus(%q) = %q, want %q", tc.module, got, tc.want)
		}
	}
}
