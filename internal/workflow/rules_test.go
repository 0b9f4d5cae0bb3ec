package workflow

import (
	"reflect"
	"testing"
)

func mustRuleTable(t *testing.T) *RuleTable {
	t.Helper()
	table, err := NewRuleTable(DefaultRules())
	if err != nil {
		t.Fatalf("failed to build rule table: %v", err)
	}
	return table
}

func TestSuggestions(t *testing.T) {
	t.Parallel()
	table := mustRuleTable(t)

	tests := []struct {
		name   string
		module string
		status string
		attrs  map[string]any
		want   []string
	}{
		{
			name:   "open_major_finding_suggests_capa_and_nc",
			module: ModuleAuditFinding,
			status: "open",
			attrs:  map[string]any{"severity": "major"},
			want:   []string{"Generate CAPA", "Log Non-Conformance"},
		},
		{
			name:   "open_minor_finding_suggests_nc_only",
			module: ModuleAuditFinding,
			status: "open",
			attrs:  map[string]any{"severity": "minor"},
			want:   []string{"Log Non-Conformance"},
		},
		{
			name:   "closed_finding_suggests_nothing",
			module: ModuleAuditFinding,
			status: "closed",
			attrs:  map[string]any{"severity": "critical"},
			want:   []string{},
		},
		{
			name:   "critical_nc_suggests_capa_and_training",
			module: ModuleNonConformance,
			status: "open",
			attrs:  map[string]any{"severity": "critical"},
			want:   []string{"Generate CAPA", "Assign Training"},
		},
		{
			name:   "complaint_under_investigation_suggests_nc",
			module: ModuleComplaint,
			status: "under-investigation",
			attrs:  nil,
			want:   []string{"Log Non-Conformance"},
		},
		{
			name:   "ineffective_capa_suggests_training",
			module: ModuleCAPA,
			status: "completed",
			attrs:  map[string]any{"effectiveness": "ineffective"},
			want:   []string{"Assign Training"},
		},
		{
			name:   "finding_without_severity_attr_still_suggests_nc",
			module: ModuleAuditFinding,
			status: "open",
			attrs:  nil,
			want:   []string{"Log Non-Conformance"},
		},
		{
			name:   "unknown_module_returns_empty",
			module: "document",
			status: "open",
			attrs:  map[string]any{"severity": "critical"},
			want:   []string{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := table.Suggestions(tc.module, tc.status, tc.attrs)
			labels := make([]string, 0, len(got))
			for _, s := range got {
				labels = append(labels, s.Label)
			}
			if !reflect.DeepEqual(labels, tc.want) {
				t.Fatalf("got %v, want %v", labels, tc.want)
			}
		})
	}
}

func TestSuggestionsDeterministic(t *testing.T) {
	t.Parallel()
	table := mustRuleTable(t)

	attrs := map[string]any{"severity": "critical"}
	first := table.Suggestions(ModuleNonConformance, "open", attrs)
	for i := 0; i < 50; i++ {
		got := table.Suggestions(ModuleNonConformance, "open", attrs)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	table := mustRuleTable(t)

	action, err := table.Resolve(ModuleAuditFinding, "Generate CAPA")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if action.TargetModule != ModuleCAPA {
		t.Fatalf("expected target module %q, got %q", ModuleCAPA, action.TargetModule)
	}
	if action.RelationshipType != RelationshipGeneratedFrom {
		t.Fatalf("expected relationship type %q, got %q", RelationshipGeneratedFrom, action.RelationshipType)
	}

	// Resolution ignores the predicate: a closed finding can still resolve.
	if _, err := table.Resolve(ModuleAuditFinding, "Log Non-Conformance"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestResolveUnknownAction(t *testing.T) {
	t.Parallel()
	table := mustRuleTable(t)

	_, err := table.Resolve(ModuleAuditFinding, "Do Something Undefined")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, ok := err.(*UnknownActionError); !ok {
		t.Fatalf("expected *UnknownActionError, got %T", err)
	}

	_, err = table.Resolve("document", "Generate CAPA")
	if err == nil {
		t.Fatal("expected error for unknown module, got nil")
	}
}

func TestNewRuleTableRejectsDuplicateLabels(t *testing.T) {
	t.Parallel()

	_, err := NewRuleTable([]Rule{
		{
			SourceModule:     ModuleAuditFinding,
			SuggestedAction:  "Generate CAPA",
			TargetModule:     ModuleCAPA,
			RelationshipType: RelationshipGeneratedFrom,
		},
		{
			SourceModule:     ModuleAuditFinding,
			SuggestedAction:  "Generate CAPA",
			TargetModule:     ModuleNonConformance,
			RelationshipType: RelationshipGeneratedFrom,
		},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNewRuleTableRejectsMissingTarget(t *testing.T) {
	t.Parallel()

	_, err := NewRuleTable([]Rule{
		{
			SourceModule:    ModuleAuditFinding,
			SuggestedAction: "Generate CAPA",
		},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNewRuleTableRejectsBadPredicate(t *testing.T) {
	t.Parallel()

	_, err := NewRuleTable([]Rule{
		{
			SourceModule:     ModuleAuditFinding,
			When:             `status ==`,
			SuggestedAction:  "Generate CAPA",
			TargetModule:     ModuleCAPA,
			RelationshipType: RelationshipGeneratedFrom,
		},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
