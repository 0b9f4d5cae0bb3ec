package queue

import (
	"reflect"
	"testing"

	"github.com/openfsq/qms/backend/internal/workflow"
)

func TestRecipientsFor(t *testing.T) {
	tests := []struct {
		name string
		exec workflow.Execution
		want []string
	}{
		{
			name: "triggering_user_only",
			exec: workflow.Execution{TriggeredBy: "user-1"},
			want: []string{"user-1"},
		},
		{
			name: "assignee_added",
			exec: workflow.Execution{
				TriggeredBy: "user-1",
				Payload:     map[string]any{"assigned_to": "user-7"},
			},
			want: []string{"user-1", "user-7"},
		},
		{
			name: "self_assignment_deduped",
			exec: workflow.Execution{
				TriggeredBy: "user-1",
				Payload:     map[string]any{"assigned_to": "user-1"},
			},
			want: []string{"user-1"},
		},
		{
			name: "empty_values_skipped",
			exec: workflow.Execution{
				TriggeredBy: "",
				Payload:     map[string]any{"assigned_to": ""},
			},
			want: []string{},
		},
		{
			name: "non_string_assignee_ignored",
			exec: workflow.Execution{
				TriggeredBy: "user-1",
				Payload:     map[string]any{"assigned_to": 42},
			},
			want: []string{"user-1"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := recipientsFor(tc.exec)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
