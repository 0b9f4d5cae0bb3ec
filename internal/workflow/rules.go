package workflow

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/openfsq/qms/backend/pkg/logger"
)

// Rule maps a source module to one suggested follow-up action. When is an
// expression over the source record's status and attributes (expr-lang
// syntax); an empty When always matches. Rules are data: adding a suggestion
// means adding a row here, never touching the engine.
type Rule struct {
	SourceModule     string
	When             string
	SuggestedAction  string
	TargetModule     string
	RelationshipType RelationshipType
}

type compiledRule struct {
	Rule
	program *vm.Program
}

// RuleTable evaluates rules in definition order. It is immutable after
// construction and safe for concurrent use.
type RuleTable struct {
	rules []compiledRule
}

// NewRuleTable compiles the predicates and validates the table. Two rules for
// the same source module must not share a suggested-action label, otherwise
// the label could not be resolved back to a single target.
func NewRuleTable(rules []Rule) (*RuleTable, error) {
	seen := make(map[string]bool, len(rules))
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		key := r.SourceModule + "\x00" + r.SuggestedAction
		if seen[key] {
			return nil, fmt.Errorf("duplicate action label %q for module %q", r.SuggestedAction, r.SourceModule)
		}
		seen[key] = true

		if r.TargetModule == "" || r.RelationshipType == "" {
			return nil, fmt.Errorf("rule %q for module %q has no target mapping", r.SuggestedAction, r.SourceModule)
		}

		cr := compiledRule{Rule: r}
		if r.When != "" {
			program, err := expr.Compile(r.When, expr.AllowUndefinedVariables(), expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("rule %q for module %q: %w", r.SuggestedAction, r.SourceModule, err)
			}
			cr.program = program
		}
		compiled = append(compiled, cr)
	}

	return &RuleTable{rules: compiled}, nil
}

// Suggestions returns the actions whose predicates hold for the given source
// record, in table-definition order. Pure: identical inputs yield identical,
// identically ordered output. An unrecognized module yields an empty slice.
func (t *RuleTable) Suggestions(sourceModule, sourceStatus string, attrs map[string]any) []SuggestedAction {
	env := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		env[k] = v
	}
	env["status"] = sourceStatus

	matched := make([]SuggestedAction, 0, 2)
	known := false
	for _, r := range t.rules {
		if r.SourceModule != sourceModule {
			continue
		}
		known = true
		if r.program != nil {
			out, err := expr.Run(r.program, env)
			if err != nil {
				logger.Debug("[Workflow] Rule predicate failed", "module", sourceModule, "action", r.SuggestedAction, "err", err)
				continue
			}
			if ok, _ := out.(bool); !ok {
				continue
			}
		}
		matched = append(matched, SuggestedAction{
			Label:            r.SuggestedAction,
			TargetModule:     r.TargetModule,
			RelationshipType: r.RelationshipType,
		})
	}

	if !known {
		logger.Debug("[Workflow] No rules for module", "module", sourceModule)
	}
	return matched
}

// Resolve maps an action label for a source module to its target module and
// relationship type. Resolution ignores the predicate: a user may trigger an
// action the table would not currently suggest.
func (t *RuleTable) Resolve(sourceModule, actionLabel string) (SuggestedAction, error) {
	for _, r := range t.rules {
		if r.SourceModule == sourceModule && r.SuggestedAction == actionLabel {
			return SuggestedAction{
				Label:            r.SuggestedAction,
				TargetModule:     r.TargetModule,
				RelationshipType: r.RelationshipType,
			}, nil
		}
	}
	return SuggestedAction{}, &UnknownActionError{Action: actionLabel, SourceModule: sourceModule}
}

// DefaultRules is the configured quality-process rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			SourceModule:     ModuleAuditFinding,
			When:             `status == "open" && (severity == "major" || severity == "critical")`,
			SuggestedAction:  "Generate CAPA",
			TargetModule:     ModuleCAPA,
			RelationshipType: RelationshipGeneratedFrom,
		},
		{
			SourceModule:     ModuleAuditFinding,
			When:             `status == "open"`,
			SuggestedAction:  "Log Non-Conformance",
			TargetModule:     ModuleNonConformance,
			RelationshipType: RelationshipGeneratedFrom,
		},
		{
			SourceModule:     ModuleNonConformance,
			When:             `status == "open" && severity == "critical"`,
			SuggestedAction:  "Generate CAPA",
			TargetModule:     ModuleCAPA,
			RelationshipType: RelationshipGeneratedFrom,
		},
		{
			SourceModule:     ModuleNonConformance,
			When:             `status == "open"`,
			SuggestedAction:  "Assign Training",
			TargetModule:     ModuleTraining,
			RelationshipType: RelationshipTriggers,
		},
		{
			SourceModule:     ModuleComplaint,
			When:             `status == "under-investigation"`,
			SuggestedAction:  "Log Non-Conformance",
			TargetModule:     ModuleNonConformance,
			RelationshipType: RelationshipGeneratedFrom,
		},
		{
			SourceModule:     ModuleCAPA,
			When:             `status == "completed" && effectiveness == "ineffective"`,
			SuggestedAction:  "Assign Training",
			TargetModule:     ModuleTraining,
			RelationshipType: RelationshipRequires,
		},
	}
}
