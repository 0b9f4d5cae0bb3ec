package workflow

import "fmt"

// UnknownActionError is returned when an action label does not resolve to a
// rule for the given source module.
type UnknownActionError struct {
	Action       string
	SourceModule string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown workflow action %q for module %q", e.Action, e.SourceModule)
}

// DuplicateRelationshipError is returned by a RelationshipStore when the
// (source, target, type) tuple already exists. The engine treats it as the
// idempotent-trigger case, not as a failure.
type DuplicateRelationshipError struct {
	Source EntityRef
	Target EntityRef
	Type   RelationshipType
}

func (e *DuplicateRelationshipError) Error() string {
	return fmt.Sprintf(
		"relationship %s already exists between %s/%s and %s/%s",
		e.Type, e.Source.Type, e.Source.ID, e.Target.Type, e.Target.ID,
	)
}

// TargetCreationError wraps a failure to create the target record. No
// relationship edge exists when this is returned; the caller may retrigger.
type TargetCreationError struct {
	Action string
	Source EntityRef
	Err    error
}

func (e *TargetCreationError) Error() string {
	return fmt.Sprintf(
		"action %q on %s/%s: creating target record failed: %v",
		e.Action, e.Source.Type, e.Source.ID, e.Err,
	)
}

func (e *TargetCreationError) Unwrap() error {
	return e.Err
}
