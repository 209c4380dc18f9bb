package workflow

import (
	"context"
	"errors"
	"fmt"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
	"factflow/internal/services"
	"factflow/internal/store"
)

// Kind classifies a transition failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindPermissionDenied  Kind = "permission_denied"
)

var (
	ErrNotFound          = errors.New("work item not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrPermissionDenied  = errors.New("permission denied")

	// ErrConflict is returned when another writer moved the item first.
	ErrConflict = store.ErrConflict
)

// Error describes a rejected transition. Match it with errors.Is against the
// Err* sentinels or with errors.As to read the details.
type Error struct {
	Kind       Kind
	WorkItemID int64
	From       lifecycle.Stage
	To         lifecycle.Stage
	Role       access.Role
	ActorID    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("work item %d not found", e.WorkItemID)
	case KindInvalidTransition:
		return fmt.Sprintf("invalid transition from %s to %s for work item %d", stageLabel(e.From), stageLabel(e.To), e.WorkItemID)
	case KindPermissionDenied:
		if e.Err != nil {
			return fmt.Sprintf("permission denied for actor %q: %v", e.ActorID, e.Err)
		}
		return fmt.Sprintf("permission denied: role %s may not move work item %d from %s to %s",
			e.Role, e.WorkItemID, stageLabel(e.From), stageLabel(e.To))
	default:
		return fmt.Sprintf("transition failed for work item %d", e.WorkItemID)
	}
}

// Unwrap exposes the kind sentinel, the matching services marker, and the
// underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	switch e.Kind {
	case KindNotFound:
		errs = append(errs, ErrNotFound, services.ErrNotFound)
	case KindInvalidTransition:
		errs = append(errs, ErrInvalidTransition, services.ErrValidation)
	case KindPermissionDenied:
		errs = append(errs, ErrPermissionDenied)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ErrorKind returns the string classification of the error.
func (e *Error) ErrorKind() string {
	return string(e.Kind)
}

// ErrorClassifier is implemented by errors that declare their classification.
type ErrorClassifier interface {
	ErrorKind() string
}

// Classify returns the kind of err: one of the Kind values, "conflict",
// "canceled", or "internal".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

func stageLabel(stage lifecycle.Stage) string {
	if stage == "" {
		return "<none>"
	}
	return string(stage)
}
