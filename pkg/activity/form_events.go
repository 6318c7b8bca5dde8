package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the form engine.
const (
	VerbFormCommitted  = "form.committed"
	VerbFormReset      = "form.reset"
	VerbFormValidated  = "form.validated"
	VerbFormRefresh    = "form.refresh"
	VerbFormDiagnostic = "form.diagnostic"
	VerbFormEchoFailed = "form.echo.failed"
)

// FormEventInput describes the common fields of form lifecycle events.
type FormEventInput struct {
	ActorID    string
	TenantID   string
	Class      string
	ID         string
	Field      string
	Op         string
	Message    string
	Channel    string
	Metadata   map[string]any
	OldValue   any
	NewValue   any
	OccurredAt time.Time
}

// BuildFormCommittedEvent describes overlay values copied onto an entity.
func BuildFormCommittedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormCommitted, input)
}

// BuildFormResetEvent describes an overlay refreshed from its entity.
func BuildFormResetEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormReset, input)
}

// BuildFormValidatedEvent describes a validation pass over a form tree.
func BuildFormValidatedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormValidated, input)
}

// BuildFormRefreshEvent tells observers the view rooted at the form needs
// recomputation after a transaction.
func BuildFormRefreshEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormRefresh, input)
}

// BuildFormDiagnosticEvent carries a non-fatal engine diagnostic.
func BuildFormDiagnosticEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormDiagnostic, input)
}

// BuildFormEchoFailedEvent reports a remote echo the collaborator rejected.
func BuildFormEchoFailedEvent(input FormEventInput) Event {
	return buildFormEvent(VerbFormEchoFailed, input)
}

func buildFormEvent(verb string, input FormEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if field := strings.TrimSpace(input.Field); field != "" {
		set("field", field)
	}
	if op := strings.TrimSpace(input.Op); op != "" {
		set("op", op)
	}
	if input.Message != "" {
		set("message", input.Message)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectType := strings.TrimSpace(input.Class)
	if objectType == "" {
		objectType = "form"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   strings.TrimSpace(input.ID),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
