package activity

import (
	"context"
	"testing"
)

func TestBuildFormCommittedEventIncludesMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := FormEventInput{
		ActorID:  " actor ",
		Class:    "person",
		ID:       "1",
		Field:    "age",
		Op:       "commit-to-entity",
		Metadata: meta,
		OldValue: 200,
		NewValue: 30,
	}

	event := BuildFormCommittedEvent(input)

	if event.Verb != VerbFormCommitted {
		t.Fatalf("expected verb %s got %s", VerbFormCommitted, event.Verb)
	}
	if event.ObjectType != "person" || event.ObjectID != "1" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	if event.Metadata["field"] != "age" || event.Metadata["op"] != "commit-to-entity" {
		t.Fatalf("expected field/op metadata, got %+v", event.Metadata)
	}
	if event.Metadata["old_value"] != 200 || event.Metadata["new_value"] != 30 {
		t.Fatalf("expected old/new values, got %+v", event.Metadata)
	}
	if _, ok := meta["field"]; ok {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildFormEventFallsBackToFormObjectType(t *testing.T) {
	event := BuildFormDiagnosticEvent(FormEventInput{Message: "form was never built"})
	if event.ObjectType != "form" {
		t.Fatalf("expected fallback object type, got %q", event.ObjectType)
	}
	if event.Metadata["message"] != "form was never built" {
		t.Fatalf("expected message metadata, got %+v", event.Metadata)
	}
}

func TestFormEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	for _, event := range []Event{
		BuildFormResetEvent(FormEventInput{Class: "person", ID: "1"}),
		BuildFormValidatedEvent(FormEventInput{Class: "person", ID: "1"}),
		BuildFormRefreshEvent(FormEventInput{Class: "person", ID: "1"}),
	} {
		if err := hooks.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	verbs := capture.Verbs()
	want := []string{VerbFormReset, VerbFormValidated, VerbFormRefresh}
	if len(verbs) != len(want) {
		t.Fatalf("expected %v, got %v", want, verbs)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, verbs)
		}
	}
}
