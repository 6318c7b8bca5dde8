package state

import (
	"context"
	"errors"
	"testing"
)

type mutateStore[T any] struct {
	loadSnapshot T
	loadMeta     Meta
	loadOK       bool
	loadErr      error

	saveCalls  int
	savedMeta  Meta
	savedValue T
	saveReturn Meta
	saveErr    error
}

func (s *mutateStore[T]) Load(_ context.Context, _ Ref) (T, Meta, bool, error) {
	var zero T
	if s.loadErr != nil {
		return zero, Meta{}, false, s.loadErr
	}
	return s.loadSnapshot, s.loadMeta, s.loadOK, nil
}

func (s *mutateStore[T]) Save(_ context.Context, _ Ref, snapshot T, meta Meta) (Meta, error) {
	s.saveCalls++
	s.savedMeta = meta
	s.savedValue = snapshot
	if s.saveErr != nil {
		return Meta{}, s.saveErr
	}
	return s.saveReturn, nil
}

var personRef = Ref{Class: "person", ID: "42"}

func TestMutateValidationFailureDoesNotSave(t *testing.T) {
	store := &mutateStore[string]{loadSnapshot: "ok", loadOK: true, loadMeta: Meta{ETag: "v1"}}
	_, _, err := Mutate(context.Background(), store, personRef, Meta{ETag: "v1"}, func(v *string) error {
		*v = ""
		return nil
	}, func(v string) error {
		if v == "" {
			return errors.New("name is required")
		}
		return nil
	})
	if err == nil || err.Error() != "name is required" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.saveCalls != 0 {
		t.Fatalf("expected no save calls, got %d", store.saveCalls)
	}
}

func TestMutatePropagatesMeta(t *testing.T) {
	store := &mutateStore[map[string]any]{
		loadSnapshot: map[string]any{"age": 30},
		loadMeta:     Meta{SnapshotID: "snap-old", ETag: "v1"},
		loadOK:       true,
		saveReturn:   Meta{SnapshotID: "snap-new", ETag: "v2"},
	}
	out, meta, err := Mutate(context.Background(), store, personRef, Meta{ETag: "v1"}, func(v *map[string]any) error {
		(*v)["age"] = 31
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if out["age"] != 31 {
		t.Fatalf("expected mutated snapshot, got %#v", out)
	}
	if meta.SnapshotID != "snap-new" || meta.ETag != "v2" {
		t.Fatalf("expected saved meta snap-new/v2, got %q/%q", meta.SnapshotID, meta.ETag)
	}
	if store.savedMeta.SnapshotID != "snap-old" || store.savedMeta.ETag != "v1" {
		t.Fatalf("expected save meta snap-old/v1, got %q/%q", store.savedMeta.SnapshotID, store.savedMeta.ETag)
	}
}

func TestMutateETagMismatch(t *testing.T) {
	store := &mutateStore[int]{loadOK: true, loadMeta: Meta{ETag: "v2"}}
	_, meta, err := Mutate(context.Background(), store, personRef, Meta{ETag: "v1"}, func(*int) error { return nil }, nil)
	if !errors.Is(err, ErrETagMismatch) {
		t.Fatalf("expected etag mismatch, got %v", err)
	}
	if meta.ETag != "v2" {
		t.Fatalf("expected loaded meta to be returned, got %q", meta.ETag)
	}
	if store.saveCalls != 0 {
		t.Fatalf("expected no save on mismatch")
	}
}

func TestMutateWrapsLoadAndSaveErrors(t *testing.T) {
	boom := errors.New("boom")
	loadFail := &mutateStore[int]{loadErr: boom}
	if _, _, err := Mutate(context.Background(), loadFail, personRef, Meta{}, func(*int) error { return nil }, nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
	saveFail := &mutateStore[int]{saveErr: boom}
	if _, _, err := Mutate(context.Background(), saveFail, personRef, Meta{}, func(*int) error { return nil }, nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestMutateRequiresArguments(t *testing.T) {
	if _, _, err := Mutate[int](context.Background(), nil, personRef, Meta{}, func(*int) error { return nil }, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
	store := &mutateStore[int]{}
	if _, _, err := Mutate[int](context.Background(), store, personRef, Meta{}, nil, nil); err == nil {
		t.Fatalf("expected error for nil mutator")
	}
}
