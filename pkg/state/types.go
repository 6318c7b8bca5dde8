package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	formstate "github.com/goliatone/go-formstate"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

var ErrNotFound = errors.New("state: snapshot not found")

// Ref identifies one persisted entity snapshot.
type Ref struct {
	Class string
	ID    string
}

// RefFor converts a store ident into a Ref.
func RefFor(ident formstate.Ident) Ref {
	id := ""
	if ident.ID != nil {
		id = fmt.Sprint(ident.ID)
	}
	return Ref{Class: ident.Class, ID: id}
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

type Mutator[T any] func(*T) error

// Validator rejects snapshots before they are saved.
type Validator[T any] func(T) error

func (r Ref) Identifier() (string, error) {
	class := strings.TrimSpace(r.Class)
	if class == "" {
		return "", fmt.Errorf("missing class for ref")
	}
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return "", fmt.Errorf("missing id for class %q", class)
	}
	if strings.Contains(class, "/") {
		return "", fmt.Errorf("class %q must not contain '/'", class)
	}
	return fmt.Sprintf("%s/%s", class, id), nil
}

// Mutate loads one snapshot, applies fn, runs validate when set, then saves.
// A non-empty meta.ETag must match the stored ETag. A missing snapshot starts
// from the zero value.
func Mutate[T any](ctx context.Context, store Store[T], ref Ref, meta Meta, fn Mutator[T], validate Validator[T]) (T, Meta, error) {
	var zero T
	if store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if ref.Class == "" {
		return zero, Meta{}, fmt.Errorf("state: class is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %s/%s: %w", ref.Class, ref.ID, err)
	}
	if !ok {
		snapshot = zero
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&snapshot); err != nil {
		return zero, loadedMeta, err
	}

	if validate != nil {
		if err := validate(snapshot); err != nil {
			return zero, loadedMeta, err
		}
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	savedMeta, err := store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %s/%s: %w", ref.Class, ref.ID, err)
	}
	return snapshot, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
