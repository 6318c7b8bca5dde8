package state

import (
	"context"
	"fmt"

	formstate "github.com/goliatone/go-formstate"
)

// Remote applies echo payloads to a Store of entity snapshots. It implements
// formstate.Remote.
type Remote struct {
	Store    Store[formstate.Entity]
	Validate Validator[formstate.Entity]

	// OnSaved, when set, receives the metadata of every applied echo.
	OnSaved func(ref Ref, meta Meta)
}

var _ formstate.Remote = (*Remote)(nil)

func NewRemote(store Store[formstate.Entity]) *Remote {
	return &Remote{Store: store}
}

// Apply merges the echo value over the stored snapshot. Keys absent from the
// echo keep their stored value.
func (r *Remote) Apply(ctx context.Context, echo formstate.Echo) error {
	if r == nil || r.Store == nil {
		return fmt.Errorf("state: remote store is required")
	}
	ref := RefFor(echo.Ident)
	payload, err := echo.Value.DeepClone()
	if err != nil {
		return fmt.Errorf("state: apply %s: %w", echo.Ident, err)
	}
	_, meta, err := Mutate(ctx, r.Store, ref, Meta{}, func(snapshot *formstate.Entity) error {
		merged := snapshot.Clone()
		if merged == nil {
			merged = formstate.Entity{}
		}
		for key, value := range payload {
			if key == formstate.FormKey {
				continue
			}
			merged[key] = value
		}
		*snapshot = merged
		return nil
	}, r.Validate)
	if err != nil {
		return err
	}
	if r.OnSaved != nil {
		r.OnSaved(ref, meta)
	}
	return nil
}

// Load returns the stored snapshot for ident.
func (r *Remote) Load(ctx context.Context, ident formstate.Ident) (formstate.Entity, Meta, error) {
	snapshot, meta, ok, err := r.Store.Load(ctx, RefFor(ident))
	if err != nil {
		return nil, Meta{}, err
	}
	if !ok {
		return nil, Meta{}, fmt.Errorf("%w: %s", ErrNotFound, ident)
	}
	return snapshot, meta, nil
}
