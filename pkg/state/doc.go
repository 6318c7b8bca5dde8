// Package state is the server-side collaborator for committed forms. It
// persists canonical entity snapshots keyed by class and id, guards writes
// with ETags, and applies the echo payloads a commit emits.
//
// Responsibilities:
//   - Store[T] only loads/saves a single snapshot for a single Ref.
//   - Mutate loads one snapshot, applies a mutator, validates and saves,
//     refusing stale writes with ErrETagMismatch.
//   - Remote adapts Mutate to formstate.Remote so a Transactor can forward
//     echoes directly.
//
// Data flow:
//
//	Transactor.CommitToEntity -> Echo -> Remote.Apply -> Mutate -> Store.Save
//
// Deterministic keys:
//
//	Ref.Identifier() renders `class/id`. Placeholder ids render through their
//	String form, so entities committed before the server assigns an id are
//	stored under their temporary key.
package state
