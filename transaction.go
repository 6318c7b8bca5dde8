package formstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-formstate/pkg/activity"
)

// Remote mirrors committed writes on a server-side collaborator. Delivery,
// retries and ordering are the collaborator's concern.
type Remote interface {
	Apply(ctx context.Context, echo Echo) error
}

// RemoteFunc adapts a function to Remote.
type RemoteFunc func(ctx context.Context, echo Echo) error

// Apply implements Remote.
func (f RemoteFunc) Apply(ctx context.Context, echo Echo) error {
	if f == nil {
		return nil
	}
	return f(ctx, echo)
}

// Observer is told which form roots need recomputation after a transaction.
type Observer func(store Store, refresh []Ident)

// TransactorOption configures a Transactor.
type TransactorOption func(*transactorConfig)

type transactorConfig struct {
	remote    Remote
	emitter   *activity.Emitter
	observers []Observer
	actorID   string
	tenantID  string
}

// WithRemote wires the collaborator receiving echo payloads.
func WithRemote(remote Remote) TransactorOption {
	return func(cfg *transactorConfig) {
		cfg.remote = remote
	}
}

// WithEmitter routes lifecycle events through emitter.
func WithEmitter(emitter *activity.Emitter) TransactorOption {
	return func(cfg *transactorConfig) {
		cfg.emitter = emitter
	}
}

// WithActivityHooks is WithEmitter for an enabled emitter over hooks using
// the default channel.
func WithActivityHooks(hooks activity.Hooks) TransactorOption {
	return func(cfg *transactorConfig) {
		cfg.emitter = activity.NewEmitter(hooks, activity.Config{Enabled: true})
	}
}

// WithObserver registers an observer called after every successful
// transaction.
func WithObserver(observer Observer) TransactorOption {
	return func(cfg *transactorConfig) {
		if observer != nil {
			cfg.observers = append(cfg.observers, observer)
		}
	}
}

// WithActor stamps actor and tenant ids on emitted events.
func WithActor(actorID, tenantID string) TransactorOption {
	return func(cfg *transactorConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}

// Transactor is a reference transaction executor. It owns the current store
// value and applies ordered mutation lists atomically: readers observe the
// store either before or after a whole transaction, and a failing step
// discards every step of that transaction.
type Transactor struct {
	engine *Engine
	cfg    transactorConfig

	mu    sync.RWMutex
	store Store
}

// NewTransactor builds a Transactor over an initial store.
func NewTransactor(engine *Engine, store Store, opts ...TransactorOption) *Transactor {
	if engine == nil {
		engine = New()
	}
	cfg := transactorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Transactor{engine: engine, cfg: cfg, store: store}
}

// Engine returns the engine mutations run against.
func (t *Transactor) Engine() *Engine {
	return t.engine
}

// Store returns the current store value.
func (t *Transactor) Store() Store {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store
}

// Replace swaps the whole store, e.g. after loading remote data.
func (t *Transactor) Replace(store Store) {
	t.mu.Lock()
	t.store = store
	t.mu.Unlock()
}

// Transact applies mutations in order as one transaction and returns the
// resulting store.
func (t *Transactor) Transact(ctx context.Context, mutations ...Mutation) (Store, error) {
	return t.transact(ctx, func(Store) ([]Mutation, error) {
		return mutations, nil
	})
}

// ResetFromEntity discards unsaved edits of the form at ident and
// revalidates its nested tree, as one transaction.
func (t *Transactor) ResetFromEntity(ctx context.Context, ident Ident) (Store, error) {
	return t.Transact(ctx, ResetOp{Form: ident}, ValidateFormOp{Form: ident})
}

// CommitToEntity validates the form at ident locally and commits it only when
// every field is valid. Otherwise it runs ValidateForm so the failure becomes
// visible, and reports committed=false. The check and the chosen mutation
// run under the same lock.
func (t *Transactor) CommitToEntity(ctx context.Context, ident Ident, remote bool) (bool, error) {
	committed := false
	_, err := t.transact(ctx, func(current Store) ([]Mutation, error) {
		overlay, ok := t.engine.overlayAt(current, OpCommitToEntity, ident)
		if !ok {
			return nil, nil
		}
		validated, err := t.engine.ValidateFields(overlay)
		if err != nil {
			return nil, err
		}
		if IsValid(validated) {
			committed = true
			return []Mutation{CommitOp{Form: ident, Remote: remote}}, nil
		}
		return []Mutation{ValidateFormOp{Form: ident}}, nil
	})
	if err != nil {
		return false, err
	}
	return committed, nil
}

func (t *Transactor) transact(ctx context.Context, plan func(Store) ([]Mutation, error)) (Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.mu.Lock()
	current := t.store
	mutations, err := plan(current)
	if err != nil {
		t.mu.Unlock()
		return current, err
	}
	var echoes []Echo
	for i, m := range mutations {
		if m == nil {
			continue
		}
		next, echo, err := m.Apply(t.engine, current)
		if err != nil {
			original := t.store
			t.mu.Unlock()
			return original, fmt.Errorf("formstate: transaction step %d (%s %s): %w", i, m.Name(), m.Target(), err)
		}
		current = next
		if echo != nil {
			echoes = append(echoes, *echo)
		}
	}
	t.store = current
	t.mu.Unlock()

	t.afterCommit(ctx, current, mutations, echoes)
	return current, nil
}

func (t *Transactor) afterCommit(ctx context.Context, store Store, mutations []Mutation, echoes []Echo) {
	var refresh []Ident
	seen := map[Ident]bool{}
	for _, m := range mutations {
		if m == nil {
			continue
		}
		target := m.Target()
		t.emit(ctx, m.Name(), target)
		if !seen[target] {
			seen[target] = true
			refresh = append(refresh, target)
		}
	}

	for _, echo := range echoes {
		if t.cfg.remote == nil {
			break
		}
		if err := t.cfg.remote.Apply(ctx, echo); err != nil {
			t.engine.report(Diagnostic{Op: OpCommitToEntity, Ident: echo.Ident, Message: "remote echo failed", Err: err})
			t.emitEvent(ctx, activity.BuildFormEchoFailedEvent(t.eventInput(OpCommitToEntity, echo.Ident, err.Error())))
		}
	}

	for _, ident := range refresh {
		t.emitEvent(ctx, activity.BuildFormRefreshEvent(t.eventInput("", ident, "")))
	}
	for _, observer := range t.cfg.observers {
		observer(store, refresh)
	}
}

func (t *Transactor) emit(ctx context.Context, op string, ident Ident) {
	input := t.eventInput(op, ident, "")
	switch op {
	case OpCommitToEntity:
		t.emitEvent(ctx, activity.BuildFormCommittedEvent(input))
	case OpResetFromEntity:
		t.emitEvent(ctx, activity.BuildFormResetEvent(input))
	case OpValidateForm, OpValidate:
		t.emitEvent(ctx, activity.BuildFormValidatedEvent(input))
	}
}

func (t *Transactor) eventInput(op string, ident Ident, message string) activity.FormEventInput {
	return activity.FormEventInput{
		ActorID:  t.cfg.actorID,
		TenantID: t.cfg.tenantID,
		Class:    ident.Class,
		ID:       identID(ident),
		Op:       op,
		Message:  message,
	}
}

func (t *Transactor) emitEvent(ctx context.Context, event activity.Event) {
	if !t.cfg.emitter.Enabled() {
		return
	}
	if err := t.cfg.emitter.Emit(ctx, event); err != nil {
		t.engine.cfg.logger.Log(LogEvent{Op: "emit " + event.Verb, Err: err})
	}
}
