package formstate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Validator is a named predicate over a field value and the field's
// validator arguments. A returned error means the predicate could not be
// evaluated and is never treated as "invalid".
type Validator func(value any, args map[string]any) (bool, error)

type validatorEntry struct {
	fn     Validator
	engine string
	expr   string
}

// ValidatorRegistry stores validators keyed by symbolic name. Names are
// case-insensitive.
type ValidatorRegistry struct {
	mu         sync.RWMutex
	validators map[string]validatorEntry
}

// NewValidatorRegistry constructs an empty registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{
		validators: make(map[string]validatorEntry),
	}
}

// DefaultValidators returns a registry preloaded with the built-in
// validators (in-range?, required?, max-length?, one-of?).
func DefaultValidators() *ValidatorRegistry {
	r := NewValidatorRegistry()
	for name, fn := range builtinValidators() {
		_ = r.register(name, validatorEntry{fn: fn, engine: "builtin"})
	}
	return r
}

// Register stores fn under name guarding against duplicates.
func (r *ValidatorRegistry) Register(name string, fn Validator) error {
	if fn == nil {
		return fmt.Errorf("formstate: validator %q is nil", name)
	}
	return r.register(name, validatorEntry{fn: fn, engine: "go"})
}

// MustRegister is Register that panics on error.
func (r *ValidatorRegistry) MustRegister(name string, fn Validator) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// RegisterExpression compiles expression with evaluator and registers the
// resulting predicate under name. Compilation errors surface here so a bad
// expression fails at registration time. The expression sees `value`,
// `args`, `validator` and `now`, and must evaluate to a boolean.
func (r *ValidatorRegistry) RegisterExpression(name string, evaluator Evaluator, expression string) error {
	if evaluator == nil {
		return fmt.Errorf("formstate: validator %q: %w", name, ErrNoEvaluator)
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return wrapEvaluationError(evaluatorEngineName(evaluator), expression, name, err)
	}
	engine := evaluatorEngineName(evaluator)
	fn := func(value any, args map[string]any) (bool, error) {
		out, err := rule.Evaluate(RuleContext{Value: value, Args: args, Validator: name})
		if err != nil {
			return false, wrapEvaluationError(engine, expression, name, err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return false, wrapEvaluationError(engine, expression, name, fmt.Errorf("result %T is not boolean", out))
		}
		return ok, nil
	}
	return r.register(name, validatorEntry{fn: fn, engine: engine, expr: expression})
}

func (r *ValidatorRegistry) register(name string, entry validatorEntry) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("formstate: validator name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.validators == nil {
		r.validators = make(map[string]validatorEntry)
	}
	key := strings.ToLower(name)
	if _, exists := r.validators[key]; exists {
		return fmt.Errorf("formstate: validator %q already registered", name)
	}
	r.validators[key] = entry
	return nil
}

// Has reports whether name is registered.
func (r *ValidatorRegistry) Has(name string) bool {
	_, ok := r.entry(name)
	return ok
}

// Lookup returns the validator registered for name, or an error wrapping
// ErrValidatorNotRegistered.
func (r *ValidatorRegistry) Lookup(name string) (Validator, error) {
	entry, ok := r.entry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrValidatorNotRegistered, name)
	}
	return entry.fn, nil
}

// Call executes the validator registered for name.
func (r *ValidatorRegistry) Call(name string, value any, args map[string]any) (bool, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return false, err
	}
	return fn(value, args)
}

func (r *ValidatorRegistry) entry(name string) (validatorEntry, bool) {
	if r == nil {
		return validatorEntry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.validators[strings.ToLower(name)]
	return entry, ok
}

// Clone returns a shallow copy of the registry.
func (r *ValidatorRegistry) Clone() *ValidatorRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &ValidatorRegistry{
		validators: make(map[string]validatorEntry, len(r.validators)),
	}
	for name, entry := range r.validators {
		clone.validators[name] = entry
	}
	return clone
}

// Names returns registered validator names sorted alphabetically.
func (r *ValidatorRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
