package formstate

import "fmt"

// Engine carries the collaborators every form operation needs: the validator
// registry, the placeholder id source, the diagnostic reporter and the
// logger. Operations are pure transitions over an explicit Store value; the
// engine holds no store of its own.
type Engine struct {
	cfg engineConfig
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	validators   *ValidatorRegistry
	placeholders PlaceholderGenerator
	reporter     Reporter
	logger       Logger
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.validators == nil {
		cfg.validators = DefaultValidators()
	}
	if cfg.placeholders == nil {
		cfg.placeholders = UUIDPlaceholders()
	}
	if cfg.reporter == nil {
		cfg.reporter = noopReporter{}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

// New constructs an Engine. Without options it uses DefaultValidators, UUID
// placeholders, and discards diagnostics and logs.
func New(opts ...Option) *Engine {
	return &Engine{cfg: applyOptions(opts)}
}

// WithValidators replaces the validator registry. The registry is shared,
// not cloned, so validators registered later remain visible.
func WithValidators(registry *ValidatorRegistry) Option {
	return func(cfg *engineConfig) {
		cfg.validators = registry
	}
}

// WithPlaceholderGenerator injects the TempID source used for identity fields.
func WithPlaceholderGenerator(gen PlaceholderGenerator) Option {
	return func(cfg *engineConfig) {
		cfg.placeholders = gen
	}
}

// WithReporter sets the collaborator receiving non-fatal diagnostics.
func WithReporter(reporter Reporter) Option {
	return func(cfg *engineConfig) {
		cfg.reporter = reporter
	}
}

// WithLogger attaches an operation logger.
func WithLogger(logger Logger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// Validators returns the engine's validator registry.
func (e *Engine) Validators() *ValidatorRegistry {
	return e.cfg.validators
}

func (e *Engine) report(d Diagnostic) {
	e.cfg.reporter.Report(d)
	e.cfg.logger.Log(LogEvent{Op: d.Op, Ident: d.Ident, Field: d.Field, Err: d.Err})
}

// CheckClass walks class and every capable subform target, failing when a
// field names a validator missing from the registry or a class lacks the
// form capabilities.
func (e *Engine) CheckClass(class *Class) error {
	if !class.Capable() {
		name := "<nil>"
		if class != nil {
			name = class.Name
		}
		return fmt.Errorf("%w: %q", ErrNotCapable, name)
	}
	seen := map[*Class]bool{}
	var walk func(*Class) error
	walk = func(c *Class) error {
		if seen[c] {
			return nil
		}
		seen[c] = true
		for _, field := range c.Form.Fields() {
			if field.Validator != "" && !e.cfg.validators.Has(field.Validator) {
				return fmt.Errorf("class %q field %q: %w: %q", c.Name, field.Name, ErrValidatorNotRegistered, field.Validator)
			}
			if field.Type == FieldSubform && field.Target.Capable() {
				if err := walk(field.Target); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(class)
}
