package formstate

import (
	"errors"
	"time"
)

var ErrNoEvaluator = errors.New("formstate: evaluator not configured")

// RuleContext carries the inputs of one expression validator run.
type RuleContext struct {
	Value     any
	Args      map[string]any
	Validator string
	Now       *time.Time
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

// bindings is the variable set shared by every engine.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"value":     ctx.Value,
		"args":      ctx.Args,
		"validator": ctx.Validator,
		"now":       ctx.timestamp(),
	}
}

// Evaluator executes validator expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled expression programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if named, ok := e.(interface{ engineName() string }); ok {
			return named.engineName()
		}
		return "custom"
	}
}
