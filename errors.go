package formstate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidatorNotRegistered marks a field naming a validator the registry
	// does not know. It is a configuration error, distinct from a field that
	// declares no validator at all.
	ErrValidatorNotRegistered = errors.New("formstate: validator not registered")
	ErrFormNotBuilt           = errors.New("formstate: form was never built")
	ErrUnknownField           = errors.New("formstate: unknown field")
	ErrEntityNotFound         = errors.New("formstate: entity not found")
	ErrNotCapable             = errors.New("formstate: class is missing form capabilities")
	ErrNotBoolean             = errors.New("formstate: field value is not boolean")
)

// EvaluationError captures expression validator metadata alongside the
// originating error.
type EvaluationError struct {
	Engine    string
	Expr      string
	Validator string
	Err       error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("formstate: %s evaluator %s validator=%s: %v", e.Engine, describeExpression(e.Expr), validatorLabel(e.Validator), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func validatorLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "formstate:") {
		return err
	}
	return fmt.Errorf("formstate: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, validator string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Validator == "" {
			evalErr.Validator = validator
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:    engine,
		Expr:      expr,
		Validator: validator,
		Err:       err,
	}
}
