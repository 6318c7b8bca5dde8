//go:build !js_eval

package formstate

// NewJSEvaluator is unavailable without the js_eval build tag and returns
// nil; RegisterExpression rejects a nil evaluator with ErrNoEvaluator.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
