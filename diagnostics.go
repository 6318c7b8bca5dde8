package formstate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/activity"
)

// Diagnostic is a non-fatal report produced when an operation is misused and
// degrades to a no-op.
type Diagnostic struct {
	Op      string
	Ident   Ident
	Field   string
	Message string
	Err     error
}

func (d Diagnostic) String() string {
	msg := d.Message
	if msg == "" && d.Err != nil {
		msg = d.Err.Error()
	}
	if d.Field != "" {
		return fmt.Sprintf("%s %s.%s: %s", d.Op, d.Ident, d.Field, msg)
	}
	return fmt.Sprintf("%s %s: %s", d.Op, d.Ident, msg)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

// Report implements Reporter.
func (f ReporterFunc) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

type noopReporter struct{}

func (noopReporter) Report(Diagnostic) {}

// ActivityReporter forwards diagnostics to activity hooks as
// "form.diagnostic" events. Hook failures are dropped.
func ActivityReporter(emitter *activity.Emitter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		if !emitter.Enabled() {
			return
		}
		_ = emitter.Emit(context.Background(), activity.BuildFormDiagnosticEvent(activity.FormEventInput{
			Class:   d.Ident.Class,
			ID:      identID(d.Ident),
			Field:   d.Field,
			Op:      d.Op,
			Message: d.String(),
		}))
	})
}

func identID(ident Ident) string {
	if ident.ID == nil {
		return ""
	}
	return fmt.Sprint(ident.ID)
}
