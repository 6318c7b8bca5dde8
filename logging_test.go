package formstate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Log(LogEvent{Op: OpUpdateField, Ident: NewIdent("person", 1), Field: "age"})
	logger.Log(LogEvent{Op: "validate", Validator: ValidatorInRange, Engine: "builtin", Err: errors.New("bad args")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "level=DEBUG")
	require.Contains(t, lines[0], "op=update-field")
	require.Contains(t, lines[0], "field=age")
	require.Contains(t, lines[1], "level=WARN")
	require.Contains(t, lines[1], `error="bad args"`)

	SlogLogger(nil).Log(LogEvent{Op: "noop"})
}

func TestEngineLogsMutations(t *testing.T) {
	var ops []string
	e, _ := newTestEngine(WithLogger(LoggerFunc(func(ev LogEvent) { ops = append(ops, ev.Op) })))
	store, _, ident := personStore(t, e)
	ops = nil

	store = e.UpdateField(store, ident, "name", "Ann")
	store = e.ToggleField(store, ident, "active")
	store, _ = e.CommitToEntity(store, ident, false)
	_ = e.ResetFromEntity(store, ident)
	require.Equal(t, []string{OpUpdateField, OpToggleField, OpCommitToEntity, OpResetFromEntity}, ops)
}

func TestActivityReporter(t *testing.T) {
	capture := &activity.CaptureHook{}
	reporter := ActivityReporter(activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true}))
	e, _ := newTestEngine(WithReporter(reporter))

	_, err := e.ValidateForm(NewStore(nil), NewIdent("person", 3))
	require.NoError(t, err)

	require.Equal(t, []string{activity.VerbFormDiagnostic}, capture.Verbs())
	event := capture.Events[0]
	require.Equal(t, "person", event.ObjectType)
	require.Equal(t, "3", event.ObjectID)
	require.Equal(t, OpValidateForm, event.Metadata["op"])

	ActivityReporter(nil).Report(Diagnostic{Op: "x"})
	require.NoError(t, activity.NewEmitter(nil, activity.Config{}).Emit(context.Background(), activity.Event{}))
}
