package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bmi-client/internal/bmi"
	"bmi-client/internal/coordinator"

	tea "github.com/charmbracelet/bubbletea"
)

type trigger struct {
	weight string
	height string
}

type fakeController struct {
	triggers []trigger
	err      error
}

func (f *fakeController) Run(ctx context.Context, _ coordinator.Collaborator) error {
	<-ctx.Done()
	return nil
}

func (f *fakeController) Trigger(_ context.Context, weightText, heightText string) error {
	f.triggers = append(f.triggers, trigger{weight: weightText, height: heightText})
	return f.err
}

func newTestModel(ctl *fakeController) model {
	return newModel(context.Background(), Deps{Controller: ctl, APIURL: "http://127.0.0.1:5000/api/bmi"})
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("expected model, got %T", next)
	}
	return mm, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestEnterTriggersWithFieldTexts(t *testing.T) {
	ctl := &fakeController{}
	m := newTestModel(ctl)

	m = typeText(t, m, "70")
	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != focusHeight {
		t.Fatalf("expected height focus, got %d", m.focus)
	}
	m = typeText(t, m, "175")

	m, cmd := update(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected trigger command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("expected no message from a successful trigger, got %#v", msg)
	}

	if len(ctl.triggers) != 1 {
		t.Fatalf("expected 1 trigger, got %d", len(ctl.triggers))
	}
	if got := ctl.triggers[0]; got != (trigger{weight: "70", height: "175"}) {
		t.Fatalf("unexpected trigger %+v", got)
	}
	if m.status != coordinator.StatusReady {
		t.Fatalf("status should only change on started, got %q", m.status)
	}
}

func TestSpaceOnButtonTriggers(t *testing.T) {
	ctl := &fakeController{}
	m := newTestModel(ctl)

	m, _ = update(t, m, key(tea.KeyShiftTab))
	if m.focus != focusButton {
		t.Fatalf("expected button focus, got %d", m.focus)
	}

	_, cmd := update(t, m, key(tea.KeySpace))
	if cmd == nil {
		t.Fatal("expected trigger command")
	}
	cmd()
	if len(ctl.triggers) != 1 {
		t.Fatalf("expected 1 trigger, got %d", len(ctl.triggers))
	}
}

func TestOperationLifecycle(t *testing.T) {
	ctl := &fakeController{}
	m := newTestModel(ctl)
	m.result = "old result"

	m, _ = update(t, m, startedMsg{})
	if !m.busy || m.status != coordinator.StatusSending || m.result != "" {
		t.Fatalf("expected busy/sending/cleared, got busy=%t status=%q result=%q", m.busy, m.status, m.result)
	}
	if m.weight.Focused() || m.height.Focused() {
		t.Fatal("expected inputs to be disabled while busy")
	}

	_, cmd := update(t, m, key(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("expected no trigger while busy")
	}

	m = typeText(t, m, "9")
	if m.weight.Value() != "" {
		t.Fatalf("expected typing to be ignored while busy, got %q", m.weight.Value())
	}

	m, _ = update(t, m, succeededMsg{rendered: "BMI: 22.86\n"})
	if m.status != coordinator.StatusDone {
		t.Fatalf("expected status %q, got %q", coordinator.StatusDone, m.status)
	}
	if !strings.Contains(m.View(), "BMI: 22.86") {
		t.Fatal("expected result in view")
	}

	m, _ = update(t, m, finishedMsg{})
	if m.busy {
		t.Fatal("expected trigger to be re-enabled")
	}
	if !m.weight.Focused() {
		t.Fatal("expected focus to return to the weight field")
	}
}

func TestFailureShowsNotice(t *testing.T) {
	m := newTestModel(&fakeController{})

	m, _ = update(t, m, startedMsg{})
	m, _ = update(t, m, failedMsg{message: "The server did not respond in time."})
	m, _ = update(t, m, finishedMsg{})

	if m.status != coordinator.StatusError {
		t.Fatalf("expected status %q, got %q", coordinator.StatusError, m.status)
	}
	if m.notice == nil || m.notice.title != "Error" {
		t.Fatalf("expected error notice, got %+v", m.notice)
	}
	if !strings.Contains(m.View(), "The server did not respond in time.") {
		t.Fatal("expected failure message in view")
	}

	m, _ = update(t, m, key(tea.KeyEsc))
	if m.notice != nil {
		t.Fatal("expected esc to dismiss the notice")
	}
}

func TestNoticeSwallowsKeys(t *testing.T) {
	ctl := &fakeController{}
	m := newTestModel(ctl)

	m, _ = update(t, m, validationFailedMsg{field: bmi.FieldHeight, title: "Input required", message: "Please enter both weight and height."})
	if m.focus != focusHeight {
		t.Fatalf("expected focus to move to the offending field, got %d", m.focus)
	}

	m = typeText(t, m, "1")
	if m.height.Value() != "" {
		t.Fatal("expected typing to be swallowed by the notice")
	}
	if !strings.Contains(m.View(), "Input required") {
		t.Fatal("expected notice title in view")
	}

	m, cmd := update(t, m, key(tea.KeyEnter))
	if m.notice != nil {
		t.Fatal("expected enter to dismiss the notice")
	}
	if cmd != nil {
		t.Fatal("dismissing must not trigger a calculation")
	}
	if len(ctl.triggers) != 0 {
		t.Fatalf("expected no triggers, got %d", len(ctl.triggers))
	}
}

func TestTriggerFailureShowsNotice(t *testing.T) {
	ctl := &fakeController{err: coordinator.ErrStopped}
	m := newTestModel(ctl)

	_, cmd := update(t, m, key(tea.KeyEnter))
	msg := cmd()
	tf, ok := msg.(triggerFailedMsg)
	if !ok || !errors.Is(tf.err, coordinator.ErrStopped) {
		t.Fatalf("expected triggerFailedMsg, got %#v", msg)
	}

	m, _ = update(t, m, msg)
	if m.notice == nil || !strings.Contains(m.notice.message, "coordinator stopped") {
		t.Fatalf("expected notice with cause, got %+v", m.notice)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(&fakeController{})
	m.notice = &notice{title: "Error", message: "x"}

	_, cmd := update(t, m, key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestSafeModelRecoversFromPanic(t *testing.T) {
	s := wrapSafe(newTestModel(&fakeController{}), nil)
	// Update logs rejected triggers; a nil logger makes that panic.
	s.m.deps.Logger = nil

	next, cmd := s.Update(triggerFailedMsg{err: errors.New("boom")})
	if cmd != nil {
		t.Fatal("expected no command after recovery")
	}
	sm, ok := next.(safeModel)
	if !ok {
		t.Fatalf("expected safeModel, got %T", next)
	}
	if sm.m.notice == nil || !strings.Contains(sm.m.notice.message, "Unexpected error") {
		t.Fatalf("expected recovery notice, got %+v", sm.m.notice)
	}
}

func TestCollaboratorForwardsCallbacks(t *testing.T) {
	var got []tea.Msg
	c := NewCollaborator(func(msg tea.Msg) { got = append(got, msg) })

	c.OnValidationError(&bmi.ValidationError{Kind: bmi.NotNumeric, Field: bmi.FieldWeight, Value: "abc"})
	c.OnOperationStarted()
	c.OnOperationSucceeded("BMI: 20.00\n")
	c.OnOperationFailed("No response from server.")
	c.OnOperationFinished()

	if len(got) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got))
	}

	vf, ok := got[0].(validationFailedMsg)
	if !ok {
		t.Fatalf("expected validationFailedMsg, got %T", got[0])
	}
	if vf.field != bmi.FieldWeight || vf.title != "Invalid input" || vf.message != "Please enter numeric values (e.g. 70 or 175)." {
		t.Fatalf("unexpected validation message %+v", vf)
	}
	if _, ok := got[1].(startedMsg); !ok {
		t.Fatalf("expected startedMsg, got %T", got[1])
	}
	if s, ok := got[2].(succeededMsg); !ok || s.rendered != "BMI: 20.00\n" {
		t.Fatalf("unexpected %#v", got[2])
	}
	if f, ok := got[3].(failedMsg); !ok || f.message != "No response from server." {
		t.Fatalf("unexpected %#v", got[3])
	}
	if _, ok := got[4].(finishedMsg); !ok {
		t.Fatalf("expected finishedMsg, got %T", got[4])
	}
}

func TestRunRequiresController(t *testing.T) {
	if err := Run(context.Background(), Deps{}); err == nil {
		t.Fatal("expected error for missing controller")
	}
}
