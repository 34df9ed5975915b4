package tui

import (
	"errors"
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scape-bot/internal/options"
	"scape-bot/internal/session"
)

func testSet() *options.Set {
	return options.NewBuilder().
		AddSlider("run_time", "How long to run (minutes)?", 1, 600).
		AddText("loot", "Loot items", "E.g., Coins").
		AddCheckbox("take_breaks", "Take breaks?", []string{" "}).
		AddDropdown("mode", "Mode", []string{"fast", "safe"}).
		MustBuild()
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func TestFormPrefillsFromInitial(t *testing.T) {
	f := NewForm("Test", testSet(), map[string]any{"run_time": 30, "take_breaks": []string{" "}, "mode": "safe"})

	raw := f.Raw()
	assert.Equal(t, "30", raw["run_time"])
	assert.Equal(t, []string{" "}, raw["take_breaks"])
	assert.Equal(t, "safe", raw["mode"])
}

func TestFormFallsBackToDefaultsOnBadInitial(t *testing.T) {
	f := NewForm("Test", testSet(), map[string]any{"bogus": 1})

	raw := f.Raw()
	assert.Equal(t, "1", raw["run_time"])
	assert.Equal(t, "fast", raw["mode"])
}

func TestFormSubmitsEditedValues(t *testing.T) {
	var m tea.Model = NewForm("Test", testSet(), nil)

	// run_time: replace "1" with "45".
	m = send(m, "backspace", "4", "5", "tab")
	// loot
	m = send(m, "C", "o", "i", "n", "s", "tab")
	// take_breaks
	m = send(m, " ", "tab")
	// mode
	m = send(m, "right", "enter")

	f := m.(Form)
	require.False(t, f.Canceled())
	vals := f.Accepted()
	require.NotNil(t, vals)
	assert.Equal(t, 45, vals.Int("run_time"))
	assert.Equal(t, "Coins", vals.String("loot"))
	assert.True(t, vals.Bool("take_breaks"))
	assert.Equal(t, "safe", vals.String("mode"))
}

func TestFormRejectsOutOfRange(t *testing.T) {
	var m tea.Model = NewForm("Test", testSet(), nil)
	m = send(m, "9", "9", "9", "9", "enter")

	f := m.(Form)
	assert.Nil(t, f.Accepted())
	assert.Contains(t, f.View(), "options rejected")
}

func TestFormCancel(t *testing.T) {
	m := send(NewForm("Test", testSet(), nil), "esc")

	f := m.(Form)
	assert.True(t, f.Canceled())
	assert.Nil(t, f.Accepted())
}

func TestFormTabsOntoChoiceFields(t *testing.T) {
	set := options.NewBuilder().
		AddSlider("run_time", "How long to run (minutes)?", 1, 600).
		AddCheckbox("take_breaks", "Take breaks?", []string{" "}).
		AddDropdown("mode", "Mode", []string{"fast", "safe"}).
		MustBuild()
	var m tea.Model = NewForm("Test", set, nil)

	// Around twice, both directions.
	require.NotPanics(t, func() {
		m = send(m, "tab", "tab", "tab", "tab", "tab")
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	})
	f := m.(Form)
	assert.Equal(t, 1, f.focus)

	m = send(m, " ", "tab", "right", "tab", "backspace", "9")
	raw := m.(Form).Raw()
	assert.Equal(t, []string{" "}, raw["take_breaks"])
	assert.Equal(t, "safe", raw["mode"])
	assert.Equal(t, "9", raw["run_time"])
}

type fakeCtrl struct {
	status        session.Status
	pauses, stops int
}

func (c *fakeCtrl) Pause()                 { c.pauses++; c.status = session.Paused }
func (c *fakeCtrl) Resume()                { c.status = session.Running }
func (c *fakeCtrl) Stop()                  { c.stops++ }
func (c *fakeCtrl) Status() session.Status { return c.status }

// exec runs cmd and any commands it sequences or batches, returning the
// resulting messages in order.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	v := reflect.ValueOf(msg)
	if v.Kind() == reflect.Slice && v.Type().Elem() == reflect.TypeOf(tea.Cmd(nil)) {
		var out []tea.Msg
		for i := 0; i < v.Len(); i++ {
			out = append(out, exec(v.Index(i).Interface().(tea.Cmd))...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func press(m tea.Model, k string) (tea.Model, []tea.Msg) {
	m, cmd := m.Update(keyMsg(k))
	return m, exec(cmd)
}

func TestRunViewKeys(t *testing.T) {
	ctrl := &fakeCtrl{status: session.Running}
	var m tea.Model = NewRunView("Combat", ctrl)

	// Controller calls are deferred to commands.
	m, cmd := m.Update(keyMsg("p"))
	assert.Equal(t, session.Running, ctrl.status)
	exec(cmd)
	assert.Equal(t, session.Paused, ctrl.status)

	m, _ = press(m, "p")
	assert.Equal(t, session.Running, ctrl.status)
	assert.Equal(t, 1, ctrl.pauses)

	m, _ = press(m, "s")
	assert.Equal(t, 1, ctrl.stops)

	_, msgs := press(m, "q")
	assert.Equal(t, 2, ctrl.stops)
	require.Len(t, msgs, 1)
	assert.IsType(t, tea.QuitMsg{}, msgs[0])
}

func TestRunViewLogLines(t *testing.T) {
	var m tea.Model = NewRunView("Combat", &fakeCtrl{})
	m, _ = m.Update(LogMsg{Text: "Searching..."})
	m, _ = m.Update(LogMsg{Text: "Time left: 10.00s"})
	m, _ = m.Update(LogMsg{Text: "Time left: 9.00s", Overwrite: true})

	v := m.(RunView)
	assert.Equal(t, []string{"Searching...", "Time left: 9.00s"}, v.lines)

	for i := 0; i < 20; i++ {
		m, _ = m.Update(LogMsg{Text: "line"})
	}
	assert.Len(t, m.(RunView).lines, maxLogLines)
}

func TestRunViewState(t *testing.T) {
	var m tea.Model = NewRunView("Combat", &fakeCtrl{})
	m, _ = m.Update(ProgressMsg(1.5))
	m, _ = m.Update(StatusMsg(session.Finished))
	m, _ = m.Update(DoneMsg{Err: errors.New("boom")})

	v := m.(RunView)
	assert.Equal(t, 1.0, v.fraction)
	assert.Contains(t, v.View(), "finished")
	assert.Contains(t, v.View(), "Error: boom")
}
