package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	bar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"scape-bot/internal/session"
)

const maxLogLines = 12

// Controller is the part of a session the run view drives.
type Controller interface {
	Pause()
	Resume()
	Stop()
	Status() session.Status
}

// LogMsg carries one user-facing log line.
type LogMsg struct {
	Text      string
	Overwrite bool
}

// ProgressMsg carries a progress fraction in [0, 1].
type ProgressMsg float64

// StatusMsg carries a session status change.
type StatusMsg session.Status

// DoneMsg reports that the run returned.
type DoneMsg struct{ Err error }

var runKeys = struct {
	Pause key.Binding
	Stop  key.Binding
	Quit  key.Binding
}{
	Pause: key.NewBinding(key.WithKeys("p")),
	Stop:  key.NewBinding(key.WithKeys("s")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// RunView shows the status, a progress bar and the latest log lines of one
// run.
type RunView struct {
	title    string
	ctrl     Controller
	bar      bar.Model
	status   session.Status
	fraction float64
	lines    []string
	done     bool
	err      error
}

// NewRunView returns a run view controlling ctrl.
func NewRunView(title string, ctrl Controller) RunView {
	return RunView{
		title: title,
		ctrl:  ctrl,
		bar:   bar.New(bar.WithDefaultGradient(), bar.WithWidth(50)),
	}
}

func (m RunView) Init() tea.Cmd { return nil }

func (m RunView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Controller calls report back through the program, so they run
		// as commands outside the event loop.
		switch {
		case key.Matches(msg, runKeys.Quit):
			return m, tea.Sequence(m.control(m.ctrl.Stop), tea.Quit)
		case key.Matches(msg, runKeys.Stop):
			return m, m.control(m.ctrl.Stop)
		case key.Matches(msg, runKeys.Pause):
			if m.ctrl.Status() == session.Paused {
				return m, m.control(m.ctrl.Resume)
			}
			return m, m.control(m.ctrl.Pause)
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-4, 80), 10)
	case LogMsg:
		m.lines = appendLine(m.lines, msg.Text, msg.Overwrite)
	case ProgressMsg:
		m.fraction = min(max(float64(msg), 0), 1)
	case StatusMsg:
		m.status = session.Status(msg)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
	}
	return m, nil
}

func (m RunView) control(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func appendLine(lines []string, text string, overwrite bool) []string {
	if overwrite && len(lines) > 0 {
		lines[len(lines)-1] = text
		return lines
	}
	lines = append(lines, text)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}

func (m RunView) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n\n", LabelStyle.Render("Status:"), m.status)
	b.WriteString(m.bar.ViewAs(m.fraction))
	b.WriteString("\n\n")
	b.WriteString(LogStyle.Render(strings.Join(m.lines, "\n")))
	b.WriteString("\n\n")
	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render("Error: "+m.err.Error()) + "\n")
		b.WriteString(HintStyle.Render("q quit"))
	case m.done:
		b.WriteString(HintStyle.Render("Run ended. q quit"))
	default:
		b.WriteString(HintStyle.Render("p pause/resume • s stop • q stop and quit"))
	}
	return b.String()
}

// Runner hosts a RunView program and forwards session events to it. It
// implements progress.Sink. Sends block until Run has started the program.
type Runner struct {
	program *tea.Program
}

// NewRunner returns a runner for a run view over ctrl.
func NewRunner(title string, ctrl Controller, opts ...tea.ProgramOption) *Runner {
	return &Runner{program: tea.NewProgram(NewRunView(title, ctrl), opts...)}
}

func (r *Runner) Log(msg string, overwrite bool) {
	r.program.Send(LogMsg{Text: msg, Overwrite: overwrite})
}

func (r *Runner) Progress(fraction float64) {
	r.program.Send(ProgressMsg(fraction))
}

// SetStatus shows a status change.
func (r *Runner) SetStatus(s session.Status) {
	r.program.Send(StatusMsg(s))
}

// Done marks the run as ended.
func (r *Runner) Done(err error) {
	r.program.Send(DoneMsg{Err: err})
}

// Run blocks until the user quits.
func (r *Runner) Run() error {
	_, err := r.program.Run()
	return err
}
