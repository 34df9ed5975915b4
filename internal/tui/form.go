package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"scape-bot/internal/options"
)

var formKeys = struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Submit key.Binding
	Cancel key.Binding
}{
	Next:   key.NewBinding(key.WithKeys("tab", "down")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
	Left:   key.NewBinding(key.WithKeys("left")),
	Right:  key.NewBinding(key.WithKeys("right")),
	Toggle: key.NewBinding(key.WithKeys(" ")),
	Submit: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c")),
}

// field is the editing state of one option.
type field struct {
	opt      options.Option
	input    textinput.Model
	cursor   int
	selected map[string]bool
}

// Form edits an option set. It validates on submit and stays open until
// the values are accepted or the form is cancelled.
type Form struct {
	title    string
	set      *options.Set
	fields   []field
	focus    int
	err      string
	accepted options.Values
	canceled bool
}

// NewForm builds a form for set, prefilled from initial where it validates
// and from defaults otherwise.
func NewForm(title string, set *options.Set, initial map[string]any) Form {
	vals, ok := set.Load(initial, discard{})
	if !ok {
		vals = set.Defaults()
	}

	f := Form{title: title, set: set}
	for _, opt := range set.Options() {
		fd := field{opt: opt, selected: map[string]bool{}}
		key := opt.Info().Key
		switch o := opt.(type) {
		case options.Slider:
			fd.input = textinput.New()
			fd.input.CharLimit = 6
			fd.input.Placeholder = fmt.Sprintf("%d-%d", o.Min, o.Max)
			fd.input.SetValue(strconv.Itoa(vals.Int(key)))
		case options.Text:
			fd.input = textinput.New()
			fd.input.Placeholder = o.Placeholder
			fd.input.SetValue(vals.String(key))
		case options.Checkbox:
			for _, c := range vals.Strings(key) {
				fd.selected[c] = true
			}
		case options.Dropdown:
			for i, c := range o.Choices {
				if c == vals.String(key) {
					fd.cursor = i
				}
			}
		}
		f.fields = append(f.fields, fd)
	}
	f.focusField(0)
	return f
}

type discard struct{}

func (discard) Log(string, bool) {}

// Accepted returns the accepted values, or nil if the form was cancelled.
func (f Form) Accepted() options.Values { return f.accepted }

// Canceled reports whether the user left without submitting.
func (f Form) Canceled() bool { return f.canceled }

func (f *Form) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if !f.fields[j].typed() {
			continue
		}
		if j == f.focus {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

// typed reports whether the field is edited through its text input.
// Checkboxes and dropdowns have no input model.
func (fd field) typed() bool {
	switch fd.opt.(type) {
	case options.Slider, options.Text:
		return true
	}
	return false
}

// Raw returns the current form values as a raw option map.
func (f Form) Raw() map[string]any {
	raw := make(map[string]any, len(f.fields))
	for _, fd := range f.fields {
		key := fd.opt.Info().Key
		switch o := fd.opt.(type) {
		case options.Slider, options.Text:
			raw[key] = strings.TrimSpace(fd.input.Value())
		case options.Checkbox:
			sel := []string{}
			for _, c := range o.Choices {
				if fd.selected[c] {
					sel = append(sel, c)
				}
			}
			raw[key] = sel
		case options.Dropdown:
			raw[key] = o.Choices[fd.cursor]
		}
	}
	return raw
}

func (f Form) Init() tea.Cmd {
	return textinput.Blink
}

func (f Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}
	switch {
	case key.Matches(km, formKeys.Cancel):
		f.canceled = true
		return f, tea.Quit
	case key.Matches(km, formKeys.Submit):
		vals, err := f.set.Validate(f.Raw())
		if err != nil {
			f.err = err.Error()
			return f, nil
		}
		f.accepted = vals
		return f, tea.Quit
	case key.Matches(km, formKeys.Next):
		f.focusField(f.focus + 1)
		return f, nil
	case key.Matches(km, formKeys.Prev):
		f.focusField(f.focus - 1)
		return f, nil
	}
	if len(f.fields) == 0 {
		return f, nil
	}

	fd := &f.fields[f.focus]
	switch o := fd.opt.(type) {
	case options.Checkbox:
		if len(o.Choices) == 0 {
			return f, nil
		}
		switch {
		case key.Matches(km, formKeys.Left):
			fd.cursor = max(fd.cursor-1, 0)
		case key.Matches(km, formKeys.Right):
			fd.cursor = min(fd.cursor+1, len(o.Choices)-1)
		case key.Matches(km, formKeys.Toggle):
			c := o.Choices[fd.cursor]
			fd.selected[c] = !fd.selected[c]
		}
		return f, nil
	case options.Dropdown:
		switch {
		case key.Matches(km, formKeys.Left):
			fd.cursor = (fd.cursor - 1 + len(o.Choices)) % len(o.Choices)
		case key.Matches(km, formKeys.Right):
			fd.cursor = (fd.cursor + 1) % len(o.Choices)
		}
		return f, nil
	default:
		var cmd tea.Cmd
		fd.input, cmd = fd.input.Update(msg)
		return f, cmd
	}
}

func (f Form) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(f.title + " options"))
	b.WriteString("\n")
	for i, fd := range f.fields {
		label := LabelStyle
		marker := "  "
		if i == f.focus {
			label = FocusedLabelStyle
			marker = "> "
		}
		b.WriteString(marker + label.Render(fd.opt.Info().Label) + "\n")
		b.WriteString("    " + fieldView(fd) + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + ErrorStyle.Render(f.err) + "\n")
	}
	b.WriteString("\n" + HintStyle.Render("tab/shift+tab move • ←/→ choose • space toggle • enter start • esc cancel"))
	return b.String()
}

func fieldView(fd field) string {
	switch o := fd.opt.(type) {
	case options.Checkbox:
		parts := make([]string, len(o.Choices))
		for i, c := range o.Choices {
			box := "[ ]"
			if fd.selected[c] {
				box = "[x]"
			}
			label := strings.TrimSpace(c)
			if i == fd.cursor {
				box = FocusedLabelStyle.Render(box)
			}
			parts[i] = strings.TrimSpace(box + " " + label)
		}
		return strings.Join(parts, "  ")
	case options.Dropdown:
		return fmt.Sprintf("< %s >", o.Choices[fd.cursor])
	default:
		return fd.input.View()
	}
}

// RunForm shows the form and blocks until it closes. It returns nil values
// when the user cancels.
func RunForm(title string, set *options.Set, initial map[string]any) (options.Values, error) {
	m, err := tea.NewProgram(NewForm(title, set, initial)).Run()
	if err != nil {
		return nil, fmt.Errorf("options form: %w", err)
	}
	return m.(Form).Accepted(), nil
}
