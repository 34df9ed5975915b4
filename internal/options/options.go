// Package options describes and validates the runtime options a bot accepts.
//
// Option kinds form a closed set:
//   - Slider: integer bounded by [Min, Max]
//   - Text: free-form string
//   - Checkbox: subset of fixed choices (an empty subset means "off")
//   - Dropdown: exactly one of fixed choices
//
// A bot declares its options once with a Builder. Raw values from the CLI, a
// saved options file or a form are validated together by Set.Load before the
// bot starts; a configuration with any unknown key or invalid value is
// rejected as a whole.
package options

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies an option variant.
type Kind int

const (
	KindSlider Kind = iota
	KindText
	KindCheckbox
	KindDropdown
)

func (k Kind) String() string {
	switch k {
	case KindSlider:
		return "slider"
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindDropdown:
		return "dropdown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Meta is shared by every option kind.
type Meta struct {
	Key   string
	Label string
}

// Option is implemented only by Slider, Text, Checkbox and Dropdown.
type Option interface {
	Info() Meta
	Kind() Kind
	isOption()
}

// Slider is an integer option bounded by [Min, Max].
type Slider struct {
	Meta
	Min, Max int
	Default  int
}

// Text is a free-form string option.
type Text struct {
	Meta
	Placeholder string
	Default     string
}

// Checkbox selects any subset of Choices.
type Checkbox struct {
	Meta
	Choices []string
	Default []string
}

// Dropdown selects exactly one of Choices.
type Dropdown struct {
	Meta
	Choices []string
	Default string
}

func (o Slider) Info() Meta   { return o.Meta }
func (o Text) Info() Meta     { return o.Meta }
func (o Checkbox) Info() Meta { return o.Meta }
func (o Dropdown) Info() Meta { return o.Meta }

func (Slider) Kind() Kind   { return KindSlider }
func (Text) Kind() Kind     { return KindText }
func (Checkbox) Kind() Kind { return KindCheckbox }
func (Dropdown) Kind() Kind { return KindDropdown }

func (Slider) isOption()   {}
func (Text) isOption()     {}
func (Checkbox) isOption() {}
func (Dropdown) isOption() {}

// Logger receives validation messages.
type Logger interface {
	Log(msg string, overwrite bool)
}

// Set is an ordered, immutable collection of options.
type Set struct {
	opts  []Option
	index map[string]int
}

// Options returns the options in declaration order.
func (s *Set) Options() []Option {
	return append([]Option(nil), s.opts...)
}

// Lookup returns the option with the given key.
func (s *Set) Lookup(key string) (Option, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.opts[i], true
}

// Defaults returns the default value of every option.
func (s *Set) Defaults() Values {
	v := make(Values, len(s.opts))
	for _, o := range s.opts {
		v[o.Info().Key] = defaultValue(o)
	}
	return v
}

// Load validates raw against the set. Keys are checked in sorted order and
// validation stops at the first problem, which is logged exactly once.
// Missing keys take their defaults.
func (s *Set) Load(raw map[string]any, log Logger) (Values, bool) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := s.Defaults()
	for _, k := range keys {
		opt, ok := s.Lookup(k)
		if !ok {
			log.Log(fmt.Sprintf("Unknown option: %s", k), false)
			return nil, false
		}
		v, err := normalize(opt, raw[k])
		if err != nil {
			log.Log(fmt.Sprintf("Invalid value for %s: %v", k, err), false)
			return nil, false
		}
		vals[k] = v
	}
	return vals, true
}

// Validate checks raw like Load but returns the problem as an error.
func (s *Set) Validate(raw map[string]any) (Values, error) {
	var msg string
	vals, ok := s.Load(raw, logFunc(func(m string) { msg = m }))
	if !ok {
		return nil, fmt.Errorf("options rejected: %s", msg)
	}
	return vals, nil
}

type logFunc func(string)

func (f logFunc) Log(msg string, _ bool) { f(msg) }

// Describe returns a one-line description of o for help output.
func Describe(o Option) string {
	m := o.Info()
	switch o := o.(type) {
	case Slider:
		return fmt.Sprintf("%s (%s %d-%d, default %d): %s", m.Key, o.Kind(), o.Min, o.Max, o.Default, m.Label)
	case Text:
		return fmt.Sprintf("%s (%s, e.g. %q): %s", m.Key, o.Kind(), o.Placeholder, m.Label)
	case Checkbox:
		return fmt.Sprintf("%s (%s [%s]): %s", m.Key, o.Kind(), strings.Join(o.Choices, "|"), m.Label)
	case Dropdown:
		return fmt.Sprintf("%s (%s [%s], default %s): %s", m.Key, o.Kind(), strings.Join(o.Choices, "|"), defaultValue(o), m.Label)
	}
	return m.Key
}

func defaultValue(o Option) any {
	switch o := o.(type) {
	case Slider:
		return o.Default
	case Text:
		return o.Default
	case Checkbox:
		return append([]string{}, o.Default...)
	case Dropdown:
		if o.Default == "" && len(o.Choices) > 0 {
			return o.Choices[0]
		}
		return o.Default
	}
	panic(fmt.Sprintf("options: unhandled option type %T", o))
}

func normalize(o Option, raw any) (any, error) {
	switch o := o.(type) {
	case Slider:
		n, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		if n < o.Min || n > o.Max {
			return nil, fmt.Errorf("%d is outside [%d, %d]", n, o.Min, o.Max)
		}
		return n, nil
	case Text:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", raw)
		}
		return s, nil
	case Checkbox:
		return checked(o, raw)
	case Dropdown:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected one of %v, got %T", o.Choices, raw)
		}
		if !contains(o.Choices, s) {
			return nil, fmt.Errorf("%q is not one of %v", s, o.Choices)
		}
		return s, nil
	}
	panic(fmt.Sprintf("options: unhandled option type %T", o))
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float32:
		return integral(float64(v))
	case float64:
		return integral(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", v.String())
		}
		return integral(f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", raw)
}

func integral(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expected a whole number, got %v", f)
	}
	return int(f), nil
}

func checked(o Checkbox, raw any) ([]string, error) {
	var picked []string
	switch v := raw.(type) {
	case bool:
		if v && len(o.Choices) > 0 {
			picked = []string{o.Choices[0]}
		}
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return checked(o, b)
		}
		if v != "" {
			picked = strings.Split(v, ",")
		}
	case []string:
		picked = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of choices, got %T element", item)
			}
			picked = append(picked, s)
		}
	default:
		return nil, fmt.Errorf("expected a list of choices, got %T", raw)
	}
	out := make([]string, 0, len(picked))
	for _, p := range picked {
		if !contains(o.Choices, p) {
			return nil, fmt.Errorf("%q is not one of %v", p, o.Choices)
		}
		out = append(out, p)
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
