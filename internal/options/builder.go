package options

import "fmt"

// Builder declares options in display order.
type Builder struct {
	opts []Option
	err  error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(o Option) *Builder {
	key := o.Info().Key
	if key == "" && b.err == nil {
		b.err = fmt.Errorf("option %q has an empty key", o.Info().Label)
	}
	for _, existing := range b.opts {
		if existing.Info().Key == key && b.err == nil {
			b.err = fmt.Errorf("duplicate option key %q", key)
		}
	}
	b.opts = append(b.opts, o)
	return b
}

// AddSlider adds an integer option in [min, max]. The default is min.
func (b *Builder) AddSlider(key, label string, min, max int) *Builder {
	if min > max && b.err == nil {
		b.err = fmt.Errorf("slider %q has min %d above max %d", key, min, max)
	}
	return b.add(Slider{Meta: Meta{Key: key, Label: label}, Min: min, Max: max, Default: min})
}

// AddText adds a free-form text option.
func (b *Builder) AddText(key, label, placeholder string) *Builder {
	return b.add(Text{Meta: Meta{Key: key, Label: label}, Placeholder: placeholder})
}

// AddCheckbox adds a multi-select option. Nothing is selected by default.
func (b *Builder) AddCheckbox(key, label string, choices []string) *Builder {
	return b.add(Checkbox{Meta: Meta{Key: key, Label: label}, Choices: choices})
}

// AddDropdown adds a single-select option. The first choice is the default.
func (b *Builder) AddDropdown(key, label string, choices []string) *Builder {
	if len(choices) == 0 && b.err == nil {
		b.err = fmt.Errorf("dropdown %q has no choices", key)
	}
	return b.add(Dropdown{Meta: Meta{Key: key, Label: label}, Choices: choices})
}

// Add appends an option built directly, e.g. a Slider with a custom default.
func (b *Builder) Add(o Option) *Builder {
	return b.add(o)
}

// Build returns the Set, or the first declaration error.
func (b *Builder) Build() (*Set, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &Set{opts: append([]Option(nil), b.opts...), index: make(map[string]int, len(b.opts))}
	for i, o := range s.opts {
		s.index[o.Info().Key] = i
	}
	return s, nil
}

// MustBuild is Build for statically declared option sets.
func (b *Builder) MustBuild() *Set {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
