package options

// Values holds validated option values keyed by option key.
//
// Value types by kind: Slider int, Text string, Checkbox []string,
// Dropdown string.
type Values map[string]any

// Int returns a slider value.
func (v Values) Int(key string) int {
	n, _ := v[key].(int)
	return n
}

// String returns a text or dropdown value.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Strings returns the selected checkbox choices.
func (v Values) Strings(key string) []string {
	s, _ := v[key].([]string)
	return s
}

// Bool reports whether a checkbox has any choice selected.
func (v Values) Bool(key string) bool {
	return len(v.Strings(key)) > 0
}

// Raw returns a copy as a plain map, suitable for saving and reloading.
func (v Values) Raw() map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		if s, ok := val.([]string); ok {
			val = append([]string{}, s...)
		}
		out[k] = val
	}
	return out
}
