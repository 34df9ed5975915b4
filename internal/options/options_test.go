package options

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ lines []string }

func (r *recorder) Log(msg string, _ bool) { r.lines = append(r.lines, msg) }

func combatSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewBuilder().
		AddSlider("running_time", "How long to run (minutes)?", 1, 600).
		AddText("loot_items", "Loot items (comma separated):", "Coins, Bones").
		AddSlider("hp_threshold", "Eat below HP %:", 0, 100).
		AddCheckbox("take_breaks", "Take breaks?", []string{" "}).
		AddDropdown("style", "Combat style", []string{"accurate", "aggressive", "defensive"}).
		Build()
	require.NoError(t, err)
	return s
}

func TestLoadAcceptsRunningTime(t *testing.T) {
	s := combatSet(t)
	log := &recorder{}

	vals, ok := s.Load(map[string]any{"running_time": 10}, log)
	require.True(t, ok)
	assert.Equal(t, 10, vals.Int("running_time"))
	assert.Empty(t, log.lines)

	// Untouched options keep their defaults.
	assert.Equal(t, 0, vals.Int("hp_threshold"))
	assert.Equal(t, "accurate", vals.String("style"))
	assert.False(t, vals.Bool("take_breaks"))
}

func TestLoadRejectsUnknownKeyWithOneLogEntry(t *testing.T) {
	s := combatSet(t)
	log := &recorder{}

	vals, ok := s.Load(map[string]any{
		"running_time": 10,
		"bogus":        1,
		"zzz":          "also unknown",
	}, log)
	assert.False(t, ok)
	assert.Nil(t, vals)
	require.Len(t, log.lines, 1)
	assert.Equal(t, "Unknown option: bogus", log.lines[0])
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	s := combatSet(t)
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"slider below min", map[string]any{"running_time": 0}},
		{"slider above max", map[string]any{"hp_threshold": 101}},
		{"slider fraction", map[string]any{"running_time": 1.5}},
		{"slider not a number", map[string]any{"running_time": "ten"}},
		{"text wrong type", map[string]any{"loot_items": 3}},
		{"checkbox unknown choice", map[string]any{"take_breaks": []string{"x"}}},
		{"dropdown unknown choice", map[string]any{"style": "ranged"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recorder{}
			_, ok := s.Load(tt.raw, log)
			assert.False(t, ok)
			assert.Len(t, log.lines, 1)
		})
	}
}

func TestLoadCoercesValues(t *testing.T) {
	s := combatSet(t)
	vals, ok := s.Load(map[string]any{
		"running_time": int64(30),
		"hp_threshold": "45",
		"take_breaks":  true,
		"loot_items":   "Coins, Bones",
		"style":        "defensive",
	}, &recorder{})
	require.True(t, ok)
	assert.Equal(t, 30, vals.Int("running_time"))
	assert.Equal(t, 45, vals.Int("hp_threshold"))
	assert.Equal(t, []string{" "}, vals.Strings("take_breaks"))
	assert.True(t, vals.Bool("take_breaks"))
	assert.Equal(t, "Coins, Bones", vals.String("loot_items"))
	assert.Equal(t, "defensive", vals.String("style"))

	vals, ok = s.Load(map[string]any{"running_time": 12.0, "take_breaks": []any{" "}}, &recorder{})
	require.True(t, ok)
	assert.Equal(t, 12, vals.Int("running_time"))
	assert.True(t, vals.Bool("take_breaks"))
}

func TestValidateReturnsError(t *testing.T) {
	s := combatSet(t)
	_, err := s.Validate(map[string]any{"nope": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown option: nope")
}

func TestBuilderErrors(t *testing.T) {
	_, err := NewBuilder().AddSlider("a", "A", 1, 2).AddText("a", "A", "").Build()
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewBuilder().AddSlider("a", "A", 5, 2).Build()
	assert.ErrorContains(t, err, "min")

	_, err = NewBuilder().AddDropdown("d", "D", nil).Build()
	assert.ErrorContains(t, err, "no choices")

	assert.Panics(t, func() { NewBuilder().AddText("", "x", "").MustBuild() })
}

func TestDescribe(t *testing.T) {
	s := combatSet(t)
	opt, ok := s.Lookup("running_time")
	require.True(t, ok)
	assert.Equal(t, "running_time (slider 1-600, default 1): How long to run (minutes)?", Describe(opt))
	assert.Len(t, s.Options(), 5)
	assert.Equal(t, KindDropdown.String(), "dropdown")
}

func TestFileRoundTrip(t *testing.T) {
	s := combatSet(t)
	f := NewFile(filepath.Join(t.TempDir(), "sub", "options.toml"))

	raw, err := f.Load("combat")
	require.NoError(t, err)
	assert.Nil(t, raw)

	vals, ok := s.Load(map[string]any{"running_time": 25, "take_breaks": true}, &recorder{})
	require.True(t, ok)
	require.NoError(t, f.Save("combat", vals))
	require.NoError(t, f.Save("nmz", Values{"running_time": 5}))

	raw, err = f.Load("combat")
	require.NoError(t, err)
	reloaded, ok := s.Load(raw, &recorder{})
	require.True(t, ok)
	assert.Equal(t, 25, reloaded.Int("running_time"))
	assert.True(t, reloaded.Bool("take_breaks"))
	assert.Equal(t, "accurate", reloaded.String("style"))

	raw, err = f.Load("nmz")
	require.NoError(t, err)
	assert.EqualValues(t, 5, raw["running_time"])
}
