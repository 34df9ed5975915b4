package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scape-bot/internal/bots"
	"scape-bot/internal/config"
	"scape-bot/internal/options"
	"scape-bot/internal/progress"
	"scape-bot/internal/session"
	"scape-bot/internal/store"
)

// testEnv writes a config file that keeps every path inside a temp dir.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scape-bot.yaml")
	yaml := fmt.Sprintf("logger:\n  log_file: \"\"\n  level: error\nstore:\n  path: %q\noptions:\n  file: %q\nstatus:\n  enabled: false\n",
		filepath.Join(dir, "runs.db"), filepath.Join(dir, "options.toml"))
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return testEnv{dir: dir, config: path}
}

func (e testEnv) execute(args ...string) (string, error) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := newTestEnv(t).execute("--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestBotsListsRegistry(t *testing.T) {
	out, err := newTestEnv(t).execute("bots")
	require.NoError(t, err)
	assert.Contains(t, out, "fish-fryer (Fish Fryer)")
	assert.Contains(t, out, "--set run_time=...")
	assert.Contains(t, out, "combat (Combat)")
	assert.Contains(t, out, "--set loot_items=...")
	assert.Contains(t, out, "nmz (NMZ)")
}

func TestHistoryEmpty(t *testing.T) {
	out, err := newTestEnv(t).execute("history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestHistoryListsRuns(t *testing.T) {
	env := newTestEnv(t)
	st, err := store.Open(filepath.Join(env.dir, "runs.db"))
	require.NoError(t, err)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.StartRun(ctx, session.Run{ID: "0123456789abcdef", Bot: "Combat", Options: map[string]any{"running_time": 5}, Started: started}))
	require.NoError(t, st.FinishRun(ctx, "0123456789abcdef", session.OutcomeFinished, started.Add(5*time.Minute), 0.5, ""))
	require.NoError(t, st.StartRun(ctx, session.Run{ID: "fedcba", Bot: "NMZ", Options: map[string]any{}, Started: started.Add(time.Hour)}))
	require.NoError(t, st.Close())

	out, err := env.execute("history")
	require.NoError(t, err)
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "Combat")
	assert.Contains(t, out, "finished")
	assert.Contains(t, out, "5m 0s")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "running")

	out, err = env.execute("history", "--bot", "NMZ")
	require.NoError(t, err)
	assert.NotContains(t, out, "Combat")
}

func TestRunRejectsUnknownBot(t *testing.T) {
	_, err := newTestEnv(t).execute("run", "woodcutter")
	assert.ErrorContains(t, err, `unknown bot "woodcutter"`)
}

func TestRunRejectsUnknownUI(t *testing.T) {
	_, err := newTestEnv(t).execute("run", "nmz", "--ui", "web")
	assert.ErrorContains(t, err, "--ui must be one of")
}

func TestRunRejectsInvalidOption(t *testing.T) {
	_, err := newTestEnv(t).execute("run", "nmz", "--set", "running_time=9999")
	assert.ErrorContains(t, err, "options rejected")

	_, err = newTestEnv(t).execute("run", "nmz", "--set", "novalue")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SCAPEBOT_CLIENT_BACKEND", "telnet")
	_, err := newTestEnv(t).execute("bots")
	assert.ErrorContains(t, err, "client.backend must be")
}

func TestInspectRejectsUnknownMark(t *testing.T) {
	_, err := newTestEnv(t).execute("inspect", "shot.png", "--mark", "orange")
	assert.ErrorContains(t, err, `unknown mark "orange"`)
}

func TestParseSets(t *testing.T) {
	raw, err := parseSets([]string{"run_time=30", " take_breaks =true", "loot_items=Coins, Bones"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"run_time": "30", "take_breaks": "true", "loot_items": "Coins, Bones"}, raw)

	_, err = parseSets([]string{"=5"})
	assert.Error(t, err)
}

func TestResolveOptionsMergesSavedValues(t *testing.T) {
	file := options.NewFile(filepath.Join(t.TempDir(), "options.toml"))
	bot, err := bots.New("fish-fryer", config.Default())
	require.NoError(t, err)

	saved, err := bot.Options().Validate(map[string]any{"run_time": 30})
	require.NoError(t, err)
	require.NoError(t, file.Save("fish-fryer", saved))

	vals, err := resolveOptions("fish-fryer", bot, file, []string{"take_breaks=true"}, false)
	require.NoError(t, err)
	assert.Equal(t, 30, vals.Int("run_time"))
	assert.True(t, vals.Bool("take_breaks"))

	vals, err = resolveOptions("fish-fryer", bot, file, []string{"run_time=45"}, false)
	require.NoError(t, err)
	assert.Equal(t, 45, vals.Int("run_time"))
	assert.False(t, vals.Bool("take_breaks"))
}

func TestRelaySinkDropsUntilAttached(t *testing.T) {
	relay := &relaySink{}
	relay.Log("early", false)
	relay.Progress(0.1)

	rec := &progress.Recorder{}
	relay.set(rec)
	relay.Log("late", false)
	relay.Progress(0.2)

	assert.Equal(t, []string{"late"}, rec.Lines())
	assert.Equal(t, []float64{0.2}, rec.Fractions())
}
