package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scape-bot/internal/bots"
	"scape-bot/internal/clock"
	"scape-bot/internal/config"
	"scape-bot/internal/observability"
	"scape-bot/internal/options"
	"scape-bot/internal/progress"
	"scape-bot/internal/session"
	"scape-bot/internal/status"
	"scape-bot/internal/store"
	"scape-bot/internal/tray"
	"scape-bot/internal/tui"
)

// User interfaces for a run.
const (
	uiLog   = "log"
	uiPlain = "plain"
	uiTUI   = "tui"
	uiTray  = "tray"
)

type runFlags struct {
	ui     string
	sets   []string
	form   bool
	noSave bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:       "run <bot>",
		Short:     "Run a bot against the game client",
		Args:      cobra.ExactArgs(1),
		ValidArgs: bots.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch f.ui {
			case uiLog, uiPlain, uiTUI, uiTray:
			default:
				return fmt.Errorf("--ui must be one of %s, %s, %s or %s", uiLog, uiPlain, uiTUI, uiTray)
			}
			return a.runBot(cmd.Context(), args[0], f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&f.ui, "ui", uiLog, "user interface: log, plain, tui or tray")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "option value as key=value (repeatable)")
	cmd.Flags().BoolVar(&f.form, "form", false, "edit options in a terminal form before starting")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not save accepted options")
	return cmd
}

// parseSets turns key=value pairs into raw option values.
func parseSets(sets []string) (map[string]any, error) {
	raw := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		raw[k] = v
	}
	return raw, nil
}

// resolveOptions merges saved values and overrides, optionally through the
// terminal form. It returns nil values when the form was cancelled.
func resolveOptions(name string, bot session.Bot, file *options.File, sets []string, form bool) (options.Values, error) {
	raw, err := file.Load(name)
	if err != nil {
		observability.LogWarn("Saved options unreadable, using defaults: %v", err)
		raw = nil
	}
	overrides, err := parseSets(sets)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(raw)+len(overrides))
	for k, v := range raw {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}

	if form {
		return tui.RunForm(bot.Title(), bot.Options(), merged)
	}
	return bot.Options().Validate(merged)
}

// relaySink forwards to a sink that is attached once the user interface
// exists. Lines before that are dropped.
type relaySink struct {
	mu   sync.RWMutex
	sink progress.Sink
}

func (r *relaySink) set(s progress.Sink) {
	r.mu.Lock()
	r.sink = s
	r.mu.Unlock()
}

func (r *relaySink) get() progress.Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sink
}

func (r *relaySink) Log(msg string, overwrite bool) {
	if s := r.get(); s != nil {
		s.Log(msg, overwrite)
	}
}

func (r *relaySink) Progress(fraction float64) {
	if s := r.get(); s != nil {
		s.Progress(fraction)
	}
}

func (a *app) runBot(ctx context.Context, name string, f *runFlags, out io.Writer) error {
	cfg := a.cfg
	bot, err := bots.New(name, cfg)
	if err != nil {
		return err
	}
	profile, err := bots.LookupProfile(cfg.Client.Profile)
	if err != nil {
		return err
	}
	// An explicitly configured title wins over the profile's.
	if cfg.Client.WindowTitle == config.Default().Client.WindowTitle {
		cfg.Client.WindowTitle = profile.WindowTitle
	}

	file := options.NewFile(cfg.Options.File)
	vals, err := resolveOptions(name, bot, file, f.sets, f.form)
	if err != nil {
		return err
	}
	if vals == nil {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	if !f.noSave {
		if err := file.Save(name, vals); err != nil {
			observability.LogWarn("Failed to save options: %v", err)
		}
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	cl, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer cl.Close()

	engine, release := ocrEngine(cfg)
	defer release()

	relay := &relaySink{}
	caps := session.Capabilities{
		Screen: cl,
		Input:  cl,
		OCR:    engine,
		Marks:  markFinder(cfg),
		Sink:   progress.Multi{observability.NewSink(nil), relay},
	}
	var feed *status.Feed
	if cfg.Status.Enabled {
		feed = status.NewFeed(clock.Real{}, cfg.Status.MaxAge)
		caps.Status = feed
	}

	var onStatus func(session.Status)
	opts := []session.Option{
		session.WithStore(st),
		session.WithStatusHook(func(s session.Status) {
			if onStatus != nil {
				onStatus(s)
			}
		}),
	}
	if profile.Hook != nil {
		opts = append(opts, session.WithHook(profile.Hook))
	}
	sess, err := session.New(cfg, caps, opts...)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var done func(error)
	switch f.ui {
	case uiPlain:
		relay.set(progress.NewWriter(out))
	case uiTUI:
		runner := tui.NewRunner(bot.Title(), sess)
		relay.set(runner)
		onStatus = runner.SetStatus
		done = runner.Done
		return a.supervise(runCtx, cancel, sess, bot, vals, feed, done, func() error { return runner.Run() })
	case uiTray:
		app := tray.New(bot.Title(), sess, cancel)
		relay.set(app)
		onStatus = app.SetStatus
		done = func(error) { app.Quit() }
		return a.supervise(runCtx, cancel, sess, bot, vals, feed, done, func() error { app.Run(); return nil })
	}

	err = a.supervise(runCtx, cancel, sess, bot, vals, feed, nil, nil)
	fmt.Fprintf(out, "Run %s: %s\n", sess.RunID(), sess.Status())
	return err
}

// supervise runs the session, the status feed and the signal watcher in one
// group. ui, when set, runs on the calling goroutine until the user leaves
// it; the group is then waited for.
func (a *app) supervise(ctx context.Context, cancel context.CancelFunc, sess *session.Session, bot session.Bot,
	vals options.Values, feed *status.Feed, done func(error), ui func() error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		err := sess.Run(gctx, bot, vals.Raw())
		if done != nil {
			done(err)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if feed != nil {
		g.Go(func() error { return feed.Serve(gctx, a.cfg.Status.Listen) })
	}
	g.Go(func() error { return watchSignals(gctx, sess, cancel) })

	var uiErr error
	if ui != nil {
		uiErr = ui()
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return uiErr
}

// watchSignals stops the session on the first interrupt and cancels it on
// the second.
func watchSignals(ctx context.Context, sess *session.Session, cancel context.CancelFunc) error {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	stopping := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sig:
			if stopping {
				observability.LogWarn("Second interrupt, aborting.")
				cancel()
				return nil
			}
			stopping = true
			observability.LogInfo("Interrupt received, stopping. Interrupt again to abort.")
			sess.Stop()
		}
	}
}
