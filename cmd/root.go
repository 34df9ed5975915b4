// Package cmd implements the scape-bot command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scape-bot/internal/config"
	"scape-bot/internal/observability"
)

// Version is set at build time with -ldflags "-X scape-bot/cmd.Version=...".
var Version = "dev"

// app carries state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// NewRootCommand returns a fresh command tree. Each call has its own viper
// instance, so flags and config never leak between invocations.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "scape-bot",
		Short:         "Screen-driven automation scripts for the classic game client.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cmd); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "scape-bot"})
				return err
			}
			observability.Initialize(a.cfg.Logger, consoleWriter(cmd))
			observability.GetLogger().Debug("Starting scape-bot", zap.String("version", Version), zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			observability.Sync()
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./scape-bot.yaml or $HOME/.config/scape-bot/scape-bot.yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("backend", "", "client backend (desktop or browser)")
	pf.String("profile", "", "client profile (runelite or near-reality)")
	pf.String("window-title", "", "desktop client window title")
	pf.String("url", "", "browser client URL")
	pf.String("templates", "", "template image directory")
	pf.String("db", "", "run history database path")

	root.AddCommand(
		newRunCmd(a),
		newBotsCmd(a),
		newHistoryCmd(a),
		newInspectCmd(a),
	)
	return root
}

var flagKeys = map[string]string{
	"log-level":    "logger.level",
	"backend":      "client.backend",
	"profile":      "client.profile",
	"window-title": "client.window_title",
	"url":          "client.url",
	"templates":    "vision.template_dir",
	"db":           "store.path",
}

// initConfig reads defaults, the config file, SCAPEBOT_* variables and
// flags, in increasing precedence.
func (a *app) initConfig(cmd *cobra.Command) error {
	v := a.v
	config.SetDefaults(v)

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "scape-bot"))
		}
		v.SetConfigName("scape-bot")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SCAPEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// consoleWriter silences console logging for the UIs that own the terminal.
func consoleWriter(cmd *cobra.Command) zapcore.WriteSyncer {
	if f := cmd.Flags().Lookup("ui"); f != nil {
		switch f.Value.String() {
		case uiTUI, uiPlain:
			return zapcore.AddSync(io.Discard)
		}
	}
	return zapcore.Lock(os.Stderr)
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
