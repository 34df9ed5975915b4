package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scape-bot/internal/bots"
	"scape-bot/internal/options"
)

func newBotsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bots",
		Short: "List the available bots and their options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, name := range bots.Names() {
				bot, err := bots.New(name, a.cfg)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s (%s)\n  %s\n", name, bot.Title(), bot.Description())
				for _, o := range bot.Options().Options() {
					fmt.Fprintf(out, "  --set %s=...  %s\n", o.Info().Key, options.Describe(o))
				}
			}
			return nil
		},
	}
}
