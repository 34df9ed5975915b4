package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"scape-bot/internal/game"
	"scape-bot/internal/inspect"
	"scape-bot/internal/ocr"
	"scape-bot/internal/vision"
)

var fonts = map[string]ocr.Font{
	"plain11": ocr.Plain11,
	"plain12": ocr.Plain12,
	"bold12":  ocr.Bold12,
}

var textColors = []vision.Color{
	game.OffWhiteText, game.OffCyanText, game.OffGreenText,
	game.OffOrangeText, game.YellowText, game.RedText,
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		output  string
		sprites []string
		marks   []string
		regions []string
		font    string
		layout  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <screenshot.png>",
		Short: "Run the detectors on a saved client screenshot",
		Long: "Runs sprite search, object-marker detection and text recognition on a PNG of the " +
			"client area and saves a copy with every detection outlined.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			req := inspect.Request{
				Input:      args[0],
				Output:     output,
				Templates:  vision.NewTemplates(cfg.Vision.TemplateDir),
				Matcher:    vision.Matcher{ColorTolerance: cfg.Vision.ColorTolerance, PixelTolerance: cfg.Vision.PixelTolerance},
				Sprites:    sprites,
				Finder:     markFinder(cfg),
				DrawLayout: layout,
			}
			for _, name := range marks {
				m, ok := game.Marks[name]
				if !ok {
					return fmt.Errorf("unknown mark %q (available: %v)", name, slices.Sorted(maps.Keys(game.Marks)))
				}
				req.Marks = append(req.Marks, m)
			}
			if len(regions) > 0 {
				f, ok := fonts[strings.ToLower(font)]
				if !ok {
					return fmt.Errorf("unknown font %q (available: %v)", font, slices.Sorted(maps.Keys(fonts)))
				}
				engine, release := ocrEngine(cfg)
				defer release()
				if engine == nil {
					return fmt.Errorf("text regions need ocr.enabled")
				}
				req.Reader = ocr.NewReader(engine, uint8(min(max(cfg.Vision.ColorTolerance, 0), 255)))
				for _, r := range regions {
					req.Text = append(req.Text, inspect.TextQuery{Region: r, Font: f, Colors: textColors})
				}
			}

			rep, err := inspect.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Image: %dx%d\n", rep.Size.W, rep.Size.H)
			for _, name := range sprites {
				if r, ok := rep.Sprites[name]; ok {
					fmt.Fprintf(out, "Sprite %s: %s\n", name, r)
				} else {
					fmt.Fprintf(out, "Sprite %s: not found\n", name)
				}
			}
			for _, m := range req.Marks {
				fmt.Fprintf(out, "Mark %s: %d\n", m.Name, len(rep.Marks[m.Name]))
				for _, r := range rep.Marks[m.Name] {
					fmt.Fprintf(out, "  %s\n", r)
				}
			}
			for _, p := range req.Text {
				fmt.Fprintf(out, "Text %s: %q\n", p.Region, rep.Text[p.Region])
			}
			fmt.Fprintf(out, "Saved %s\n", rep.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "annotated image path (default <input>.annotated.png)")
	cmd.Flags().StringSliceVar(&sprites, "sprite", nil, "template names to search for, relative to the template directory")
	cmd.Flags().StringSliceVar(&marks, "mark", nil, "object-marker colors to detect (purple, cyan, green, red, pink)")
	cmd.Flags().StringSliceVar(&regions, "text", nil, "layout regions to read (game, mouseover, action, chat, minimap, control-panel)")
	cmd.Flags().StringVar(&font, "font", "plain12", "font for --text (plain11, plain12, bold12)")
	cmd.Flags().BoolVar(&layout, "layout", false, "outline the layout regions")
	return cmd
}
