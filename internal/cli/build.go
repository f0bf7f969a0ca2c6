package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/john/themer/internal/theme"
	"github.com/john/themer/internal/ui/components"
	"github.com/john/themer/internal/ui/styles"
)

func newBuildCmd(rt *runtime) *cobra.Command {
	var primary, background, surface, text string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and apply a custom theme from four seed colors",
		Long: "Build derives a full palette from primary, background, surface and text " +
			"seed colors, stores it and applies the custom theme. Without flags an " +
			"interactive form opens, prefilled with the current custom colors.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			current := a.Builder.CurrentSeeds()
			var seeds theme.SeedColors

			flags := cmd.Flags()
			if !flags.Changed("primary") && !flags.Changed("background") &&
				!flags.Changed("surface") && !flags.Changed("text") {
				var ok bool
				seeds, ok, err = components.RunBuilderForm(current)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			} else {
				seeds, err = theme.ParseSeeds(
					orSeed(primary, current.Primary),
					orSeed(background, current.Background),
					orSeed(surface, current.Surface),
					orSeed(text, current.Text),
				)
				if err != nil {
					return err
				}
			}

			result, err := a.BuildCustom(seeds)
			if err != nil {
				return err
			}

			out := newOutput(cmd.OutOrStdout(), a)
			out.println(out.styles.Success.Render("Applied custom theme"))
			out.println(out.renderer.Swatches(result.Palette))
			for _, w := range result.Warnings {
				out.println(out.styles.Warning.Render(fmt.Sprintf(
					"Low contrast: %s on %s is %.2f:1", w.Foreground, w.Background, w.Ratio)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&primary, "primary", "", "primary seed color (#rrggbb)")
	cmd.Flags().StringVar(&background, "background", "", "background seed color (#rrggbb)")
	cmd.Flags().StringVar(&surface, "surface", "", "surface seed color (#rrggbb)")
	cmd.Flags().StringVar(&text, "text", "", "text seed color (#rrggbb)")
	return cmd
}

// orSeed returns flag, or the current seed when the flag was not given
func orSeed(flag string, current theme.HexColor) string {
	if flag == "" {
		return string(current)
	}
	return flag
}

func newCSSCmd(rt *runtime) *cobra.Command {
	var raw, copyOut bool

	cmd := &cobra.Command{
		Use:   "css",
		Short: "Print the stylesheet of the active theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			css := a.Document.Stylesheet()
			out := newOutput(cmd.OutOrStdout(), a)

			if copyOut {
				if err := clipboard.WriteAll(css); err != nil {
					return fmt.Errorf("failed to copy stylesheet: %w", err)
				}
				rt.logger.Info("Copied stylesheet to clipboard", "theme", a.Session.ActiveID())
			}

			if raw {
				out.printf("%s", css)
				return nil
			}

			formatter := styles.NewTextFormatter(out.theme, 80, out.renderer.Support())
			highlighted, err := formatter.HighlightCode(css, styles.LangCSS)
			if err != nil {
				rt.logger.Debug("Highlighting failed", "error", err)
			}
			out.printf("%s", highlighted)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print without syntax highlighting")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the stylesheet to the clipboard")
	return cmd
}
