package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/john/themer/internal/theme"
	"github.com/john/themer/internal/ui/components"
	"github.com/john/themer/internal/ui/styles"
)

func themeIDs() []string {
	return theme.NewCatalog().IDs()
}

func newListCmd(rt *runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			summaries := a.Catalog.List()
			active := a.Session.ActiveID()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}

			out := newOutput(cmd.OutOrStdout(), a)
			for _, s := range summaries {
				marker := "  "
				name := s.DisplayName
				if s.ID == active {
					marker = out.styles.Active.Render("● ")
					name = out.styles.Active.Render(name)
				}
				out.printf("%s%-8s %s  %s\n", marker, s.ID, name,
					out.styles.Muted.Render(styles.TruncateText(s.Description, 60)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

func newShowCmd(rt *runtime) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:       "show [theme]",
		Short:     "Describe a theme and preview its palette",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: themeIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			def := a.Current()
			if len(args) == 1 {
				found, ok := a.Catalog.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown theme %q (known: %s)", args[0], strings.Join(a.Catalog.IDs(), ", "))
				}
				if found.ID == theme.CustomID {
					found = a.Resolver.Resolve(theme.CustomID)
				}
				def = found
			}

			out := newOutput(cmd.OutOrStdout(), a)
			support := out.renderer.Support()
			if plain {
				support.IsMonochrome = true
			}

			md := styles.ThemeMarkdown(def, def.ID == a.Session.ActiveID())
			formatter := styles.NewTextFormatter(styles.FromDefinition(def), 80, support)
			rendered, err := formatter.RenderMarkdown(md)
			if err != nil {
				rt.logger.Debug("Markdown rendering failed, printing source", "error", err)
			}
			out.println(rendered)

			if !support.IsMonochrome {
				out.println()
				out.println(out.renderer.Card(def))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print without colors")
	return cmd
}

func newSelectCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "select <theme>",
		Short:     "Apply a theme and sync it to the preference service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: themeIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			def, known := a.Select(args[0])
			out := newOutput(cmd.OutOrStdout(), a)
			if !known {
				out.println(out.styles.Warning.Render(
					fmt.Sprintf("Unknown theme %q, using %s", args[0], def.DisplayName)))
				return nil
			}
			out.println(out.styles.Success.Render("Applied " + def.DisplayName))
			return nil
		},
	}
}

func newToggleCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Switch between the dark and light themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			def := a.Toggle()
			out := newOutput(cmd.OutOrStdout(), a)
			out.println(out.styles.Success.Render("Applied " + def.DisplayName))
			return nil
		},
	}
}

func newPickCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a theme interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			out := newOutput(cmd.OutOrStdout(), a)
			return components.RunPicker(a, a.Catalog, out.renderer)
		},
	}
}
