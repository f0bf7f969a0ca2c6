package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/john/themer/internal/storage"
)

// configKeys lists the settings `config set` accepts
var configKeys = []string{"default-theme", "api-url", "sync", "log-level"}

func newConfigCmd(rt *runtime) *cobra.Command {
	config := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", a.Storage.ConfigManager.Path())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.Config)
		},
	}

	set := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change a setting (" + strings.Join(configKeys, ", ") + ")",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			if err := setConfig(a.Storage.ConfigManager, args[0], args[1], a.Catalog.Has); err != nil {
				return err
			}

			out := newOutput(cmd.OutOrStdout(), a)
			out.println(out.styles.Success.Render(fmt.Sprintf("Set %s to %s", args[0], args[1])))
			return nil
		},
	}

	config.AddCommand(show, set)
	return config
}

func setConfig(cm *storage.ConfigManager, key, value string, knownTheme func(string) bool) error {
	switch key {
	case "default-theme":
		if !knownTheme(value) {
			return fmt.Errorf("config: unknown theme %q", value)
		}
		return cm.UpdateDefaultTheme(value)
	case "api-url":
		return cm.UpdateAPIBaseURL(value)
	case "sync":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: sync must be true or false, got %q", value)
		}
		return cm.UpdateSyncEnabled(enabled)
	case "log-level":
		return cm.UpdateConfig(func(c *storage.Config) { c.LogLevel = strings.ToLower(value) })
	default:
		return fmt.Errorf("config: unknown key %q (known: %s)", key, strings.Join(configKeys, ", "))
	}
}
