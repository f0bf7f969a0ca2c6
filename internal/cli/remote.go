package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/john/themer/internal/server"
	"github.com/john/themer/internal/utils"
)

func newPullCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Apply the theme stored on the preference service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			ctx, stop := utils.SignalContext(cmd.Context())
			defer stop()

			id, err := a.PullRemotePreference(ctx)
			if err != nil {
				return err
			}

			out := newOutput(cmd.OutOrStdout(), a)
			if id == "" {
				out.println(out.styles.Muted.Render("No theme stored remotely, keeping " + a.Current().DisplayName))
				return nil
			}
			out.println(out.styles.Success.Render("Applied " + a.Current().DisplayName + " from the preference service"))
			return nil
		},
	}
}

func newServeCmd(rt *runtime) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the active stylesheet, theme API and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.Config.ListenAddr
			}

			ctx, stop := utils.SignalContext(cmd.Context())
			defer stop()

			return server.New(a, addr, rt.logger.WithPrefix("server")).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newAuthCmd(rt *runtime) *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage the preference service credential",
	}

	setToken := &cobra.Command{
		Use:   "set-token [token]",
		Short: "Store the bearer token used for syncing",
		Long:  "Store the bearer token. Without an argument it is read from stdin, or asked for when stdin is a terminal.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			var token string
			switch {
			case len(args) == 1:
				token = args[0]
			case isTerminal(cmd.InOrStdin()):
				err := huh.NewInput().
					Title("Preference service token").
					Password(true).
					Value(&token).
					Run()
				if err != nil {
					return err
				}
			default:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = line
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("token must not be empty")
			}
			if err := a.Storage.KeyStore.SaveToken(token); err != nil {
				return err
			}

			out := newOutput(cmd.OutOrStdout(), a)
			out.println(out.styles.Success.Render("Token saved"))
			return nil
		},
	}

	clearToken := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}
			if err := a.Storage.KeyStore.DeleteToken(); err != nil {
				return err
			}

			out := newOutput(cmd.OutOrStdout(), a)
			out.println(out.styles.Success.Render("Token removed"))
			return nil
		},
	}

	auth.AddCommand(setToken, clearToken)
	return auth
}

// isTerminal reports whether r is an interactive terminal
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
