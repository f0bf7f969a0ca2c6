// Package cli provides the themer command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/john/themer/internal/app"
	"github.com/john/themer/internal/presentation"
	"github.com/john/themer/internal/ui/styles"
)

// Opener creates the App a command runs against
type Opener func(logger *log.Logger) (*app.App, error)

// runtime is the state shared by every command of one invocation
type runtime struct {
	open    Opener
	app     *app.App
	logger  *log.Logger
	verbose bool
}

// load opens the App once and paints the persisted theme
func (rt *runtime) load() (*app.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	a, err := rt.open(rt.logger)
	if err != nil {
		return nil, err
	}
	// Open applies the configured level; the flag wins.
	if rt.verbose {
		rt.logger.SetLevel(log.DebugLevel)
	}
	a.Restore()

	rt.app = a
	return a, nil
}

// close waits for background syncs of the opened App
func (rt *runtime) close() {
	if rt.app != nil {
		rt.app.Close()
		rt.app = nil
	}
}

// output bundles a writer with a renderer and styles painted in the active
// theme
type output struct {
	w        io.Writer
	renderer *presentation.TerminalRenderer
	theme    *styles.Theme
	styles   *styles.Styles
}

func newOutput(w io.Writer, a *app.App) *output {
	t := styles.FromDefinition(a.Current())
	return &output{
		w:        w,
		renderer: presentation.NewTerminalRenderer(w),
		theme:    t,
		styles:   styles.NewStyles(t, lipgloss.NewRenderer(w)),
	}
}

func (o *output) println(a ...any) {
	fmt.Fprintln(o.w, a...)
}

func (o *output) printf(format string, a ...any) {
	fmt.Fprintf(o.w, format, a...)
}

// invocation is one run of the command tree together with the App it opens
type invocation struct {
	root *cobra.Command
	rt   *runtime
}

// execute runs the command and then waits for background syncs, whether or
// not the command failed
func (inv *invocation) execute() error {
	defer inv.rt.close()
	return inv.root.Execute()
}

func newInvocation(open Opener, logger *log.Logger) *invocation {
	rt := &runtime{open: open, logger: logger}
	return &invocation{root: newRootCmd(rt), rt: rt}
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "themer",
		Short: "Dynamic theme engine",
		Long: "themer manages the active color theme: it paints palettes as CSS " +
			"variables, persists the choice locally and syncs it to the preference service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newListCmd(rt),
		newShowCmd(rt),
		newSelectCmd(rt),
		newToggleCmd(rt),
		newPickCmd(rt),
		newBuildCmd(rt),
		newCSSCmd(rt),
		newStatusCmd(rt),
		newPullCmd(rt),
		newServeCmd(rt),
		newAuthCmd(rt),
		newConfigCmd(rt),
	)

	return root
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	inv := newInvocation(app.Open, log.New(os.Stderr))
	if err := inv.execute(); err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		os.Exit(1)
	}
}

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#EF4444")).
	Bold(true)

// FormatError renders an error the way the terminal shows it
func FormatError(err error) string {
	appErr := app.ClassifyError(err)
	if appErr == nil {
		return ""
	}
	return errorStyle.Render(appErr.Type.String()+" error:") + " " + appErr.GetUserMessage()
}
