package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/john/themer/internal/app"
	"github.com/john/themer/internal/storage"
	"github.com/john/themer/internal/utils"
)

func newStatusCmd(rt *runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active theme and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load()
			if err != nil {
				return err
			}

			st := a.Status()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}

			renderStatus(newOutput(cmd.OutOrStdout(), a), st, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}

func renderStatus(out *output, st *app.Status, now time.Time) {
	row := func(label, value string) {
		out.printf("%s %s\n", out.styles.Label.Render(label), value)
	}

	row("Theme", fmt.Sprintf("%s (%s)", st.Theme.DisplayName, st.Theme.ID))
	row("State", st.State.String())
	row("Config", st.ConfigDir)

	if !st.SyncEnabled {
		row("Sync", out.styles.Muted.Render("disabled"))
		return
	}
	row("Sync", st.PreferenceURL)

	if st.SignedIn {
		row("Signed in", out.styles.Success.Render("yes"))
	} else {
		row("Signed in", out.styles.Warning.Render("no")+out.styles.Muted.Render("  (themer auth set-token)"))
	}

	row("Last sync", describeEntry(out, st.LastSync, now))
	if st.LastSync != nil && st.LastSync.Outcome != storage.OutcomeSuccess {
		row("Last success", describeEntry(out, st.LastSuccess, now))
	}
}

func describeEntry(out *output, e *storage.SyncEntry, now time.Time) string {
	if e == nil {
		return out.styles.Muted.Render("never")
	}

	outcome := out.styles.Success
	switch e.Outcome {
	case storage.OutcomeFailure:
		outcome = out.styles.Error
	case storage.OutcomeSkipped:
		outcome = out.styles.Warning
	}

	s := fmt.Sprintf("%s %s, %s", outcome.Render(e.Outcome), e.Theme, humanize.RelTime(e.Timestamp, now, "ago", "from now"))
	if e.LatencyMs > 0 {
		s += ", " + utils.FormatDuration(time.Duration(e.LatencyMs)*time.Millisecond)
	}
	if e.RequestID != "" {
		s += " " + out.styles.Muted.Render("["+utils.ShortID(e.RequestID)+"]")
	}
	if e.Error != "" && e.Outcome == storage.OutcomeFailure {
		s += "\n" + out.styles.Label.Render("") + " " + out.styles.Muted.Render(e.Error)
	}
	return s
}
