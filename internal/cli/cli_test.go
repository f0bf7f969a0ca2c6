package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john/themer/internal/app"
	"github.com/john/themer/internal/storage"
	"github.com/john/themer/internal/theme"
)

func testOpener(dir string) Opener {
	return func(logger *log.Logger) (*app.App, error) {
		s, err := storage.NewAt(dir, logger)
		if err != nil {
			return nil, err
		}
		config, err := s.Initialize()
		if err != nil {
			return nil, err
		}
		config.SyncEnabled = false
		config.SettleDelay = 10 * time.Millisecond
		return app.New(app.Options{Storage: s, Config: config, Logger: logger})
	}
}

// run executes one themer invocation against dir
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()

	out, _, err := runInvocation(newInvocation(testOpener(dir), log.New(io.Discard)), stdin, args...)
	return out, err
}

func runInvocation(inv *invocation, stdin string, args ...string) (string, *invocation, error) {
	var out bytes.Buffer
	inv.root.SetOut(&out)
	inv.root.SetErr(io.Discard)
	inv.root.SetIn(strings.NewReader(stdin))
	inv.root.SetArgs(args)

	err := inv.execute()
	return out.String(), inv, err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, "", args...)
	require.NoError(t, err, "themer %s", strings.Join(args, " "))
	return out
}

func status(t *testing.T, dir string) app.Status {
	t.Helper()
	var st app.Status
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dir, "status", "--json")), &st))
	return st
}

func TestListJSON(t *testing.T) {
	dir := t.TempDir()

	var summaries []theme.Summary
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dir, "list", "--json")), &summaries))
	assert.Len(t, summaries, len(theme.NewCatalog().IDs()))
	assert.Equal(t, theme.LightID, summaries[0].ID)
}

func TestListMarksActive(t *testing.T) {
	out := mustRun(t, t.TempDir(), "list")
	assert.Contains(t, out, "● dark")
	assert.Contains(t, out, "  teal")
}

func TestSelectPersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "select", "teal")
	assert.Equal(t, "Applied Teal\n", out)

	st := status(t, dir)
	assert.Equal(t, theme.TealID, st.Theme.ID)
	assert.False(t, st.SyncEnabled)

	css := mustRun(t, dir, "css", "--raw")
	assert.Contains(t, css, "/* theme: teal */")
	assert.Contains(t, css, "--color-primary: #14b8a6;")
}

func TestSelectUnknown(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "select", "plaid")
	assert.Contains(t, out, `Unknown theme "plaid", using Dark`)
	assert.Equal(t, theme.DarkID, status(t, dir).Theme.ID)
}

func TestToggle(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "Applied Light\n", mustRun(t, dir, "toggle"))
	assert.Equal(t, "Applied Dark\n", mustRun(t, dir, "toggle"))
}

func TestBuildWithFlags(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "build", "--primary", "#FF5500", "--background", "#777777", "--surface", "#777777", "--text", "#888888")
	assert.Contains(t, out, "Applied custom theme")
	assert.Contains(t, out, "[  ] primary        #ff5500")
	assert.Contains(t, out, "Low contrast: text on background")

	assert.Equal(t, theme.CustomID, status(t, dir).Theme.ID)
	assert.Contains(t, mustRun(t, dir, "css", "--raw"), "--color-primary: #ff5500;")

	// Unspecified seeds keep the stored custom colors.
	mustRun(t, dir, "build", "--primary", "#00aa00")
	css := mustRun(t, dir, "css", "--raw")
	assert.Contains(t, css, "--color-primary: #00aa00;")
	assert.Contains(t, css, "--color-background: #777777;")
}

func TestBuildRejectsInvalidSeed(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "build", "--primary", "orange")

	var seedErr *theme.InvalidSeedError
	require.ErrorAs(t, err, &seedErr)
	assert.Equal(t, theme.RolePrimary, seedErr.Role)
	assert.Contains(t, FormatError(err), "primary must be a 6-digit hex color")
}

func TestCSSHighlightedWithoutColorIsPlain(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, mustRun(t, dir, "css", "--raw"), mustRun(t, dir, "css"))
}

func TestShow(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "show", "purple", "--plain")
	assert.Contains(t, out, "Royal Purple")
	assert.Contains(t, out, "color-primary")

	out = mustRun(t, dir, "show", "--plain")
	assert.Contains(t, out, "Dark")
	assert.Contains(t, out, "active")

	_, err := run(t, dir, "", "show", "plaid")
	assert.ErrorContains(t, err, `unknown theme "plaid"`)
}

func TestAuthTokenFromStdin(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "  secret-token \n", "auth", "set-token")
	require.NoError(t, err)
	assert.Equal(t, "Token saved\n", out)
	assert.True(t, status(t, dir).SignedIn)

	assert.Equal(t, "Token removed\n", mustRun(t, dir, "auth", "clear"))
	assert.False(t, status(t, dir).SignedIn)

	_, err = run(t, dir, "\n", "auth", "set-token")
	assert.ErrorContains(t, err, "token must not be empty")
}

func TestPullRequiresToken(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "pull")
	assert.True(t, errors.Is(err, theme.ErrNoCredential))
	assert.Contains(t, FormatError(err), "themer auth set-token")
}

func TestFailedCommandStillClosesApp(t *testing.T) {
	dir := t.TempDir()

	var opened *app.App
	open := func(logger *log.Logger) (*app.App, error) {
		a, err := testOpener(dir)(logger)
		opened = a
		return a, err
	}

	_, inv, err := runInvocation(newInvocation(open, log.New(io.Discard)), "", "show", "plaid")
	require.Error(t, err)
	require.NotNil(t, opened)
	assert.Nil(t, inv.rt.app)

	_, inv, err = runInvocation(newInvocation(open, log.New(io.Discard)), "", "select", "teal")
	require.NoError(t, err)
	assert.Nil(t, inv.rt.app)
	assert.False(t, opened.IsChanging())
}

func TestConfigSet(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "Set default-theme to green\n", mustRun(t, dir, "config", "set", "default-theme", "green"))

	var config storage.Config
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dir, "config", "show")), &config))
	assert.Equal(t, theme.GreenID, config.DefaultTheme)
	assert.Equal(t, theme.GreenID, status(t, dir).Theme.ID)

	_, err := run(t, dir, "", "config", "set", "default-theme", "plaid")
	assert.ErrorContains(t, err, "unknown theme")

	_, err = run(t, dir, "", "config", "set", "sync", "maybe")
	assert.ErrorContains(t, err, "sync must be true or false")

	_, err = run(t, dir, "", "config", "set", "log-level", "chatty")
	assert.Error(t, err)

	_, err = run(t, dir, "", "config", "set", "colour", "red")
	assert.ErrorContains(t, err, "unknown key")
}

func TestRenderStatus(t *testing.T) {
	dir := t.TempDir()
	a, err := testOpener(dir)(log.New(io.Discard))
	require.NoError(t, err)
	defer a.Close()
	a.Restore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := &app.Status{
		Theme:         a.Current().Summary(),
		SyncEnabled:   true,
		PreferenceURL: "http://localhost:3000/api/users/theme",
		ConfigDir:     dir,
		LastSync: &storage.SyncEntry{
			Timestamp: now.Add(-2 * time.Minute),
			Theme:     theme.BlueID,
			Outcome:   storage.OutcomeFailure,
			Error:     "preference API Error (502): bad gateway",
		},
		LastSuccess: &storage.SyncEntry{
			Timestamp: now.Add(-3 * time.Hour),
			Theme:     theme.RedID,
			Outcome:   storage.OutcomeSuccess,
			RequestID: "0b3c2f1a-8a3e-4c1d-9f0e-5d2b7c6a1e4f",
			LatencyMs: 120,
		},
	}

	var buf bytes.Buffer
	renderStatus(newOutput(&buf, a), st, now)
	out := buf.String()

	assert.Contains(t, out, "Dark (dark)")
	assert.Contains(t, out, "http://localhost:3000/api/users/theme")
	assert.Contains(t, out, "no  (themer auth set-token)")
	assert.Contains(t, out, "failure blue, 2 minutes ago")
	assert.Contains(t, out, "bad gateway")
	assert.Contains(t, out, "success red, 3 hours ago, 120ms [0b3c2f1a]")

	buf.Reset()
	renderStatus(newOutput(&buf, a), &app.Status{Theme: st.Theme}, now)
	assert.Contains(t, buf.String(), "disabled")
}
