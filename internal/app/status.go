package app

import (
	"github.com/john/themer/internal/storage"
	"github.com/john/themer/internal/theme"
)

// Status is a snapshot of the engine and its sync state
type Status struct {
	Theme         theme.Summary
	State         theme.State
	SyncEnabled   bool
	SignedIn      bool
	PreferenceURL string
	ConfigDir     string
	LastSync      *storage.SyncEntry
	LastSuccess   *storage.SyncEntry
}

// Status collects the current status. Journal and keystore errors are
// logged and leave the corresponding fields empty.
func (a *App) Status() *Status {
	st := &Status{
		Theme:         a.Session.Current().Summary(),
		State:         a.Session.State(),
		SyncEnabled:   a.Config.SyncEnabled,
		PreferenceURL: a.Client.URL(),
		ConfigDir:     a.Storage.Dir,
	}

	if token, err := a.tokens.GetToken(); err != nil {
		a.logger.Warn("Failed to read token", "error", err)
	} else {
		st.SignedIn = token != ""
	}

	journal := a.Storage.Journal
	if journal == nil {
		return st
	}

	last, err := journal.Last()
	if err != nil {
		a.logger.Warn("Failed to read sync journal", "error", err)
		return st
	}
	st.LastSync = last

	if last != nil && last.Outcome == storage.OutcomeSuccess {
		st.LastSuccess = last
		return st
	}
	if st.LastSuccess, err = journal.LastSuccess(); err != nil {
		a.logger.Warn("Failed to read sync journal", "error", err)
	}
	return st
}
