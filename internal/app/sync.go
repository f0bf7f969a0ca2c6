package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/john/themer/internal/api"
	"github.com/john/themer/internal/metrics"
	"github.com/john/themer/internal/storage"
	"github.com/john/themer/internal/theme"
)

// TokenSource supplies the bearer credential for preference requests
type TokenSource interface {
	GetToken() (string, error)
}

// PreferenceWriter is the part of the preference client the syncer needs
type PreferenceWriter interface {
	SetPreference(ctx context.Context, token, themeID string) (*api.Result, error)
}

// RemoteSyncer writes selections to the remote preference service and
// journals every attempt
type RemoteSyncer struct {
	client  PreferenceWriter
	tokens  TokenSource
	journal *storage.SyncJournal
	metrics *metrics.Metrics
	logger  *log.Logger
}

var _ theme.Syncer = (*RemoteSyncer)(nil)

// NewRemoteSyncer creates a syncer. journal and m may be nil.
func NewRemoteSyncer(client PreferenceWriter, tokens TokenSource, journal *storage.SyncJournal, m *metrics.Metrics, logger *log.Logger) *RemoteSyncer {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &RemoteSyncer{
		client:  client,
		tokens:  tokens,
		journal: journal,
		metrics: m,
		logger:  logger,
	}
}

// SyncPreference implements theme.Syncer. A missing token is reported as
// theme.ErrNoCredential.
func (rs *RemoteSyncer) SyncPreference(ctx context.Context, themeID string) error {
	token, err := rs.tokens.GetToken()
	if err != nil {
		rs.record(storage.SyncEntry{Theme: themeID, Outcome: storage.OutcomeFailure, Error: err.Error()})
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		rs.record(storage.SyncEntry{Theme: themeID, Outcome: storage.OutcomeSkipped, Error: theme.ErrNoCredential.Error()})
		return theme.ErrNoCredential
	}

	start := time.Now()
	result, err := rs.client.SetPreference(ctx, token, themeID)
	latency := time.Since(start)

	entry := storage.SyncEntry{
		Theme:     themeID,
		Outcome:   storage.OutcomeSuccess,
		LatencyMs: latency.Milliseconds(),
	}
	if result != nil {
		entry.RequestID = result.RequestID
		entry.StatusCode = result.StatusCode
	}
	if err != nil {
		entry.Outcome = storage.OutcomeFailure
		entry.Error = err.Error()
	}
	rs.record(entry)

	if rs.metrics != nil {
		rs.metrics.ObserveSync(latency)
	}

	if err != nil {
		return fmt.Errorf("failed to sync theme %q: %w", themeID, err)
	}
	rs.logger.Debug("Synced theme preference", "theme", themeID, "latency", latency)
	return nil
}

func (rs *RemoteSyncer) record(entry storage.SyncEntry) {
	if rs.journal == nil {
		return
	}
	if err := rs.journal.Record(entry); err != nil {
		rs.logger.Warn("Failed to journal sync attempt", "theme", entry.Theme, "error", err)
	}
}
