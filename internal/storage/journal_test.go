package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJournal(t *testing.T, now time.Time) *SyncJournal {
	t.Helper()
	sj, err := NewSyncJournal(t.TempDir(), 7)
	require.NoError(t, err)
	sj.logger = quietLogger()
	sj.now = func() time.Time { return now }
	return sj
}

func TestJournalRecordAndRead(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	sj := setupTestJournal(t, now)

	last, err := sj.Last()
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, sj.Record(SyncEntry{Theme: "blue", Outcome: OutcomeSuccess, StatusCode: 200}))
	require.NoError(t, sj.Record(SyncEntry{Timestamp: now.Add(time.Minute), Theme: "red", Outcome: OutcomeFailure, Error: "boom"}))

	entries, err := sj.Entries(time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, now, entries[0].Timestamp)
	assert.Equal(t, "red", entries[1].Theme)

	last, err = sj.Last()
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, last.Outcome)

	success, err := sj.LastSuccess()
	require.NoError(t, err)
	require.NotNil(t, success)
	assert.Equal(t, "blue", success.Theme)

	assert.FileExists(t, filepath.Join(sj.dir, "sync-2026-03-14.jsonl"))
}

func TestJournalEntriesSince(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	sj := setupTestJournal(t, now)

	require.NoError(t, sj.Record(SyncEntry{Timestamp: now.AddDate(0, 0, -2), Theme: "old", Outcome: OutcomeSuccess}))
	require.NoError(t, sj.Record(SyncEntry{Timestamp: now.Add(-time.Hour), Theme: "earlier", Outcome: OutcomeSkipped}))
	require.NoError(t, sj.Record(SyncEntry{Theme: "new", Outcome: OutcomeSuccess}))

	entries, err := sj.Entries(now.Add(-30 * time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Theme)
}

func TestJournalSkipsMalformedLines(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	sj := setupTestJournal(t, now)

	require.NoError(t, sj.Record(SyncEntry{Theme: "green", Outcome: OutcomeSuccess}))
	f, err := os.OpenFile(filepath.Join(sj.dir, "sync-2026-03-14.jsonl"), os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := sj.Entries(time.Time{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJournalPrune(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	sj := setupTestJournal(t, now)

	require.NoError(t, sj.Record(SyncEntry{Timestamp: now.AddDate(0, 0, -30), Theme: "ancient", Outcome: OutcomeSuccess}))
	require.NoError(t, sj.Record(SyncEntry{Timestamp: now.AddDate(0, 0, -7), Theme: "edge", Outcome: OutcomeSuccess}))
	require.NoError(t, sj.Record(SyncEntry{Theme: "today", Outcome: OutcomeSuccess}))
	require.NoError(t, os.WriteFile(filepath.Join(sj.dir, "notes.txt"), []byte("keep"), 0600))

	deleted, err := sj.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	entries, err := sj.Entries(time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "edge", entries[0].Theme)
	assert.FileExists(t, filepath.Join(sj.dir, "notes.txt"))
}

func TestJournalConcurrentRecords(t *testing.T) {
	sj := setupTestJournal(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sj.Record(SyncEntry{Theme: "grey", Outcome: OutcomeSuccess}))
		}()
	}
	wg.Wait()

	entries, err := sj.Entries(time.Time{})
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
