package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Sync outcomes recorded in the journal
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

const (
	journalPrefix     = "sync-"
	journalSuffix     = ".jsonl"
	journalDateLayout = "2006-01-02"

	// DefaultJournalRetainDays is how long journal files are kept
	DefaultJournalRetainDays = 30
)

// SyncEntry is one remote preference sync attempt
type SyncEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Theme      string    `json:"theme"`
	Outcome    string    `json:"outcome"`
	RequestID  string    `json:"request_id,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	Error      string    `json:"error,omitempty"`
}

// SyncJournal appends sync attempts to daily JSON Lines files
type SyncJournal struct {
	mu         sync.Mutex
	dir        string
	retainDays int
	now        func() time.Time
	logger     *log.Logger
}

// NewSyncJournal creates a journal under configDir/journal
func NewSyncJournal(configDir string, retainDays int) (*SyncJournal, error) {
	if retainDays <= 0 {
		retainDays = DefaultJournalRetainDays
	}

	dir := filepath.Join(configDir, "journal")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	return &SyncJournal{
		dir:        dir,
		retainDays: retainDays,
		now:        time.Now,
		logger:     log.New(os.Stderr),
	}, nil
}

// Record appends an entry, stamping it if the timestamp is unset
func (sj *SyncJournal) Record(entry SyncEntry) error {
	sj.mu.Lock()
	defer sj.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = sj.now()
	}
	entry.Timestamp = entry.Timestamp.UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal sync entry: %w", err)
	}

	filePath := filepath.Join(sj.dir, journalPrefix+entry.Timestamp.Format(journalDateLayout)+journalSuffix)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open journal file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write sync entry: %w", err)
	}
	return nil
}

// Entries returns entries at or after since, oldest first. A zero since
// returns everything.
func (sj *SyncJournal) Entries(since time.Time) ([]SyncEntry, error) {
	sj.mu.Lock()
	defer sj.mu.Unlock()

	files, err := sj.files()
	if err != nil {
		return nil, err
	}

	sinceDate := ""
	if !since.IsZero() {
		sinceDate = since.UTC().Format(journalDateLayout)
	}

	var entries []SyncEntry
	for _, name := range files {
		if sinceDate != "" && fileDate(name) < sinceDate {
			continue
		}

		fileEntries, err := readJournalFile(filepath.Join(sj.dir, name))
		if err != nil {
			sj.logger.Warn("Failed to read journal file", "file", name, "error", err)
			continue
		}
		for _, e := range fileEntries {
			if since.IsZero() || !e.Timestamp.Before(since) {
				entries = append(entries, e)
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// Last returns the most recent entry, or nil if the journal is empty
func (sj *SyncJournal) Last() (*SyncEntry, error) {
	return sj.lastMatching(func(SyncEntry) bool { return true })
}

// LastSuccess returns the most recent successful sync, or nil
func (sj *SyncJournal) LastSuccess() (*SyncEntry, error) {
	return sj.lastMatching(func(e SyncEntry) bool { return e.Outcome == OutcomeSuccess })
}

func (sj *SyncJournal) lastMatching(match func(SyncEntry) bool) (*SyncEntry, error) {
	entries, err := sj.Entries(time.Time{})
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if match(entries[i]) {
			e := entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

// Prune removes journal files older than the retention period and returns
// how many were deleted
func (sj *SyncJournal) Prune() (int, error) {
	sj.mu.Lock()
	defer sj.mu.Unlock()

	files, err := sj.files()
	if err != nil {
		return 0, err
	}

	cutoff := sj.now().UTC().AddDate(0, 0, -sj.retainDays).Format(journalDateLayout)
	deleted := 0
	for _, name := range files {
		if fileDate(name) >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(sj.dir, name)); err != nil {
			sj.logger.Warn("Failed to delete old journal file", "file", name, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		sj.logger.Debug("Pruned sync journal", "deleted", deleted, "retain_days", sj.retainDays)
	}
	return deleted, nil
}

func (sj *SyncJournal) files() ([]string, error) {
	dirEntries, err := os.ReadDir(sj.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	var names []string
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, journalPrefix) || !strings.HasSuffix(name, journalSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func fileDate(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, journalPrefix), journalSuffix)
}

func readJournalFile(path string) ([]SyncEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []SyncEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry SyncEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // skip malformed lines
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}
