package theme

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultSettleDelay is how long a session reports StateChanging after a
// selection, letting a UI hold off input during the visual transition
const DefaultSettleDelay = 300 * time.Millisecond

// State represents the transition state of a session
type State int

const (
	StateIdle State = iota
	StateChanging
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChanging:
		return "changing"
	default:
		return "unknown"
	}
}

// ErrNoCredential is returned by a Syncer when there is nothing to
// authenticate the remote write with. Sessions treat it as a silent no-op.
var ErrNoCredential = errors.New("no credential available")

// Syncer writes the theme preference to the remote preference store
type Syncer interface {
	SyncPreference(ctx context.Context, themeID string) error
}

// Observer receives notifications about applied themes and finished syncs
type Observer interface {
	ThemeApplied(themeID string)
	SyncFinished(themeID string, err error)
}

// SessionConfig wires a Session to its collaborators
type SessionConfig struct {
	Resolver    *Resolver
	Document    Document
	Store       Store
	Syncer      Syncer
	Observer    Observer
	SettleDelay time.Duration
	Logger      *log.Logger

	// DefaultTheme is used when no valid preference is stored. It must be a
	// catalog id; anything else means DefaultID.
	DefaultTheme string
}

// Session owns the active theme state. It is the only writer of the active
// id; applier and resolver never touch it.
type Session struct {
	mu sync.Mutex

	applier  *Applier
	store    Store
	syncer   Syncer
	observer Observer
	logger   *log.Logger

	settleDelay time.Duration
	settleSeq   uint64
	settleTimer *time.Timer

	activeID string
	current  Definition
	state    State

	// generation counts selections; only a sync for the latest one may
	// patch the cached user record
	generation uint64

	syncs  sync.WaitGroup
	closed bool
}

// NewSession creates a session whose active theme comes from the persisted
// preference, or the configured default when it is absent or unrecognized. Nothing is
// painted until Restore or Select is called.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewResolver(nil, cfg.Store, logger)
	}
	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	s := &Session{
		applier:     NewApplier(resolver, cfg.Document, logger),
		store:       cfg.Store,
		syncer:      cfg.Syncer,
		observer:    cfg.Observer,
		logger:      logger,
		settleDelay: settle,
		state:       StateIdle,
	}

	fallback := DefaultID
	if resolver.Catalog().Has(cfg.DefaultTheme) {
		fallback = cfg.DefaultTheme
	}
	s.activeID = s.initialID(resolver.Catalog(), fallback)
	s.current = resolver.Resolve(s.activeID)
	return s
}

func (s *Session) initialID(catalog *Catalog, fallback string) string {
	if s.store == nil {
		return fallback
	}

	id, ok, err := s.store.Get(KeyTheme)
	if err != nil {
		s.logger.Warn("Failed to read stored theme, using default", "error", err)
		return fallback
	}
	if !ok || !catalog.Has(id) {
		return fallback
	}
	return id
}

// Restore paints the current theme without persisting or syncing it
func (s *Session) Restore() Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := s.applier.Apply(s.activeID)
	s.activeID = def.ID
	s.current = def
	s.notifyApplied(def.ID)
	return def.Clone()
}

// Select makes id the active theme and syncs it to the remote store in the
// background. The theme is painted and persisted locally before Select
// returns; the remote write never affects local state.
func (s *Session) Select(id string) {
	s.selectTheme(id, true)
}

// SelectWithoutSync is Select without the remote write, for applying a
// preference that came from the remote store in the first place.
func (s *Session) SelectWithoutSync(id string) {
	s.selectTheme(id, false)
}

// Toggle switches between the dark and light themes
func (s *Session) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := DarkID
	if s.activeID == DarkID {
		next = LightID
	}
	s.selectLocked(next, true)
}

func (s *Session) selectTheme(id string, remoteSync bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(id, remoteSync)
}

// selectLocked applies id; s.mu must be held
func (s *Session) selectLocked(id string, remoteSync bool) {
	// Re-selecting custom is how edited custom colors get repainted.
	if id == s.activeID && id != CustomID {
		s.logger.Debug("Theme already active", "theme", id)
		return
	}

	s.state = StateChanging

	def := s.applier.Apply(id)
	s.activeID = def.ID
	s.current = def
	s.generation++
	s.notifyApplied(def.ID)

	s.persistActive(def.ID)

	if remoteSync && s.syncer != nil && !s.closed {
		s.startSync(def.ID, s.generation)
	}

	s.scheduleSettle()
}

func (s *Session) persistActive(id string) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(KeyTheme, id); err != nil {
		s.logger.Warn("Failed to persist theme", "theme", id, "error", err)
	}
}

// startSync runs the remote write detached from the caller. There is no
// cancellation: overlapping syncs may finish in any order.
func (s *Session) startSync(id string, generation uint64) {
	s.syncs.Add(1)
	go func() {
		defer s.syncs.Done()

		err := s.syncer.SyncPreference(context.Background(), id)
		if s.observer != nil {
			s.observer.SyncFinished(id, err)
		}

		switch {
		case err == nil:
			s.onSynced(id, generation)
		case errors.Is(err, ErrNoCredential):
			s.logger.Debug("Skipping theme sync, not signed in", "theme", id)
		default:
			s.logger.Warn("Failed to sync theme preference", "theme", id, "error", err)
		}
	}()
}

func (s *Session) onSynced(id string, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.logger.Debug("Dropping stale theme sync result", "theme", id)
		return
	}
	s.patchCachedUser(id)
}

// patchCachedUser mirrors a synced preference into the cached user record,
// keeping every other field of the record intact
func (s *Session) patchCachedUser(id string) {
	if s.store == nil {
		return
	}

	raw, ok, err := s.store.Get(KeyUser)
	if err != nil {
		s.logger.Warn("Failed to read cached user", "error", err)
		return
	}
	if !ok || raw == "" {
		s.logger.Debug("No cached user to update")
		return
	}

	var user map[string]any
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		s.logger.Warn("Cached user record is not an object, leaving it alone", "error", err)
		return
	}
	user["themePreference"] = id

	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("Failed to encode cached user", "error", err)
		return
	}
	if err := s.store.Set(KeyUser, string(data)); err != nil {
		s.logger.Warn("Failed to update cached user", "error", err)
	}
}

func (s *Session) scheduleSettle() {
	s.settleSeq++
	seq := s.settleSeq

	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.settleTimer = time.AfterFunc(s.settleDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.settleSeq == seq {
			s.state = StateIdle
		}
	})
}

func (s *Session) notifyApplied(id string) {
	if s.observer != nil {
		s.observer.ThemeApplied(id)
	}
}

// ActiveID returns the id of the theme currently painted
func (s *Session) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Current returns a copy of the definition currently painted
func (s *Session) Current() Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// State returns whether the session is idle or mid-transition
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsChanging reports whether a transition is in progress
func (s *Session) IsChanging() bool {
	return s.State() == StateChanging
}

// Wait blocks until every in-flight remote sync has finished
func (s *Session) Wait() {
	s.syncs.Wait()
}

// Close stops the transition timer and waits for in-flight syncs. Later
// selections still apply locally but are no longer synced.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.state = StateIdle
	s.mu.Unlock()

	s.syncs.Wait()
}
