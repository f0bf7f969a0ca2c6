package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/john/themer/internal/api"
	"github.com/john/themer/internal/metrics"
	"github.com/john/themer/internal/presentation"
	"github.com/john/themer/internal/storage"
	"github.com/john/themer/internal/theme"
)

// Options wires an App. Storage and Config are required; everything else
// has a default.
type Options struct {
	Storage *storage.Storage
	Config  *storage.Config

	// Store overrides the preference store, mostly for tests
	Store theme.Store

	// Tokens overrides the keystore as credential source
	Tokens TokenSource

	Document   *presentation.Document
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
	Logger     *log.Logger
}

// App is the application root: one engine session painting one document,
// backed by local storage and the remote preference service
type App struct {
	Config   *storage.Config
	Storage  *storage.Storage
	Catalog  *theme.Catalog
	Resolver *theme.Resolver
	Document *presentation.Document
	Session  *theme.Session
	Builder  *theme.Builder
	Metrics  *metrics.Metrics
	Client   *api.PreferenceClient

	store  theme.Store
	tokens TokenSource
	logger *log.Logger
}

// Open loads storage and config from the default location and creates an App
func Open(logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	s, err := storage.New(logger)
	if err != nil {
		return nil, err
	}

	config, err := s.Initialize()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(config.Level())

	return New(Options{Storage: s, Config: config, Logger: logger})
}

// New wires the engine from opts
func New(opts Options) (*App, error) {
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	store := opts.Store
	if store == nil {
		store = opts.Storage.Preferences
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = opts.Storage.KeyStore
	}
	doc := opts.Document
	if doc == nil {
		doc = presentation.NewDocument()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	retry := api.DefaultRetryConfig()
	retry.MaxRetries = opts.Config.MaxRetries
	client, err := api.NewPreferenceClient(api.Options{
		URL:         opts.Config.PreferenceURL(),
		UserAgent:   opts.Config.UserAgent,
		RetryConfig: retry,
		HTTPClient:  opts.HTTPClient,
		Logger:      logger.WithPrefix("api"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create preference client: %w", err)
	}

	catalog := theme.NewCatalog()
	resolver := theme.NewResolver(catalog, store, logger.WithPrefix("resolver"))

	// A nil syncer turns remote writes off entirely.
	var syncer theme.Syncer
	if opts.Config.SyncEnabled {
		syncer = NewRemoteSyncer(client, tokens, opts.Storage.Journal, m, logger.WithPrefix("sync"))
	}

	session := theme.NewSession(theme.SessionConfig{
		Resolver:     resolver,
		Document:     doc,
		Store:        store,
		Syncer:       syncer,
		Observer:     m,
		SettleDelay:  opts.Config.SettleDelay,
		Logger:       logger.WithPrefix("session"),
		DefaultTheme: opts.Config.DefaultTheme,
	})

	return &App{
		Config:   opts.Config,
		Storage:  opts.Storage,
		Catalog:  catalog,
		Resolver: resolver,
		Document: doc,
		Session:  session,
		Builder:  theme.NewBuilder(resolver, store, session, logger.WithPrefix("builder")),
		Metrics:  m,
		Client:   client,
		store:    store,
		tokens:   tokens,
		logger:   logger,
	}, nil
}

// Store returns the local preference store the engine uses
func (a *App) Store() theme.Store {
	return a.store
}

// Restore paints the persisted theme
func (a *App) Restore() theme.Definition {
	return a.Session.Restore()
}

// Select applies id and returns the definition now painted. Unknown ids fall
// back to the default theme; known reports whether id was recognized.
func (a *App) Select(id string) (def theme.Definition, known bool) {
	known = a.Catalog.Has(id)
	if !known {
		a.logger.Warn("Unknown theme, falling back", "theme", id, "fallback", theme.DefaultID)
	}
	a.Session.Select(id)
	return a.Session.Current(), known
}

// Toggle switches between dark and light
func (a *App) Toggle() theme.Definition {
	a.Session.Toggle()
	return a.Session.Current()
}

// Current returns the definition currently painted
func (a *App) Current() theme.Definition {
	return a.Session.Current()
}

// IsChanging reports whether a theme transition is in progress
func (a *App) IsChanging() bool {
	return a.Session.IsChanging()
}

// BuildCustom derives, stores and activates a custom palette
func (a *App) BuildCustom(seeds theme.SeedColors) (*theme.BuildResult, error) {
	result, err := a.Builder.Build(seeds)
	if err != nil {
		return nil, err
	}
	a.Metrics.CustomBuilt(len(result.Warnings))
	return result, nil
}

// PullRemotePreference fetches the remote preference, caches the returned
// user record and applies the theme without writing it back. It returns the
// id that was applied, or "" when the service has no preference.
func (a *App) PullRemotePreference(ctx context.Context) (string, error) {
	token, err := a.tokens.GetToken()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return "", theme.ErrNoCredential
	}

	pref, _, err := a.Client.GetPreference(ctx, token)
	if err != nil {
		return "", err
	}

	a.cacheUser(pref.Raw)

	id := pref.ThemePreference
	if id == "" {
		a.logger.Info("No remote theme preference stored")
		return "", nil
	}
	if !a.Catalog.Has(id) {
		a.logger.Warn("Remote preference is not a known theme, applying fallback", "theme", id)
	}

	a.Session.SelectWithoutSync(id)
	return a.Session.ActiveID(), nil
}

// cacheUser stores the user record returned by the service when it is a JSON
// object
func (a *App) cacheUser(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}

	var user map[string]any
	if err := json.Unmarshal(raw, &user); err != nil || user == nil {
		return
	}
	if err := a.store.Set(theme.KeyUser, string(raw)); err != nil {
		a.logger.Warn("Failed to cache user record", "error", err)
	}
}

// Close waits for in-flight syncs
func (a *App) Close() {
	a.Session.Close()
}
