package theme

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// testScope is an in-memory Scope
type testScope struct {
	variables  map[string]string
	styles     map[string]string
	attributes map[string]string
	classes    map[string]bool
}

func newTestScope() *testScope {
	return &testScope{
		variables:  make(map[string]string),
		styles:     make(map[string]string),
		attributes: make(map[string]string),
		classes:    make(map[string]bool),
	}
}

func (s *testScope) SetVariable(name, value string)  { s.variables[name] = value }
func (s *testScope) SetStyle(property, value string) { s.styles[property] = value }
func (s *testScope) SetAttribute(name, value string) { s.attributes[name] = value }
func (s *testScope) SetClass(name string, on bool) {
	if on {
		s.classes[name] = true
		return
	}
	delete(s.classes, name)
}

type testDocument struct {
	root *testScope
	body *testScope
}

func newTestDocument() *testDocument {
	return &testDocument{root: newTestScope(), body: newTestScope()}
}

func (d *testDocument) Root() Scope { return d.root }
func (d *testDocument) Body() Scope { return d.body }

// memStore is an in-memory Store that can be told to fail writes
type memStore struct {
	mu       sync.Mutex
	values   map[string]string
	failSets bool
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSets {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func (m *memStore) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// fakeSyncer records every sync and answers with err. When gate is set,
// syncs for the gated theme block until the gate channel is closed.
type fakeSyncer struct {
	mu     sync.Mutex
	calls  []string
	err    error
	gateID string
	gate   chan struct{}
}

func (f *fakeSyncer) SyncPreference(ctx context.Context, themeID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, themeID)
	gate := f.gate
	gated := f.gateID == themeID
	err := f.err
	f.mu.Unlock()

	if gated && gate != nil {
		<-gate
	}
	return err
}

func (f *fakeSyncer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// countingObserver counts applies and sync outcomes
type countingObserver struct {
	mu      sync.Mutex
	applied []string
	synced  []string
	failed  []string
}

func (o *countingObserver) ThemeApplied(themeID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, themeID)
}

func (o *countingObserver) SyncFinished(themeID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed = append(o.failed, themeID)
		return
	}
	o.synced = append(o.synced, themeID)
}

func (o *countingObserver) applyCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.applied)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
