// Package snapshot serializes the record store to a durable key-value store
// and reconciles a saved snapshot with a freshly-built roster on startup.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labtrack/labtrack/internal/notify"
	"github.com/labtrack/labtrack/internal/progress"
	"github.com/labtrack/labtrack/internal/roster"
)

// DefaultKey is the store key the snapshot is persisted under.
const DefaultKey = "researchProgressData"

// Snapshot is the persisted form of the whole record store.
type Snapshot struct {
	Members  []*roster.Member `json:"members"`
	LastSave time.Time        `json:"lastSave"`
}

// Manager owns the save and load-with-merge paths.
type Manager struct {
	kv       Store
	key      string
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithKey overrides the persistence key.
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a snapshot manager over a durable store.
func NewManager(kv Store, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		kv:       kv,
		key:      DefaultKey,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save serializes the record store and writes it under the snapshot key.
// Safe to call at any time, including with no edits since the last save.
func (m *Manager) Save(ctx context.Context, store *progress.Store) error {
	snap := Snapshot{
		Members:  store.Members(),
		LastSave: m.now(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := m.kv.Set(ctx, m.key, data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	m.logger.Debug("snapshot saved", "key", m.key, "bytes", len(data))
	return nil
}

// Load reads the persisted snapshot and merges it into the fresh roster.
// Every failure is soft: a missing, unreadable or malformed snapshot is
// reported and the fresh roster is returned unchanged, so the session always
// starts in a well-defined state.
func (m *Manager) Load(ctx context.Context, fresh []*roster.Member) []*roster.Member {
	data, err := m.kv.Get(ctx, m.key)
	if errors.Is(err, ErrNotFound) {
		m.logger.Info("no saved snapshot, starting fresh")
		return fresh
	}
	if err != nil {
		m.logger.Error("failed to read snapshot", "error", err)
		m.notifier.Notify("Could not read saved data; starting fresh", notify.LevelWarning)
		return fresh
	}

	snap, err := decode(data)
	if err != nil {
		m.logger.Error("failed to parse snapshot", "error", err)
		m.notifier.Notify("Saved data is corrupt; starting fresh", notify.LevelWarning)
		return fresh
	}

	merged := Merge(fresh, snap.Members)
	m.notifier.Notify("Loaded saved data", notify.LevelInfo)
	return merged
}

// decode parses a snapshot, rejecting unknown shapes at the boundary.
func decode(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
