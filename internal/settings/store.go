package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Store owns the in-memory Settings and persists the whole document after
// every mutation. Mutations are applied under a mutex and each one produces a
// numbered snapshot; snapshots are written by a single serialized writer so an
// older snapshot never lands on disk after a newer one.
type Store struct {
	mu       sync.RWMutex
	settings *Settings
	seq      uint64
	writer   *serialWriter
	logger   *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store holding the given settings
func NewStore(settings *Settings, persister Persister, opts ...Option) *Store {
	settings.normalize()
	s := &Store{
		settings: settings,
		writer:   &serialWriter{persister: persister},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted record and merges it over the defaults.
// Fields missing from the record keep their default value; unknown fields are
// ignored. An absent or empty record yields the defaults unchanged.
func Load(ctx context.Context, persister Persister, opts ...Option) (*Store, error) {
	data, err := persister.Load(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return NewStore(settings, persister, opts...), nil
}

// Decode merges a persisted record over the defaults
func Decode(data []byte) (*Settings, error) {
	settings := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return settings, nil
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	settings.normalize()

	return settings, nil
}

// Snapshot returns a copy of the current settings
func (s *Store) Snapshot() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// AddPlugin registers a beta plugin repository.
// The path is prepended to the plugin list when absent. When version is set
// and the repository has no frozen record yet, a frozen record is prepended;
// an existing frozen version is never replaced. The document is persisted once
// if either list changed and not at all otherwise.
func (s *Store) AddPlugin(ctx context.Context, repo, version string) error {
	return s.mutate(ctx, func(st *Settings) bool {
		dirty := false
		if !slices.Contains(st.PluginList, repo) {
			st.PluginList = slices.Insert(st.PluginList, 0, repo)
			dirty = true
		}
		if version != "" && frozenIndex(st, repo) < 0 {
			st.PluginSubListFrozenVersion = slices.Insert(st.PluginSubListFrozenVersion, 0, FrozenVersion{
				Repo:    repo,
				Version: version,
			})
			dirty = true
		}
		return dirty
	})
}

// HasPlugin reports whether repo is in the plugin list
func (s *Store) HasPlugin(repo string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.settings.PluginList, repo)
}

// Plugins returns the registered plugin repositories, most recent first
func (s *Store) Plugins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.settings.PluginList...)
}

// FrozenVersion returns the pinned version of repo, if any
func (s *Store) FrozenVersion(repo string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := frozenIndex(s.settings, repo); i >= 0 {
		return s.settings.PluginSubListFrozenVersion[i].Version, true
	}
	return "", false
}

// RemovePlugin drops repo from the plugin list and its frozen record
func (s *Store) RemovePlugin(ctx context.Context, repo string) error {
	return s.mutate(ctx, func(st *Settings) bool {
		before := len(st.PluginList) + len(st.PluginSubListFrozenVersion)
		st.PluginList = slices.DeleteFunc(st.PluginList, func(r string) bool {
			return r == repo
		})
		st.PluginSubListFrozenVersion = slices.DeleteFunc(st.PluginSubListFrozenVersion, func(f FrozenVersion) bool {
			return f.Repo == repo
		})
		return len(st.PluginList)+len(st.PluginSubListFrozenVersion) != before
	})
}

// AddTheme registers a beta theme with the checksum of its stylesheet.
// The record is prepended and persisted without checking for an existing
// record of the same repository.
func (s *Store) AddTheme(ctx context.Context, repo, css string) error {
	theme := ThemeInfo{
		Repo:       repo,
		LastUpdate: Checksum(css),
	}
	return s.mutate(ctx, func(st *Settings) bool {
		st.ThemesList = slices.Insert(st.ThemesList, 0, theme)
		return true
	})
}

// HasTheme reports whether any theme record matches repo
func (s *Store) HasTheme(repo string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.settings.ThemesList, func(t ThemeInfo) bool {
		return t.Repo == repo
	})
}

// Themes returns the registered theme records, most recent first
func (s *Store) Themes() []ThemeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ThemeInfo{}, s.settings.ThemesList...)
}

// UpdateThemeChecksum overwrites the checksum of every record matching repo.
// The document is persisted once per matching record.
func (s *Store) UpdateThemeChecksum(ctx context.Context, repo, checksum string) error {
	s.mu.RLock()
	var matches []int
	for i, t := range s.settings.ThemesList {
		if t.Repo == repo {
			matches = append(matches, i)
		}
	}
	s.mu.RUnlock()

	for _, idx := range matches {
		err := s.mutate(ctx, func(st *Settings) bool {
			if idx >= len(st.ThemesList) || st.ThemesList[idx].Repo != repo {
				return false
			}
			st.ThemesList[idx].LastUpdate = checksum
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveTheme drops every record matching repo
func (s *Store) RemoveTheme(ctx context.Context, repo string) error {
	return s.mutate(ctx, func(st *Settings) bool {
		before := len(st.ThemesList)
		st.ThemesList = slices.DeleteFunc(st.ThemesList, func(t ThemeInfo) bool {
			return t.Repo == repo
		})
		return len(st.ThemesList) != before
	})
}

// Update applies fn to the settings and persists the result
func (s *Store) Update(ctx context.Context, fn func(*Settings)) error {
	return s.mutate(ctx, func(st *Settings) bool {
		fn(st)
		st.normalize()
		return true
	})
}

// mutate applies fn under the lock and persists a snapshot when fn reports a change
func (s *Store) mutate(ctx context.Context, fn func(*Settings) bool) error {
	s.mu.Lock()
	if !fn(s.settings) {
		s.mu.Unlock()
		return nil
	}
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.logger.Debug("persisting settings", zap.Uint64("seq", seq), zap.Int("bytes", len(data)))
	return s.writer.write(ctx, seq, data)
}

func frozenIndex(st *Settings, repo string) int {
	return slices.IndexFunc(st.PluginSubListFrozenVersion, func(f FrozenVersion) bool {
		return f.Repo == repo
	})
}

// serialWriter is the single writer of settings snapshots
type serialWriter struct {
	mu        sync.Mutex
	persister Persister
	written   uint64
}

func (w *serialWriter) write(ctx context.Context, seq uint64, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A newer snapshot already reached the persister.
	if seq <= w.written {
		return nil
	}
	if err := w.persister.Save(ctx, data); err != nil {
		return err
	}
	w.written = seq
	return nil
}
