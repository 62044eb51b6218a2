package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPersister records every save
type memPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func (m *memPersister) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func (m *memPersister) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = append([]byte{}, data...)
	m.saves++
	return nil
}

func (m *memPersister) saved(t *testing.T) *Settings {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Settings
	require.NoError(t, json.Unmarshal(m.data, &s))
	return &s
}

func newTestStore(t *testing.T) (*Store, *memPersister) {
	t.Helper()
	p := &memPersister{}
	store, err := Load(context.Background(), p)
	require.NoError(t, err)
	return store, p
}

func TestLoadEmptyYieldsDefaults(t *testing.T) {
	for _, data := range []string{"", "   ", "{}", "null"} {
		t.Run(data, func(t *testing.T) {
			store, err := Load(context.Background(), &memPersister{data: []byte(data)})
			require.NoError(t, err)
			assert.Equal(t, Defaults(), store.Snapshot())
		})
	}
}

func TestLoadMergesPartialRecord(t *testing.T) {
	p := &memPersister{data: []byte(`{
		"pluginList": ["a/b"],
		"ribbonIconEnabled": false,
		"loggingPath": "Logs/brat",
		"someFutureField": 42
	}`)}

	store, err := Load(context.Background(), p)
	require.NoError(t, err)

	s := store.Snapshot()
	assert.Equal(t, []string{"a/b"}, s.PluginList)
	assert.False(t, s.RibbonIconEnabled)
	assert.Equal(t, "Logs/brat", s.LoggingPath)

	// untouched fields keep defaults
	assert.True(t, s.DebuggingMode)
	assert.True(t, s.NotificationsEnabled)
	assert.Empty(t, s.ThemesList)
	assert.NotNil(t, s.ThemesList)
	assert.Equal(t, 0, p.saves)
}

func TestLoadRejectsMalformedRecord(t *testing.T) {
	_, err := Load(context.Background(), &memPersister{data: []byte(`{"pluginList": `)})
	require.Error(t, err)
}

func TestAddPlugin(t *testing.T) {
	ctx := context.Background()

	t.Run("new path is prepended and persisted", func(t *testing.T) {
		store, p := newTestStore(t)

		require.NoError(t, store.AddPlugin(ctx, "first/repo", ""))
		require.NoError(t, store.AddPlugin(ctx, "second/repo", ""))

		assert.Equal(t, []string{"second/repo", "first/repo"}, store.Plugins())
		assert.Equal(t, 2, p.saves)
		assert.Equal(t, []string{"second/repo", "first/repo"}, p.saved(t).PluginList)
	})

	t.Run("same path twice keeps one occurrence and skips the write", func(t *testing.T) {
		store, p := newTestStore(t)

		require.NoError(t, store.AddPlugin(ctx, "owner/repo", ""))
		require.NoError(t, store.AddPlugin(ctx, "owner/repo", ""))

		assert.Equal(t, []string{"owner/repo"}, store.Plugins())
		assert.Equal(t, 1, p.saves)
	})

	t.Run("version creates one frozen record", func(t *testing.T) {
		store, p := newTestStore(t)

		require.NoError(t, store.AddPlugin(ctx, "owner/repo", "1.0.0"))

		s := store.Snapshot()
		assert.Equal(t, []FrozenVersion{{Repo: "owner/repo", Version: "1.0.0"}}, s.PluginSubListFrozenVersion)
		assert.Equal(t, 1, p.saves)
	})

	t.Run("first frozen version wins", func(t *testing.T) {
		store, p := newTestStore(t)

		require.NoError(t, store.AddPlugin(ctx, "owner/repo", "1.0.0"))
		require.NoError(t, store.AddPlugin(ctx, "owner/repo", "2.0.0"))

		version, ok := store.FrozenVersion("owner/repo")
		require.True(t, ok)
		assert.Equal(t, "1.0.0", version)
		assert.Len(t, store.Snapshot().PluginSubListFrozenVersion, 1)
		assert.Equal(t, 1, p.saves)
	})

	t.Run("version added to an existing plugin persists once", func(t *testing.T) {
		store, p := newTestStore(t)

		require.NoError(t, store.AddPlugin(ctx, "owner/repo", ""))
		require.NoError(t, store.AddPlugin(ctx, "owner/repo", "0.9.1"))

		assert.Equal(t, []string{"owner/repo"}, store.Plugins())
		version, ok := store.FrozenVersion("owner/repo")
		require.True(t, ok)
		assert.Equal(t, "0.9.1", version)
		assert.Equal(t, 2, p.saves)
	})

	t.Run("inputs are stored as given", func(t *testing.T) {
		store, _ := newTestStore(t)

		require.NoError(t, store.AddPlugin(ctx, "not a repo path", ""))
		assert.True(t, store.HasPlugin("not a repo path"))
	})
}

func TestMembership(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	assert.False(t, store.HasPlugin("owner/plugin"))
	assert.False(t, store.HasTheme("owner/theme"))

	require.NoError(t, store.AddPlugin(ctx, "owner/plugin", ""))
	require.NoError(t, store.AddTheme(ctx, "owner/theme", "body {}"))

	assert.True(t, store.HasPlugin("owner/plugin"))
	assert.True(t, store.HasTheme("owner/theme"))
	assert.False(t, store.HasPlugin("owner/theme"))
	assert.False(t, store.HasTheme("owner/plugin"))
}

func TestAddThemeKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	store, p := newTestStore(t)

	require.NoError(t, store.AddTheme(ctx, "owner/theme", "body { color: red; }"))
	require.NoError(t, store.AddTheme(ctx, "owner/theme", "body { color: blue; }"))

	themes := store.Themes()
	require.Len(t, themes, 2)
	assert.Equal(t, Checksum("body { color: blue; }"), themes[0].LastUpdate)
	assert.Equal(t, Checksum("body { color: red; }"), themes[1].LastUpdate)
	assert.Equal(t, 2, p.saves)
}

func TestUpdateThemeChecksum(t *testing.T) {
	ctx := context.Background()

	t.Run("no match does not persist", func(t *testing.T) {
		store, p := newTestStore(t)

		require.NoError(t, store.UpdateThemeChecksum(ctx, "owner/theme", "abc"))
		assert.Equal(t, 0, p.saves)
	})

	t.Run("single match persists once", func(t *testing.T) {
		store, p := newTestStore(t)
		require.NoError(t, store.AddTheme(ctx, "owner/theme", "a"))
		require.NoError(t, store.AddTheme(ctx, "other/theme", "b"))
		before := p.saves

		require.NoError(t, store.UpdateThemeChecksum(ctx, "owner/theme", "new-sum"))

		assert.Equal(t, before+1, p.saves)
		saved := p.saved(t)
		assert.Equal(t, "new-sum", saved.ThemesList[1].LastUpdate)
		assert.Equal(t, Checksum("b"), saved.ThemesList[0].LastUpdate)
	})

	t.Run("duplicates persist once per record", func(t *testing.T) {
		store, p := newTestStore(t)
		require.NoError(t, store.AddTheme(ctx, "owner/theme", "a"))
		require.NoError(t, store.AddTheme(ctx, "owner/theme", "b"))
		before := p.saves

		require.NoError(t, store.UpdateThemeChecksum(ctx, "owner/theme", "same"))

		assert.Equal(t, before+2, p.saves)
		for _, theme := range store.Themes() {
			assert.Equal(t, "same", theme.LastUpdate)
		}
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store, p := newTestStore(t)

	require.NoError(t, store.AddPlugin(ctx, "owner/plugin", "1.0.0"))
	require.NoError(t, store.AddTheme(ctx, "owner/theme", "css"))
	require.NoError(t, store.AddTheme(ctx, "owner/theme", "css2"))
	before := p.saves

	require.NoError(t, store.RemovePlugin(ctx, "owner/plugin"))
	require.NoError(t, store.RemoveTheme(ctx, "owner/theme"))
	require.NoError(t, store.RemovePlugin(ctx, "missing/plugin"))

	s := store.Snapshot()
	assert.Empty(t, s.PluginList)
	assert.Empty(t, s.PluginSubListFrozenVersion)
	assert.Empty(t, s.ThemesList)
	assert.Equal(t, before+2, p.saves)
}

func TestPersistErrorSurfaces(t *testing.T) {
	store, p := newTestStore(t)
	p.err = errors.New("disk full")

	err := store.AddPlugin(context.Background(), "owner/repo", "")
	require.ErrorContains(t, err, "disk full")
}

func TestConcurrentWritesKeepLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	store, p := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.AddPlugin(ctx, "owner/repo-"+string(rune('a'+i)), "")
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Plugins(), 20)
	assert.Len(t, p.saved(t).PluginList, 20)
}

func TestChecksumStable(t *testing.T) {
	assert.Equal(t, Checksum("body {}"), Checksum("body {}"))
	assert.NotEqual(t, Checksum("body {}"), Checksum("body { }"))
	assert.Len(t, Checksum(""), 64)
}

func TestToggles(t *testing.T) {
	s := Defaults()

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, toggle := range Toggles {
		t.Run(toggle.Key, func(t *testing.T) {
			require.Contains(t, raw, toggle.Key)
			assert.Equal(t, raw[toggle.Key], toggle.Get(s))

			toggle.Set(s, !toggle.Get(s))
			assert.NotEqual(t, raw[toggle.Key], toggle.Get(s))
		})
	}

	_, ok := LookupToggle("loggingPath")
	assert.False(t, ok)
	toggle, ok := LookupToggle("debuggingMode")
	require.True(t, ok)
	assert.Equal(t, "debuggingMode", toggle.Key)
}
