package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(WithBaseURL(srv.URL+"/api/", srv.URL+"/raw/"), WithMaxTries(3))
	require.NoError(t, err)
	c.backOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func contentHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(body)),
		})
	}
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"owner/repo", "owner/repo"},
		{"  owner/repo  ", "owner/repo"},
		{"https://github.com/owner/repo", "owner/repo"},
		{"https://github.com/owner/repo/", "owner/repo"},
		{"https://github.com/owner/repo.git", "owner/repo"},
		{"github.com/owner/repo", "owner/repo"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "owner", "owner/", "/repo", "a/b/c"} {
		_, err := ParseRepo(bad)
		assert.ErrorIs(t, err, ErrInvalidRepo, bad)
	}
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{
		// beta channel
		"id": "sample",
		"name": "Sample",
		"version": "1.0.0-beta.2",
	}`))
	require.NoError(t, err)
	assert.Equal(t, "sample", m.ID)
	assert.Equal(t, "1.0.0-beta.2", m.Version)

	_, err = ParseManifest([]byte(`{"name":"Sample","version":"1.0.0"}`))
	require.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ParseManifest([]byte(`{"id":"sample"}`))
	require.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ParseManifest([]byte(`not json`))
	require.ErrorIs(t, err, ErrInvalidManifest)

	_, err = ParseThemeManifest([]byte(`{"version":"1.0.0"}`))
	require.ErrorIs(t, err, ErrInvalidManifest)
}

func TestParseManifestRejectsPathNames(t *testing.T) {
	for _, id := range []string{"..", ".", "../..", "a/b", `a\\b`, "/abs"} {
		t.Run(id, func(t *testing.T) {
			_, err := ParseManifest([]byte(`{"id":"` + id + `","version":"1.0.0"}`))
			assert.ErrorIs(t, err, ErrInvalidManifest)

			_, err = ParseThemeManifest([]byte(`{"name":"` + id + `","version":"1.0.0"}`))
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}

	m, err := ParseThemeManifest([]byte(`{"name":"Minimal Theme","version":"7.0.0"}`))
	require.NoError(t, err)
	assert.Equal(t, "Minimal Theme", m.Name)
}

func TestFetchManifest(t *testing.T) {
	t.Run("prefers beta manifest", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/repos/o/r/contents/manifest-beta.json", contentHandler(`{"id":"p","name":"P","version":"2.0.0-beta"}`))
		mux.HandleFunc("/api/repos/o/r/contents/manifest.json", contentHandler(`{"id":"p","name":"P","version":"1.0.0"}`))

		m, err := newTestClient(t, mux).FetchManifest(context.Background(), "o/r")
		require.NoError(t, err)
		assert.True(t, m.Beta)
		assert.Equal(t, "2.0.0-beta", m.Version)
	})

	t.Run("falls back to manifest.json", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/repos/o/r/contents/manifest-beta.json", notFound)
		mux.HandleFunc("/api/repos/o/r/contents/manifest.json", contentHandler(`{"id":"p","name":"P","version":"1.0.0"}`))

		m, err := newTestClient(t, mux).FetchManifest(context.Background(), "o/r")
		require.NoError(t, err)
		assert.False(t, m.Beta)
		assert.Equal(t, "p", m.ID)
		assert.Equal(t, "1.0.0", m.Version)
	})

	t.Run("missing repository", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/", notFound)

		_, err := newTestClient(t, mux).FetchManifest(context.Background(), "o/missing")
		require.ErrorIs(t, err, ErrNotFound)

		var repoErr *RepoError
		require.ErrorAs(t, err, &repoErr)
		assert.Equal(t, "o/missing", repoErr.Repo)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var hits atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/api/repos/o/r/contents/manifest-beta.json", func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				writeJSON(w, http.StatusBadGateway, map[string]string{"message": "bad gateway"})
				return
			}
			contentHandler(`{"id":"p","version":"1.0.0"}`)(w, r)
		})

		m, err := newTestClient(t, mux).FetchManifest(context.Background(), "o/r")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", m.Version)
		assert.Equal(t, int32(3), hits.Load())
	})
}

func TestFetchRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/repos/o/r/releases/tags/1.2.0", notFound)
	mux.HandleFunc("/api/repos/o/r/releases/tags/v1.2.0", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"tag_name": "v1.2.0",
			"assets": []map[string]any{
				{"id": 1, "name": "main.js"},
				{"id": 2, "name": "manifest.json"},
				{"id": 3, "name": "source.zip"},
			},
		})
	})
	mux.HandleFunc("/api/repos/o/r/releases/assets/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("console.log('main')"))
	})
	mux.HandleFunc("/api/repos/o/r/releases/assets/2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p","version":"1.2.0"}`))
	})
	mux.HandleFunc("/api/repos/o/r/releases/assets/3", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("unrelated asset downloaded")
	})
	mux.HandleFunc("/api/repos/o/bare/releases/tags/1.0.0", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tag_name": "1.0.0", "assets": []any{}})
	})

	c := newTestClient(t, mux)

	release, err := c.FetchRelease(context.Background(), "o/r", "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", release.Tag)
	assert.Equal(t, "console.log('main')", string(release.MainJS))
	assert.JSONEq(t, `{"id":"p","version":"1.2.0"}`, string(release.ManifestJSON))
	assert.Nil(t, release.Styles)

	_, err = c.FetchRelease(context.Background(), "o/r", "9.9.9")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.FetchRelease(context.Background(), "o/bare", "1.0.0")
	require.ErrorIs(t, err, ErrMissingAsset)
}

func TestFetchTheme(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/raw/o/theme/HEAD/theme-beta.css", http.NotFound)
	mux.HandleFunc("/raw/o/theme/HEAD/theme.css", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(":root { --accent: red; }"))
	})
	mux.HandleFunc("/raw/o/theme/HEAD/manifest.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Red","version":"0.1.0"}`))
	})
	mux.HandleFunc("/raw/o/beta/HEAD/theme-beta.css", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(":root { --accent: blue; }"))
	})

	c := newTestClient(t, mux)

	css, err := c.FetchThemeCSS(context.Background(), "o/theme")
	require.NoError(t, err)
	assert.Equal(t, ":root { --accent: red; }", string(css))

	css, err = c.FetchThemeCSS(context.Background(), "o/beta")
	require.NoError(t, err)
	assert.Equal(t, ":root { --accent: blue; }", string(css))

	m, err := c.FetchThemeManifest(context.Background(), "o/theme")
	require.NoError(t, err)
	assert.Equal(t, "Red", m.Name)

	_, err = c.FetchThemeCSS(context.Background(), "o/none")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.FetchThemeCSS(context.Background(), "not-a-repo")
	require.ErrorIs(t, err, ErrInvalidRepo)
}

func TestRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := newTestClient(t, mux).FetchThemeCSS(context.Background(), "o/r")
	require.ErrorIs(t, err, ErrRateLimited)
}
