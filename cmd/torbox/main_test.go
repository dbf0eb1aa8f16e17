package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hash = "dd8255ecdc7ca55fb0bbf81323d87062db1f6d1c"

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func run(t *testing.T, routes func(r chi.Router), args ...string) (string, error) {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/v1/api", routes)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	t.Setenv("TORBOX_API_KEY", "cli-token")
	t.Setenv("TORBOX_BASE_URL", server.URL+"/v1/api/")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", t.TempDir(), "--log-level", "disabled"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion_NeedsNoConfig(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", t.TempDir(), "version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"version"`)
}

func TestTorrentsGet_QueuedTorrent(t *testing.T) {
	out, err := run(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "Bearer cli-token", req.Header.Get("Authorization"))
			writeData(w, []any{})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{map[string]any{
				"id":         4,
				"hash":       hash,
				"name":       "Big Buck Bunny",
				"type":       "torrent",
				"created_at": "2024-05-01T10:00:00Z",
			}})
		})
	}, "torrents", "get", hash)
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "queued", info["download_state"])
	assert.Equal(t, "Big Buck Bunny", info["name"])
}

func TestTorrentsControl_InvalidAction(t *testing.T) {
	_, err := run(t, func(r chi.Router) {}, "torrents", "control", hash, "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestMe(t *testing.T) {
	out, err := run(t, func(r chi.Router) {
		r.Get("/user/me", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "true", req.URL.Query().Get("settings"))
			writeData(w, map[string]any{"email": "user@example.com", "settings": map[string]any{"seed_torrents": 2}})
		})
	}, "me", "--settings")
	require.NoError(t, err)
	assert.Contains(t, out, "user@example.com")
}
