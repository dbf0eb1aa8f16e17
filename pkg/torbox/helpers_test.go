package torbox

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const (
	testToken = "test-token"
	bbbHash   = "dd8255ecdc7ca55fb0bbf81323d87062db1f6d1c"
	bbbMagnet = "magnet:?xt=urn:btih:dd8255ecdc7ca55fb0bbf81323d87062db1f6d1c&dn=Big+Buck+Bunny&tr=udp%3A%2F%2Fexplodie.org%3A6969"
)

var createdAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// newTestClient serves routes under /v1/api and returns a client pointed at them.
// Every request must carry the bearer token.
func newTestClient(t *testing.T, routes func(r chi.Router)) *Client {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/v1/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if got := req.Header.Get("Authorization"); got != "Bearer "+testToken {
					t.Errorf("Authorization = %q", got)
				}
				next.ServeHTTP(w, req)
			})
		})
		routes(r)
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
		writeFailure(w, http.StatusNotFound, CodeEndpointNotFound, "")
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return New(testToken, WithBaseURL(server.URL+"/v1/api/"))
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"error":   nil,
		"detail":  "ok",
		"data":    data,
	})
}

func writeFailure(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   code,
		"detail":  detail,
		"data":    nil,
	})
}

func queuedItem(id int64, hash, name string) map[string]any {
	return map[string]any{
		"id":           id,
		"created_at":   createdAt.Format(time.RFC3339),
		"magnet":       "magnet:?xt=urn:btih:" + hash,
		"torrent_file": nil,
		"hash":         hash,
		"name":         name,
		"type":         "torrent",
	}
}

func activeTorrent(id int64, hash, name, state string) map[string]any {
	return map[string]any{
		"id":             id,
		"hash":           hash,
		"name":           name,
		"size":           1024,
		"active":         true,
		"created_at":     createdAt.Format(time.RFC3339),
		"updated_at":     createdAt.Add(time.Hour).Format(time.RFC3339),
		"download_state": state,
		"progress":       0.5,
		"seeds":          12,
		"download_speed": 2048,
		"files": []map[string]any{
			{"id": 0, "hash": hash, "name": name + "/movie.mkv", "size": 1024, "mimetype": "video/x-matroska", "short_name": "movie.mkv", "absolute_path": "/" + name + "/movie.mkv"},
		},
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
