package torbox

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTorrents_GetByHash_QueuedOnly(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{activeTorrent(1, "other", "Other", "downloading")})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "torrent", req.URL.Query().Get("type"))
			writeData(w, []any{queuedItem(5, bbbHash, "Big Buck Bunny")})
		})
	})

	info, err := client.Torrents.GetByHash(context.Background(), bbbHash, false)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, bbbHash, info.Hash)
	assert.Equal(t, "Big Buck Bunny", info.Name)
	assert.Equal(t, StateQueued, info.DownloadState)
	assert.Equal(t, 0.0, info.Progress)
	assert.Empty(t, info.Files)
	assert.True(t, info.UpdatedAt.Equal(info.CreatedAt))
}

func TestTorrents_GetByHash_ActiveShadowsQueued(t *testing.T) {
	var queuedCalls atomic.Int32
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{activeTorrent(1, bbbHash, "Big Buck Bunny", "downloading")})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			queuedCalls.Add(1)
			writeData(w, []any{queuedItem(5, bbbHash, "Big Buck Bunny (queued)")})
		})
	})

	info, err := client.Torrents.GetByHash(context.Background(), bbbHash, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.ID)
	assert.Equal(t, "downloading", info.DownloadState)
	assert.Len(t, info.Files, 1)
	assert.Zero(t, queuedCalls.Load())
}

func TestTorrents_GetByHash_ActiveFailureFallsBack(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "internal error")
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{queuedItem(5, bbbHash, "Big Buck Bunny")})
		})
	})

	info, err := client.Torrents.GetByHash(context.Background(), bbbHash, true)
	require.NoError(t, err)
	assert.True(t, info.IsQueued())
}

func TestTorrents_GetByHash_NotFound(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		})
	})

	info, err := client.Torrents.GetByHash(context.Background(), bbbHash, false)
	assert.Nil(t, info)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTorrents_GetByHash_RemoteErrorPropagates(t *testing.T) {
	var queuedCalls atomic.Int32
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeFailure(w, http.StatusForbidden, CodeNoAuth, "")
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			queuedCalls.Add(1)
			writeData(w, []any{queuedItem(5, bbbHash, "Big Buck Bunny")})
		})
	})

	info, err := client.Torrents.GetByHash(context.Background(), bbbHash, false)
	assert.Nil(t, info)
	assert.ErrorIs(t, err, ErrNoAuth)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Zero(t, queuedCalls.Load())
}

func TestTorrents_GetByHash_Canceled(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{})
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info, err := client.Torrents.GetByHash(ctx, bbbHash, false)
	assert.Nil(t, info)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTorrents_GetByID(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "11", req.URL.Query().Get("id"))
			writeData(w, activeTorrent(11, "abc", "Eleven", "completed"))
		})
	})

	info, err := client.Torrents.GetByID(context.Background(), 11, false)
	require.NoError(t, err)
	assert.Equal(t, "Eleven", info.Name)
}

func TestTorrents_GetByID_FallsBackToFirstQueued(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeFailure(w, http.StatusNotFound, CodeItemNotFound, "")
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{queuedItem(30, "first", "First"), queuedItem(31, "second", "Second")})
		})
	})

	// The queued fallback is not filtered by id.
	info, err := client.Torrents.GetByID(context.Background(), 31, false)
	require.NoError(t, err)
	assert.Equal(t, int64(30), info.ID)
	assert.True(t, info.IsQueued())
}

func TestTorrents_GetByID_NotFound(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, nil)
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{})
		})
	})

	_, err := client.Torrents.GetByID(context.Background(), 1, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTorrents_AllAndTotal(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{
				activeTorrent(1, "aaa", "A", "downloading"),
				activeTorrent(2, "bbb", "B", "completed"),
			})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{queuedItem(3, "bbb", "B"), queuedItem(4, "ccc", "C")})
		})
	})

	all, err := client.Torrents.All(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"aaa", "bbb", "ccc"}, []string{all[0].Hash, all[1].Hash, all[2].Hash})
	assert.Equal(t, "completed", all[1].DownloadState)
	assert.True(t, all[2].IsQueued())

	total, err := client.Torrents.Total(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestTorrents_AddMagnet_RoundTrip(t *testing.T) {
	var added atomic.Bool
	client := newTestClient(t, func(r chi.Router) {
		r.Post("/torrents/createtorrent", func(w http.ResponseWriter, req *http.Request) {
			assert.NoError(t, req.ParseForm())
			assert.Equal(t, bbbMagnet, req.PostForm.Get("magnet"))
			assert.Equal(t, "1", req.PostForm.Get("seed"))
			assert.Equal(t, "false", req.PostForm.Get("allow_zip"))
			assert.Equal(t, "X", req.PostForm.Get("name"))
			assert.False(t, req.PostForm.Has("as_queued"))
			added.Store(true)
			writeData(w, map[string]any{"torrent_id": 77, "hash": bbbHash, "auth_id": "user-1"})
		})
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			if !added.Load() {
				writeData(w, []any{})
				return
			}
			writeData(w, []any{activeTorrent(77, bbbHash, "X", "downloading")})
		})
	})

	res, err := client.Torrents.AddMagnet(context.Background(), bbbMagnet, AddTorrentOptions{Seeding: SeedAuto, Name: "X"})
	require.NoError(t, err)
	assert.Equal(t, int64(77), res.TorrentID)
	assert.Equal(t, bbbHash, res.Hash)

	info, err := client.Torrents.GetByHash(context.Background(), res.Hash, false)
	require.NoError(t, err)
	assert.Equal(t, res.TorrentID, info.ID)
}

func TestTorrents_AddMagnet_FillsMissingHash(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Post("/torrents/createtorrent", func(w http.ResponseWriter, req *http.Request) {
			assert.NoError(t, req.ParseForm())
			assert.Equal(t, "3", req.PostForm.Get("seed"))
			assert.Equal(t, "true", req.PostForm.Get("as_queued"))
			writeData(w, map[string]any{"queued_id": 5})
		})
	})

	res, err := client.Torrents.AddMagnet(context.Background(), bbbMagnet, AddTorrentOptions{Seeding: SeedNever, AsQueued: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.QueuedID)
	assert.Equal(t, bbbHash, res.Hash)
}

func TestTorrents_AddMagnet_RemoteErrorPropagates(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Post("/torrents/createtorrent", func(w http.ResponseWriter, req *http.Request) {
			writeFailure(w, http.StatusForbidden, CodeActiveLimit, "You have reached your active limit.")
		})
	})

	res, err := client.Torrents.AddMagnet(context.Background(), bbbMagnet, AddTorrentOptions{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrActiveLimit)
}

func TestTorrents_AddFile_Multipart(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Post("/torrents/createtorrent", func(w http.ResponseWriter, req *http.Request) {
			assert.NoError(t, req.ParseMultipartForm(1<<20))
			file, header, err := req.FormFile("file")
			if !assert.NoError(t, err) {
				writeFailure(w, http.StatusBadRequest, CodeMissingRequiredOption, "file")
				return
			}
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "d4:infod4:name1:xee", string(content))
			assert.Equal(t, "torrent.torrent", header.Filename)
			assert.Equal(t, "application/x-bittorrent", header.Header.Get("Content-Type"))
			assert.Equal(t, "2", req.FormValue("seed"))
			assert.Equal(t, "true", req.FormValue("allow_zip"))
			assert.Equal(t, "Big Buck Bunny", req.FormValue("name"))
			writeData(w, map[string]any{"torrent_id": 8, "hash": bbbHash})
		})
	})

	res, err := client.Torrents.AddFile(context.Background(), []byte("d4:infod4:name1:xee"), AddTorrentOptions{Seeding: SeedAlways, AllowZip: boolPtr(true), Name: "Big Buck Bunny"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.TorrentID)
}

func TestTorrents_Control_Endpoints(t *testing.T) {
	tests := []struct {
		name     string
		active   []any
		queued   []any
		endpoint string
		id       float64
	}{
		{
			name:     "active",
			active:   []any{activeTorrent(1, bbbHash, "BBB", "paused")},
			queued:   []any{},
			endpoint: "controltorrent",
			id:       1,
		},
		{
			name:     "queued",
			active:   []any{},
			queued:   []any{queuedItem(9, bbbHash, "BBB")},
			endpoint: "controlqueued",
			id:       9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit atomic.Value
			control := func(name string) http.HandlerFunc {
				return func(w http.ResponseWriter, req *http.Request) {
					hit.Store(name)
					var body map[string]any
					assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
					assert.Equal(t, tt.id, body["torrent_id"])
					assert.Equal(t, "resume", body["operation"])
					writeData(w, nil)
				}
			}
			client := newTestClient(t, func(r chi.Router) {
				r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
					assert.Equal(t, "true", req.URL.Query().Get("bypass_cache"))
					writeData(w, tt.active)
				})
				r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
					assert.Equal(t, "true", req.URL.Query().Get("bypass_cache"))
					writeData(w, tt.queued)
				})
				r.Post("/torrents/controltorrent", control("controltorrent"))
				r.Post("/torrents/controlqueued", control("controlqueued"))
			})

			require.NoError(t, client.Torrents.Control(context.Background(), bbbHash, ActionResume))
			assert.Equal(t, tt.endpoint, hit.Load())
		})
	}
}

func TestTorrents_Control_RemoteError(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{activeTorrent(1, bbbHash, "BBB", "downloading")})
		})
		r.Post("/torrents/controltorrent", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"error":"ITEM_NOT_FOUND"}`)
		})
	})

	err := client.Torrents.Control(context.Background(), bbbHash, ActionDelete)
	require.Error(t, err)
	assert.Equal(t, "The item you queried cannot be found.", err.Error())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestTorrents_Control_BadTokenNotHidden(t *testing.T) {
	var controlled atomic.Bool
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeFailure(w, http.StatusForbidden, CodeBadToken, "")
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeFailure(w, http.StatusForbidden, CodeBadToken, "")
		})
		r.Post("/torrents/controltorrent", func(w http.ResponseWriter, req *http.Request) {
			controlled.Store(true)
			writeData(w, nil)
		})
	})

	err := client.Torrents.Control(context.Background(), bbbHash, ActionPause)
	assert.ErrorIs(t, err, ErrBadToken)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "The provided token is invalid.", err.Error())
	assert.False(t, controlled.Load())
}

func TestTorrents_AddMagnet_AllowZipOverridesDefault(t *testing.T) {
	var got atomic.Value
	r := chi.NewRouter()
	r.Post("/v1/api/torrents/createtorrent", func(w http.ResponseWriter, req *http.Request) {
		assert.NoError(t, req.ParseForm())
		got.Store(req.PostForm.Get("allow_zip"))
		writeData(w, map[string]any{"torrent_id": 1, "hash": bbbHash})
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	defaults := DefaultDefaults()
	defaults.AllowZip = true
	client := New(testToken, WithBaseURL(server.URL+"/v1/api/"), WithDefaults(defaults))

	_, err := client.Torrents.AddMagnet(context.Background(), bbbMagnet, AddTorrentOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", got.Load())

	_, err = client.Torrents.AddMagnet(context.Background(), bbbMagnet, AddTorrentOptions{AllowZip: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "false", got.Load())
}

func TestTorrents_Control_UnknownHash(t *testing.T) {
	var controlled atomic.Bool
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/mylist", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{})
		})
		r.Get("/queued/getqueued", func(w http.ResponseWriter, req *http.Request) {
			writeData(w, []any{})
		})
		r.Post("/torrents/controltorrent", func(w http.ResponseWriter, req *http.Request) {
			controlled.Store(true)
			writeData(w, nil)
		})
	})

	err := client.Torrents.Control(context.Background(), bbbHash, ActionPause)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, controlled.Load())
}

func TestTorrents_CheckAvailability(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/checkcached", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			assert.Equal(t, "list", q.Get("format"))
			assert.Equal(t, "true", q.Get("list_files"))
			if q.Get("hash") == bbbHash {
				writeData(w, []any{map[string]any{
					"name":  "Big Buck Bunny",
					"size":  276445467,
					"hash":  bbbHash,
					"files": []any{map[string]any{"name": "Big Buck Bunny/Big Buck Bunny.mp4", "size": 276134947}},
				}})
				return
			}
			writeData(w, []any{nil})
		})
	})

	cached, err := client.Torrents.CheckAvailability(context.Background(), bbbHash, true)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.NotNil(t, cached[0])
	assert.Equal(t, "Big Buck Bunny/Big Buck Bunny.mp4", cached[0].Files[0].Name)

	uncached, err := client.Torrents.CheckAvailability(context.Background(), "0000000000000000000000000000000000000000", true)
	require.NoError(t, err)
	var present []*AvailableTorrent
	for _, a := range uncached {
		if a != nil {
			present = append(present, a)
		}
	}
	assert.Empty(t, present)
}

func TestTorrents_IsCached(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/checkcached", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, bbbHash+",ffff", req.URL.Query().Get("hash"))
			writeData(w, []any{map[string]any{"name": "BBB", "size": 1, "hash": bbbHash}, nil})
		})
	})

	got, err := client.Torrents.IsCached(context.Background(), "DD8255ECDC7CA55FB0BBF81323D87062DB1F6D1C", "", "ffff")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{bbbHash: true, "ffff": false}, got)
}

func TestTorrents_RequestDownload(t *testing.T) {
	client := newTestClient(t, func(r chi.Router) {
		r.Get("/torrents/requestdl", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			assert.Equal(t, testToken, q.Get("token"))
			assert.Equal(t, "12", q.Get("torrent_id"))
			assert.Equal(t, "3", q.Get("file_id"))
			assert.Equal(t, "true", q.Get("zip_link"))
			writeData(w, "https://store.example/dl/abc")
		})
	})

	link, err := client.Torrents.RequestDownload(context.Background(), 12, int64Ptr(3), true)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example/dl/abc", link)
}
