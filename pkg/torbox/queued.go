package torbox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// QueuedFilter selects queued items. A zero Type means torrent and a zero Limit
// takes the client default (1000).
type QueuedFilter struct {
	SkipCache bool
	Type      QueuedType
	ID        *int64
	Offset    int
	Limit     int
}

type QueuedService struct {
	t        *transport
	defaults Defaults
}

// Get lists queued items in service order. An empty queue yields an empty, non-nil
// slice; a nil slice always comes with an error.
func (s *QueuedService) Get(ctx context.Context, f QueuedFilter) ([]QueuedItem, error) {
	if f.Type == "" {
		f.Type = QueuedTorrent
	}
	if f.Limit == 0 {
		f.Limit = s.defaults.QueuedLimit
	}

	q := url.Values{}
	q.Set("type", string(f.Type))
	q.Set("bypass_cache", strconv.FormatBool(f.SkipCache))
	if f.ID != nil {
		q.Set("id", strconv.FormatInt(*f.ID, 10))
	}
	q.Set("offset", strconv.Itoa(f.Offset))
	q.Set("limit", strconv.Itoa(f.Limit))

	raw, err := call[json.RawMessage](s.t.get(ctx, "queued/getqueued", q, true))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []QueuedItem{}, nil
	}

	// A lookup by id answers with a single object rather than a list.
	if v, perr := fastjson.ParseBytes(*raw); perr == nil && v.Type() == fastjson.TypeObject {
		var item QueuedItem
		if err := json.Unmarshal(*raw, &item); err != nil {
			return nil, &TransportError{Body: string(*raw), Err: fmt.Errorf("decoding queued item: %w", err)}
		}
		return []QueuedItem{item}, nil
	}

	items := []QueuedItem{}
	if err := json.Unmarshal(*raw, &items); err != nil {
		return nil, &TransportError{Body: string(*raw), Err: fmt.Errorf("decoding queued items: %w", err)}
	}
	if items == nil {
		items = []QueuedItem{}
	}
	return items, nil
}

// QueuedControl is an operation on a queued item. All applies it to every queued
// item of the account.
type QueuedControl struct {
	QueuedID  *int64     `json:"queued_id,omitempty"`
	Operation Action     `json:"operation"`
	Type      QueuedType `json:"type,omitempty"`
	All       bool       `json:"all,omitempty"`
}

func (s *QueuedService) Control(ctx context.Context, c QueuedControl) error {
	_, err := call[json.RawMessage](s.t.postJSON(ctx, "queued/controlqueued", c, true))
	return err
}

// TorrentFromQueued maps a queued submission onto the active torrent shape.
func TorrentFromQueued(q QueuedItem) TorrentInfo {
	return TorrentInfo{
		ID:            q.ID,
		Hash:          q.Hash,
		Name:          q.Name,
		Magnet:        q.Magnet,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.CreatedAt,
		DownloadState: StateQueued,
		TorrentFile:   q.TorrentFile != "",
		Progress:      0,
		Files:         []TorrentFile{},
		DownloadSpeed: 0,
		Seeds:         0,
	}
}

// UsenetFromQueued maps a queued submission onto the active Usenet shape.
func UsenetFromQueued(q QueuedItem) UsenetInfo {
	return UsenetInfo{
		ID:            q.ID,
		Hash:          q.Hash,
		Name:          q.Name,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.CreatedAt,
		DownloadState: StateQueued,
		Progress:      0,
		Files:         []UsenetFile{},
		DownloadSpeed: 0,
	}
}

func mapQueued[T any](items []QueuedItem, fn func(QueuedItem) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
