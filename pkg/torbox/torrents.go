package torbox

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/torbox/internal/utils"
)

type TorrentsService struct {
	t        *transport
	queued   *QueuedService
	defaults Defaults
	logger   zerolog.Logger
}

// AddTorrentOptions tunes a torrent submission. A zero Seeding and a nil AllowZip
// take the client defaults.
type AddTorrentOptions struct {
	Seeding  SeedingMode
	AllowZip *bool
	Name     string
	AsQueued bool
}

type torrentControlRequest struct {
	TorrentID int64  `json:"torrent_id"`
	Operation Action `json:"operation"`
}

// Current lists the active torrents.
func (s *TorrentsService) Current(ctx context.Context, skipCache bool) ([]TorrentInfo, error) {
	q := url.Values{}
	q.Set("bypass_cache", strconv.FormatBool(skipCache))
	list, err := call[[]TorrentInfo](s.t.get(ctx, "torrents/mylist", q, true))
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []TorrentInfo{}, nil
	}
	return *list, nil
}

// Queued lists queued torrents in the active shape, see TorrentFromQueued.
func (s *TorrentsService) Queued(ctx context.Context, skipCache bool) ([]TorrentInfo, error) {
	items, err := s.queued.Get(ctx, QueuedFilter{SkipCache: skipCache, Type: QueuedTorrent})
	if err != nil {
		return nil, err
	}
	return mapQueued(items, TorrentFromQueued), nil
}

func (s *TorrentsService) sources(skipCache bool) (active, queued source[TorrentInfo]) {
	active = func(ctx context.Context) ([]TorrentInfo, error) { return s.Current(ctx, skipCache) }
	queued = func(ctx context.Context) ([]TorrentInfo, error) { return s.Queued(ctx, skipCache) }
	return active, queued
}

// All returns active torrents followed by queued ones not yet active.
func (s *TorrentsService) All(ctx context.Context, skipCache bool) ([]TorrentInfo, error) {
	active, queued := s.sources(skipCache)
	return mergeAll(ctx, active, queued, func(t *TorrentInfo) string { return t.Hash })
}

// Total counts the active torrents.
func (s *TorrentsService) Total(ctx context.Context, skipCache bool) (int, error) {
	list, err := s.Current(ctx, skipCache)
	if err != nil {
		return -1, err
	}
	return len(list), nil
}

// GetByHash searches the active torrents first and the queue second. A failure
// listing either side is treated as no match there. Returns ErrNotFound when
// neither side has the hash.
func (s *TorrentsService) GetByHash(ctx context.Context, hash string, skipCache bool) (*TorrentInfo, error) {
	active, queued := s.sources(skipCache)
	match := func(t *TorrentInfo) bool { return t.Hash == hash }
	return firstMatch(ctx, s.logger.With().Str("hash", hash).Logger(), match, active, queued)
}

// GetByID asks for the active torrent with id and otherwise returns the first queued
// torrent. The queued fallback is not filtered by id; use GetByHash when precision
// matters.
func (s *TorrentsService) GetByID(ctx context.Context, id int64, skipCache bool) (*TorrentInfo, error) {
	q := url.Values{}
	q.Set("bypass_cache", strconv.FormatBool(skipCache))
	q.Set("id", strconv.FormatInt(id, 10))
	active := func(ctx context.Context) ([]TorrentInfo, error) {
		info, err := call[TorrentInfo](s.t.get(ctx, "torrents/mylist", q, true))
		if err != nil || info == nil {
			return nil, err
		}
		return []TorrentInfo{*info}, nil
	}
	_, queued := s.sources(skipCache)
	first := func(*TorrentInfo) bool { return true }
	return firstMatch(ctx, s.logger.With().Int64("id", id).Logger(), first, active, queued)
}

func (s *TorrentsService) addFields(opts AddTorrentOptions) []formPart {
	seeding := opts.Seeding
	if seeding == 0 {
		seeding = s.defaults.SeedingMode
	}
	allowZip := s.defaults.AllowZip
	if opts.AllowZip != nil {
		allowZip = *opts.AllowZip
	}
	parts := []formPart{
		field("seed", strconv.Itoa(int(seeding))),
		field("allow_zip", strconv.FormatBool(allowZip)),
	}
	if opts.Name != "" {
		parts = append(parts, field("name", opts.Name))
	}
	if opts.AsQueued {
		parts = append(parts, field("as_queued", "true"))
	}
	return parts
}

// AddFile uploads a .torrent file.
func (s *TorrentsService) AddFile(ctx context.Context, file []byte, opts AddTorrentOptions) (*TorrentAddResult, error) {
	parts := append([]formPart{{
		Name:        "file",
		FileName:    "torrent.torrent",
		ContentType: "application/x-bittorrent",
		Value:       file,
	}}, s.addFields(opts)...)

	res, err := call[TorrentAddResult](s.t.postMultipart(ctx, "torrents/createtorrent", parts, true))
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &TorrentAddResult{}
	}
	if res.Hash == "" {
		if hash, herr := utils.TorrentFileInfoHash(file); herr == nil {
			res.Hash = hash
		}
	}
	s.logger.Info().Int64("id", res.TorrentID).Str("hash", res.Hash).Msg("Torrent file added")
	return res, nil
}

// AddMagnet submits a magnet link.
func (s *TorrentsService) AddMagnet(ctx context.Context, magnet string, opts AddTorrentOptions) (*TorrentAddResult, error) {
	form := url.Values{}
	form.Set("magnet", magnet)
	for _, p := range s.addFields(opts) {
		form.Set(p.Name, string(p.Value))
	}

	res, err := call[TorrentAddResult](s.t.postForm(ctx, "torrents/createtorrent", form, true))
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &TorrentAddResult{}
	}
	if res.Hash == "" {
		if hash, herr := utils.MagnetInfoHash(magnet); herr == nil {
			res.Hash = hash
		}
	}
	s.logger.Info().Int64("id", res.TorrentID).Str("hash", res.Hash).Msg("Magnet added")
	return res, nil
}

// Control resolves hash against fresh state and applies action through the queued
// or active control endpoint depending on where the torrent currently is. Whether
// the action suits the state is left to the service.
func (s *TorrentsService) Control(ctx context.Context, hash string, action Action) error {
	info, err := s.GetByHash(ctx, hash, true)
	if err != nil {
		return err
	}

	path := "torrents/controltorrent"
	if info.IsQueued() {
		path = "torrents/controlqueued"
	}
	payload := torrentControlRequest{TorrentID: info.ID, Operation: action}
	if _, err := call[json.RawMessage](s.t.postJSON(ctx, path, payload, true)); err != nil {
		return err
	}
	s.logger.Info().Str("hash", hash).Str("action", string(action)).Msg("Torrent controlled")
	return nil
}

// CheckAvailability probes the service cache. hash may hold several hashes joined
// by commas. Nil entries mean "not cached".
func (s *TorrentsService) CheckAvailability(ctx context.Context, hash string, listFiles bool) ([]*AvailableTorrent, error) {
	return checkAvailability(ctx, s.t, "torrents/checkcached", hash, listFiles)
}

// IsCached checks many hashes in batches and reports which are cached. Hashes are
// compared case-insensitively.
func (s *TorrentsService) IsCached(ctx context.Context, hashes ...string) (map[string]bool, error) {
	return isCached(ctx, s.t, "torrents/checkcached", hashes)
}

// RequestDownload returns a download link. When zip is set the service ignores fileID.
func (s *TorrentsService) RequestDownload(ctx context.Context, torrentID int64, fileID *int64, zip bool) (string, error) {
	q := url.Values{}
	q.Set("token", s.t.token)
	q.Set("torrent_id", strconv.FormatInt(torrentID, 10))
	if fileID != nil {
		q.Set("file_id", strconv.FormatInt(*fileID, 10))
	}
	q.Set("zip_link", strconv.FormatBool(zip))

	link, err := call[string](s.t.get(ctx, "torrents/requestdl", q, true))
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", nil
	}
	return *link, nil
}

const availabilityBatch = 100

func checkAvailability(ctx context.Context, t *transport, path, hash string, listFiles bool) ([]*AvailableTorrent, error) {
	q := url.Values{}
	q.Set("hash", hash)
	q.Set("format", "list")
	q.Set("list_files", strconv.FormatBool(listFiles))
	list, err := call[[]*AvailableTorrent](t.get(ctx, path, q, true))
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []*AvailableTorrent{}, nil
	}
	return *list, nil
}

func isCached(ctx context.Context, t *transport, path string, hashes []string) (map[string]bool, error) {
	result := make(map[string]bool, len(hashes))
	valid := make([]string, 0, len(hashes))
	for _, h := range hashes {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		result[h] = false
		valid = append(valid, h)
	}

	for i := 0; i < len(valid); i += availabilityBatch {
		end := min(i+availabilityBatch, len(valid))
		list, err := checkAvailability(ctx, t, path, strings.Join(valid[i:end], ","), false)
		if err != nil {
			return result, err
		}
		for _, a := range list {
			if a != nil {
				result[strings.ToLower(a.Hash)] = true
			}
		}
	}
	return result, nil
}
