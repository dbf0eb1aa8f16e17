package torbox

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type UsenetService struct {
	t        *transport
	queued   *QueuedService
	defaults Defaults
	logger   zerolog.Logger
}

// AddUsenetOptions tunes an NZB submission. A nil PostProcessing takes the client
// default. Password is used by the service to extract archives.
type AddUsenetOptions struct {
	PostProcessing *PostProcessing
	Name           string
	Password       string
	AsQueued       bool
}

type usenetControlRequest struct {
	UsenetID  *int64 `json:"usenet_id,omitempty"`
	Operation Action `json:"operation"`
	All       bool   `json:"all"`
}

func (s *UsenetService) Current(ctx context.Context, skipCache bool) ([]UsenetInfo, error) {
	q := url.Values{}
	q.Set("bypass_cache", strconv.FormatBool(skipCache))
	list, err := call[[]UsenetInfo](s.t.get(ctx, "usenet/mylist", q, true))
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []UsenetInfo{}, nil
	}
	return *list, nil
}

func (s *UsenetService) Queued(ctx context.Context, skipCache bool) ([]UsenetInfo, error) {
	items, err := s.queued.Get(ctx, QueuedFilter{SkipCache: skipCache, Type: QueuedUsenet})
	if err != nil {
		return nil, err
	}
	return mapQueued(items, UsenetFromQueued), nil
}

func (s *UsenetService) sources(skipCache bool) (active, queued source[UsenetInfo]) {
	active = func(ctx context.Context) ([]UsenetInfo, error) { return s.Current(ctx, skipCache) }
	queued = func(ctx context.Context) ([]UsenetInfo, error) { return s.Queued(ctx, skipCache) }
	return active, queued
}

func (s *UsenetService) All(ctx context.Context, skipCache bool) ([]UsenetInfo, error) {
	active, queued := s.sources(skipCache)
	return mergeAll(ctx, active, queued, func(u *UsenetInfo) string { return u.Hash })
}

func (s *UsenetService) Total(ctx context.Context, skipCache bool) (int, error) {
	list, err := s.Current(ctx, skipCache)
	if err != nil {
		return -1, err
	}
	return len(list), nil
}

// GetByHash has the same active-then-queued priority as TorrentsService.GetByHash.
func (s *UsenetService) GetByHash(ctx context.Context, hash string, skipCache bool) (*UsenetInfo, error) {
	active, queued := s.sources(skipCache)
	match := func(u *UsenetInfo) bool { return u.Hash == hash }
	return firstMatch(ctx, s.logger.With().Str("hash", hash).Logger(), match, active, queued)
}

// GetByID falls back to the first queued download, unfiltered, like
// TorrentsService.GetByID.
func (s *UsenetService) GetByID(ctx context.Context, id int64, skipCache bool) (*UsenetInfo, error) {
	q := url.Values{}
	q.Set("bypass_cache", strconv.FormatBool(skipCache))
	q.Set("id", strconv.FormatInt(id, 10))
	active := func(ctx context.Context) ([]UsenetInfo, error) {
		info, err := call[UsenetInfo](s.t.get(ctx, "usenet/mylist", q, true))
		if err != nil || info == nil {
			return nil, err
		}
		return []UsenetInfo{*info}, nil
	}
	_, queued := s.sources(skipCache)
	first := func(*UsenetInfo) bool { return true }
	return firstMatch(ctx, s.logger.With().Int64("id", id).Logger(), first, active, queued)
}

func (s *UsenetService) addFields(opts AddUsenetOptions) []formPart {
	pp := s.defaults.PostProcessing
	if opts.PostProcessing != nil {
		pp = *opts.PostProcessing
	}
	parts := []formPart{field("post_processing", strconv.Itoa(int(pp)))}
	if opts.Name != "" {
		parts = append(parts, field("name", opts.Name))
	}
	if opts.Password != "" {
		parts = append(parts, field("password", opts.Password))
	}
	if opts.AsQueued {
		parts = append(parts, field("as_queued", "true"))
	}
	return parts
}

// AddFile uploads an NZB file.
func (s *UsenetService) AddFile(ctx context.Context, nzb []byte, opts AddUsenetOptions) (*UsenetAddResult, error) {
	parts := append([]formPart{{
		Name:        "file",
		FileName:    "nzb.nzb",
		ContentType: "application/x-nzb",
		Value:       nzb,
	}}, s.addFields(opts)...)

	res, err := call[UsenetAddResult](s.t.postMultipart(ctx, "usenet/createusenetdownload", parts, true))
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &UsenetAddResult{}
	}
	s.logger.Info().Int64("id", res.UsenetDownloadID).Str("hash", res.Hash).Msg("NZB file added")
	return res, nil
}

// AddLink submits a publicly reachable NZB link.
func (s *UsenetService) AddLink(ctx context.Context, link string, opts AddUsenetOptions) (*UsenetAddResult, error) {
	form := url.Values{}
	form.Set("link", link)
	for _, p := range s.addFields(opts) {
		form.Set(p.Name, string(p.Value))
	}

	res, err := call[UsenetAddResult](s.t.postForm(ctx, "usenet/createusenetdownload", form, true))
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &UsenetAddResult{}
	}
	s.logger.Info().Int64("id", res.UsenetDownloadID).Str("hash", res.Hash).Msg("NZB link added")
	return res, nil
}

// Control applies action to the download with hash. With all set the service acts
// on every Usenet download of the account; the hash is still resolved when possible
// and its id sent along, but an unknown hash is not an error.
func (s *UsenetService) Control(ctx context.Context, hash string, action Action, all bool) error {
	info, err := s.GetByHash(ctx, hash, true)
	if err != nil && (!all || !errors.Is(err, ErrNotFound)) {
		return err
	}

	if info != nil && info.IsQueued() && !all {
		id := info.ID
		err = s.queued.Control(ctx, QueuedControl{QueuedID: &id, Operation: action, Type: QueuedUsenet})
	} else {
		payload := usenetControlRequest{Operation: action, All: all}
		if info != nil {
			id := info.ID
			payload.UsenetID = &id
		}
		_, err = call[json.RawMessage](s.t.postJSON(ctx, "usenet/controlusenetdownload", payload, true))
	}
	if err != nil {
		return err
	}
	s.logger.Info().Str("hash", hash).Str("action", string(action)).Bool("all", all).Msg("Usenet download controlled")
	return nil
}

func (s *UsenetService) CheckAvailability(ctx context.Context, hash string, listFiles bool) ([]*AvailableUsenet, error) {
	return checkAvailability(ctx, s.t, "usenet/checkcached", hash, listFiles)
}

func (s *UsenetService) IsCached(ctx context.Context, hashes ...string) (map[string]bool, error) {
	return isCached(ctx, s.t, "usenet/checkcached", hashes)
}

// RequestDownload returns a download link for a Usenet download or one of its files.
// zip is accepted for symmetry with torrents but not sent.
func (s *UsenetService) RequestDownload(ctx context.Context, usenetID int64, fileID *int64, zip bool) (string, error) {
	q := url.Values{}
	q.Set("token", s.t.token)
	q.Set("usenet_id", strconv.FormatInt(usenetID, 10))
	if fileID != nil {
		q.Set("file_id", strconv.FormatInt(*fileID, 10))
	}

	link, err := call[string](s.t.get(ctx, "usenet/requestdl", q, true))
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", nil
	}
	return *link, nil
}
