// Package torbox is a client for the TorBox torrent and Usenet download API.
//
// Active and queued items live in separate remote collections. Lookups on the
// Torrents and Usenet services merge both into one view, with active records taking
// priority over queued ones that share a hash.
package torbox

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirrobot01/torbox/internal/request"
	"github.com/sirrobot01/torbox/pkg/version"
)

const DefaultBaseURL = "https://api.torbox.app/v1/api/"

// Defaults holds the values used when a call leaves an option at its zero value.
type Defaults struct {
	QueuedLimit    int
	SeedingMode    SeedingMode
	PostProcessing PostProcessing
	AllowZip       bool
}

func DefaultDefaults() Defaults {
	return Defaults{
		QueuedLimit:    1000,
		SeedingMode:    SeedAuto,
		PostProcessing: PostProcessDefault,
		AllowZip:       false,
	}
}

type options struct {
	baseURL    string
	transport  http.RoundTripper
	logger     zerolog.Logger
	defaults   Defaults
	rateLimit  string
	proxy      string
	maxRetries int
	timeout    time.Duration
}

type Option func(*options)

func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTransport sends requests through rt instead of the default transport. The
// proxy option is then ignored; rate limit, retry and timeout options still apply.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithDefaults(d Defaults) Option {
	return func(o *options) {
		o.defaults = d
	}
}

// WithRateLimit accepts "200/minute" or "10/second".
func WithRateLimit(rate string) Option {
	return func(o *options) {
		o.rateLimit = rate
	}
}

// WithProxy routes requests through an http(s) or socks5 proxy.
func WithProxy(proxyURL string) Option {
	return func(o *options) {
		o.proxy = proxyURL
	}
}

// WithMaxRetries enables transport retries on 429/502/503/504. The default is 0.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Client groups the TorBox API accessors. It keeps no state between calls and is
// safe for concurrent use.
type Client struct {
	Queued   *QueuedService
	Torrents *TorrentsService
	Usenet   *UsenetService
	User     *UserService
}

// New creates a client authenticating every call with the bearer token.
func New(token string, opts ...Option) *Client {
	o := &options{
		baseURL:  DefaultBaseURL,
		logger:   zerolog.Nop(),
		defaults: DefaultDefaults(),
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.defaults.QueuedLimit <= 0 {
		o.defaults.QueuedLimit = 1000
	}

	clientOpts := []request.ClientOption{
		request.WithLogger(o.logger),
		request.WithMaxRetries(o.maxRetries),
		request.WithTimeout(o.timeout),
		request.WithRateLimiter(request.ParseRateLimit(o.rateLimit)),
		request.WithProxy(o.proxy),
		request.WithHeaders(map[string]string{
			"User-Agent": "torbox-go/" + version.GetInfo().String(),
		}),
	}
	if o.transport != nil {
		clientOpts = append(clientOpts, request.WithTransport(o.transport))
	}
	httpClient := request.New(clientOpts...)

	t := &transport{
		client:  httpClient,
		baseURL: o.baseURL,
		token:   token,
		logger:  o.logger,
	}
	queued := &QueuedService{t: t, defaults: o.defaults}
	return &Client{
		Queued: queued,
		Torrents: &TorrentsService{
			t:        t,
			queued:   queued,
			defaults: o.defaults,
			logger:   o.logger.With().Str("service", "torrents").Logger(),
		},
		Usenet: &UsenetService{
			t:        t,
			queued:   queued,
			defaults: o.defaults,
			logger:   o.logger.With().Str("service", "usenet").Logger(),
		},
		User: &UserService{t: t},
	}
}
