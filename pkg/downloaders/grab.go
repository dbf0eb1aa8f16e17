package downloaders

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/torbox/internal/utils"
	"github.com/sirrobot01/torbox/pkg/version"
)

// Downloader fetches links returned by RequestDownload onto local disk.
type Downloader struct {
	client   *grab.Client
	logger   zerolog.Logger
	interval time.Duration
}

func New(httpClient *http.Client, logger zerolog.Logger) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Transport: &http.Transport{Proxy: http.ProxyFromEnvironment}}
	}
	return &Downloader{
		client: &grab.Client{
			UserAgent:  "torbox-go/" + version.GetInfo().String(),
			HTTPClient: httpClient,
		},
		logger:   logger,
		interval: 2 * time.Second,
	}
}

// Download saves url under dir. An empty name lets the server pick the file name
// through Content-Disposition or the URL path. It returns the written path.
func (d *Downloader) Download(ctx context.Context, url, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	dst := dir
	if name != "" {
		dst = filepath.Join(dir, utils.SafeFileName(name))
	}

	req, err := grab.NewRequest(dst, url)
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)

	resp := d.client.Do(req)

	t := time.NewTicker(d.interval)
	defer t.Stop()
Loop:
	for {
		select {
		case <-t.C:
			d.logger.Debug().
				Str("file", resp.Filename).
				Int64("transferred", resp.BytesComplete()).
				Int64("size", resp.Size()).
				Msgf("Downloading %.2f%%", 100*resp.Progress())
		case <-resp.Done:
			break Loop
		}
	}
	if err := resp.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	d.logger.Info().Str("file", resp.Filename).Int64("size", resp.Size()).Msg("Download complete")
	return resp.Filename, nil
}
