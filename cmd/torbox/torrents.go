package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirrobot01/torbox/internal/utils"
	"github.com/sirrobot01/torbox/pkg/downloaders"
	"github.com/sirrobot01/torbox/pkg/torbox"
	"github.com/sirrobot01/torbox/pkg/worker"
	"github.com/spf13/cobra"
)

func (a *app) torrentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "torrents",
		Short: "Manage torrents",
	}
	cmd.AddCommand(
		a.torrentsListCmd(),
		a.torrentsGetCmd(),
		a.torrentsAddCmd(),
		a.torrentsControlCmd(),
		a.torrentsCachedCmd(),
		a.torrentsLinkCmd(),
		a.torrentsFetchCmd(),
		a.torrentsWaitCmd(),
	)
	return cmd
}

func (a *app) torrentsListCmd() *cobra.Command {
	var skipCache, activeOnly, queuedOnly, count bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active and queued torrents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skipCache = skipCache || a.cfg.Defaults.SkipCache
			if count {
				total, err := a.client.Torrents.Total(ctx, skipCache)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int{"total": total})
			}

			var list []torbox.TorrentInfo
			var err error
			switch {
			case activeOnly:
				list, err = a.client.Torrents.Current(ctx, skipCache)
			case queuedOnly:
				list, err = a.client.Torrents.Queued(ctx, skipCache)
			default:
				list, err = a.client.Torrents.All(ctx, skipCache)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the service cache")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active torrents")
	cmd.Flags().BoolVar(&queuedOnly, "queued", false, "only queued torrents")
	cmd.Flags().BoolVar(&count, "count", false, "print the number of active torrents")
	cmd.MarkFlagsMutuallyExclusive("active", "queued", "count")
	return cmd
}

func (a *app) torrentsGetCmd() *cobra.Command {
	var skipCache, byID bool
	cmd := &cobra.Command{
		Use:   "get <hash|id>",
		Short: "Show one torrent, active or queued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				info *torbox.TorrentInfo
				err  error
			)
			if byID {
				id, perr := strconv.ParseInt(args[0], 10, 64)
				if perr != nil {
					return fmt.Errorf("invalid id %q: %w", args[0], perr)
				}
				info, err = a.client.Torrents.GetByID(cmd.Context(), id, skipCache)
			} else {
				info, err = a.client.Torrents.GetByHash(cmd.Context(), strings.ToLower(args[0]), skipCache)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the service cache")
	cmd.Flags().BoolVar(&byID, "id", false, "treat the argument as a torrent id")
	return cmd
}

func (a *app) torrentsAddCmd() *cobra.Command {
	var (
		seed     int
		allowZip bool
		name     string
		queued   bool
	)
	cmd := &cobra.Command{
		Use:   "add <magnet|file.torrent>",
		Short: "Add a magnet link or a .torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := torbox.AddTorrentOptions{
				Seeding:  torbox.SeedingMode(seed),
				Name:     name,
				AsQueued: queued,
			}
			if cmd.Flags().Changed("allow-zip") {
				opts.AllowZip = &allowZip
			}
			var (
				res *torbox.TorrentAddResult
				err error
			)
			if strings.HasPrefix(args[0], "magnet:") {
				res, err = a.client.Torrents.AddMagnet(cmd.Context(), args[0], opts)
			} else {
				data, rerr := readFile(args[0])
				if rerr != nil {
					return rerr
				}
				res, err = a.client.Torrents.AddFile(cmd.Context(), data, opts)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&seed, "seed", 0, "seeding mode: 1 auto, 2 always, 3 never (default from config)")
	cmd.Flags().BoolVar(&allowZip, "allow-zip", false, "allow the service to zip large torrents (default from config)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().BoolVar(&queued, "queued", false, "add to the queue instead of starting")
	return cmd
}

func (a *app) torrentsControlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "control <hash> <pause|resume|reannounce|delete>",
		Short: "Apply an action to a torrent, active or queued",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseAction(args[1])
			if err != nil {
				return err
			}
			return a.client.Torrents.Control(cmd.Context(), strings.ToLower(args[0]), action)
		},
	}
}

func (a *app) torrentsCachedCmd() *cobra.Command {
	var listFiles bool
	cmd := &cobra.Command{
		Use:   "cached <hash>...",
		Short: "Check whether torrents are cached by the service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listFiles {
				list, err := a.client.Torrents.CheckAvailability(cmd.Context(), strings.Join(args, ","), true)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			}
			cached, err := a.client.Torrents.IsCached(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cached)
		},
	}
	cmd.Flags().BoolVar(&listFiles, "files", false, "print cached entries with their files")
	return cmd
}

func (a *app) torrentsLinkCmd() *cobra.Command {
	var (
		fileID int64
		zip    bool
	)
	cmd := &cobra.Command{
		Use:   "link <torrent-id>",
		Short: "Request a download link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			var file *int64
			if cmd.Flags().Changed("file-id") {
				file = &fileID
			}
			if !cmd.Flags().Changed("zip") {
				zip = a.cfg.Defaults.AllowZip
			}
			link, err := a.client.Torrents.RequestDownload(cmd.Context(), id, file, zip)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"link": link})
		},
	}
	cmd.Flags().Int64Var(&fileID, "file-id", 0, "a single file of the torrent")
	cmd.Flags().BoolVar(&zip, "zip", false, "request a zip of the whole torrent (default from config)")
	return cmd
}

func (a *app) torrentsFetchCmd() *cobra.Command {
	var samples bool
	cmd := &cobra.Command{
		Use:   "fetch <torrent-id> <dir>",
		Short: "Download every file of a finished torrent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			info, err := a.client.Torrents.GetByID(ctx, id, true)
			if err != nil {
				return err
			}
			if info.ID != id || info.IsQueued() {
				return fmt.Errorf("torrent %d is not active yet", id)
			}

			dl := downloaders.New(nil, a.log)
			var written []string
			for _, f := range info.Files {
				if !samples && utils.IsSampleFile(f.Name) {
					a.log.Debug().Str("file", f.Name).Msg("Skipping sample")
					continue
				}
				fileID := f.ID
				link, err := a.client.Torrents.RequestDownload(ctx, info.ID, &fileID, false)
				if err != nil {
					return fmt.Errorf("requesting %s: %w", f.Name, err)
				}
				path, err := dl.Download(ctx, link, args[1], f.ShortName)
				if err != nil {
					return fmt.Errorf("downloading %s: %w", f.Name, err)
				}
				written = append(written, path)
			}
			return printJSON(cmd.OutOrStdout(), written)
		},
	}
	cmd.Flags().BoolVar(&samples, "include-samples", false, "also fetch sample and extras files")
	return cmd
}

func (a *app) torrentsWaitCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "wait <hash>",
		Short: "Block until a torrent has finished downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := strings.ToLower(args[0])
			var info *torbox.TorrentInfo
			err := worker.Poll(cmd.Context(), interval, a.log, func(ctx context.Context) (bool, error) {
				var err error
				info, err = a.client.Torrents.GetByHash(ctx, hash, true)
				var remote *torbox.Error
				if errors.Is(err, torbox.ErrNotFound) || errors.As(err, &remote) {
					return false, fmt.Errorf("torrent %s: %w", hash, err)
				}
				if err != nil {
					// Transient failures are retried on the next tick.
					a.log.Warn().Err(err).Str("hash", hash).Msg("Status check failed")
					return false, nil
				}
				a.log.Info().Str("state", info.DownloadState).Msgf("%s %.1f%%", info.Name, 100*info.Progress)
				return info.DownloadFinished, nil
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "time between status checks")
	return cmd
}
