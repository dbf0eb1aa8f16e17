package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirrobot01/torbox/pkg/torbox"
	"github.com/spf13/cobra"
)

func (a *app) usenetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usenet",
		Short: "Manage Usenet downloads",
	}
	cmd.AddCommand(
		a.usenetListCmd(),
		a.usenetGetCmd(),
		a.usenetAddCmd(),
		a.usenetControlCmd(),
		a.usenetCachedCmd(),
		a.usenetLinkCmd(),
	)
	return cmd
}

func (a *app) usenetListCmd() *cobra.Command {
	var skipCache, activeOnly, queuedOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active and queued Usenet downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skipCache = skipCache || a.cfg.Defaults.SkipCache
			var list []torbox.UsenetInfo
			var err error
			switch {
			case activeOnly:
				list, err = a.client.Usenet.Current(ctx, skipCache)
			case queuedOnly:
				list, err = a.client.Usenet.Queued(ctx, skipCache)
			default:
				list, err = a.client.Usenet.All(ctx, skipCache)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the service cache")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active downloads")
	cmd.Flags().BoolVar(&queuedOnly, "queued", false, "only queued downloads")
	cmd.MarkFlagsMutuallyExclusive("active", "queued")
	return cmd
}

func (a *app) usenetGetCmd() *cobra.Command {
	var skipCache, byID bool
	cmd := &cobra.Command{
		Use:   "get <hash|id>",
		Short: "Show one Usenet download, active or queued",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				info *torbox.UsenetInfo
				err  error
			)
			if byID {
				id, perr := strconv.ParseInt(args[0], 10, 64)
				if perr != nil {
					return fmt.Errorf("invalid id %q: %w", args[0], perr)
				}
				info, err = a.client.Usenet.GetByID(cmd.Context(), id, skipCache)
			} else {
				info, err = a.client.Usenet.GetByHash(cmd.Context(), args[0], skipCache)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the service cache")
	cmd.Flags().BoolVar(&byID, "id", false, "treat the argument as a download id")
	return cmd
}

func (a *app) usenetAddCmd() *cobra.Command {
	var (
		postProcessing int
		name           string
		password       string
		queued         bool
	)
	cmd := &cobra.Command{
		Use:   "add <link|file.nzb>",
		Short: "Add an NZB link or file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := torbox.AddUsenetOptions{Name: name, Password: password, AsQueued: queued}
			if cmd.Flags().Changed("post-processing") {
				pp := torbox.PostProcessing(postProcessing)
				opts.PostProcessing = &pp
			}
			var (
				res *torbox.UsenetAddResult
				err error
			)
			if strings.HasPrefix(args[0], "http://") || strings.HasPrefix(args[0], "https://") {
				res, err = a.client.Usenet.AddLink(cmd.Context(), args[0], opts)
			} else {
				data, rerr := readFile(args[0])
				if rerr != nil {
					return rerr
				}
				res, err = a.client.Usenet.AddFile(cmd.Context(), data, opts)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&postProcessing, "post-processing", -1, "-1 account default, 0 none, 1 repair, 2 +unpack, 3 +cleanup")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "archive password")
	cmd.Flags().BoolVar(&queued, "queued", false, "add to the queue instead of starting")
	return cmd
}

func (a *app) usenetControlCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "control <hash> <pause|resume|reannounce|delete>",
		Short: "Apply an action to a Usenet download, active or queued",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := parseAction(args[1])
			if err != nil {
				return err
			}
			return a.client.Usenet.Control(cmd.Context(), args[0], action, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "apply to every Usenet download of the account")
	return cmd
}

func (a *app) usenetCachedCmd() *cobra.Command {
	var listFiles bool
	cmd := &cobra.Command{
		Use:   "cached <hash>...",
		Short: "Check whether NZBs are cached by the service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listFiles {
				list, err := a.client.Usenet.CheckAvailability(cmd.Context(), strings.Join(args, ","), true)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			}
			cached, err := a.client.Usenet.IsCached(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cached)
		},
	}
	cmd.Flags().BoolVar(&listFiles, "files", false, "print cached entries with their files")
	return cmd
}

func (a *app) usenetLinkCmd() *cobra.Command {
	var fileID int64
	cmd := &cobra.Command{
		Use:   "link <usenet-id>",
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
			link, err := a.client.Usenet.RequestDownload(cmd.Context(), id, file, false)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"link": link})
		},
	}
	cmd.Flags().Int64Var(&fileID, "file-id", 0, "a single file of the download")
	return cmd
}
