package main

import (
	"fmt"
	"strconv"

	"github.com/sirrobot01/torbox/pkg/torbox"
	"github.com/spf13/cobra"
)

func (a *app) queuedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queued",
		Short: "Inspect the raw download queue",
	}
	cmd.AddCommand(a.queuedListCmd(), a.queuedControlCmd())
	return cmd
}

func (a *app) queuedListCmd() *cobra.Command {
	var (
		skipCache bool
		kind      string
		id        int64
		offset    int
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued items as the service stores them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := torbox.QueuedFilter{
				SkipCache: skipCache || a.cfg.Defaults.SkipCache,
				Type:      torbox.QueuedType(kind),
				Offset:    offset,
				Limit:     limit,
			}
			if cmd.Flags().Changed("id") {
				f.ID = &id
			}
			items, err := a.client.Queued.Get(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the service cache")
	cmd.Flags().StringVar(&kind, "type", string(torbox.QueuedTorrent), "torrent, usenet or webdl")
	cmd.Flags().Int64Var(&id, "id", 0, "a single queued item")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	return cmd
}

func (a *app) queuedControlCmd() *cobra.Command {
	var (
		kind string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "control [queued-id] <action>",
		Short: "Apply an action to a queued item, or to all of them",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := torbox.QueuedControl{Type: torbox.QueuedType(kind), All: all}
			actionArg := args[len(args)-1]
			if len(args) == 2 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", args[0], err)
				}
				c.QueuedID = &id
			} else if !all {
				return fmt.Errorf("a queued id is required without --all")
			}
			action, err := parseAction(actionArg)
			if err != nil {
				return err
			}
			c.Operation = action
			return a.client.Queued.Control(cmd.Context(), c)
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "torrent, usenet or webdl")
	cmd.Flags().BoolVar(&all, "all", false, "apply to the whole queue")
	return cmd
}
