package main

import (
	"github.com/sirrobot01/torbox/pkg/downloaders"
	"github.com/spf13/cobra"
)

func (a *app) downloadCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "download <url> <dir>",
		Short: "Save a link returned by 'link' to disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := downloaders.New(nil, a.log).Download(cmd.Context(), args[0], args[1], name)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"path": path})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name, by default the one sent by the server")
	return cmd
}
