package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sirrobot01/torbox/internal/config"
	"github.com/sirrobot01/torbox/internal/logger"
	"github.com/sirrobot01/torbox/pkg/torbox"
	"github.com/sirrobot01/torbox/pkg/version"
	"github.com/spf13/cobra"
)

const skipConfig = "skip-config"

type app struct {
	configDir string
	logLevel  string

	cfg    *config.Config
	client *torbox.Client
	log    zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "torbox",
		Short:         "Command line client for the TorBox API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config", "/data", "path to the data folder")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		versionCmd(),
		a.meCmd(),
		a.torrentsCmd(),
		a.usenetCmd(),
		a.queuedCmd(),
		a.downloadCmd(),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.NewLogger("torbox", cfg.LogLevel, stderr, cfg.LogDir).
		With().Str("run", uuid.NewString()).Logger()
	a.log.Debug().Msgf("Version: %s", version.GetInfo().String())
	a.log.Debug().Msgf("Config loaded from %s", cfg.JsonFile())

	opts := append(cfg.TorboxOptions(), torbox.WithLogger(a.log))
	a.client = torbox.New(cfg.APIKey, opts...)
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func parseAction(s string) (torbox.Action, error) {
	switch a := torbox.Action(s); a {
	case torbox.ActionPause, torbox.ActionResume, torbox.ActionReannounce, torbox.ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q, expected pause, resume, reannounce or delete", s)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), version.GetInfo())
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	var settings bool
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the current account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.User.Get(cmd.Context(), settings)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().BoolVar(&settings, "settings", false, "include account settings")
	return cmd
}
