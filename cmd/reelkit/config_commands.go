package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"reelkit/internal/config"
	"reelkit/internal/deps"
	"reelkit/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
		toStdout   bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if toStdout {
				_, err := io.WriteString(out, config.Sample())
				return err
			}

			target, err := initTarget(targetPath)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "init", "resolve destination", err)
			}
			if err := config.CreateSample(target, overwrite); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "init", "use --overwrite to replace an existing file", err)
			}

			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set [tools] ffmpeg_binary (or export REELKIT_FFMPEG) if ffmpeg is not on PATH.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the sample instead of writing a file")
	cmd.MarkFlagsMutuallyExclusive("stdout", "path")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		return config.ExpandPath(target)
	}
	return config.DefaultConfigPath()
}

type configSummary struct {
	Path          string `json:"path"`
	Exists        bool   `json:"exists"`
	FFmpeg        string `json:"ffmpeg"`
	FFprobe       string `json:"ffprobe"`
	TimeoutSecs   int    `json:"timeout_seconds"`
	CacheEnabled  bool   `json:"cache_enabled"`
	CacheDatabase string `json:"cache_database,omitempty"`
	CacheTTLHours int    `json:"cache_ttl_hours,omitempty"`
	LogDir        string `json:"log_dir"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			}

			summary := configSummary{
				Path:         path,
				Exists:       exists,
				FFmpeg:       cfg.FFmpegBinary(),
				FFprobe:      deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary()),
				TimeoutSecs:  cfg.Tools.TimeoutSeconds,
				CacheEnabled: cfg.Cache.Enabled,
				LogDir:       cfg.Paths.LogDir,
			}
			if cfg.Cache.Enabled {
				summary.CacheDatabase = cfg.CacheDatabasePath()
				summary.CacheTTLHours = cfg.Cache.TTLHours
			}
			if jsonOut {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", summary.Path)
			if !summary.Exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "FFmpeg: %s\n", summary.FFmpeg)
			fmt.Fprintf(out, "FFprobe: %s\n", summary.FFprobe)
			fmt.Fprintf(out, "Tool timeout: %s\n", cfg.ToolTimeout())
			if summary.CacheEnabled {
				fmt.Fprintf(out, "Cache: %s (ttl: %s)\n", summary.CacheDatabase, cfg.CacheTTL())
			} else {
				fmt.Fprintln(out, "Cache: disabled")
			}
			fmt.Fprintf(out, "Logs: %s\n", summary.LogDir)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
