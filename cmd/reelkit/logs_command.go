package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelkit/internal/config"
	"reelkit/internal/logs"
	"reelkit/internal/services"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		grep   string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent reelkit log lines",
		Long: "Show the tail of today's log file, or the newest log file when today has none.\n" +
			"Use --follow to keep printing lines as they are written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines < 0 {
				return services.Wrap(services.ErrValidation, "logs", "parse flags", "--lines must not be negative", nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := resolveLogFile(cfg, file)
			if err != nil {
				return err
			}

			var match func(string) bool
			if needle := strings.TrimSpace(grep); needle != "" {
				match = func(line string) bool { return strings.Contains(line, needle) }
			}

			out := cmd.OutOrStdout()
			scope := ctx.commandScope(cmd)
			result, err := logs.Tail(scope, path, logs.TailOptions{Offset: -1, Limit: lines, Match: match})
			if err != nil {
				return services.Wrap(services.ErrTransient, "logs", "tail", path, err)
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(scope, path, result.Offset, match, func(lines []string) {
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return services.Wrap(services.ErrTransient, "logs", "follow", path, err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&grep, "grep", "", "Only show lines containing this text")
	cmd.Flags().StringVar(&file, "file", "", "Read this log file instead of the configured log directory")
	return cmd
}

// resolveLogFile picks an explicit file, today's log, or the newest log in
// the log directory, in that order.
func resolveLogFile(cfg *config.Config, explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return config.ExpandPath(explicit)
	}
	today := cfg.LogPath(time.Now())
	if today == "" {
		return "", services.Wrap(services.ErrConfiguration, "logs", "resolve", "log directory is not configured", nil)
	}
	if info, err := os.Stat(today); err == nil && !info.IsDir() {
		return today, nil
	}
	latest, found, err := logs.Latest(cfg.Paths.LogDir, config.LogFilePattern)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "logs", "resolve", cfg.Paths.LogDir, err)
	}
	if !found {
		return "", services.Wrap(services.ErrNotFound, "logs", "resolve", "no log files in "+cfg.Paths.LogDir, nil)
	}
	return latest, nil
}
