package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelkit/internal/preflight"
	"reelkit/internal/services"
)

type statusReport struct {
	SessionID     string             `json:"session_id"`
	ConfigPath    string             `json:"config_path"`
	FFmpegVersion string             `json:"ffmpeg_version,omitempty"`
	Checks        []preflight.Result `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, directories, and ffmpeg tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			scope := ctx.commandScope(cmd)

			report := statusReport{
				SessionID:  ctx.sessionID,
				ConfigPath: ctx.configPath,
				Checks:     preflight.RunAll(scope, cfg),
			}
			if len(preflight.Failed(report.Checks)) == 0 {
				runner, err := ctx.runner()
				if err != nil {
					return err
				}
				if version, err := runner.Version(scope); err == nil {
					report.FFmpegVersion = version
				}
			}

			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printStatus(cmd, report)
			}

			if failed := preflight.Failed(report.Checks); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "status", "", fmt.Sprintf("%d check(s) failed", len(failed)), errors.New(failed[0].Detail))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	p := &statusPrinter{colorize: shouldColorize(out)}

	p.section("Configuration")
	p.line("Config file", levelInfo, report.ConfigPath)
	if version := strings.TrimSpace(report.FFmpegVersion); version != "" {
		p.line("FFmpeg version", levelInfo, version)
	} else {
		p.line("FFmpeg version", levelWarn, "unknown")
	}

	p.section("Checks")
	p.checks(report.Checks)
	fmt.Fprintln(out, p.String())
}
