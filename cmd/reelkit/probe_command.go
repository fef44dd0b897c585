package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// probeConcurrency bounds parallel ffprobe processes.
const probeConcurrency = 4

func newProbeCommand(ctx *commandContext) *cobra.Command {
	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Inspect media files with ffprobe",
	}
	probeCmd.AddCommand(newProbeDurationCommand(ctx))
	return probeCmd
}

func newProbeDurationCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "duration FILE...",
		Short: "Show container durations as timecodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			scope := ctx.commandScope(cmd)

			views := make([]timecodeView, len(args))
			g, gctx := errgroup.WithContext(scope)
			g.SetLimit(probeConcurrency)
			for i, path := range args {
				g.Go(func() error {
					duration, err := runner.ProbeDuration(gctx, path)
					if err != nil {
						return err
					}
					views[i] = newTimecodeView(path, duration)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, views)
			}
			if len(views) == 1 {
				fmt.Fprintln(cmd.OutOrStdout(), views[0].Timecode)
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{v.Input, v.Timecode, strconv.FormatInt(v.Seconds, 10)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []column{
				leftColumn("File"), leftColumn("Duration"), rightColumn("Seconds"),
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
