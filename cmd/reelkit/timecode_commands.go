package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelkit/internal/ffmpeg"
	"reelkit/internal/services"
	"reelkit/internal/timecode"
)

type timecodeView struct {
	Input       string `json:"input"`
	Timecode    string `json:"timecode"`
	Seconds     int64  `json:"seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
}

func newTimecodeView(input string, tc timecode.Timecode) timecodeView {
	return timecodeView{
		Input:       input,
		Timecode:    tc.Format(),
		Seconds:     tc.ToSeconds(),
		Nanoseconds: tc.ToNanoseconds(),
	}
}

func newTimecodeCommand(ctx *commandContext) *cobra.Command {
	timecodeCmd := &cobra.Command{
		Use:   "timecode",
		Short: "Parse, compare, and cut with H:MM:SS[.nnnnnn] timecodes",
	}

	timecodeCmd.AddCommand(newTimecodeParseCommand())
	timecodeCmd.AddCommand(newTimecodeDiffCommand())
	timecodeCmd.AddCommand(newTimecodeTrimCommand(ctx))

	return timecodeCmd
}

func newTimecodeParseCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "parse TIMECODE...",
		Short:       "Validate timecodes and show their normalized form",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			views := make([]timecodeView, 0, len(args))
			for _, arg := range args {
				tc, err := parseTimecodeArg(arg)
				if err != nil {
					return err
				}
				views = append(views, newTimecodeView(arg, tc))
			}
			if jsonOut {
				return writeJSON(cmd, views)
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.Input,
					v.Timecode,
					strconv.FormatInt(v.Seconds, 10),
					strconv.FormatInt(v.Nanoseconds, 10),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []column{
				leftColumn("Input"), leftColumn("Timecode"), rightColumn("Seconds"), rightColumn("Nanoseconds"),
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newTimecodeDiffCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "diff A B",
		Short:       "Show the absolute interval between two timecodes",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseTimecodeArg(args[0])
			if err != nil {
				return err
			}
			b, err := parseTimecodeArg(args[1])
			if err != nil {
				return err
			}
			diff := timecode.Difference(a, b)
			if jsonOut {
				return writeJSON(cmd, struct {
					A          string       `json:"a"`
					B          string       `json:"b"`
					Difference timecodeView `json:"difference"`
				}{a.Format(), b.Format(), newTimecodeView(args[0]+" - "+args[1], diff)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff.Format())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newTimecodeTrimCommand(ctx *commandContext) *cobra.Command {
	var (
		startFlag string
		endFlag   string
		run       bool
	)

	cmd := &cobra.Command{
		Use:   "trim SRC DEST",
		Short: "Cut SRC between --start and --end into DEST without re-encoding",
		Long: "Print the ffmpeg command that stream-copies a span of SRC into DEST, or run it with --run.\n\n" +
			"--start defaults to 00:00:00. Without --end the span runs to the duration ffprobe reports for SRC.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dest := args[0], args[1]
			scope := ctx.commandScope(cmd)

			start, startSet, err := parseTimecodeFlag(cmd, "start", startFlag)
			if err != nil {
				return err
			}
			if !startSet {
				start = timecode.Zero
			}

			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			end, endSet, err := parseTimecodeFlag(cmd, "end", endFlag)
			if err != nil {
				return err
			}
			if !endSet {
				if end, err = runner.ProbeDuration(scope, src); err != nil {
					return err
				}
			}

			span, err := timecode.NewSpan(start, end)
			if err != nil {
				return services.Wrap(services.ErrValidation, "timecode", "trim", "", err)
			}

			if !run {
				argv := append([]string{runner.FFmpeg}, ffmpeg.TrimArgs(src, dest, span)...)
				fmt.Fprintln(cmd.OutOrStdout(), shellJoin(argv))
				return nil
			}
			if err := runner.Trim(scope, src, dest, span); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s from %s)\n", dest, span.Duration().Format(), span.Start.Format())
			return nil
		},
	}
	cmd.Flags().StringVar(&startFlag, "start", "", "Start timecode (default 00:00:00)")
	cmd.Flags().StringVar(&endFlag, "end", "", "End timecode (default: probed duration of SRC)")
	cmd.Flags().BoolVar(&run, "run", false, "Run ffmpeg instead of printing the command")
	return cmd
}

func parseTimecodeArg(value string) (timecode.Timecode, error) {
	tc, err := timecode.Parse(value)
	if err != nil {
		return timecode.Timecode{}, services.Wrap(services.ErrValidation, "timecode", "parse", fmt.Sprintf("%q", value), err)
	}
	return tc, nil
}

// parseTimecodeFlag reports set=false when the flag was not given. A flag
// given with an empty value is a validation error, not a default.
func parseTimecodeFlag(cmd *cobra.Command, name, value string) (timecode.Timecode, bool, error) {
	set := cmd.Flags().Changed(name)
	if !set {
		return timecode.Timecode{}, false, nil
	}
	tc, err := timecode.ParseOptional(&value, set)
	if err != nil {
		return timecode.Timecode{}, true, services.Wrap(services.ErrValidation, "timecode", "--"+name, "", err)
	}
	return tc, true, nil
}

// shellJoin quotes arguments that a POSIX shell would split or expand.
func shellJoin(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
			quoted = append(quoted, arg)
			continue
		}
		quoted = append(quoted, "'"+strings.ReplaceAll(arg, "'", `'\''`)+"'")
	}
	return strings.Join(quoted, " ")
}
