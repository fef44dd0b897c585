package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"reelkit/internal/capabilities"
	"reelkit/internal/logging"
	"reelkit/internal/services"
	"reelkit/internal/timecode"
)

const (
	defaultFFmpeg  = "ffmpeg"
	defaultFFprobe = "ffprobe"
	// waitDelay caps how long a killed tool's children may hold its pipes open.
	waitDelay = 2 * time.Second
)

// Runner executes ffmpeg tools. The zero value runs "ffmpeg" and "ffprobe"
// from PATH without a timeout.
type Runner struct {
	FFmpeg  string
	FFprobe string
	// Timeout bounds each invocation. Zero means no limit beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (r Runner) ffmpegBinary() string {
	if binary := strings.TrimSpace(r.FFmpeg); binary != "" {
		return binary
	}
	return defaultFFmpeg
}

func (r Runner) ffprobeBinary() string {
	if binary := strings.TrimSpace(r.FFprobe); binary != "" {
		return binary
	}
	return defaultFFprobe
}

func (r Runner) logger() *slog.Logger {
	return logging.NewComponentLogger(r.Logger, "ffmpeg")
}

// Listing captures the raw text ffmpeg prints for the given listing kind.
func (r Runner) Listing(ctx context.Context, kind capabilities.Kind) (string, error) {
	if !kind.Valid() {
		return "", services.Wrap(services.ErrValidation, "ffmpeg", "listing", "", fmt.Errorf("%w: %d", capabilities.ErrUnknownKind, int(kind)))
	}
	out, err := r.run(ctx, r.ffmpegBinary(), "listing "+kind.String(), "-hide_banner", kind.ListingFlag())
	if err != nil {
		return "", err
	}
	return out, nil
}

// Capabilities captures and parses a listing. Malformed rows are logged and
// skipped; the returned table holds every row that parsed.
func (r Runner) Capabilities(ctx context.Context, kind capabilities.Kind) (capabilities.Table, error) {
	raw, err := r.Listing(ctx, kind)
	if err != nil {
		return capabilities.Table{}, err
	}
	table, err := ParseListing(ctx, r.logger(), kind, raw)
	if err != nil {
		return capabilities.Table{}, services.Wrap(services.ErrExternalTool, "ffmpeg", "parse "+kind.String(), "unexpected listing layout", err)
	}
	return table, nil
}

// ParseListing parses captured listing text, logging each malformed row as a
// warning instead of failing. Only structural errors are returned.
func ParseListing(ctx context.Context, logger *slog.Logger, kind capabilities.Kind, raw string) (capabilities.Table, error) {
	table, err := capabilities.Parse(kind, raw)
	if err == nil {
		return table, nil
	}
	var rowErrs *capabilities.RowErrors
	if !errors.As(err, &rowErrs) {
		return capabilities.Table{}, err
	}
	logger = logging.WithContext(ctx, logger)
	for _, row := range rowErrs.Rows {
		logging.WarnWithContext(logger, "capability row skipped", "capability_row_malformed",
			logging.Kind(kind),
			logging.Int("line", row.Line),
			logging.String("reason", row.Reason),
			logging.String(logging.FieldImpact, "entry missing from the listing"),
		)
	}
	return table, nil
}

// Version returns the first line of "ffmpeg -version".
func (r Runner) Version(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.ffmpegBinary(), "version", "-hide_banner", "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "version", "empty version output", nil)
	}
	return line, nil
}

// ProbeDuration asks ffprobe for the container duration in sexagesimal form
// and parses it as a timecode.
func (r Runner) ProbeDuration(ctx context.Context, path string) (timecode.Timecode, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return timecode.Timecode{}, services.Wrap(services.ErrValidation, "ffprobe", "duration", "empty path", nil)
	}
	out, err := r.run(ctx, r.ffprobeBinary(), "duration",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"-sexagesimal",
		"--", path,
	)
	if err != nil {
		return timecode.Timecode{}, err
	}
	value := strings.TrimSpace(out)
	if value == "" || value == "N/A" {
		return timecode.Timecode{}, services.Wrap(services.ErrNotFound, "ffprobe", "duration", fmt.Sprintf("no duration reported for %s", path), nil)
	}
	tc, err := timecode.Parse(value)
	if err != nil {
		return timecode.Timecode{}, services.Wrap(services.ErrExternalTool, "ffprobe", "duration", fmt.Sprintf("unexpected duration %q", value), err)
	}
	return tc, nil
}

// TrimArgs returns the ffmpeg arguments that stream-copy span out of src into
// dest. The binary name is not included.
func TrimArgs(src, dest string, span timecode.Span) []string {
	return []string{
		"-hide_banner",
		"-ss", span.Start.Format(),
		"-i", src,
		"-t", span.Duration().Format(),
		"-c", "copy",
		"-y", dest,
	}
}

// Trim stream-copies span out of src into dest, overwriting dest.
func (r Runner) Trim(ctx context.Context, src, dest string, span timecode.Span) error {
	src, dest = strings.TrimSpace(src), strings.TrimSpace(dest)
	if src == "" || dest == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "trim", "source and destination are required", nil)
	}
	if src == dest {
		return services.Wrap(services.ErrValidation, "ffmpeg", "trim", "destination must differ from source", nil)
	}
	if span.End.Compare(span.Start) < 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", "trim", "", timecode.ErrReversedSpan)
	}
	_, err := r.run(ctx, r.ffmpegBinary(), "trim", TrimArgs(src, dest, span)...)
	if err != nil {
		return err
	}
	r.logger().Info("trimmed media",
		logging.String("source", src),
		logging.String("destination", dest),
		logging.Stringer("start", span.Start),
		logging.Stringer("end", span.End),
	)
	return nil
}

func (r Runner) run(ctx context.Context, binary, operation string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, r.logger())
	logger.Debug("running external tool",
		logging.Binary(binary),
		logging.String("args", strings.Join(args, " ")),
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	started := time.Now()
	err := cmd.Run()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", services.Wrap(services.ErrTimeout, binary, operation, detail, ctxErr)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, binary, operation, "binary not found", err)
		}
		return "", services.Wrap(services.ErrExternalTool, binary, operation, detail, err)
	}
	logger.Debug("external tool finished",
		logging.Binary(binary),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("stdout_bytes", stdout.Len()),
	)
	return stdout.String(), nil
}
