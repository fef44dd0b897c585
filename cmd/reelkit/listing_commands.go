package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"reelkit/internal/capabilities"
	"reelkit/internal/capcache"
	"reelkit/internal/ffmpeg"
	"reelkit/internal/logging"
	"reelkit/internal/services"
)

type listingOptions struct {
	filters  []string
	matchAny bool
	jsonOut  bool
	refresh  bool
	from     string
}

func newListingCommands(ctx *commandContext) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(capabilities.Kinds))
	for _, kind := range capabilities.Kinds {
		cmds = append(cmds, newListingCommand(ctx, kind))
	}
	return cmds
}

func newListingCommand(ctx *commandContext, kind capabilities.Kind) *cobra.Command {
	var opts listingOptions

	cmd := &cobra.Command{
		Use:   kind.String() + " [NAME...]",
		Short: fmt.Sprintf("List ffmpeg %s and their capability flags", kind),
		Long: fmt.Sprintf("List the entries printed by \"ffmpeg %s\".\n\nFilters: %s",
			kind.ListingFlag(), meaningList(capabilities.KindMeanings(kind))),
		RunE: func(cmd *cobra.Command, args []string) error {
			meanings, err := parseFilters(kind, opts.filters)
			if err != nil {
				return err
			}
			table, err := loadTable(ctx, cmd, kind, opts)
			if err != nil {
				return err
			}
			if len(meanings) > 0 {
				if opts.matchAny {
					table = table.WithAny(meanings...)
				} else {
					table = table.WithAll(meanings...)
				}
			}
			if len(args) > 0 {
				if table, err = selectNames(table, args); err != nil {
					return err
				}
			}
			if opts.jsonOut {
				return writeJSON(cmd, table)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderListing(table))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.filters, "filter", "f", nil, "Only show entries carrying these flags (e.g. video,lossless)")
	cmd.Flags().BoolVar(&opts.matchAny, "any", false, "Match entries carrying any filter flag instead of all")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Ignore cached listings and query ffmpeg again")
	cmd.Flags().StringVar(&opts.from, "from", "", "Parse a saved listing from FILE (- for stdin) instead of running ffmpeg")
	return cmd
}

func parseFilters(kind capabilities.Kind, values []string) ([]capabilities.Meaning, error) {
	allowed := capabilities.KindMeanings(kind)
	out := make([]capabilities.Meaning, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		m, err := capabilities.ParseMeaning(value)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "filter", "", fmt.Sprintf("valid %s filters: %s", kind, meaningList(allowed)), err)
		}
		if !slices.Contains(allowed, m) {
			return nil, services.Wrap(services.ErrValidation, "filter", "", fmt.Sprintf("%q does not apply to %s (valid: %s)", m.Slug(), kind, meaningList(allowed)), nil)
		}
		out = append(out, m)
	}
	return out, nil
}

// loadTable reads the listing from --from, the cache, or ffmpeg, in that
// order of preference.
func loadTable(ctx *commandContext, cmd *cobra.Command, kind capabilities.Kind, opts listingOptions) (capabilities.Table, error) {
	scope := services.WithKind(ctx.commandScope(cmd), kind.String())
	logger, err := ctx.ensureLogger()
	if err != nil {
		return capabilities.Table{}, err
	}

	if source := strings.TrimSpace(opts.from); source != "" {
		raw, err := readListing(cmd.InOrStdin(), source)
		if err != nil {
			return capabilities.Table{}, err
		}
		table, err := ffmpeg.ParseListing(scope, logger, kind, raw)
		if err != nil {
			return capabilities.Table{}, services.Wrap(services.ErrValidation, "listing", "parse "+source, "", err)
		}
		return table, nil
	}

	runner, err := ctx.runner()
	if err != nil {
		return capabilities.Table{}, err
	}
	cache, err := ctx.capabilityCache()
	if err != nil {
		return capabilities.Table{}, err
	}
	if cache == nil {
		return runner.Capabilities(scope, kind)
	}

	version, err := runner.Version(scope)
	if err != nil {
		return capabilities.Table{}, err
	}
	key := capcache.Key{Binary: runner.FFmpeg, Version: version, Kind: kind}
	table, cached, err := cache.Load(scope, key, opts.refresh, func(fetchCtx context.Context) (capabilities.Table, error) {
		return runner.Capabilities(fetchCtx, kind)
	})
	if err != nil {
		return capabilities.Table{}, err
	}
	logging.WithContext(scope, logger).Debug("capability table ready",
		logging.Bool("cached", cached),
		logging.Int("records", table.Len()),
	)
	return table, nil
}

func readListing(stdin io.Reader, source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return "", services.Wrap(services.ErrNotFound, "listing", "read", source, err)
		}
		return "", fmt.Errorf("read listing %s: %w", source, err)
	}
	return string(data), nil
}

// selectNames keeps the requested entries in argument order. Every name must
// match an entry.
func selectNames(table capabilities.Table, names []string) (capabilities.Table, error) {
	out := capabilities.Table{Kind: table.Kind, Width: table.Width, Records: make([]capabilities.Record, 0, len(names))}
	var missing []string
	for _, name := range names {
		record, ok := table.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Records = append(out.Records, record)
	}
	if len(missing) > 0 {
		return capabilities.Table{}, services.Wrap(services.ErrNotFound, table.Kind.String(), "lookup", strings.Join(missing, ", "), nil)
	}
	return out, nil
}

func renderListing(table capabilities.Table) string {
	rows := make([][]string, 0, table.Len())
	for _, record := range table.Records {
		rows = append(rows, []string{
			record.Prefix(table.Width),
			record.Name,
			meaningList(record.Meanings()),
			record.Description,
		})
	}
	title := fmt.Sprintf("%s (%d)", kindTitle(table.Kind), table.Len())
	return renderTable(title, []column{
		leftColumn("Flags"), leftColumn("Name"), leftColumn("Capabilities"), wrappedColumn("Description", 56),
	}, rows)
}
