package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelkit/internal/capcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the capability cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

type cacheEntryView struct {
	Kind      string    `json:"kind"`
	Binary    string    `json:"binary"`
	Version   string    `json:"version"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
	Fresh     bool      `json:"fresh"`
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show cached capability tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCacheForCommand(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}

			entries, err := cache.Entries(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]cacheEntryView, 0, len(entries))
			for _, entry := range entries {
				views = append(views, cacheEntryView{
					Kind:      entry.Kind.String(),
					Binary:    entry.Binary,
					Version:   entry.Version,
					Records:   entry.Records,
					FetchedAt: entry.FetchedAt,
					Fresh:     cache.Fresh(entry.FetchedAt),
				})
			}
			if jsonOut {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", cache.Path())
			if len(views) == 0 {
				fmt.Fprintln(out, "Cached tables: none")
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(views))
			for i, v := range views {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					titleCaser.String(v.Kind),
					strconv.Itoa(v.Records),
					v.FetchedAt.Local().Format(stampLayout),
					yesNo(v.Fresh),
					v.Binary,
					v.Version,
				})
			}
			fmt.Fprintln(out, renderTable("", []column{
				rightColumn("#"), leftColumn("Kind"), rightColumn("Records"), leftColumn("Fetched"),
				leftColumn("Fresh"), leftColumn("Binary"), wrappedColumn("Version", 40),
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached capability table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCacheForCommand(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Capability cache already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached table(s)\n", removed)
			return nil
		},
	}
}

// openCacheForCommand returns a user-facing note instead of a cache when
// caching is disabled.
func openCacheForCommand(ctx *commandContext) (*capcache.Cache, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Enabled {
		return nil, "Capability cache is disabled (set [cache] enabled = true in config.toml)", nil
	}
	cache, err := ctx.capabilityCache()
	return cache, "", err
}
