package capcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"reelkit/internal/capabilities"
	"reelkit/internal/logging"
)

const lockRetryDelay = 100 * time.Millisecond

// Key identifies one cached table.
type Key struct {
	Binary  string
	Version string
	Kind    capabilities.Kind
}

func (k Key) validate() error {
	if strings.TrimSpace(k.Binary) == "" {
		return errors.New("cache key: binary is required")
	}
	if strings.TrimSpace(k.Version) == "" {
		return errors.New("cache key: version is required")
	}
	if !k.Kind.Valid() {
		return fmt.Errorf("cache key: %w: %d", capabilities.ErrUnknownKind, int(k.Kind))
	}
	return nil
}

// Entry summarises a cached table without its payload.
type Entry struct {
	Key
	Records   int
	FetchedAt time.Time
}

// Options tunes a Cache.
type Options struct {
	// TTL is how long an entry stays fresh. Zero keeps entries forever.
	TTL    time.Duration
	Logger *slog.Logger
	// Clock overrides time.Now.
	Clock func() time.Time
}

// Cache stores parsed capability tables in SQLite. A nil *Cache is a disabled
// cache: Load fetches directly and the other methods are no-ops.
type Cache struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	ttl    time.Duration
	clock  func() time.Time
	logger *slog.Logger
}

// Open initializes or connects to the cache database and applies migrations.
func Open(dbPath, lockPath string, opts Options) (*Cache, error) {
	if strings.TrimSpace(dbPath) == "" || strings.TrimSpace(lockPath) == "" {
		return nil, errors.New("open capability cache: database and lock paths are required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	cache := &Cache{
		db:     db,
		path:   dbPath,
		lock:   flock.New(lockPath),
		ttl:    opts.TTL,
		clock:  clock,
		logger: logging.NewComponentLogger(opts.Logger, "capcache"),
	}
	if err := cache.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached table for key regardless of age, with the time it
// was fetched.
func (c *Cache) Get(ctx context.Context, key Key) (capabilities.Table, time.Time, bool, error) {
	if c == nil {
		return capabilities.Table{}, time.Time{}, false, nil
	}
	if err := key.validate(); err != nil {
		return capabilities.Table{}, time.Time{}, false, err
	}

	var payload, fetchedText string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM capability_tables
         WHERE binary_path = ? AND tool_version = ? AND kind = ?`,
		key.Binary, key.Version, key.Kind.String(),
	).Scan(&payload, &fetchedText)
	if errors.Is(err, sql.ErrNoRows) {
		return capabilities.Table{}, time.Time{}, false, nil
	}
	if err != nil {
		return capabilities.Table{}, time.Time{}, false, fmt.Errorf("query cached %s table: %w", key.Kind, err)
	}

	var table capabilities.Table
	if err := json.Unmarshal([]byte(payload), &table); err != nil {
		return capabilities.Table{}, time.Time{}, false, fmt.Errorf("decode cached %s table: %w", key.Kind, err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, fetchedText)
	if err != nil {
		return capabilities.Table{}, time.Time{}, false, fmt.Errorf("decode cached %s timestamp: %w", key.Kind, err)
	}
	return table, fetchedAt, true, nil
}

// Put stores table under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key Key, table capabilities.Table) error {
	if c == nil {
		return nil
	}
	if err := key.validate(); err != nil {
		return err
	}
	if table.Kind != key.Kind {
		return fmt.Errorf("cache %s table under %s key", table.Kind, key.Kind)
	}
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode %s table: %w", key.Kind, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO capability_tables (binary_path, tool_version, kind, width, record_count, payload, fetched_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (binary_path, tool_version, kind) DO UPDATE SET
             width = excluded.width,
             record_count = excluded.record_count,
             payload = excluded.payload,
             fetched_at = excluded.fetched_at`,
		key.Binary, key.Version, key.Kind.String(), table.Width, table.Len(), string(payload),
		c.clock().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store %s table: %w", key.Kind, err)
	}
	return nil
}

// Entries lists cached tables, newest first.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	if c == nil {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT binary_path, tool_version, kind, record_count, fetched_at
         FROM capability_tables ORDER BY fetched_at DESC, kind`)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry       Entry
			kindText    string
			fetchedText string
		)
		if err := rows.Scan(&entry.Binary, &entry.Version, &kindText, &entry.Records, &fetchedText); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		if entry.Kind, err = capabilities.ParseKind(kindText); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		if entry.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedText); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	return entries, nil
}

// Clear removes every cached table and reports how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx, "DELETE FROM capability_tables")
	if err != nil {
		return 0, fmt.Errorf("clear capability cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear capability cache: %w", err)
	}
	return removed, nil
}

// Fresh reports whether an entry fetched at fetchedAt is still within the TTL.
func (c *Cache) Fresh(fetchedAt time.Time) bool {
	if c == nil {
		return false
	}
	if c.ttl <= 0 {
		return true
	}
	return c.clock().Sub(fetchedAt) < c.ttl
}

// FetchFunc produces a table when the cache cannot serve one.
type FetchFunc func(ctx context.Context) (capabilities.Table, error)

// Load returns the cached table for key when it is fresh, otherwise it calls
// fetch and stores the result. With refresh set the cache is never read.
// The reported bool is true when the table came from the cache.
func (c *Cache) Load(ctx context.Context, key Key, refresh bool, fetch FetchFunc) (capabilities.Table, bool, error) {
	if c == nil {
		table, err := fetch(ctx)
		return table, false, err
	}

	if !refresh {
		if table, ok := c.lookupFresh(ctx, key); ok {
			return table, true, nil
		}
	}

	locked, err := c.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return capabilities.Table{}, false, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return capabilities.Table{}, false, errors.New("acquire cache lock: lock not obtained")
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			logging.WarnWithContext(c.logger, "cache lock release failed", "capcache_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the next refresh may wait on a stale lock"),
			)
		}
	}()

	// Another process may have refreshed while we waited for the lock.
	if !refresh {
		if table, ok := c.lookupFresh(ctx, key); ok {
			return table, true, nil
		}
	}

	table, err := fetch(ctx)
	if err != nil {
		return capabilities.Table{}, false, err
	}
	if err := c.Put(ctx, key, table); err != nil {
		logging.WarnWithContext(c.logger, "capability table not cached", "capcache_store_failed",
			logging.Kind(key.Kind),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the listing will be fetched again next time"),
		)
	} else {
		c.logger.Debug("capability table cached",
			logging.Kind(key.Kind),
			logging.Binary(key.Binary),
			logging.Int("records", table.Len()),
		)
	}
	return table, false, nil
}

func (c *Cache) lookupFresh(ctx context.Context, key Key) (capabilities.Table, bool) {
	table, fetchedAt, found, err := c.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(c.logger, "capability cache read failed", "capcache_read_failed",
			logging.Kind(key.Kind),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the listing will be fetched from ffmpeg"),
		)
		return capabilities.Table{}, false
	}
	if !found || !c.Fresh(fetchedAt) {
		return capabilities.Table{}, false
	}
	return table, true
}
