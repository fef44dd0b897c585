package capcache_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"reelkit/internal/capabilities"
	"reelkit/internal/capcache"
)

const codecsListing = `Codecs:
 D..... = Decoding supported
 .E.... = Encoding supported
 ..V... = Video codec
 ..A... = Audio codec
 ..S... = Subtitle codec
 ...I.. = Intra frame-only codec
 ....L. = Lossy compression
 .....S = Lossless compression
 -------
 DEV.LS h264                 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10
 DEA.L. aac                  AAC (Advanced Audio Coding)
`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openCache(t *testing.T, ttl time.Duration) (*capcache.Cache, *fakeClock) {
	t.Helper()
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	cache, err := capcache.Open(
		filepath.Join(dir, "capabilities.db"),
		filepath.Join(dir, "capabilities.lock"),
		capcache.Options{TTL: ttl, Clock: clock.Now},
	)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache, clock
}

func codecsTable(t *testing.T) capabilities.Table {
	t.Helper()
	table, err := capabilities.Parse(capabilities.KindCodecs, codecsListing)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return table
}

func codecsKey() capcache.Key {
	return capcache.Key{Binary: "/usr/bin/ffmpeg", Version: "ffmpeg version 7.1", Kind: capabilities.KindCodecs}
}

func TestPutGetRoundTrip(t *testing.T) {
	cache, clock := openCache(t, time.Hour)
	ctx := context.Background()
	table := codecsTable(t)

	if _, _, found, err := cache.Get(ctx, codecsKey()); err != nil || found {
		t.Fatalf("expected empty cache, found=%v err=%v", found, err)
	}
	if err := cache.Put(ctx, codecsKey(), table); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, fetchedAt, found, err := cache.Get(ctx, codecsKey())
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if !fetchedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected fetched at: %v", fetchedAt)
	}
	if diff := cmp.Diff(table, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cached table differs (-put +got):\n%s", diff)
	}
	if got.Kind != capabilities.KindCodecs || got.Width != 6 || got.Len() != 2 {
		t.Fatalf("unexpected cached table: %+v", got)
	}
	h264, ok := got.Lookup("h264")
	if !ok || !h264.Has(capabilities.LosslessCompression) || !h264.Has(capabilities.Video) {
		t.Fatalf("cached h264 lost its flags: %+v", h264)
	}

	other := codecsKey()
	other.Version = "ffmpeg version 8.0"
	if _, _, found, _ := cache.Get(ctx, other); found {
		t.Fatal("a different ffmpeg version must not share entries")
	}
}

func TestPutRejectsMismatchedKind(t *testing.T) {
	cache, _ := openCache(t, time.Hour)
	key := codecsKey()
	key.Kind = capabilities.KindEncoders
	if err := cache.Put(context.Background(), key, codecsTable(t)); err == nil {
		t.Fatal("expected error when table kind does not match key")
	}
	if err := cache.Put(context.Background(), capcache.Key{Kind: capabilities.KindCodecs}, codecsTable(t)); err == nil {
		t.Fatal("expected error for key without binary")
	}
}

func TestEntriesAndClear(t *testing.T) {
	cache, clock := openCache(t, time.Hour)
	ctx := context.Background()

	if err := cache.Put(ctx, codecsKey(), codecsTable(t)); err != nil {
		t.Fatalf("Put codecs: %v", err)
	}
	clock.Advance(time.Minute)
	devices, err := capabilities.Parse(capabilities.KindDevices, "Devices:\n D. = Demuxing supported\n .E = Muxing supported\n --\n DE alsa            ALSA audio output\n")
	if err != nil {
		t.Fatalf("parse devices: %v", err)
	}
	devicesKey := codecsKey()
	devicesKey.Kind = capabilities.KindDevices
	if err := cache.Put(ctx, devicesKey, devices); err != nil {
		t.Fatalf("Put devices: %v", err)
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != capabilities.KindDevices || entries[0].Records != 1 {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}
	if entries[1].Kind != capabilities.KindCodecs || entries[1].Records != 2 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}

	removed, err := cache.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if entries, _ := cache.Entries(ctx); len(entries) != 0 {
		t.Fatalf("expected empty cache after clear, got %d entries", len(entries))
	}
}

func TestLoadServesFreshEntriesAndRefetchesStaleOnes(t *testing.T) {
	cache, clock := openCache(t, time.Hour)
	ctx := context.Background()
	table := codecsTable(t)

	calls := 0
	fetch := func(context.Context) (capabilities.Table, error) {
		calls++
		return table, nil
	}

	if _, cached, err := cache.Load(ctx, codecsKey(), false, fetch); err != nil || cached {
		t.Fatalf("first load: cached=%v err=%v", cached, err)
	}
	if _, cached, err := cache.Load(ctx, codecsKey(), false, fetch); err != nil || !cached {
		t.Fatalf("second load: cached=%v err=%v", cached, err)
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}

	if _, cached, err := cache.Load(ctx, codecsKey(), true, fetch); err != nil || cached {
		t.Fatalf("refresh load: cached=%v err=%v", cached, err)
	}
	if calls != 2 {
		t.Fatalf("refresh must fetch, got %d calls", calls)
	}

	clock.Advance(2 * time.Hour)
	if _, cached, err := cache.Load(ctx, codecsKey(), false, fetch); err != nil || cached {
		t.Fatalf("stale load: cached=%v err=%v", cached, err)
	}
	if calls != 3 {
		t.Fatalf("stale entry must be refetched, got %d calls", calls)
	}
}

func TestLoadDoesNotStoreFailedFetch(t *testing.T) {
	cache, _ := openCache(t, time.Hour)
	ctx := context.Background()
	boom := errors.New("ffmpeg exploded")

	_, _, err := cache.Load(ctx, codecsKey(), false, func(context.Context) (capabilities.Table, error) {
		return capabilities.Table{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, _, found, _ := cache.Get(ctx, codecsKey()); found {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestNilCacheFetchesDirectly(t *testing.T) {
	var cache *capcache.Cache
	calls := 0
	table, cached, err := cache.Load(context.Background(), codecsKey(), false, func(context.Context) (capabilities.Table, error) {
		calls++
		return capabilities.Table{Kind: capabilities.KindCodecs}, nil
	})
	if err != nil || cached || calls != 1 || table.Kind != capabilities.KindCodecs {
		t.Fatalf("unexpected nil cache load: cached=%v calls=%d err=%v", cached, calls, err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close on nil cache: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "capabilities.db")
	lockPath := filepath.Join(dir, "capabilities.lock")
	for i := 0; i < 2; i++ {
		cache, err := capcache.Open(dbPath, lockPath, capcache.Options{})
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if cache.Path() != dbPath {
			t.Fatalf("unexpected path %q", cache.Path())
		}
		if !cache.Fresh(time.Unix(0, 0)) {
			t.Fatal("zero TTL must keep entries fresh")
		}
		if err := cache.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}
