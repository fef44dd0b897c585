package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"reelkit/internal/capabilities"
	"reelkit/internal/services"
	"reelkit/internal/testsupport"
)

func decodeTable(t *testing.T, out string) capabilities.Table {
	t.Helper()
	var table capabilities.Table
	if err := json.Unmarshal([]byte(out), &table); err != nil {
		t.Fatalf("decode table JSON: %v\n%s", err, out)
	}
	return table
}

func TestCodecsRendersTable(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedTools("", ""))

	out, err := runCLI(t, env, "codecs")
	if err != nil {
		t.Fatalf("codecs: %v", err)
	}
	requireContains(t, out, "(4)")
	requireContains(t, out, "DEV.LS")
	requireContains(t, out, "h264")
	requireContains(t, out, "decoding, encoding, video, lossy, lossless")
}

func TestListingFilters(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedTools("", ""))

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"video encoders", []string{"encoders", "--filter", "video", "--json"}, []string{"libx264"}},
		{"threaded decoders", []string{"decoders", "-f", "frame-threads,slice-threads", "--json"}, []string{"libx264"}},
		{"audio or subtitle codecs", []string{"codecs", "--filter", "audio,subtitle", "--any", "--json"}, []string{"aac", "flac", "ass"}},
		{"lossless audio codecs", []string{"codecs", "--filter", "audio", "--filter", "lossless", "--json"}, []string{"flac"}},
		{"device formats", []string{"formats", "--filter", "device", "--json"}, []string{"v4l2"}},
		{"muxing devices", []string{"devices", "--filter", "muxing", "--json"}, []string{"alsa"}},
	}
	for _, tc := range tests {
		out, err := runCLI(t, env, tc.args...)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := decodeTable(t, out).Names(); !slices.Equal(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestListingRejectsInvalidFilters(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedTools("", ""))

	for _, args := range [][]string{
		{"codecs", "--filter", "teleport"},
		{"codecs", "--filter", "experimental"},
		{"devices", "--filter", "device"},
	} {
		_, err := runCLI(t, env, args...)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%v: expected validation error, got %v", args, err)
		}
		if services.ExitCode(err) != services.ExitValidation {
			t.Fatalf("%v: unexpected exit code %d", args, services.ExitCode(err))
		}
	}
}

func TestListingNameLookup(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedTools("", ""))

	out, err := runCLI(t, env, "formats", "webm", "mp4", "--json")
	if err != nil {
		t.Fatalf("formats lookup: %v", err)
	}
	if got, want := decodeTable(t, out).Names(), []string{"matroska,webm", "mp4"}; !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	_, err = runCLI(t, env, "formats", "mkv")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown name, got %v", err)
	}
}

func TestListingUsesCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedTools("", ""))

	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, env, "codecs", "--json"); err != nil {
			t.Fatalf("codecs run %d: %v", i+1, err)
		}
	}
	if calls := env.stubCalls(t); !slices.Equal(calls, []string{"codecs"}) {
		t.Fatalf("second run should be served from cache, stub calls: %v", calls)
	}

	if _, err := runCLI(t, env, "codecs", "--refresh"); err != nil {
		t.Fatalf("codecs --refresh: %v", err)
	}
	if calls := env.stubCalls(t); len(calls) != 2 {
		t.Fatalf("--refresh must query ffmpeg again, stub calls: %v", calls)
	}

	out, err := runCLI(t, env, "cache", "list", "--json")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	var entries []cacheEntryView
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode cache list: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].Kind != "codecs" || entries[0].Records != 4 || !entries[0].Fresh {
		t.Fatalf("unexpected cache entries: %+v", entries)
	}
	if entries[0].Version == "" || entries[0].Binary != env.cfg.FFmpegBinary() {
		t.Fatalf("cache entry missing tool identity: %+v", entries[0])
	}

	out, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list table: %v", err)
	}
	requireContains(t, out, "Codecs")

	out, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached table(s)")

	out, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("second cache clear: %v", err)
	}
	requireContains(t, out, "already empty")
}

func TestListingWithCacheDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedTools("", ""), testsupport.WithCacheDisabled())

	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, env, "devices"); err != nil {
			t.Fatalf("devices run %d: %v", i+1, err)
		}
	}
	if calls := env.stubCalls(t); len(calls) != 2 {
		t.Fatalf("disabled cache must query ffmpeg each time, stub calls: %v", calls)
	}
	if _, err := os.Stat(env.cfg.CacheDatabasePath()); !os.IsNotExist(err) {
		t.Fatalf("disabled cache must not create a database, stat err: %v", err)
	}

	out, err := runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "disabled")
}

func TestListingFromFile(t *testing.T) {
	env := setupCLITestEnv(t)
	listing := "Devices:\n D. = Demuxing supported\n .E = Muxing supported\n --\n DE alsa            ALSA audio output\n D  lavfi           Libavfilter virtual input device\n ?? broken          not a device\n"
	path := filepath.Join(t.TempDir(), "devices.txt")
	if err := os.WriteFile(path, []byte(listing), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}

	out, err := runCLI(t, env, "devices", "--from", path, "--json")
	if err != nil {
		t.Fatalf("devices --from: %v", err)
	}
	if got, want := decodeTable(t, out).Names(), []string{"alsa", "lavfi"}; !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	out, err = runCLIWithInput(t, env, listing, "devices", "--from", "-", "--filter", "muxing", "--json")
	if err != nil {
		t.Fatalf("devices --from -: %v", err)
	}
	if got := decodeTable(t, out).Names(); !slices.Equal(got, []string{"alsa"}) {
		t.Fatalf("stdin listing: got %v", got)
	}

	if calls := env.stubCalls(t); len(calls) != 0 {
		t.Fatalf("--from must not run ffmpeg, stub calls: %v", calls)
	}
}

func TestListingFromFileErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env, "codecs", "--from", filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing file, got %v", err)
	}

	_, err = runCLIWithInput(t, env, "nothing useful here\n", "codecs", "--from", "-")
	if !errors.Is(err, services.ErrValidation) || !errors.Is(err, capabilities.ErrMissingSeparator) {
		t.Fatalf("expected structural parse error, got %v", err)
	}
}

func TestListingMissingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env, "codecs")
	if services.ExitCode(err) != services.ExitNotFound {
		t.Fatalf("expected not-found exit code, got %d (%v)", services.ExitCode(err), err)
	}
}
