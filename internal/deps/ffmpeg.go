package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultFFprobe = "ffprobe"

// ResolveFFprobe picks the ffprobe binary that pairs with ffmpegCommand.
//
// An explicitly configured ffprobe always wins. When ffprobe is left at its
// default name and ffmpeg resolves to a directory that also holds an
// executable ffprobe, that sibling is used so both tools come from the same
// build. Otherwise "ffprobe" is looked up on PATH.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) string {
	ffprobe := strings.TrimSpace(ffprobeCommand)
	if ffprobe != "" && ffprobe != defaultFFprobe {
		return ffprobe
	}

	ffmpeg := strings.TrimSpace(ffmpegCommand)
	if ffmpeg != "" {
		if resolved, err := exec.LookPath(ffmpeg); err == nil {
			candidate := siblingBinary(resolved, defaultFFprobe)
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return candidate
			}
		}
	}
	return defaultFFprobe
}

// ToolRequirements lists the binaries reelkit needs for the given commands.
func ToolRequirements(ffmpegCommand, ffprobeCommand string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     strings.TrimSpace(ffmpegCommand),
			Description: "Required for capability listings and trimming",
		},
		{
			Name:        "FFprobe",
			Command:     ResolveFFprobe(ffmpegCommand, ffprobeCommand),
			Description: "Required for duration probing",
		},
	}
}

func siblingBinary(path, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(path), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
