// Package ffmpeg runs the ffmpeg and ffprobe executables on behalf of the CLI.
//
// Key types:
//   - Runner: binaries plus the per-invocation timeout
//
// Primary entry points:
//   - Runner.Listing / Runner.Capabilities: capture and parse -codecs,
//     -encoders, -decoders, -formats, and -devices output
//   - Runner.Version: the first line of ffmpeg -version, used as a cache key
//   - Runner.ProbeDuration: container duration as a timecode
//   - TrimArgs: the argument vector for a stream-copy trim of a span
package ffmpeg
