// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs and shell-script stand-ins for ffmpeg and ffprobe.
package testsupport
