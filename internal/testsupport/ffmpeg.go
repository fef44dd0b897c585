package testsupport

// FFmpegStub answers every listing flag with a small fixture, reports a
// version, and "trims" by writing its arguments to the destination file.
// Each listing invocation is appended to $REELKIT_STUB_LOG when set.
const FFmpegStub = `#!/bin/sh
log() { [ -n "$REELKIT_STUB_LOG" ] && echo "$1" >> "$REELKIT_STUB_LOG"; return 0; }
for arg in "$@"; do
  case "$arg" in
    -codecs)
      log codecs
      cat <<'LISTING'
Codecs:
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
 DEAI.S flac                 FLAC (Free Lossless Audio Codec)
 DES... ass                  ASS (Advanced SSA) subtitle
LISTING
      exit 0 ;;
    -encoders|-decoders)
      log "${arg#-}"
      label=Encoders
      [ "$arg" = "-decoders" ] && label=Decoders
      cat <<LISTING
$label:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 .F.... = Frame-level multithreading
 ..S... = Slice-level multithreading
 ...X.. = Codec is experimental
 ....B. = Supports draw_horiz_band
 .....D = Supports direct rendering method 1
 ------
 VFS..D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10
 A....D aac                  AAC (Advanced Audio Coding)
 A..X.. opus                 Opus
 S..... ass                  ASS (Advanced SubStation Alpha) subtitle
LISTING
      exit 0 ;;
    -formats)
      log formats
      cat <<'LISTING'
Formats:
 D.. = Demuxing supported
 .E. = Muxing supported
 ..d = Is a device
 ---
 D   matroska,webm   Matroska / WebM
  E  mp4             MP4 (MPEG-4 Part 14)
 D d v4l2            Video4Linux2 device
LISTING
      exit 0 ;;
    -devices)
      log devices
      cat <<'LISTING'
Devices:
 D. = Demuxing supported
 .E = Muxing supported
 ---
 DE alsa            ALSA audio output
 D  v4l2            Video4Linux2 device
LISTING
      exit 0 ;;
    -ss)
      for a in "$@"; do dest="$a"; done
      printf 'trimmed %s\n' "$*" > "$dest"
      exit 0 ;;
    -version)
      echo "ffmpeg version 7.1-stub Copyright (c) 2000-2024 the FFmpeg developers"
      exit 0 ;;
  esac
done
echo "unsupported invocation: $*" >&2
exit 2
`

// FFprobeStub reports 1:01:30.5 for any path ending in .mkv and N/A for
// anything ending in .ts. Other paths fail like a missing file.
const FFprobeStub = `#!/bin/sh
for arg in "$@"; do last="$arg"; done
case "$last" in
  *.mkv) echo "1:01:30.500000" ;;
  *.ts) echo "N/A" ;;
  *) echo "$last: No such file or directory" >&2; exit 1 ;;
esac
`
