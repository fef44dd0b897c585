package capabilities

import (
	"fmt"
	"strings"
)

// Meaning is what a single flag column asserts about a listing entry.
type Meaning int

const (
	DecodingSupported Meaning = iota + 1
	EncodingSupported
	Video
	Audio
	Subtitle
	Data
	Attachment
	IntraFrameOnly
	LossyCompression
	LosslessCompression
	FrameLevelMultithreading
	SliceLevelMultithreading
	Experimental
	DrawHorizBand
	DirectRendering
	DemuxingSupported
	MuxingSupported
	Device
)

type meaningInfo struct {
	slug  string
	label string
}

var meanings = map[Meaning]meaningInfo{
	DecodingSupported:        {"decoding", "Decoding supported"},
	EncodingSupported:        {"encoding", "Encoding supported"},
	Video:                    {"video", "Video"},
	Audio:                    {"audio", "Audio"},
	Subtitle:                 {"subtitle", "Subtitle"},
	Data:                     {"data", "Data"},
	Attachment:               {"attachment", "Attachment"},
	IntraFrameOnly:           {"intra-only", "Intra frame-only codec"},
	LossyCompression:         {"lossy", "Lossy compression"},
	LosslessCompression:      {"lossless", "Lossless compression"},
	FrameLevelMultithreading: {"frame-threads", "Frame-level multithreading"},
	SliceLevelMultithreading: {"slice-threads", "Slice-level multithreading"},
	Experimental:             {"experimental", "Codec is experimental"},
	DrawHorizBand:            {"draw-horiz-band", "Supports draw_horiz_band"},
	DirectRendering:          {"direct-rendering", "Supports direct rendering method 1"},
	DemuxingSupported:        {"demuxing", "Demuxing supported"},
	MuxingSupported:          {"muxing", "Muxing supported"},
	Device:                   {"device", "Is a device"},
}

// Meanings lists every flag meaning in declaration order.
func Meanings() []Meaning {
	out := make([]Meaning, 0, len(meanings))
	for m := DecodingSupported; m <= Device; m++ {
		out = append(out, m)
	}
	return out
}

// String returns the human-readable label ffmpeg uses in its legend.
func (m Meaning) String() string {
	if info, ok := meanings[m]; ok {
		return info.label
	}
	return fmt.Sprintf("meaning(%d)", int(m))
}

// Slug returns the short machine name used for filters and JSON.
func (m Meaning) Slug() string {
	if info, ok := meanings[m]; ok {
		return info.slug
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (m Meaning) MarshalText() ([]byte, error) {
	slug := m.Slug()
	if slug == "" {
		return nil, fmt.Errorf("unknown flag meaning %d", int(m))
	}
	return []byte(slug), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Meaning) UnmarshalText(text []byte) error {
	parsed, err := ParseMeaning(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMeaning resolves a slug such as "lossless" or "slice-threads".
func ParseMeaning(value string) (Meaning, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	for m, info := range meanings {
		if info.slug == normalized {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown flag meaning %q", value)
}

// Flag is one decoded column of a flag prefix.
type Flag struct {
	Char    string  `json:"char"`
	Column  int     `json:"column"`
	Meaning Meaning `json:"meaning"`
}

type flagKey struct {
	kind   Kind
	char   byte
	column int
}

// flagTable maps (kind, character, column) to a meaning. A character that is
// not listed for its column is rejected rather than guessed at.
var flagTable = buildFlagTable()

type columnAlphabet map[byte]Meaning

func buildFlagTable() map[flagKey]Meaning {
	codecColumns := []columnAlphabet{
		{'D': DecodingSupported},
		{'E': EncodingSupported},
		{'V': Video, 'A': Audio, 'S': Subtitle, 'D': Data, 'T': Attachment},
		{'I': IntraFrameOnly},
		{'L': LossyCompression},
		{'S': LosslessCompression},
	}
	coderColumns := []columnAlphabet{
		{'V': Video, 'A': Audio, 'S': Subtitle, 'D': Data, 'T': Attachment},
		{'F': FrameLevelMultithreading},
		{'S': SliceLevelMultithreading},
		{'X': Experimental},
		{'B': DrawHorizBand},
		{'D': DirectRendering},
	}
	formatColumns := []columnAlphabet{
		{'D': DemuxingSupported},
		{'E': MuxingSupported},
		{'d': Device},
	}
	deviceColumns := formatColumns[:2]

	table := make(map[flagKey]Meaning)
	add := func(kind Kind, columns []columnAlphabet) {
		for column, alphabet := range columns {
			for char, meaning := range alphabet {
				table[flagKey{kind: kind, char: char, column: column}] = meaning
			}
		}
	}
	add(KindCodecs, codecColumns)
	add(KindEncoders, coderColumns)
	add(KindDecoders, coderColumns)
	add(KindFormats, formatColumns)
	add(KindDevices, deviceColumns)
	return table
}

// Resolve returns the meaning of char at column in a listing of the given
// kind.
func Resolve(kind Kind, char byte, column int) (Meaning, bool) {
	meaning, ok := flagTable[flagKey{kind: kind, char: char, column: column}]
	return meaning, ok
}

// KindMeanings lists the meanings a listing of kind can carry, in
// declaration order.
func KindMeanings(kind Kind) []Meaning {
	present := make(map[Meaning]bool)
	for key, meaning := range flagTable {
		if key.kind == kind {
			present[meaning] = true
		}
	}
	out := make([]Meaning, 0, len(present))
	for _, m := range Meanings() {
		if present[m] {
			out = append(out, m)
		}
	}
	return out
}
