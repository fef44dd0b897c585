package capabilities

import (
	"fmt"
	"strings"
)

// Kind identifies which capability listing a block of text came from.
type Kind int

const (
	KindCodecs Kind = iota + 1
	KindEncoders
	KindDecoders
	KindFormats
	KindDevices
)

// Kinds lists every supported listing kind in display order.
var Kinds = []Kind{KindCodecs, KindEncoders, KindDecoders, KindFormats, KindDevices}

type kindLayout struct {
	name string
	// listingFlag is the ffmpeg option that prints this listing.
	listingFlag string
	labels      []string
	// separatorWidths are the accepted lengths of the all-dash line that ends
	// the legend.
	separatorWidths []int
	// prefixWidths are the accepted flag prefix widths. The first entry is the
	// default when the legend does not reveal the width.
	prefixWidths []int
	// blankColumns is set for listings that print a space, not a dot, for an
	// unset flag. Their prefix has to be read by column position.
	blankColumns bool
}

var kindLayouts = map[Kind]kindLayout{
	KindCodecs: {
		name:            "codecs",
		listingFlag:     "-codecs",
		labels:          []string{"Codecs:"},
		separatorWidths: []int{7},
		prefixWidths:    []int{6},
	},
	KindEncoders: {
		name:            "encoders",
		listingFlag:     "-encoders",
		labels:          []string{"Encoders:"},
		separatorWidths: []int{6},
		prefixWidths:    []int{6},
	},
	KindDecoders: {
		name:            "decoders",
		listingFlag:     "-decoders",
		labels:          []string{"Decoders:"},
		separatorWidths: []int{6},
		prefixWidths:    []int{6},
	},
	KindFormats: {
		name:            "formats",
		listingFlag:     "-formats",
		labels:          []string{"File formats:", "Formats:"},
		separatorWidths: []int{2, 3},
		prefixWidths:    []int{2, 3},
		blankColumns:    true,
	},
	KindDevices: {
		name:            "devices",
		listingFlag:     "-devices",
		labels:          []string{"Devices:"},
		separatorWidths: []int{2, 3},
		prefixWidths:    []int{2},
		blankColumns:    true,
	},
}

func (k Kind) layout() (kindLayout, bool) {
	layout, ok := kindLayouts[k]
	return layout, ok
}

func (k Kind) String() string {
	if layout, ok := k.layout(); ok {
		return layout.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ListingFlag returns the ffmpeg option that prints this listing.
func (k Kind) ListingFlag() string {
	layout, _ := k.layout()
	return layout.listingFlag
}

// Valid reports whether k is one of the known listing kinds.
func (k Kind) Valid() bool {
	_, ok := k.layout()
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind name such as "codecs" or "-encoders".
func ParseKind(value string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimLeft(strings.TrimSpace(value), "-"))
	for _, kind := range Kinds {
		layout := kindLayouts[kind]
		if normalized == layout.name || normalized == strings.TrimSuffix(layout.name, "s") {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, value)
}
