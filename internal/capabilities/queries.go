package capabilities

import "strings"

// Has reports whether the record carries a flag with meaning m.
func (r Record) Has(m Meaning) bool {
	for _, flag := range r.Flags {
		if flag.Meaning == m {
			return true
		}
	}
	return false
}

// Meanings returns the record's flag meanings in column order.
func (r Record) Meanings() []Meaning {
	out := make([]Meaning, 0, len(r.Flags))
	for _, flag := range r.Flags {
		out = append(out, flag.Meaning)
	}
	return out
}

// Prefix rebuilds the flag prefix with dots in unset columns.
func (r Record) Prefix(width int) string {
	buf := []byte(strings.Repeat(".", width))
	for _, flag := range r.Flags {
		if flag.Column >= 0 && flag.Column < width && flag.Char != "" {
			buf[flag.Column] = flag.Char[0]
		}
	}
	return string(buf)
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// Filter returns the records for which keep returns true, in listing order.
func (t Table) Filter(keep func(Record) bool) Table {
	out := Table{Kind: t.Kind, Width: t.Width, Records: make([]Record, 0, len(t.Records))}
	for _, record := range t.Records {
		if keep(record) {
			out.Records = append(out.Records, record)
		}
	}
	return out
}

// WithAll keeps records that carry every one of the meanings.
func (t Table) WithAll(ms ...Meaning) Table {
	return t.Filter(func(r Record) bool {
		for _, m := range ms {
			if !r.Has(m) {
				return false
			}
		}
		return true
	})
}

// WithAny keeps records that carry at least one of the meanings.
func (t Table) WithAny(ms ...Meaning) Table {
	return t.Filter(func(r Record) bool {
		for _, m := range ms {
			if r.Has(m) {
				return true
			}
		}
		return false
	})
}

func (t Table) Decoding() Table { return t.WithAll(DecodingSupported) }

func (t Table) Encoding() Table { return t.WithAll(EncodingSupported) }

// EncodingAndDecoding keeps codecs that can both encode and decode.
func (t Table) EncodingAndDecoding() Table {
	return t.WithAll(EncodingSupported, DecodingSupported)
}

func (t Table) Video() Table { return t.WithAll(Video) }

func (t Table) Audio() Table { return t.WithAll(Audio) }

func (t Table) Subtitle() Table { return t.WithAll(Subtitle) }

func (t Table) IntraFrameOnly() Table { return t.WithAll(IntraFrameOnly) }

func (t Table) Lossy() Table { return t.WithAll(LossyCompression) }

func (t Table) Lossless() Table { return t.WithAll(LosslessCompression) }

func (t Table) Experimental() Table { return t.WithAll(Experimental) }

func (t Table) FrameThreaded() Table { return t.WithAll(FrameLevelMultithreading) }

func (t Table) SliceThreaded() Table { return t.WithAll(SliceLevelMultithreading) }

func (t Table) DrawHorizBand() Table { return t.WithAll(DrawHorizBand) }

func (t Table) DirectRendering() Table { return t.WithAll(DirectRendering) }

// Demuxers keeps formats usable as input.
func (t Table) Demuxers() Table { return t.WithAll(DemuxingSupported) }

// Muxers keeps formats usable as output.
func (t Table) Muxers() Table { return t.WithAll(MuxingSupported) }

func (t Table) Devices() Table { return t.WithAll(Device) }

// Lookup finds a record by name. Format listings can name several aliases in
// one entry ("mov,mp4,m4a"), and each alias matches.
func (t Table) Lookup(name string) (Record, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, false
	}
	for _, record := range t.Records {
		if record.Name == name {
			return record, true
		}
		for _, alias := range strings.Split(record.Name, ",") {
			if alias == name {
				return record, true
			}
		}
	}
	return Record{}, false
}

// Names returns record names in listing order.
func (t Table) Names() []string {
	out := make([]string, 0, len(t.Records))
	for _, record := range t.Records {
		out = append(out, record.Name)
	}
	return out
}
