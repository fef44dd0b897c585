package timecode_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"reelkit/internal/timecode"
)

func TestParseFormatsCanonically(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1:02:03", "01:02:03"},
		{"01:02:03", "01:02:03"},
		{"  0:00:00  ", "00:00:00"},
		{"123:04:05", "123:04:05"},
		{"0:00:00.000005", "00:00:00.000005"},
		{"0:00:00.5", "00:00:00.000005"},
		{"0:00:01.500000", "00:00:01.500000"},
		{"0:00:01.000000", "00:00:01"},
		{"2:3:4", "02:03:04"},
		{"0007:59:59.999999", "07:59:59.999999"},
	}
	for _, tc := range tests {
		got, err := timecode.Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.input, err)
		}
		if got.Format() != tc.want {
			t.Fatalf("Parse(%q).Format() = %q, want %q", tc.input, got.Format(), tc.want)
		}
		if got.String() != got.Format() {
			t.Fatalf("String() and Format() disagree for %q", tc.input)
		}
	}
}

func TestParseRoundTripIsStable(t *testing.T) {
	inputs := []string{"1:02:03", "0:00:00.000005", "99:59:59.123456", "100:00:00", "0:0:0.1"}
	for _, input := range inputs {
		first := timecode.MustParse(input)
		second, err := timecode.Parse(first.Format())
		if err != nil {
			t.Fatalf("reparse %q: %v", first.Format(), err)
		}
		if first != second {
			t.Fatalf("round trip changed value: %#v != %#v", first, second)
		}
	}
}

func TestParseRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		input    string
		category timecode.Category
	}{
		{"", timecode.CategoryEmpty},
		{"   ", timecode.CategoryWhitespace},
		{"\t\n", timecode.CategoryWhitespace},
		{"1:2", timecode.CategoryFormat},
		{"1:2:3:4", timecode.CategoryFormat},
		{"1:60:00", timecode.CategoryFormat},
		{"1:00:60", timecode.CategoryFormat},
		{"a:00:00", timecode.CategoryFormat},
		{"-1:00:00", timecode.CategoryFormat},
		{"1:000:00", timecode.CategoryFormat},
		{"1:00:00.", timecode.CategoryFormat},
		{"1:00:00.1234567", timecode.CategoryFormat},
		{"1:00:00.12a", timecode.CategoryFormat},
		{"1:00:00.1.2", timecode.CategoryFormat},
		{"1::00", timecode.CategoryFormat},
		{"2562047:00:00", timecode.CategoryFormat},
	}
	for _, tc := range tests {
		_, err := timecode.Parse(tc.input)
		if err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", tc.input)
		}
		var verr *timecode.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Parse(%q) error %T is not a ValidationError", tc.input, err)
		}
		if verr.Category != tc.category {
			t.Fatalf("Parse(%q) category = %v, want %v", tc.input, verr.Category, tc.category)
		}
	}
}

func TestParseAcceptsLargestSupportedHours(t *testing.T) {
	tc, err := timecode.Parse("2562046:59:59.999999")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if tc.ToNanoseconds() <= 0 {
		t.Fatalf("expected positive nanoseconds, got %d", tc.ToNanoseconds())
	}
}

func TestParseOptionalDistinguishesShapes(t *testing.T) {
	empty := ""
	blank := "  "
	tests := []struct {
		name    string
		value   *string
		set     bool
		message string
	}{
		{"undefined", nil, false, "timecode is undefined"},
		{"null", nil, true, "timecode is null"},
		{"empty", &empty, true, "timecode is empty"},
		{"whitespace", &blank, true, "timecode is whitespace"},
	}
	for _, tc := range tests {
		_, err := timecode.ParseOptional(tc.value, tc.set)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if err.Error() != tc.message {
			t.Fatalf("%s: message = %q, want %q", tc.name, err.Error(), tc.message)
		}
		if !errors.Is(err, timecode.ErrInputShape) {
			t.Fatalf("%s: expected ErrInputShape, got %v", tc.name, err)
		}
		if errors.Is(err, timecode.ErrFormat) {
			t.Fatalf("%s: shape error must not match ErrFormat", tc.name)
		}
	}

	value := "0:01:00"
	got, err := timecode.ParseOptional(&value, true)
	if err != nil {
		t.Fatalf("ParseOptional returned error: %v", err)
	}
	if got.ToSeconds() != 60 {
		t.Fatalf("unexpected seconds: %d", got.ToSeconds())
	}
}

func TestFormatErrorMessage(t *testing.T) {
	_, err := timecode.Parse("1:60:00")
	if !errors.Is(err, timecode.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "not formatted correctly") || !strings.Contains(msg, "minutes") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestConversions(t *testing.T) {
	if got := timecode.MustParse("1:00:00").ToSeconds(); got != 3600 {
		t.Fatalf("ToSeconds = %d, want 3600", got)
	}
	if got := timecode.MustParse("0:00:00.000005").ToNanoseconds(); got != 5000 {
		t.Fatalf("ToNanoseconds = %d, want 5000", got)
	}
	tc := timecode.MustParse("1:02:03.250000")
	if tc.ToSeconds() != 3723 {
		t.Fatalf("ToSeconds = %d, want 3723", tc.ToSeconds())
	}
	if tc.ToNanoseconds() != 3723*int64(time.Second)+250*int64(time.Millisecond) {
		t.Fatalf("unexpected nanoseconds: %d", tc.ToNanoseconds())
	}
	if tc.Duration() != 3723*time.Second+250*time.Millisecond {
		t.Fatalf("unexpected duration: %v", tc.Duration())
	}
	if tc.Hours() != 1 || tc.Minutes() != 2 || tc.Seconds() != 3 || tc.Subseconds() != 250000 {
		t.Fatalf("unexpected components: %#v", tc)
	}
}

func TestDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"1:00:00", "0:30:00.5", "00:29:59.999995"},
		{"0:00:10", "0:00:10", "00:00:00"},
		{"0:00:00", "101:00:00.000001", "101:00:00.000001"},
		{"0:01:00", "0:00:59.999999", "00:00:00.000001"},
	}
	for _, tc := range tests {
		a := timecode.MustParse(tc.a)
		b := timecode.MustParse(tc.b)
		got := timecode.Difference(a, b)
		if got.Format() != tc.want {
			t.Fatalf("Difference(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
		if reversed := timecode.Difference(b, a); reversed != got {
			t.Fatalf("Difference not symmetric for %s and %s: %s vs %s", tc.a, tc.b, got, reversed)
		}
	}
}

func TestDifferenceOfEqualValuesIsZero(t *testing.T) {
	for _, input := range []string{"0:00:00", "5:43:21.000321", "250:00:00"} {
		tc := timecode.MustParse(input)
		diff := timecode.Difference(tc, tc)
		if !diff.IsZero() || diff.Format() != "00:00:00" {
			t.Fatalf("Difference(%s, %s) = %s, want 00:00:00", input, input, diff)
		}
	}
}

func TestFromDuration(t *testing.T) {
	tc, err := timecode.FromDuration(90*time.Minute + 1500*time.Millisecond + 999*time.Nanosecond)
	if err != nil {
		t.Fatalf("FromDuration returned error: %v", err)
	}
	if tc.Format() != "01:30:01.500000" {
		t.Fatalf("unexpected format: %s", tc)
	}
	if _, err := timecode.FromDuration(-time.Second); !errors.Is(err, timecode.ErrFormat) {
		t.Fatalf("expected ErrFormat for negative duration, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	a := timecode.MustParse("0:00:01")
	b := timecode.MustParse("0:00:01.000001")
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("unexpected comparison results")
	}
}

func TestSpan(t *testing.T) {
	span, err := timecode.ParseSpan("0:01:00", "0:02:30.5")
	if err != nil {
		t.Fatalf("ParseSpan returned error: %v", err)
	}
	if span.Duration().Format() != "00:01:30.000005" {
		t.Fatalf("unexpected span duration: %s", span.Duration())
	}
	if _, err := timecode.ParseSpan("0:02:00", "0:01:00"); !errors.Is(err, timecode.ErrReversedSpan) {
		t.Fatalf("expected ErrReversedSpan, got %v", err)
	}
	if _, err := timecode.ParseSpan("", "0:01:00"); !errors.Is(err, timecode.ErrInputShape) {
		t.Fatalf("expected ErrInputShape for empty start, got %v", err)
	}
}

func TestJSONAndTextEncoding(t *testing.T) {
	var payload struct {
		Start timecode.Timecode `json:"start"`
	}
	if err := json.Unmarshal([]byte(`{"start":"0:01:02.5"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Start.Format() != "00:01:02.000005" {
		t.Fatalf("unexpected start: %s", payload.Start)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"start":"00:01:02.000005"}` {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	err = json.Unmarshal([]byte(`{"start":null}`), &payload)
	if !errors.Is(err, timecode.ErrInputShape) || !strings.Contains(err.Error(), "null") {
		t.Fatalf("expected null shape error, got %v", err)
	}
	if err := json.Unmarshal([]byte(`{"start":42}`), &payload); !errors.Is(err, timecode.ErrFormat) {
		t.Fatalf("expected format error for number, got %v", err)
	}
}
