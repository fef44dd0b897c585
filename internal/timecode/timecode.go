package timecode

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	nanosPerMicro  int64 = 1000
	nanosPerSecond int64 = 1_000_000_000
	nanosPerMinute       = 60 * nanosPerSecond
	nanosPerHour         = 60 * nanosPerMinute

	maxMinutes      = 59
	maxSeconds      = 59
	maxSubseconds   = 999999
	subsecondDigits = 6

	// maxHours keeps ToNanoseconds inside int64 for every valid minute,
	// second, and sub-second combination.
	maxHours = (math.MaxInt64 - (maxMinutes*nanosPerMinute + maxSeconds*nanosPerSecond + maxSubseconds*nanosPerMicro)) / nanosPerHour
)

// Timecode is a clock position or duration with microsecond resolution.
// The zero value is 00:00:00.
type Timecode struct {
	hours      int64
	minutes    int
	seconds    int
	subseconds int
}

// Zero is the 00:00:00 timecode.
var Zero = Timecode{}

// Parse validates s and returns the Timecode it describes. Surrounding
// whitespace is ignored.
func Parse(s string) (Timecode, error) {
	if s == "" {
		return Timecode{}, shapeError(CategoryEmpty, s)
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Timecode{}, shapeError(CategoryWhitespace, s)
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) != 3 {
		return Timecode{}, formatError(s, "expected 3 colon-separated fields, got %d", len(parts))
	}

	hoursText := strings.TrimSpace(parts[0])
	hours, ok := parseDigits(hoursText, 0)
	if !ok {
		return Timecode{}, formatError(s, "hours %q must be a non-negative integer", hoursText)
	}
	if hours > maxHours {
		return Timecode{}, formatError(s, "hours %d exceed the supported maximum of %d", hours, int64(maxHours))
	}

	minutesText := strings.TrimSpace(parts[1])
	minutes, ok := parseDigits(minutesText, 2)
	if !ok {
		return Timecode{}, formatError(s, "minutes %q must be one or two digits", minutesText)
	}
	if minutes > maxMinutes {
		return Timecode{}, formatError(s, "minutes %d must be between 0 and %d", minutes, maxMinutes)
	}

	secondsText := strings.TrimSpace(parts[2])
	fracText := ""
	hasFrac := false
	if idx := strings.IndexByte(secondsText, '.'); idx >= 0 {
		fracText = secondsText[idx+1:]
		secondsText = secondsText[:idx]
		hasFrac = true
	}

	seconds, ok := parseDigits(secondsText, 2)
	if !ok {
		return Timecode{}, formatError(s, "seconds %q must be one or two digits", secondsText)
	}
	if seconds > maxSeconds {
		return Timecode{}, formatError(s, "seconds %d must be between 0 and %d", seconds, maxSeconds)
	}

	var subseconds int64
	if hasFrac {
		subseconds, ok = parseDigits(fracText, subsecondDigits)
		if !ok {
			return Timecode{}, formatError(s, "sub-seconds %q must be one to %d digits", fracText, subsecondDigits)
		}
	}

	return Timecode{
		hours:      hours,
		minutes:    int(minutes),
		seconds:    int(seconds),
		subseconds: int(subseconds),
	}, nil
}

// ParseOptional validates a value that may not have been provided. set
// reports whether the caller supplied a value at all; a supplied nil value is
// reported as null.
func ParseOptional(value *string, set bool) (Timecode, error) {
	if !set {
		return Timecode{}, shapeError(CategoryUndefined, "")
	}
	if value == nil {
		return Timecode{}, shapeError(CategoryNull, "")
	}
	return Parse(*value)
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Timecode {
	tc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return tc
}

// FromDuration converts a non-negative duration, truncating anything finer
// than a microsecond.
func FromDuration(d time.Duration) (Timecode, error) {
	if d < 0 {
		return Timecode{}, formatError(d.String(), "duration must not be negative")
	}
	return fromNanoseconds(int64(d)), nil
}

func fromNanoseconds(total int64) Timecode {
	hours := total / nanosPerHour
	total -= hours * nanosPerHour
	minutes := total / nanosPerMinute
	total -= minutes * nanosPerMinute
	seconds := total / nanosPerSecond
	total -= seconds * nanosPerSecond
	return Timecode{
		hours:      hours,
		minutes:    int(minutes),
		seconds:    int(seconds),
		subseconds: int(total / nanosPerMicro),
	}
}

// Difference returns the absolute interval between a and b.
func Difference(a, b Timecode) Timecode {
	delta := a.ToNanoseconds() - b.ToNanoseconds()
	if delta < 0 {
		delta = -delta
	}
	return fromNanoseconds(delta)
}

func (t Timecode) Hours() int64 { return t.hours }

func (t Timecode) Minutes() int { return t.minutes }

func (t Timecode) Seconds() int { return t.seconds }

// Subseconds returns the fractional part in millionths of a second.
func (t Timecode) Subseconds() int { return t.subseconds }

// IsZero reports whether t is 00:00:00.
func (t Timecode) IsZero() bool { return t == Zero }

// ToSeconds returns the whole seconds in t, dropping sub-second precision.
func (t Timecode) ToSeconds() int64 {
	return t.hours*3600 + int64(t.minutes)*60 + int64(t.seconds)
}

// ToNanoseconds returns the full value of t in nanoseconds.
func (t Timecode) ToNanoseconds() int64 {
	return t.ToSeconds()*nanosPerSecond + int64(t.subseconds)*nanosPerMicro
}

// Duration returns t as a time.Duration.
func (t Timecode) Duration() time.Duration {
	return time.Duration(t.ToNanoseconds())
}

// Compare returns -1, 0, or +1 depending on whether t is before, equal to, or
// after other.
func (t Timecode) Compare(other Timecode) int {
	a, b := t.ToNanoseconds(), other.ToNanoseconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Format renders t as HH:MM:SS, appending .nnnnnn when sub-seconds are set.
func (t Timecode) Format() string {
	out := fmt.Sprintf("%02d:%02d:%02d", t.hours, t.minutes, t.seconds)
	if t.subseconds > 0 {
		out += fmt.Sprintf(".%0*d", subsecondDigits, t.subseconds)
	}
	return out
}

func (t Timecode) String() string { return t.Format() }

// MarshalText implements encoding.TextMarshaler.
func (t Timecode) MarshalText() ([]byte, error) {
	return []byte(t.Format()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timecode) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalJSON accepts a JSON string; a JSON null is reported as a null
// timecode.
func (t *Timecode) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		return shapeError(CategoryNull, "")
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return formatError(string(data), "expected a JSON string")
	}
	return t.UnmarshalText([]byte(raw))
}

// parseDigits accepts only ASCII digits. maxLen of zero means no length limit.
func parseDigits(s string, maxLen int) (int64, bool) {
	if s == "" || (maxLen > 0 && len(s) > maxLen) {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
