package generic

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day (eligibility is evaluated at day resolution)
// =============================================================================

// TimePoint is a calendar date normalized to midnight UTC.
type TimePoint struct {
	Time time.Time
}

// DateLayout is the canonical YYYY-MM-DD rendering.
const DateLayout = "2006-01-02"

// JulianYear is the days-per-year approximation used for every age and
// service computation.
const JulianYear = 365.25

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the clock part of t, keeping its calendar date.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// Today reads the wall clock. Only process boundaries (CLI, HTTP clock)
// should call it; everything below takes an explicit basis date.
func Today() TimePoint {
	return FromTime(time.Now())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint  { return FromTime(tp.Time.AddDate(0, 0, n)) }
func (tp TimePoint) AddYears(n int) TimePoint { return FromTime(tp.Time.AddDate(n, 0, 0)) }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// MarshalText renders YYYY-MM-DD for JSON and YAML.
func (tp TimePoint) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

// UnmarshalText accepts anything ParseDate does.
func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts whole days from `from` to `to`; negative when to precedes from.
// Both ends are midnight UTC, so Unix seconds divide evenly by a day;
// time.Duration would saturate past ~292 years.
func DaysBetween(from, to TimePoint) int {
	return int((to.Time.Unix() - from.Time.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// JulianYears converts a day count to years under the 365.25-day model.
func JulianYears(days int) float64 { return float64(days) / JulianYear }

// =============================================================================
// DATE PARSING
// =============================================================================

var (
	datePattern = regexp.MustCompile(`^\d{4}[-/]*\d{1,2}[-/]*\d{1,2}$`)
	dateSeps    = strings.NewReplacer("-", "", "/", "")
)

// ParseDate accepts YYYYMMDD, YYYY-MM-DD and YYYY/MM/DD (separators are
// stripped before the digits are read). Month and day may be one or two
// digits; when the stripped digit run is ambiguous the two-digit month wins
// if it is a valid month, e.g. "1966111" is November 1st and "1966918" is
// September 18th.
func ParseDate(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return TimePoint{}, &DateFormatError{Input: s}
	}
	digits := dateSeps.Replace(s)

	year, _ := strconv.Atoi(digits[:4])
	month, day, ok := splitMonthDay(digits[4:])
	if !ok {
		return TimePoint{}, &DateFormatError{Input: s}
	}

	tp := NewTimePoint(year, time.Month(month), day)
	if tp.Year() != year || int(tp.Month()) != month || tp.Day() != day {
		return TimePoint{}, &DateFormatError{Input: s, Reason: "day out of range for month"}
	}
	if tp.IsZero() {
		// 0001-01-01 is the zero TimePoint, which means "missing" everywhere else.
		return TimePoint{}, &DateFormatError{Input: s, Reason: "zero date"}
	}
	return tp, nil
}

// MustParseDate panics on malformed input. For fixtures and tests.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// splitMonthDay tries month widths in order 1[0-2], 0[1-9], [1-9] and takes
// the first one that leaves a well-formed day.
func splitMonthDay(rest string) (month, day int, ok bool) {
	var widths []int
	if len(rest) >= 2 {
		if rest[0] == '1' && rest[1] >= '0' && rest[1] <= '2' {
			widths = append(widths, 2)
		}
		if rest[0] == '0' && rest[1] >= '1' && rest[1] <= '9' {
			widths = append(widths, 2)
		}
	}
	if len(rest) >= 1 && rest[0] >= '1' && rest[0] <= '9' {
		widths = append(widths, 1)
	}

	for _, w := range widths {
		d, valid := parseDay(rest[w:])
		if !valid {
			continue
		}
		m, _ := strconv.Atoi(rest[:w])
		return m, d, true
	}
	return 0, 0, false
}

func parseDay(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}
