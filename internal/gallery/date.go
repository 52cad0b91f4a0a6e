package gallery

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateSource says where an entry's timestamp came from
type DateSource string

const (
	// SourceFilename means the YY_MM_DD prefix of the name was used
	SourceFilename DateSource = "filename"
	// SourceModTime means the file modification time was used
	SourceModTime DateSource = "modtime"
)

// Reasons for falling back to the modification time
const (
	ReasonTooFewParts  = "too few parts"
	ReasonInvalidYear  = "invalid year"
	ReasonInvalidMonth = "invalid month"
	ReasonInvalidDay   = "invalid day"
)

// yearOffset turns the two-digit filename year into a full year
const yearOffset = 2000

// DateResult is the outcome of reading a date from a file stem
type DateResult struct {
	Time   time.Time
	Source DateSource
	// Reason explains a SourceModTime result; empty for SourceFilename
	Reason string
}

// ParseStem derives the display name and timestamp for a file stem.
//
// A stem with at least four underscore-separated parts is read as
// YY_MM_DD_Title...: the title parts joined with spaces form the name, and
// the first three parts form a date at local midnight. If those parts are
// not a valid date, modTime is used instead but the name is still built
// from the title parts. Shorter stems are named after the whole stem with
// underscores replaced by spaces and dated by modTime.
func ParseStem(stem string, modTime time.Time) (string, DateResult) {
	parts := strings.Split(stem, "_")
	if len(parts) < 4 {
		return strings.ReplaceAll(stem, "_", " "), fallback(modTime, ReasonTooFewParts)
	}

	name := strings.Join(parts[3:], " ")

	t, reason := parseDate(parts[0], parts[1], parts[2])
	if reason != "" {
		return name, fallback(modTime, reason)
	}

	return name, DateResult{Time: t, Source: SourceFilename}
}

func fallback(modTime time.Time, reason string) DateResult {
	return DateResult{
		Time:   modTime.Local().Round(time.Microsecond),
		Source: SourceModTime,
		Reason: reason,
	}
}

// parseDate validates the three date parts and returns local midnight of
// that day, or a non-empty reason when they don't form a real date.
func parseDate(yy, mm, dd string) (time.Time, string) {
	year, ok := parseInt(yy)
	if !ok {
		return time.Time{}, ReasonInvalidYear
	}
	year += yearOffset
	if year < 1 || year > 9999 {
		return time.Time{}, ReasonInvalidYear
	}

	month, ok := parseInt(mm)
	if !ok || month < 1 || month > 12 {
		return time.Time{}, ReasonInvalidMonth
	}

	day, ok := parseInt(dd)
	if !ok || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, ReasonInvalidDay
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), ""
}

// parseInt accepts an optionally signed decimal integer with surrounding
// whitespace, like "03", " 7" or "+12"
func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatTimestamp renders t as a zone-less ISO-8601 local timestamp.
// Sub-second precision is kept to microseconds and only printed when
// non-zero: 2024-03-15T00:00:00 or 2024-03-15T09:30:12.250000.
func FormatTimestamp(t time.Time) string {
	t = t.Local()
	s := t.Format("2006-01-02T15:04:05")
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}
