package ftnaddr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeErrorKind classifies why an FTN datetime string was rejected.
type DateTimeErrorKind int

const (
	// DateTimeFormat means the string didn't match the fixed 19-byte grammar.
	DateTimeFormat DateTimeErrorKind = iota
	// DateTimeBadDate means the numeric fields didn't form a valid calendar date.
	DateTimeBadDate
	// DateTimeBadTime means the numeric fields didn't form a valid time of day.
	DateTimeBadTime
)

// DateTimeError carries the offending subfields of a rejected FTN datetime.
type DateTimeError struct {
	Kind                 DateTimeErrorKind
	Year, Month, Day     int
	Hour, Minute, Second int
}

func (e *DateTimeError) Error() string {
	switch e.Kind {
	case DateTimeBadDate:
		return fmt.Sprintf("ftnaddr: invalid date %04d-%02d-%02d", e.Year, e.Month, e.Day)
	case DateTimeBadTime:
		return fmt.Sprintf("ftnaddr: invalid time %02d:%02d:%02d", e.Hour, e.Minute, e.Second)
	default:
		return "ftnaddr: malformed datetime"
	}
}

var ftnMonths = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ParseFTNDateTime parses the fixed-width 19-byte "DD MMM YY  HH:MM:SS" form
// used in packet headers and the posted field of a packed message.
func ParseFTNDateTime(s string) (time.Time, error) {
	if len(s) != 19 {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}

	day := s[0:2]
	sep1 := s[2:3]
	month := s[3:6]
	sep2 := s[6:7]
	year := s[7:9]
	sep3 := s[9:11]
	hh := s[11:13]
	sep4 := s[13:14]
	mm := s[14:16]
	sep5 := s[16:17]
	ss := s[17:19]

	if sep1 != " " || sep2 != " " || sep3 != "  " || sep4 != ":" || sep5 != ":" {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}

	dayN, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}

	monthIdx := -1
	for i, m := range ftnMonths {
		if m == month {
			monthIdx = i
			break
		}
	}
	if monthIdx < 0 {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}
	monthN := monthIdx + 1

	yearN, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}
	if yearN >= 90 {
		yearN += 1900
	} else {
		yearN += 2000
	}

	hhN, err := strconv.Atoi(hh)
	if err != nil {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}
	mmN, err := strconv.Atoi(mm)
	if err != nil {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}
	ssN, err := strconv.Atoi(ss)
	if err != nil {
		return time.Time{}, &DateTimeError{Kind: DateTimeFormat}
	}

	if monthN < 1 || monthN > 12 || dayN < 1 || dayN > daysInMonth(yearN, monthN) {
		return time.Time{}, &DateTimeError{Kind: DateTimeBadDate, Year: yearN, Month: monthN, Day: dayN}
	}
	if hhN > 23 || mmN > 59 || ssN > 59 {
		return time.Time{}, &DateTimeError{Kind: DateTimeBadTime, Hour: hhN, Minute: mmN, Second: ssN}
	}

	return time.Date(yearN, time.Month(monthN), dayN, hhN, mmN, ssN, 0, time.UTC), nil
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
