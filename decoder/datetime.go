package decoder

import (
	"strconv"
	"strings"

	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/token"
)

// tryDateTime attempts to decode text as a Date, Time or DateTime literal.
// ok is false when text simply doesn't look like one of those (so the
// caller should try the next scalar kind); err is non-nil only when text
// does look like a date/time literal but violates the active grammar (a
// leap second under a dialect that forbids them, for instance).
func (d *Decoder) tryDateTime(text string, pos token.Position) (label.Value, bool, error) {
	body := text
	hasZ := strings.HasSuffix(body, "Z")
	if hasZ {
		body = body[:len(body)-1]
	}

	if idx := strings.IndexByte(body, 'T'); idx >= 0 {
		datePart, timePart := body[:idx], body[idx+1:]
		date, ok := parseDate(datePart, hasZ)
		if !ok {
			return nil, false, nil
		}
		tm, ok, err := d.parseTime(timePart, hasZ, pos)
		if !ok {
			return nil, false, nil
		}
		if err != nil {
			return nil, true, err
		}
		if d.Grammar.DefaultTimezone != nil {
			date.HasZone = true
			tm.HasZone = true
		}
		return label.DateTime{Date: date, Time: tm, Raw: text}, true, nil
	}

	if date, ok := parseDate(body, hasZ); ok {
		return label.Date{Year: date.Year, Month: date.Month, Day: date.Day, DayOfYear: date.DayOfYear, HasZone: date.HasZone || d.Grammar.DefaultTimezone != nil, Raw: text}, true, nil
	}

	if looksLikeTime(body) {
		tm, ok, err := d.parseTime(body, hasZ, pos)
		if !ok {
			return nil, false, nil
		}
		if d.Grammar.DefaultTimezone != nil {
			tm.HasZone = true
		}
		return tm, true, err
	}

	return nil, false, nil
}

func looksLikeTime(s string) bool {
	return len(s) >= 5 && s[2] == ':' && isDigits(s[:2])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseDate parses "YYYY-MM-DD" or "YYYY-DDD" (day-of-year).
func parseDate(s string, hasZ bool) (label.Date, bool) {
	parts := strings.Split(s, "-")
	if len(parts) == 2 && len(parts[0]) == 4 && isDigits(parts[0]) && isDigits(parts[1]) {
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return label.Date{}, false
		}
		if len(parts[1]) == 3 {
			doy, err := strconv.Atoi(parts[1])
			if err != nil || doy < 1 || doy > 366 {
				return label.Date{}, false
			}
			month, day := fromDayOfYear(year, doy)
			return label.Date{Year: year, Month: month, Day: day, DayOfYear: doy, HasZone: hasZ, Raw: s}, true
		}
	}
	if len(parts) == 3 && len(parts[0]) == 4 && isDigits(parts[0]) && isDigits(parts[1]) && isDigits(parts[2]) {
		year, e1 := strconv.Atoi(parts[0])
		month, e2 := strconv.Atoi(parts[1])
		day, e3 := strconv.Atoi(parts[2])
		if e1 != nil || e2 != nil || e3 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			return label.Date{}, false
		}
		return label.Date{Year: year, Month: month, Day: day, HasZone: hasZ, Raw: s}, true
	}
	return label.Date{}, false
}

var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeap(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func fromDayOfYear(year, doy int) (month, day int) {
	remaining := doy
	for m := 1; m <= 12; m++ {
		dim := daysInMonth[m-1]
		if m == 2 && isLeap(year) {
			dim = 29
		}
		if remaining <= dim {
			return m, remaining
		}
		remaining -= dim
	}
	return 12, 31
}

// parseTime parses "HH:MM", "HH:MM:SS" or "HH:MM:SS.ffffff", plus an
// optional trailing timezone offset "+HH:MM"/"-HH:MM". A seconds field of
// 60 (a leap second) is accepted only when the grammar allows it.
func (d *Decoder) parseTime(s string, hasZ bool, pos token.Position) (label.Time, bool, error) {
	body := s
	offsetSeconds := 0
	hasOffset := false
	if idx := strings.IndexAny(body, "+-"); idx > 0 {
		offsetStr := body[idx:]
		body = body[:idx]
		off, ok := parseOffset(offsetStr)
		if !ok {
			return label.Time{}, false, nil
		}
		offsetSeconds = off
		hasOffset = true
	}

	parts := strings.Split(body, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return label.Time{}, false, nil
	}
	hour, e1 := strconv.Atoi(parts[0])
	minute, e2 := strconv.Atoi(parts[1])
	if e1 != nil || e2 != nil || len(parts[0]) != 2 || len(parts[1]) != 2 || hour > 23 || minute > 59 {
		return label.Time{}, false, nil
	}

	second := 0
	nanos := 0
	leap := false
	if len(parts) == 3 {
		secPart := parts[2]
		fracIdx := strings.IndexByte(secPart, '.')
		secStr := secPart
		if fracIdx >= 0 {
			secStr = secPart[:fracIdx]
		}
		if len(secStr) != 2 || !isDigits(secStr) {
			return label.Time{}, false, nil
		}
		sec, err := strconv.Atoi(secStr)
		if err != nil || sec > 60 {
			return label.Time{}, false, nil
		}
		leap = sec == 60
		second = sec
		if fracIdx >= 0 {
			fracStr := secPart[fracIdx+1:]
			if !isDigits(fracStr) {
				return label.Time{}, false, nil
			}
			for len(fracStr) < 9 {
				fracStr += "0"
			}
			n, _ := strconv.Atoi(fracStr[:9])
			nanos = n
		}
	}

	if leap && !d.Grammar.LeapSecondAllowed {
		return label.Time{}, true, &perrors.DecodeError{
			Pos:        pos,
			Dialect:    d.Grammar.Dialect,
			TokenText:  s,
			TargetType: "Time",
			Reason:     "leap second (:60) is not permitted by this dialect",
		}
	}

	return label.Time{
		Hour: hour, Minute: minute, Second: second, Nanosecond: nanos,
		LeapSecond: leap, HasZone: hasZ || hasOffset, ZoneOffsetSeconds: offsetSeconds,
		Raw: s,
	}, true, nil
}

func parseOffset(s string) (int, bool) {
	if len(s) != 6 || s[3] != ':' {
		return 0, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	} else if s[0] != '+' {
		return 0, false
	}
	hh, e1 := strconv.Atoi(s[1:3])
	mm, e2 := strconv.Atoi(s[4:6])
	if e1 != nil || e2 != nil {
		return 0, false
	}
	return sign * (hh*3600 + mm*60), true
}
