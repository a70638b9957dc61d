package nlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayIdx = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var monthIdx = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	modifiedWeekdayRe = regexp.MustCompile(`\b(this|next|coming)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	bareWeekdayRe     = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	isoDateRe      = regexp.MustCompile(`\b(20\d{2})[-/](\d{1,2})[-/](\d{1,2})\b`)
	dayMonthRe     = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b(?:\s+(20\d{2}))?`)
	monthDayRe     = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(20\d{2}))?`)
	numericDateRe  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](20\d{2}))?\b`)
	clockTimeRe    = regexp.MustCompile(`\b([01]?\d|2[0-3])\s*:\s*([0-5]\d)\s*(am|pm)?\b`)
	bareHourRe     = regexp.MustCompile(`\b([01]?\d)\s*(am|pm)\b`)
)

// midnight truncates t to the start of its day, keeping the location.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the first occurrence of target on or after base.
// With includeToday false a base falling on target rolls a full week.
func nextWeekday(base time.Time, target time.Weekday, includeToday bool) time.Time {
	delta := (int(target) - int(base.Weekday()) + 7) % 7
	if delta == 0 && !includeToday {
		delta = 7
	}
	return base.AddDate(0, 0, delta)
}

// relativeDate resolves "this/next/coming <weekday>", bare weekdays and the
// today/tomorrow keywords. The bool reports whether anything matched.
func relativeDate(text string, now time.Time) (time.Time, bool) {
	t := strings.ToLower(text)
	base := midnight(now)

	if m := modifiedWeekdayRe.FindStringSubmatch(t); m != nil {
		target := weekdayIdx[m[2]]
		if m[1] == "this" {
			// "this X" stays within the current week.
			d := nextWeekday(base, target, true)
			if d.Before(base) {
				d = d.AddDate(0, 0, 7)
			}
			return d, true
		}
		// "next"/"coming" is always strictly after today.
		return nextWeekday(base, target, false), true
	}

	if m := bareWeekdayRe.FindStringSubmatch(t); m != nil {
		return nextWeekday(base, weekdayIdx[m[1]], true), true
	}

	if strings.Contains(t, "tomorrow") {
		return base.AddDate(0, 0, 1), true
	}
	if strings.Contains(t, "today") {
		return base, true
	}

	return time.Time{}, false
}

// ensureFuture corrects a date that resolved into the past, comparing at
// date granularity so a date naming today is kept as today regardless of
// the current clock time. Less than a week back means the next occurrence
// was intended; anything older rolls to next year.
func ensureFuture(dt, now time.Time) time.Time {
	today := midnight(now)
	if !dt.Before(today) {
		return dt
	}
	if today.Sub(dt) < 7*24*time.Hour {
		return dt.AddDate(0, 0, 7)
	}
	return dt.AddDate(1, 0, 0)
}

// validDate builds a date in loc and rejects values that normalize away
// (e.g. 31 February).
func validDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// absoluteDates scans the utterance for embedded calendar dates and returns
// every candidate found, in textual order.
func absoluteDates(text string, now time.Time) []time.Time {
	t := strings.ToLower(text)
	loc := now.Location()
	var out []time.Time

	for _, m := range isoDateRe.FindAllStringSubmatch(t, -1) {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if dt, ok := validDate(y, time.Month(mo), d, loc); ok {
			out = append(out, dt)
		}
	}

	yearOrCurrent := func(raw string) int {
		if raw == "" {
			return now.Year()
		}
		y, _ := strconv.Atoi(raw)
		return y
	}

	for _, m := range dayMonthRe.FindAllStringSubmatch(t, -1) {
		d, _ := strconv.Atoi(m[1])
		if dt, ok := validDate(yearOrCurrent(m[3]), monthIdx[m[2]], d, loc); ok {
			out = append(out, dt)
		}
	}

	for _, m := range monthDayRe.FindAllStringSubmatch(t, -1) {
		d, _ := strconv.Atoi(m[2])
		if dt, ok := validDate(yearOrCurrent(m[3]), monthIdx[m[1]], d, loc); ok {
			out = append(out, dt)
		}
	}

	// Numeric day/month only when no year-first form already matched,
	// otherwise 2025-09-15 would also yield a bogus 09/15 candidate.
	if len(out) == 0 {
		for _, m := range numericDateRe.FindAllStringSubmatch(t, -1) {
			d, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			if mo > 12 && d <= 12 {
				d, mo = mo, d
			}
			if dt, ok := validDate(yearOrCurrent(m[3]), time.Month(mo), d, loc); ok {
				out = append(out, dt)
			}
		}
	}

	return out
}

// ParseTimeOfDay extracts a 24-hour HH:MM time from the utterance,
// independent of any date. Returns "" when no time is present.
func ParseTimeOfDay(text string) string {
	t := strings.ToLower(text)

	if strings.Contains(t, "noon") {
		return "12:00"
	}
	if strings.Contains(t, "midnight") {
		return "00:00"
	}

	if m := clockTimeRe.FindStringSubmatch(t); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if ap := m[3]; ap != "" {
			if hh == 12 {
				hh = 0
			}
			if ap == "pm" {
				hh += 12
			}
		}
		return fmt.Sprintf("%02d:%02d", hh, mm)
	}

	if m := bareHourRe.FindStringSubmatch(t); m != nil {
		hh, _ := strconv.Atoi(m[1])
		if hh == 12 {
			hh = 0
		}
		if m[2] == "pm" {
			hh += 12
		}
		return fmt.Sprintf("%02d:00", hh)
	}

	return ""
}

// ParseDateTime resolves a date and a time from one utterance. Relative
// weekday phrasing wins over absolute forms; absolute dates in the past
// are pushed forward. Either return value may be "" when absent.
func ParseDateTime(text string, now time.Time) (dateISO, timeHHMM string) {
	timeHHMM = ParseTimeOfDay(text)

	if d, ok := relativeDate(text, now); ok {
		return d.Format("2006-01-02"), timeHHMM
	}

	candidates := absoluteDates(text, now)
	if len(candidates) == 0 {
		return "", timeHHMM
	}

	chosen := candidates[0]
	for _, c := range candidates {
		if !c.Before(midnight(now)) {
			chosen = c
			break
		}
	}
	chosen = ensureFuture(chosen, now)
	return chosen.Format("2006-01-02"), timeHHMM
}
