package dialog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Providers whose name is spoken as a word rather than spelled out.
var commonProviders = map[string]struct{}{
	"gmail": {}, "outlook": {}, "hotmail": {}, "protonmail": {}, "icloud": {},
	"yahoo": {}, "aol": {}, "zoho": {}, "yandex": {}, "gmx": {}, "hey": {},
	"live": {}, "msn": {}, "me": {},
}

// SpeakableEmail renders an email address as listing-separated spoken
// tokens: the local part is spelled character by character, well-known
// provider names are spoken whole, unknown domains are spelled too.
func SpeakableEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	var tokens []string
	for _, ch := range local {
		switch ch {
		case '.':
			tokens = append(tokens, "dot")
		case '-':
			tokens = append(tokens, "dash")
		case '_':
			tokens = append(tokens, "underscore")
		default:
			tokens = append(tokens, string(ch))
		}
	}
	tokens = append(tokens, "at")

	labels := strings.Split(domain, ".")
	provider := labels[0]
	if _, ok := commonProviders[strings.ToLower(provider)]; ok {
		tokens = append(tokens, strings.ToLower(provider))
	} else {
		for _, ch := range provider {
			if ch == '-' {
				tokens = append(tokens, "dash")
			} else {
				tokens = append(tokens, string(ch))
			}
		}
	}
	for _, label := range labels[1:] {
		tokens = append(tokens, "dot", strings.ToLower(label))
	}

	return strings.Join(tokens, ",  ")
}

// SpeakableDatetime renders a captured ISO date and optional 24-hour time
// as "<Weekday> <day> <Month>[ at <h>[:<mm>] am|pm]".
func SpeakableDatetime(dateISO, time24 string) string {
	y, m, d, ok := splitISODate(dateISO)
	if !ok {
		return dateISO
	}
	hour, minute := 0, 0
	if time24 != "" {
		if h, mm, ok := splitClock(time24); ok {
			hour, minute = h, mm
		}
	}
	dt := time.Date(y, time.Month(m), d, hour, minute, 0, 0, time.UTC)

	out := fmt.Sprintf("%s %d %s", dt.Weekday(), d, dt.Month())
	if time24 == "" {
		return out
	}

	ampm := "am"
	if hour >= 12 {
		ampm = "pm"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	if minute == 0 {
		return fmt.Sprintf("%s at %d %s", out, h12, ampm)
	}
	return fmt.Sprintf("%s at %d:%02d %s", out, h12, minute, ampm)
}

func splitISODate(dateISO string) (year, month, day int, ok bool) {
	parts := strings.Split(dateISO, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return y, m, d, true
}

func splitClock(time24 string) (hour, minute int, ok bool) {
	parts := strings.Split(time24, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return h, m, true
}
