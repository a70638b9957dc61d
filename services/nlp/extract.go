package nlp

import (
	"regexp"
	"strings"
	"time"

	"medivoice/models"
)

// Fields is a partial slot mapping produced by an extractor. An empty
// string means the extractor found nothing for that slot.
type Fields struct {
	PatientName     string `json:"patient_name"`
	PatientEmail    string `json:"patient_email"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Reason          string `json:"reason"`
}

// NeedsFallback reports whether the gap-filling extractor is worth calling:
// only a missing email, date or time triggers it.
func (f Fields) NeedsFallback() bool {
	return f.PatientEmail == "" || f.AppointmentDate == "" || f.AppointmentTime == ""
}

var (
	nameLeadInRe   = regexp.MustCompile(`(?i)(?:my name is|i am|it's|it is)\s+([a-z][a-z\s\-'.]+)`)
	reasonLeadInRe = regexp.MustCompile(`(?i)(?:because|for|regarding|about)\s+([a-z0-9][a-z0-9\s\-,'.]{2,})`)
	spaceRunRe     = regexp.MustCompile(`\s+`)
)

func normalizeSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ExtractFields runs the deterministic rule extractor over one utterance.
// Name and reason are only attempted while their slots are still open;
// email, date and time are always attempted. The reference time anchors
// all relative-date resolution and must be in the clinic timezone.
func ExtractFields(text string, captured models.CapturedFields, now time.Time) Fields {
	var out Fields

	out.PatientEmail = ExtractEmail(text)

	date, tm := ParseDateTime(text, now)
	out.AppointmentDate = date
	out.AppointmentTime = tm

	if captured.PatientName == "" {
		if m := nameLeadInRe.FindStringSubmatch(text); m != nil {
			out.PatientName = titleCase(normalizeSpaces(m[1]))
		}
	}

	if captured.Reason == "" {
		if m := reasonLeadInRe.FindStringSubmatch(text); m != nil {
			out.Reason = normalizeSpaces(m[1])
		}
	}

	return out
}

// Merge fills the gaps in the rule result with fallback values. The rule
// extractor is authoritative: a present rule value always wins.
func Merge(rules, fallback Fields) Fields {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Fields{
		PatientName:     pick(rules.PatientName, fallback.PatientName),
		PatientEmail:    pick(rules.PatientEmail, fallback.PatientEmail),
		AppointmentDate: pick(rules.AppointmentDate, fallback.AppointmentDate),
		AppointmentTime: pick(rules.AppointmentTime, fallback.AppointmentTime),
		Reason:          pick(rules.Reason, fallback.Reason),
	}
}
