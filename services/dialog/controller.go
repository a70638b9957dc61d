package dialog

import (
	"fmt"
	"time"

	"medivoice/models"
)

// NextPrompt advances the session through the slot-filling cascade and
// returns the prompt to speak. It falls through every satisfied step in a
// single call, so a turn that captured several slots lands directly on the
// first one still missing. An unrecognized step resets to ask_name.
func NextPrompt(s *models.Session, now time.Time) string {
	c := &s.Captured

	if s.Step == models.StepGreeting {
		s.Step = models.StepAskName
		return "Hello! I can help you book an appointment. Could I take your full name, please?"
	}

	if s.Step == models.StepAskName {
		if c.PatientName == "" {
			return "Could I take your full name, please?"
		}
		s.Step = models.StepAskEmail
	}

	if s.Step == models.StepAskEmail || s.Step == models.StepConfirmEmail {
		if c.PatientEmail == "" {
			s.Step = models.StepAskEmail
			return "Thanks. What is your email address?"
		}
		if !s.EmailConfirmed {
			s.Step = models.StepConfirmEmail
			return fmt.Sprintf("I heard %s. Is that correct?", SpeakableEmail(c.PatientEmail))
		}
		s.Step = models.StepAskDate
	}

	if s.Step == models.StepAskDate || s.Step == models.StepAskTime || s.Step == models.StepConfirmDatetime {
		switch {
		case c.AppointmentDate == "":
			// A time may already be captured; keep it and ask for the date
			// so confirm_datetime is only ever entered with both slots set.
			s.Step = models.StepAskDate
			return fmt.Sprintf("Great. What date would you like? You can say %s.", dateExamples(now))
		case c.AppointmentTime == "":
			s.Step = models.StepAskTime
			return "What time would you prefer? You can say '2 pm' or '14:30'."
		case !s.DatetimeConfirmed:
			s.Step = models.StepConfirmDatetime
			return fmt.Sprintf("I heard %s. Is that correct?", SpeakableDatetime(c.AppointmentDate, c.AppointmentTime))
		default:
			s.Step = models.StepAskReason
		}
	}

	if s.Step == models.StepAskReason {
		if c.Reason == "" {
			return "Finally, what is the reason for your visit?"
		}
		s.Step = models.StepConfirm
	}

	if s.Step == models.StepConfirm {
		return fmt.Sprintf(
			"Perfect. I've got %s with email %s, on %s at %s for %s. Shall I book this now?",
			c.PatientName, c.PatientEmail, c.AppointmentDate, c.AppointmentTime, c.Reason,
		)
	}

	s.Step = models.StepAskName
	return "Could I take your full name, please?"
}

// dateExamples builds the spoken example list for the date prompt,
// recomputed against now: this week's Friday, "next Monday", and an
// absolute date two weeks out.
func dateExamples(now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	fridayDelta := (int(time.Friday) - int(today.Weekday()) + 7) % 7
	friday := today.AddDate(0, 0, fridayDelta)

	absDate := today.AddDate(0, 0, 14)

	fridayName := friday.Weekday().String()
	if friday.Equal(today) {
		fridayName = "today"
	}
	return fmt.Sprintf("'%s %d %s', 'next Monday', '%d %s'",
		fridayName, friday.Day(), friday.Month(), absDate.Day(), absDate.Month())
}
