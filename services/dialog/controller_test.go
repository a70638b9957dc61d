package dialog

import (
	"strings"
	"testing"
	"time"

	"medivoice/models"
)

// refNow is Wednesday 10 September 2025, 10:00 in the clinic timezone.
func refNow(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2025, 9, 10, 10, 0, 0, 0, loc)
}

func TestNextPromptCascade(t *testing.T) {
	now := refNow(t)

	tests := []struct {
		name     string
		session  *models.Session
		wantStep models.Step
		contains string
	}{
		{
			name:     "greeting moves to ask name",
			session:  models.NewSession(),
			wantStep: models.StepAskName,
			contains: "Could I take your full name",
		},
		{
			name: "name captured asks for email",
			session: &models.Session{
				Step:     models.StepAskName,
				Captured: models.CapturedFields{PatientName: "John Smith"},
			},
			wantStep: models.StepAskEmail,
			contains: "What is your email address?",
		},
		{
			name: "unconfirmed email asks for confirmation",
			session: &models.Session{
				Step: models.StepAskEmail,
				Captured: models.CapturedFields{
					PatientName:  "John Smith",
					PatientEmail: "jo@gmail.com",
				},
			},
			wantStep: models.StepConfirmEmail,
			contains: "j,  o,  at,  gmail,  dot,  com",
		},
		{
			name: "confirmed email asks for date",
			session: &models.Session{
				Step: models.StepConfirmEmail,
				Captured: models.CapturedFields{
					PatientName:  "John Smith",
					PatientEmail: "jo@gmail.com",
				},
				EmailConfirmed: true,
			},
			wantStep: models.StepAskDate,
			contains: "What date would you like",
		},
		{
			name: "time without date re-asks for the date",
			session: &models.Session{
				Step: models.StepAskDate,
				Captured: models.CapturedFields{
					PatientName:     "John Smith",
					PatientEmail:    "jo@gmail.com",
					AppointmentTime: "14:00",
				},
				EmailConfirmed: true,
			},
			wantStep: models.StepAskDate,
			contains: "What date would you like",
		},
		{
			name: "date without time asks for time",
			session: &models.Session{
				Step: models.StepAskDate,
				Captured: models.CapturedFields{
					PatientName:     "John Smith",
					PatientEmail:    "jo@gmail.com",
					AppointmentDate: "2025-09-15",
				},
				EmailConfirmed: true,
			},
			wantStep: models.StepAskTime,
			contains: "What time would you prefer",
		},
		{
			name: "unconfirmed datetime asks for confirmation",
			session: &models.Session{
				Step: models.StepAskTime,
				Captured: models.CapturedFields{
					PatientName:     "John Smith",
					PatientEmail:    "jo@gmail.com",
					AppointmentDate: "2025-09-15",
					AppointmentTime: "14:30",
				},
				EmailConfirmed: true,
			},
			wantStep: models.StepConfirmDatetime,
			contains: "Monday 15 September at 2:30 pm",
		},
		{
			name: "confirmed datetime asks for reason",
			session: &models.Session{
				Step: models.StepConfirmDatetime,
				Captured: models.CapturedFields{
					PatientName:     "John Smith",
					PatientEmail:    "jo@gmail.com",
					AppointmentDate: "2025-09-15",
					AppointmentTime: "14:30",
				},
				EmailConfirmed:    true,
				DatetimeConfirmed: true,
			},
			wantStep: models.StepAskReason,
			contains: "reason for your visit",
		},
		{
			name: "everything captured summarises for final confirmation",
			session: &models.Session{
				Step: models.StepAskReason,
				Captured: models.CapturedFields{
					PatientName:     "John Smith",
					PatientEmail:    "jo@gmail.com",
					AppointmentDate: "2025-09-15",
					AppointmentTime: "14:30",
					Reason:          "a routine checkup",
				},
				EmailConfirmed:    true,
				DatetimeConfirmed: true,
			},
			wantStep: models.StepConfirm,
			contains: "Shall I book this now",
		},
		{
			name: "unknown step resets to ask name",
			session: &models.Session{
				Step: models.Step("bogus"),
			},
			wantStep: models.StepAskName,
			contains: "Could I take your full name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := NextPrompt(tt.session, now)
			if tt.session.Step != tt.wantStep {
				t.Errorf("step = %q, want %q", tt.session.Step, tt.wantStep)
			}
			if !strings.Contains(prompt, tt.contains) {
				t.Errorf("prompt %q does not contain %q", prompt, tt.contains)
			}
		})
	}
}

// The cascade skips every satisfied gate in one call, so a fresh session with
// all slots filled and confirmed lands directly on the final confirmation.
func TestNextPromptFallsThrough(t *testing.T) {
	sess := &models.Session{
		Step: models.StepGreeting,
		Captured: models.CapturedFields{
			PatientName:     "Jane O'brien",
			PatientEmail:    "jane@yahoo.com",
			AppointmentDate: "2025-09-12",
			AppointmentTime: "09:00",
			Reason:          "a follow up",
		},
		EmailConfirmed:    true,
		DatetimeConfirmed: true,
	}
	prompt := NextPrompt(sess, refNow(t))
	if sess.Step != models.StepConfirm {
		t.Fatalf("step = %q, want %q", sess.Step, models.StepConfirm)
	}
	for _, want := range []string{"Jane O'brien", "jane@yahoo.com", "2025-09-12", "09:00", "a follow up"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("summary %q missing %q", prompt, want)
		}
	}
}

func TestDateExamples(t *testing.T) {
	// From a Wednesday the same week's Friday is two days ahead.
	got := dateExamples(refNow(t))
	want := "'Friday 12 September', 'next Monday', '24 September'"
	if got != want {
		t.Errorf("dateExamples = %q, want %q", got, want)
	}

	// Asked on a Friday the nearest Friday is that same day.
	loc, _ := time.LoadLocation("Europe/London")
	friday := time.Date(2025, 9, 12, 10, 0, 0, 0, loc)
	got = dateExamples(friday)
	if !strings.Contains(got, "today") {
		t.Errorf("dateExamples on a Friday = %q, want a 'today' example", got)
	}
}
