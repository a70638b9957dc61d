// File: services/calendar/calendar.go
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medivoice/models"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar creates appointment events on a Google calendar and
// emails the invite to the patient.
type GoogleCalendar struct {
	service    *gcal.Service
	calendarID string
	timezone   string
}

func NewGoogleCalendar(ctx context.Context, credentialsFile, calendarID, timezone string) (*GoogleCalendar, error) {
	service, err := gcal.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize calendar service: %w", err)
	}
	return &GoogleCalendar{service: service, calendarID: calendarID, timezone: timezone}, nil
}

// CreateEvent books a 30-minute appointment. The result carries a link to
// the created event on success; errors are reported as a message rather
// than failing the caller.
func (g *GoogleCalendar) CreateEvent(ctx context.Context, details models.BookingEvent) models.CalendarResult {
	if details.Start.IsZero() || details.End.IsZero() {
		return models.CalendarResult{
			Status:  "error",
			Message: "Could not find a valid start/end datetime for the event.",
		}
	}

	event := &gcal.Event{
		Summary: fmt.Sprintf("Appointment: %s (%s)", orNA(details.PatientName), orNA(details.Reason)),
		Description: fmt.Sprintf(
			"Patient: %s\nReason: %s\nEmail: %s\nBooked by Voice Intake Agent.",
			orNA(details.PatientName), orNA(details.Reason), orNA(details.PatientEmail),
		),
		Start: &gcal.EventDateTime{
			DateTime: details.Start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: details.End.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		// Attach a Meet link automatically.
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.New().String(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
		Attendees: safeAttendees(details.PatientEmail),
		// Use the calendar's default reminders (e.g. 30 min popup).
		Reminders: &gcal.EventReminders{
			UseDefault:      true,
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.service.Events.
		Insert(g.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all"). // email the guests
		Context(ctx).
		Do()
	if err != nil {
		return models.CalendarResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to create event: %v", err),
		}
	}

	return models.CalendarResult{
		Status:  "success",
		Message: fmt.Sprintf("Event created: %s", created.HtmlLink),
	}
}

// safeAttendees builds the attendee list, skipping empty or invalid emails.
func safeAttendees(patientEmail string) []*gcal.EventAttendee {
	if patientEmail == "" || !strings.Contains(patientEmail, "@") {
		return nil
	}
	return []*gcal.EventAttendee{{Email: patientEmail}}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
