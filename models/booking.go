package models

import "time"

// BookingEvent is the payload handed to the calendar collaborator.
type BookingEvent struct {
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email"`
	Reason       string    `json:"reason"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// CalendarResult is the outcome of a calendar event creation attempt.
type CalendarResult struct {
	Status  string `json:"status"` // "success" or "error"
	Message string `json:"message"`
}

// Success reports whether the result represents a created event.
func (r CalendarResult) Success() bool {
	return r.Status == "success"
}
