package models

// Step is the session's current position in the slot-filling flow.
type Step string

const (
	StepGreeting        Step = "greeting"
	StepAskName         Step = "ask_name"
	StepAskEmail        Step = "ask_email"
	StepConfirmEmail    Step = "confirm_email"
	StepAskDate         Step = "ask_date"
	StepAskTime         Step = "ask_time"
	StepConfirmDatetime Step = "confirm_datetime"
	StepAskReason       Step = "ask_reason"
	StepConfirm         Step = "confirm"
)

// CapturedFields holds the five intake slots. An empty string means the
// slot has not been captured yet; an empty value is never stored.
type CapturedFields struct {
	PatientName     string `json:"patient_name"`
	PatientEmail    string `json:"patient_email"`
	AppointmentDate string `json:"appointment_date"` // ISO date, e.g. 2025-09-15
	AppointmentTime string `json:"appointment_time"` // 24-hour HH:MM
	Reason          string `json:"reason"`
}

// Session is the per-conversation intake state. It is owned by the session
// store, mutated only by the turn processor, and removed once a booking
// attempt completes.
type Session struct {
	Step              Step           `json:"step"`
	Captured          CapturedFields `json:"captured"`
	EmailConfirmed    bool           `json:"emailConfirmed"`
	DatetimeConfirmed bool           `json:"datetimeConfirmed"`
}

// NewSession returns a fresh session positioned at the greeting step.
func NewSession() *Session {
	return &Session{Step: StepGreeting}
}
