package models

import "time"

// AppointmentRecord is the persisted trace of a booking attempt.
type AppointmentRecord struct {
	ID              string    `bson:"id" json:"id"`
	SessionID       string    `bson:"sessionId" json:"sessionId"`
	PatientName     string    `bson:"patientName" json:"patientName"`
	PatientEmail    string    `bson:"patientEmail" json:"patientEmail"`
	AppointmentDate string    `bson:"appointmentDate" json:"appointmentDate"`
	AppointmentTime string    `bson:"appointmentTime" json:"appointmentTime"`
	Reason          string    `bson:"reason" json:"reason"`
	Status          string    `bson:"status" json:"status"` // "success" or "error"
	CalendarMessage string    `bson:"calendarMessage" json:"calendarMessage"`
	Reminded        bool      `bson:"reminded" json:"reminded"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	RecordID     string `json:"recordId"`
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
	StartISO     string `json:"startIso"`
}
