package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// ActiveSlotIndex is the partial unique index over (appointment_date,
// appointment_time) for rows whose status is not cancelled.
const ActiveSlotIndex = "uniq_appointments_active_slot"

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a single booking of one slot in the clinic calendar.
// AppointmentDate is stored as a SQL date and held at UTC midnight.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientName     string            `gorm:"type:varchar(100);not null" json:"patient_name"`
	PhoneNumber     string            `gorm:"type:varchar(20);not null;index" json:"phone_number"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime string            `gorm:"type:char(5);not null" json:"appointment_time"`
	Notes           string            `gorm:"type:varchar(500);not null;default:''" json:"notes,omitempty"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// OccupiesSlot reports whether the appointment holds its date and time.
func (a *Appointment) OccupiesSlot() bool {
	return !a.IsCancelled()
}

// DateString returns the appointment date as YYYY-MM-DD.
func (a *Appointment) DateString() string {
	return a.AppointmentDate.Format("2006-01-02")
}

// DateOnly normalizes a calendar day to UTC midnight so it round-trips
// through a SQL date column unchanged.
func DateOnly(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AppointmentFilter is a domain-level filter for querying appointments.
type AppointmentFilter struct {
	Date   string // Format: YYYY-MM-DD
	From   string // Format: YYYY-MM-DD
	To     string // Format: YYYY-MM-DD
	Status AppointmentStatus
}

// DailyCount is the number of appointments holding a slot on one day.
type DailyCount struct {
	Day   string `gorm:"column:day"`
	Count int64  `gorm:"column:count"`
}

// StatusCount is the number of appointments per status.
type StatusCount struct {
	Status AppointmentStatus `gorm:"column:status"`
	Count  int64             `gorm:"column:count"`
}
