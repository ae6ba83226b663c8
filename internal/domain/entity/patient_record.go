package entity

import "time"

// PatientRecord is derived from appointments grouped by phone number.
// It is never persisted.
type PatientRecord struct {
	PhoneNumber        string    `gorm:"column:phone_number"`
	PatientName        string    `gorm:"column:patient_name"`
	TotalAppointments  int64     `gorm:"column:total_appointments"`
	ActiveAppointments int64     `gorm:"column:active_appointments"`
	FirstVisit         time.Time `gorm:"column:first_visit"`
	LastVisit          time.Time `gorm:"column:last_visit"`
}
