package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest is the public booking form. Only presence is
// checked here; business rules run in the usecase in a fixed order.
type CreateAppointmentRequest struct {
	PatientName     string `json:"patientName" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required"` // Format: YYYY-MM-DD
	AppointmentTime string `json:"appointmentTime" validate:"required"` // Format: HH:MM
	Notes           string `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AppointmentFilterRequest holds query parameters for listing appointments.
type AppointmentFilterRequest struct {
	Date   string
	From   string
	To     string
	Status string
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientName     string    `json:"patientName"`
	PhoneNumber     string    `json:"phoneNumber"`
	AppointmentDate string    `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type AvailableDateResponse struct {
	Date             string `json:"date"`
	Available        bool   `json:"available"`
	AvailableSlots   int    `json:"availableSlots"`
	AppointmentCount int    `json:"appointmentCount"`
}
