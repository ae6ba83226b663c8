package usecase

import "errors"

// Booking validation errors, in the order they are checked.
var (
	ErrMissingFields        = errors.New("patient name, phone number, date and time are required")
	ErrInvalidDate          = errors.New("invalid date, use YYYY-MM-DD")
	ErrPastDate             = errors.New("cannot book an appointment in the past")
	ErrWeekendNotBookable   = errors.New("appointments are not available on weekends")
	ErrOutsideBusinessHours = errors.New("appointment time is outside business hours")
	ErrInvalidName          = errors.New("patient name must be between 2 and 100 characters")
	ErrInvalidPhone         = errors.New("phone number must be 10 to 20 digits, spaces, dashes, parentheses or plus signs")
	ErrNotesTooLong         = errors.New("notes must be at most 500 characters")
	ErrSlotTaken            = errors.New("this time slot is already booked, please choose another")
)

var (
	// ErrStorageUnavailable wraps unexpected database failures. The wrapped
	// detail is for logs only.
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidStatus       = errors.New("status must be one of pending, confirmed, cancelled")
	ErrInvalidRange        = errors.New("invalid date range")
)
