package dto

import (
	"time"

	"clinic-booking/internal/domain/entity"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64         `json:"id"`
	User      *UserResponse `json:"user,omitempty"`
	Action    string        `json:"action"`
	Metadata  entity.JSON   `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

// AuditLogQuery is the admin listing filter. Action is either a category
// ("appointment") or a full action ("appointment.delete").
type AuditLogQuery struct {
	Action        string
	AppointmentID string
	Limit         int
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
