package repository

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSlotConflict is returned by writes rejected by the active slot unique index.
var ErrSlotConflict = errors.New("appointment slot is already taken")

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindActiveBySlot(ctx context.Context, db *gorm.DB, date, timeOfDay string) (*entity.Appointment, error)
	FindBookedTimes(ctx context.Context, db *gorm.DB, date string) ([]string, error)
	CountActiveByDay(ctx context.Context, db *gorm.DB, from, to string) ([]entity.DailyCount, error)
	CountByStatus(ctx context.Context, db *gorm.DB, from, to string) ([]entity.StatusCount, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	FindPatients(ctx context.Context, db *gorm.DB, search string) ([]entity.PatientRecord, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
