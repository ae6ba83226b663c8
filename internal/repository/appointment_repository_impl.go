package repository

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	err := db.WithContext(ctx).Create(appointment).Error
	if isDuplicateKeyError(err, entity.ActiveSlotIndex) {
		return domainRepo.ErrSlotConflict
	}
	return err
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, db *gorm.DB, date, timeOfDay string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Where("appointment_date = ? AND appointment_time = ? AND status <> ?", date, timeOfDay, entity.AppointmentStatusCancelled).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindBookedTimes(ctx context.Context, db *gorm.DB, date string) ([]string, error) {
	var times []string
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("appointment_date = ? AND status <> ?", date, entity.AppointmentStatusCancelled).
		Order("appointment_time ASC").
		Pluck("appointment_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// CountActiveByDay counts slot-holding appointments per day in [from, to].
// Days without appointments are absent from the result.
func (r *appointmentRepository) CountActiveByDay(ctx context.Context, db *gorm.DB, from, to string) ([]entity.DailyCount, error) {
	var counts []entity.DailyCount
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("to_char(appointment_date, 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("appointment_date BETWEEN ? AND ? AND status <> ?", from, to, entity.AppointmentStatusCancelled).
		Group("appointment_date").
		Order("appointment_date ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, db *gorm.DB, from, to string) ([]entity.StatusCount, error) {
	var counts []entity.StatusCount
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("appointment_date BETWEEN ? AND ?", from, to).
		Group("status").
		Order("status ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx)

	if filter != nil {
		if filter.Date != "" {
			query = query.Where("appointment_date = ?", filter.Date)
		}
		if filter.From != "" {
			query = query.Where("appointment_date >= ?", filter.From)
		}
		if filter.To != "" {
			query = query.Where("appointment_date <= ?", filter.To)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	err := query.
		Order("appointment_date ASC, appointment_time ASC, created_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindPatients aggregates appointments into patient records keyed by the
// phone number with formatting characters removed.
func (r *appointmentRepository) FindPatients(ctx context.Context, db *gorm.DB, search string) ([]entity.PatientRecord, error) {
	var records []entity.PatientRecord
	query := db.WithContext(ctx).Model(&entity.Appointment{}).
		Select(`
			regexp_replace(phone_number, '[^0-9+]', '', 'g') AS phone_number,
			(array_agg(patient_name ORDER BY created_at DESC))[1] AS patient_name,
			COUNT(*) AS total_appointments,
			COUNT(*) FILTER (WHERE status <> ?) AS active_appointments,
			MIN(appointment_date) AS first_visit,
			MAX(appointment_date) AS last_visit
		`, entity.AppointmentStatusCancelled)

	if search != "" {
		pattern := containsPattern(search)
		query = query.Where(`patient_name ILIKE ? ESCAPE '\' OR phone_number LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	err := query.
		Group("regexp_replace(phone_number, '[^0-9+]', '', 'g')").
		Order("last_visit DESC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus changes the status and refreshes updated_at. Re-opening a
// cancelled appointment whose slot was rebooked returns ErrSlotConflict.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	if isDuplicateKeyError(result.Error, entity.ActiveSlotIndex) {
		return 0, domainRepo.ErrSlotConflict
	}
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
