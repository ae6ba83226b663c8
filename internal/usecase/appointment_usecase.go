package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/calendar"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minNameLength  = 2
	maxNameLength  = 100
	maxNotesLength = 500
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{10,20}$`)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) ([]dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	calendar        *calendar.Calendar
	cache           service.AvailabilityCache
	auditService    service.AuditService
	metrics         *metrics.Metrics
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	cal *calendar.Calendar,
	cache service.AvailabilityCache,
	auditService service.AuditService,
	m *metrics.Metrics,
) AppointmentUsecase {
	if cache == nil {
		cache = service.NewNoopAvailabilityCache()
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		calendar:        cal,
		cache:           cache,
		auditService:    auditService,
		metrics:         m,
	}
}

// validate applies the input rules in a fixed order and reports the first
// violation only.
func (u *appointmentUsecase) validate(req *dto.CreateAppointmentRequest) (*entity.Appointment, error) {
	name := strings.TrimSpace(req.PatientName)
	phone := strings.TrimSpace(req.PhoneNumber)
	date := strings.TrimSpace(req.AppointmentDate)
	timeOfDay := strings.TrimSpace(req.AppointmentTime)
	notes := strings.TrimSpace(req.Notes)

	if name == "" || phone == "" || date == "" || timeOfDay == "" {
		return nil, ErrMissingFields
	}

	day, err := u.calendar.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if u.calendar.IsPast(day) {
		return nil, ErrPastDate
	}
	if calendar.IsWeekend(day) {
		return nil, ErrWeekendNotBookable
	}

	bookable, err := u.calendar.Template().IsBookableTime(timeOfDay)
	if err != nil || !bookable {
		return nil, ErrOutsideBusinessHours
	}

	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return nil, ErrInvalidName
	}
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, ErrNotesTooLong
	}

	return &entity.Appointment{
		PatientName:     name,
		PhoneNumber:     phone,
		AppointmentDate: entity.DateOnly(day),
		AppointmentTime: timeOfDay,
		Notes:           notes,
		Status:          entity.AppointmentStatusPending,
	}, nil
}

// CreateAppointment validates and persists a public booking. The slot
// pre-check gives a fast answer; the unique index on active slots is what
// actually prevents double booking, and its violation maps to ErrSlotTaken.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.validate(req)
	if err != nil {
		return nil, err
	}
	date := appointment.DateString()

	existing, err := u.appointmentRepo.FindActiveBySlot(ctx, u.db, date, appointment.AppointmentTime)
	if err != nil {
		u.log.Errorf("Failed to check slot %s %s: %+v", date, appointment.AppointmentTime, err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if existing != nil {
		return nil, ErrSlotTaken
	}

	appointment.ID = uuid.New()
	if err := u.appointmentRepo.Create(ctx, u.db, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			u.log.Infof("Lost booking race for slot %s %s", date, appointment.AppointmentTime)
			return nil, ErrSlotTaken
		}
		u.log.Errorf("Failed to create appointment: %+v", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	u.cache.Invalidate(ctx)
	u.metrics.BookingCreated()

	response := converter.AppointmentToResponse(appointment)
	u.auditService.LogCreate(ctx, nil, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), response)

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"date":           date,
		"time":           appointment.AppointmentTime,
	}).Info("Appointment booked")

	return response, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) ([]dto.AppointmentResponse, error) {
	domainFilter := &entity.AppointmentFilter{}

	if filter != nil {
		for _, value := range []string{filter.Date, filter.From, filter.To} {
			if value == "" {
				continue
			}
			if _, err := u.calendar.ParseDate(value); err != nil {
				return nil, ErrInvalidDate
			}
		}
		if filter.Status != "" && !entity.AppointmentStatus(filter.Status).IsValid() {
			return nil, ErrInvalidStatus
		}

		domainFilter.Date = filter.Date
		domainFilter.From = filter.From
		domainFilter.To = filter.To
		domainFilter.Status = entity.AppointmentStatus(filter.Status)
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, u.db, domainFilter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToResponses(appointments), nil
}

// UpdateStatus moves an appointment between pending, confirmed and
// cancelled. Re-opening a cancelled appointment fails with ErrSlotTaken when
// its slot has been booked again meanwhile.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	status := entity.AppointmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if current == nil {
		return nil, ErrAppointmentNotFound
	}
	if current.Status == status {
		return converter.AppointmentToResponse(current), nil
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, u.db, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to update appointment %s status: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	u.cache.Invalidate(ctx)

	updated, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", id, err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrAppointmentNotFound
	}

	u.auditService.LogUpdate(ctx, &actorID, entity.AuditActionAppointmentStatusUpdate, "appointment", id.String(), string(current.Status), string(updated.Status))

	return converter.AppointmentToResponse(updated), nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	existing, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if existing == nil {
		return ErrAppointmentNotFound
	}

	affected, err := u.appointmentRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	u.cache.Invalidate(ctx)
	u.auditService.LogDelete(ctx, &actorID, entity.AuditActionAppointmentDelete, "appointment", id.String(), converter.AppointmentToResponse(existing))

	return nil
}
