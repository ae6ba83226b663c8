package usecase

import (
	"context"
	"fmt"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/calendar"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AvailabilityUsecase interface {
	GetAvailableDates(ctx context.Context) ([]dto.AvailableDateResponse, error)
	GetAvailableSlots(ctx context.Context, date string) ([]string, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	calendar        *calendar.Calendar
	cache           service.AvailabilityCache
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	cal *calendar.Calendar,
	cache service.AvailabilityCache,
) AvailabilityUsecase {
	if cache == nil {
		cache = service.NewNoopAvailabilityCache()
	}
	return &availabilityUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		calendar:        cal,
		cache:           cache,
	}
}

// GetAvailableDates lists every business day from today to the end of the
// booking horizon with the number of slots still open.
func (u *availabilityUsecase) GetAvailableDates(ctx context.Context) ([]dto.AvailableDateResponse, error) {
	booked, err := u.bookedCounts(ctx)
	if err != nil {
		return nil, err
	}

	total := u.calendar.Template().Total()
	days := u.calendar.Window()
	result := make([]dto.AvailableDateResponse, 0, len(days))

	for _, day := range days {
		date := day.Format(calendar.DateLayout)
		count := int(booked[date])
		remaining := max(0, total-count)
		result = append(result, dto.AvailableDateResponse{
			Date:             date,
			Available:        remaining > 0,
			AvailableSlots:   remaining,
			AppointmentCount: count,
		})
	}

	return result, nil
}

func (u *availabilityUsecase) bookedCounts(ctx context.Context) (map[string]int64, error) {
	from, to := u.calendar.WindowBounds()

	// On a miss the generation is still read before the database, so a write
	// committed meanwhile makes the stored result unreachable.
	cached, generation, ok := u.cache.Lookup(ctx, from, to)
	if ok {
		return cached, nil
	}

	rows, err := u.appointmentRepo.CountActiveByDay(ctx, u.db, from, to)
	if err != nil {
		u.log.Errorf("Failed to count appointments between %s and %s: %+v", from, to, err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day] = row.Count
	}
	u.cache.Store(ctx, generation, from, to, counts)

	return counts, nil
}

// GetAvailableSlots returns the open start times of one day in template
// order. Weekends yield an empty list. Results are never cached.
func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, date string) ([]string, error) {
	day, err := u.calendar.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if calendar.IsWeekend(day) {
		return []string{}, nil
	}

	bookedTimes, err := u.appointmentRepo.FindBookedTimes(ctx, u.db, day.Format(calendar.DateLayout))
	if err != nil {
		u.log.Errorf("Failed to find booked times for %s: %+v", date, err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	booked := make(map[string]struct{}, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = struct{}{}
	}

	slots := make([]string, 0, u.calendar.Template().Total())
	for _, slot := range u.calendar.Template().Slots() {
		if _, taken := booked[slot]; !taken {
			slots = append(slots, slot)
		}
	}

	return slots, nil
}
