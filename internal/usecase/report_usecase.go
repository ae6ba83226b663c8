package usecase

import (
	"context"
	"fmt"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/calendar"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultReportLookbackDays = 30
	maxReportRangeDays        = 366
)

type ReportUsecase interface {
	Summary(ctx context.Context, from, to string) (*dto.SummaryReportResponse, error)
}

type reportUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	calendar        *calendar.Calendar
}

func NewReportUsecase(db *gorm.DB, log *logrus.Logger, appointmentRepo repository.AppointmentRepository, cal *calendar.Calendar) ReportUsecase {
	return &reportUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		calendar:        cal,
	}
}

// Summary counts appointments per status and slot-holding appointments per
// day over [from, to]. Empty bounds default to the last 30 days through the
// end of the booking horizon.
func (u *reportUsecase) Summary(ctx context.Context, from, to string) (*dto.SummaryReportResponse, error) {
	today := u.calendar.Today()

	start := today.AddDate(0, 0, -defaultReportLookbackDays)
	if from != "" {
		parsed, err := u.calendar.ParseDate(from)
		if err != nil {
			return nil, ErrInvalidDate
		}
		start = parsed
	}

	end := today.AddDate(0, 0, u.calendar.HorizonDays())
	if to != "" {
		parsed, err := u.calendar.ParseDate(to)
		if err != nil {
			return nil, ErrInvalidDate
		}
		end = parsed
	}

	if end.Before(start) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidRange)
	}
	if end.Sub(start).Hours()/24 > maxReportRangeDays {
		return nil, fmt.Errorf("%w: at most %d days", ErrInvalidRange, maxReportRangeDays)
	}

	fromStr, toStr := start.Format(calendar.DateLayout), end.Format(calendar.DateLayout)

	statusCounts, err := u.appointmentRepo.CountByStatus(ctx, u.db, fromStr, toStr)
	if err != nil {
		u.log.Warnf("Failed to count appointments by status: %+v", err)
		return nil, err
	}
	dailyCounts, err := u.appointmentRepo.CountActiveByDay(ctx, u.db, fromStr, toStr)
	if err != nil {
		u.log.Warnf("Failed to count appointments by day: %+v", err)
		return nil, err
	}

	report := &dto.SummaryReportResponse{
		From: fromStr,
		To:   toStr,
		ByStatus: map[string]int64{
			string(entity.AppointmentStatusPending):   0,
			string(entity.AppointmentStatusConfirmed): 0,
			string(entity.AppointmentStatusCancelled): 0,
		},
		ByDay: make([]dto.DailyCountResponse, 0, len(dailyCounts)),
	}
	for _, c := range statusCounts {
		report.ByStatus[string(c.Status)] = c.Count
		report.Total += c.Count
	}
	for _, c := range dailyCounts {
		report.ByDay = append(report.ByDay, dto.DailyCountResponse{Date: c.Day, Count: c.Count})
	}

	return report, nil
}
