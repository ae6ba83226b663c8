package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxSearchLength = 100

type PatientUsecase interface {
	ListPatients(ctx context.Context, search string) ([]dto.PatientResponse, error)
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
}

func NewPatientUsecase(db *gorm.DB, log *logrus.Logger, appointmentRepo repository.AppointmentRepository) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
	}
}

// ListPatients derives patient records from appointment history, optionally
// narrowed by a name or phone fragment.
func (u *patientUsecase) ListPatients(ctx context.Context, search string) ([]dto.PatientResponse, error) {
	search = strings.TrimSpace(search)
	if utf8.RuneCountInString(search) > maxSearchLength {
		search = string([]rune(search)[:maxSearchLength])
	}

	records, err := u.appointmentRepo.FindPatients(ctx, u.db, search)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, err
	}

	return converter.PatientRecordsToResponses(records), nil
}
