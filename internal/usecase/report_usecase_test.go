package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/repository/repotest"
)

func TestSummary(t *testing.T) {
	store := repotest.NewAppointmentStore()
	store.Seed(
		entity.Appointment{PatientName: "A", PhoneNumber: "0990000001", AppointmentDate: day(tuesday), AppointmentTime: "09:00"},
		entity.Appointment{PatientName: "B", PhoneNumber: "0990000002", AppointmentDate: day(tuesday), AppointmentTime: "09:30", Status: entity.AppointmentStatusConfirmed},
		entity.Appointment{PatientName: "C", PhoneNumber: "0990000003", AppointmentDate: day(tuesday), AppointmentTime: "10:00", Status: entity.AppointmentStatusCancelled},
		entity.Appointment{PatientName: "D", PhoneNumber: "0990000004", AppointmentDate: day("2026-10-23"), AppointmentTime: "09:00"},
		entity.Appointment{PatientName: "E", PhoneNumber: "0990000005", AppointmentDate: day("2026-11-30"), AppointmentTime: "09:00"},
	)
	uc := NewReportUsecase(nil, quietLogger(), store, testCalendar())

	report, err := uc.Summary(context.Background(), "2026-10-19", "2026-10-31")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if report.Total != 4 {
		t.Errorf("expected 4 appointments in range, got %d", report.Total)
	}
	if report.ByStatus["pending"] != 2 || report.ByStatus["confirmed"] != 1 || report.ByStatus["cancelled"] != 1 {
		t.Errorf("unexpected status counts %v", report.ByStatus)
	}
	if len(report.ByDay) != 2 || report.ByDay[0].Date != tuesday || report.ByDay[0].Count != 2 {
		t.Errorf("unexpected daily counts %+v", report.ByDay)
	}
}

func TestSummaryDefaultsAndErrors(t *testing.T) {
	uc := NewReportUsecase(nil, quietLogger(), repotest.NewAppointmentStore(), testCalendar())
	ctx := context.Background()

	report, err := uc.Summary(ctx, "", "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if report.From != "2026-09-19" || report.To != "2026-12-18" {
		t.Errorf("unexpected default range %s..%s", report.From, report.To)
	}
	if _, ok := report.ByStatus["confirmed"]; !ok {
		t.Error("every status must be present")
	}

	if _, err := uc.Summary(ctx, "bad", ""); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := uc.Summary(ctx, "2026-10-20", "2026-10-19"); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := uc.Summary(ctx, "2024-01-01", "2026-01-01"); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for a two year span, got %v", err)
	}
}
