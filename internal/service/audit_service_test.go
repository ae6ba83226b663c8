package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAuditServiceRecords(t *testing.T) {
	store := repotest.NewAuditStore()
	svc := NewAuditService(nil, quietLogger(), store)
	userID := uuid.New()

	svc.LogCreate(context.Background(), nil, entity.AuditActionAppointmentCreate, "appointment", "a-1", map[string]string{"time": "09:00"})
	svc.LogUpdate(context.Background(), &userID, entity.AuditActionAppointmentStatusUpdate, "appointment", "a-1", "pending", "confirmed")
	svc.LogDelete(context.Background(), &userID, entity.AuditActionAppointmentDelete, "appointment", "a-1", nil)
	svc.LogEvent(context.Background(), &userID, entity.AuditActionUserLogin, entity.JSON{"email": "admin@clinic.test"})

	want := []string{
		entity.AuditActionAppointmentCreate,
		entity.AuditActionAppointmentStatusUpdate,
		entity.AuditActionAppointmentDelete,
		entity.AuditActionUserLogin,
	}
	got := store.Actions()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	logs, _ := store.FindAll(context.Background(), nil, &entity.AuditLogFilter{Limit: 10})
	update := logs[2]
	if update.Metadata["old_value"] != "pending" || update.Metadata["new_value"] != "confirmed" {
		t.Errorf("unexpected update metadata %v", update.Metadata)
	}
}

func TestAuditServiceSwallowsErrors(t *testing.T) {
	store := repotest.NewAuditStore()
	store.Err = errors.New("connection refused")
	svc := NewAuditService(nil, quietLogger(), store)

	// Must not panic or propagate.
	svc.LogEvent(context.Background(), nil, entity.AuditActionUserLogout, nil)
}
