package repository

import (
	"context"
	"testing"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
)

func TestAuditLogRepositoryFindAllFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditLogRepository()
	ctx := context.Background()

	appointmentID := uuid.NewString()
	t.Cleanup(func() {
		db.Where("metadata->>'entity_id' = ?", appointmentID).Delete(&entity.AuditLog{})
	})

	for _, action := range []string{
		entity.AuditActionAppointmentCreate,
		entity.AuditActionAppointmentStatusUpdate,
		entity.AuditActionAppointmentDelete,
	} {
		log := &entity.AuditLog{Action: action, Metadata: entity.JSON{"entity": "appointment", "entity_id": appointmentID}}
		if err := repo.Create(ctx, db, log); err != nil {
			t.Fatalf("create %s: %v", action, err)
		}
	}

	tests := []struct {
		name   string
		filter entity.AuditLogFilter
		want   int
	}{
		{"appointment history", entity.AuditLogFilter{Category: entity.AuditCategoryAppointment, EntityID: appointmentID}, 3},
		{"single action", entity.AuditLogFilter{Action: entity.AuditActionAppointmentDelete, EntityID: appointmentID}, 1},
		{"other category", entity.AuditLogFilter{Category: entity.AuditCategoryUser, EntityID: appointmentID}, 0},
		{"limit", entity.AuditLogFilter{EntityID: appointmentID, Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			logs, err := repo.FindAll(ctx, db, &filter)
			if err != nil {
				t.Fatalf("find all: %v", err)
			}
			if len(logs) != tt.want {
				t.Fatalf("expected %d entries, got %d", tt.want, len(logs))
			}
		})
	}
}
