package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound   = errors.New("audit log not found")
	ErrInvalidAuditFilter = errors.New("invalid audit log filter")
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, query *dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetAllAuditLogs lists the trail newest first. Filtering by appointment
// returns that appointment's booking, status and delete history.
func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, query *dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	filter, err := auditLogFilter(query)
	if err != nil {
		return nil, err
	}

	logs, err := u.auditLogRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs %+v: %+v", *filter, err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func auditLogFilter(query *dto.AuditLogQuery) (*entity.AuditLogFilter, error) {
	filter := &entity.AuditLogFilter{}
	if query == nil {
		return filter, nil
	}
	filter.Limit = query.Limit

	action := strings.ToLower(strings.TrimSpace(query.Action))
	switch {
	case action == "":
	case strings.Contains(action, "."):
		if !entity.IsAuditAction(action) {
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAuditFilter, query.Action)
		}
		filter.Action = action
	default:
		if !entity.IsAuditCategory(action) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidAuditFilter, query.Action)
		}
		filter.Category = action
	}

	if raw := strings.TrimSpace(query.AppointmentID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid appointment id", ErrInvalidAuditFilter)
		}
		filter.EntityID = id.String()
		if filter.Action == "" && filter.Category == "" {
			filter.Category = entity.AuditCategoryAppointment
		}
	}
	return filter, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
