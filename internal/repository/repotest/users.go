package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore is an in-memory UserRepository and RoleRepository.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
	Err   error
}

var (
	_ repository.UserRepository = (*UserStore)(nil)
	_ repository.RoleRepository = (*UserStore)(nil)
)

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]entity.User)}
}

func seededRole(id int) entity.Role {
	switch id {
	case entity.RoleIDAdmin:
		return entity.Role{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin}
	case entity.RoleIDStaff:
		return entity.Role{ID: entity.RoleIDStaff, RoleName: entity.RoleStaff}
	}
	return entity.Role{}
}

func (s *UserStore) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range s.users {
		if existing.Email == email {
			return repository.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.IsActive == nil {
		active := true
		user.IsActive = &active
	}
	user.Email = email
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.Role = seededRole(user.RoleID)
	s.users[user.ID] = stored
	return nil
}

// SetActive flips the active flag of a stored user.
func (s *UserStore) SetActive(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.IsActive = &active
		s.users[id] = user
	}
}

func (s *UserStore) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (s *UserStore) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *UserStore) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	id, ok := entity.RoleIDByName(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return nil, nil
	}
	role := seededRole(id)
	return &role, nil
}

// AuditStore is an in-memory AuditLogRepository.
type AuditStore struct {
	mu     sync.Mutex
	logs   []entity.AuditLog
	nextID int64
	Err    error
}

var _ repository.AuditLogRepository = (*AuditStore)(nil)

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Actions returns the recorded actions in insertion order.
func (s *AuditStore) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, 0, len(s.logs))
	for _, l := range s.logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func (s *AuditStore) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	log.ID = s.nextID
	log.CreatedAt = time.Now().UTC()
	s.logs = append(s.logs, *log)
	return nil
}

func (s *AuditStore) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if filter == nil {
		filter = &entity.AuditLogFilter{}
	}

	var result []entity.AuditLog
	for _, l := range s.logs {
		if filter.Category != "" && !strings.HasPrefix(l.Action, filter.Category+".") {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && fmt.Sprint(l.Metadata["entity_id"]) != filter.EntityID {
			continue
		}
		result = append(result, l)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *AuditStore) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, l := range s.logs {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}
