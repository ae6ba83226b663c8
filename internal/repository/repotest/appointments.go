// Package repotest provides in-memory repositories for usecase and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStore is an in-memory AppointmentRepository. It enforces the
// active slot uniqueness the database index provides.
type AppointmentStore struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]entity.Appointment
	clock func() time.Time

	// Err, when set, is returned by every call.
	Err error
	// BeforeCreate runs after the slot pre-check of a caller and before the
	// insert, which lets a test slip a competing booking in between.
	BeforeCreate func()
	// Calls counts invocations per method name.
	Calls map[string]int
}

var _ repository.AppointmentRepository = (*AppointmentStore)(nil)

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		rows:  make(map[uuid.UUID]entity.Appointment),
		clock: time.Now,
		Calls: make(map[string]int),
	}
}

// Seed inserts rows without any uniqueness check.
func (s *AppointmentStore) Seed(rows ...entity.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Status == "" {
			row.Status = entity.AppointmentStatusPending
		}
		row.AppointmentDate = entity.DateOnly(row.AppointmentDate)
		s.rows[row.ID] = row
	}
}

// Len returns the number of stored rows.
func (s *AppointmentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *AppointmentStore) called(name string) error {
	s.Calls[name]++
	return s.Err
}

func (s *AppointmentStore) slotHeldLocked(date time.Time, timeOfDay string, except uuid.UUID) bool {
	day := date.Format("2006-01-02")
	for id, row := range s.rows {
		if id == except || !row.OccupiesSlot() {
			continue
		}
		if row.DateString() == day && row.AppointmentTime == timeOfDay {
			return true
		}
	}
	return false
}

func (s *AppointmentStore) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	s.mu.Lock()
	if err := s.called("Create"); err != nil {
		s.mu.Unlock()
		return err
	}
	hook := s.BeforeCreate
	s.mu.Unlock()

	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appointment.AppointmentDate = entity.DateOnly(appointment.AppointmentDate)
	if appointment.Status == "" {
		appointment.Status = entity.AppointmentStatusPending
	}
	if appointment.OccupiesSlot() && s.slotHeldLocked(appointment.AppointmentDate, appointment.AppointmentTime, uuid.Nil) {
		return repository.ErrSlotConflict
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := s.clock().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	s.rows[appointment.ID] = *appointment
	return nil
}

func (s *AppointmentStore) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("FindByID"); err != nil {
		return nil, err
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *AppointmentStore) FindActiveBySlot(ctx context.Context, db *gorm.DB, date, timeOfDay string) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("FindActiveBySlot"); err != nil {
		return nil, err
	}
	for _, row := range s.rows {
		if row.OccupiesSlot() && row.DateString() == date && row.AppointmentTime == timeOfDay {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (s *AppointmentStore) FindBookedTimes(ctx context.Context, db *gorm.DB, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("FindBookedTimes"); err != nil {
		return nil, err
	}
	var times []string
	for _, row := range s.rows {
		if row.OccupiesSlot() && row.DateString() == date {
			times = append(times, row.AppointmentTime)
		}
	}
	sort.Strings(times)
	return times, nil
}

func (s *AppointmentStore) CountActiveByDay(ctx context.Context, db *gorm.DB, from, to string) ([]entity.DailyCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("CountActiveByDay"); err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, row := range s.rows {
		day := row.DateString()
		if !row.OccupiesSlot() || day < from || day > to {
			continue
		}
		counts[day]++
	}
	result := make([]entity.DailyCount, 0, len(counts))
	for day, count := range counts {
		result = append(result, entity.DailyCount{Day: day, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day < result[j].Day })
	return result, nil
}

func (s *AppointmentStore) CountByStatus(ctx context.Context, db *gorm.DB, from, to string) ([]entity.StatusCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("CountByStatus"); err != nil {
		return nil, err
	}
	counts := make(map[entity.AppointmentStatus]int64)
	for _, row := range s.rows {
		day := row.DateString()
		if (from != "" && day < from) || (to != "" && day > to) {
			continue
		}
		counts[row.Status]++
	}
	result := make([]entity.StatusCount, 0, len(counts))
	for status, count := range counts {
		result = append(result, entity.StatusCount{Status: status, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result, nil
}

func (s *AppointmentStore) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("FindAll"); err != nil {
		return nil, err
	}
	result := make([]entity.Appointment, 0, len(s.rows))
	for _, row := range s.rows {
		if filter != nil {
			day := row.DateString()
			if filter.Date != "" && day != filter.Date {
				continue
			}
			if filter.From != "" && day < filter.From {
				continue
			}
			if filter.To != "" && day > filter.To {
				continue
			}
			if filter.Status != "" && row.Status != filter.Status {
				continue
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.AppointmentDate.Equal(b.AppointmentDate) {
			return a.AppointmentDate.Before(b.AppointmentDate)
		}
		if a.AppointmentTime != b.AppointmentTime {
			return a.AppointmentTime < b.AppointmentTime
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return result, nil
}

func (s *AppointmentStore) FindPatients(ctx context.Context, db *gorm.DB, search string) ([]entity.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("FindPatients"); err != nil {
		return nil, err
	}

	type acc struct {
		record  entity.PatientRecord
		latest  time.Time
		matches bool
	}
	groups := make(map[string]*acc)
	needle := strings.ToLower(strings.TrimSpace(search))

	for _, row := range s.rows {
		key := normalizePhone(row.PhoneNumber)
		g, ok := groups[key]
		if !ok {
			g = &acc{record: entity.PatientRecord{
				PhoneNumber: key,
				FirstVisit:  row.AppointmentDate,
				LastVisit:   row.AppointmentDate,
			}}
			groups[key] = g
		}
		g.record.TotalAppointments++
		if row.OccupiesSlot() {
			g.record.ActiveAppointments++
		}
		if row.AppointmentDate.Before(g.record.FirstVisit) {
			g.record.FirstVisit = row.AppointmentDate
		}
		if row.AppointmentDate.After(g.record.LastVisit) {
			g.record.LastVisit = row.AppointmentDate
		}
		if g.record.PatientName == "" || row.CreatedAt.After(g.latest) {
			g.record.PatientName = row.PatientName
			g.latest = row.CreatedAt
		}
		if needle == "" || strings.Contains(strings.ToLower(row.PatientName), needle) || strings.Contains(row.PhoneNumber, needle) {
			g.matches = true
		}
	}

	result := make([]entity.PatientRecord, 0, len(groups))
	for _, g := range groups {
		if g.matches {
			result = append(result, g.record)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastVisit.Equal(result[j].LastVisit) {
			return result[i].LastVisit.After(result[j].LastVisit)
		}
		return result[i].PhoneNumber < result[j].PhoneNumber
	})
	return result, nil
}

func (s *AppointmentStore) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("UpdateStatus"); err != nil {
		return 0, err
	}
	row, ok := s.rows[id]
	if !ok {
		return 0, nil
	}
	if status != entity.AppointmentStatusCancelled && s.slotHeldLocked(row.AppointmentDate, row.AppointmentTime, id) {
		return 0, repository.ErrSlotConflict
	}
	row.Status = status
	row.UpdatedAt = s.clock().UTC()
	s.rows[id] = row
	return 1, nil
}

func (s *AppointmentStore) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.called("Delete"); err != nil {
		return 0, err
	}
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
