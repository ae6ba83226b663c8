package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"clinic-booking/internal/domain/calendar"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Monday 2026-10-19, 08:00 in the clinic.
var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testCalendar() *calendar.Calendar {
	return calendar.New(time.UTC, calendar.DefaultTemplate(), 60, func() time.Time { return testNow })
}

// memoryCache mirrors the generation scheme of the Redis cache.
type memoryCache struct {
	mu          sync.Mutex
	generation  int64
	entries     map[string]map[string]int64
	invalidated int
}

var _ service.AvailabilityCache = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]map[string]int64)}
}

func (c *memoryCache) key(gen int64, from, to string) string {
	return fmt.Sprintf("g%d:%s:%s", gen, from, to)
}

func (c *memoryCache) Lookup(ctx context.Context, from, to string) (map[string]int64, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts, ok := c.entries[c.key(c.generation, from, to)]
	return counts, c.generation, ok
}

func (c *memoryCache) Store(ctx context.Context, generation int64, from, to string, counts map[string]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(generation, from, to)] = counts
}

func (c *memoryCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidated++
}

func (c *memoryCache) Invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type nopAudit struct{}

var _ service.AuditService = nopAudit{}

func (nopAudit) LogCreate(context.Context, *uuid.UUID, string, string, string, interface{}) {}

func (nopAudit) LogUpdate(context.Context, *uuid.UUID, string, string, string, interface{}, interface{}) {
}

func (nopAudit) LogDelete(context.Context, *uuid.UUID, string, string, string, interface{}) {}

func (nopAudit) LogEvent(context.Context, *uuid.UUID, string, entity.JSON) {}
