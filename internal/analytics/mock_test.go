package analytics

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"boxstudio/pkg/cache"
)

type windowRow struct {
	at     time.Time
	amount int64
}

type statusEventRow struct {
	messageID string
	status    string
	at        time.Time
}

// mockRepository evaluates window queries over in-memory rows so the inclusive
// bounds are exercised, and returns canned snapshots for the all-time reads
type mockRepository struct {
	mu sync.Mutex

	payments []windowRow
	refunds  []windowRow
	messages []time.Time
	statuses []statusEventRow

	facts      *Facts
	kpiInputs  *KPIInputs
	totals     *Totals
	attendance map[string]int64
	active     int64
	profiles   []MemberProfile

	err   error
	calls map[string]int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		facts:      emptyFacts(),
		kpiInputs:  &KPIInputs{},
		totals:     &Totals{},
		attendance: map[string]int64{},
		calls:      map[string]int{},
	}
}

func (m *mockRepository) track(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	return m.err
}

func (m *mockRepository) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func inWindow(at, start, end time.Time) bool {
	return !at.Before(start) && !at.After(end)
}

func (m *mockRepository) FactsSnapshot(ctx context.Context) (*Facts, error) {
	if err := m.track("facts"); err != nil {
		return nil, err
	}
	copied := *m.facts
	return &copied, nil
}

func (m *mockRepository) KPIInputs(ctx context.Context) (*KPIInputs, error) {
	if err := m.track("kpis"); err != nil {
		return nil, err
	}
	copied := *m.kpiInputs
	return &copied, nil
}

func (m *mockRepository) SumPayments(ctx context.Context, start, end time.Time) (int64, error) {
	if err := m.track("sum_payments"); err != nil {
		return 0, err
	}
	return sumRows(m.payments, start, end), nil
}

func (m *mockRepository) SumRefunds(ctx context.Context, start, end time.Time) (int64, error) {
	if err := m.track("sum_refunds"); err != nil {
		return 0, err
	}
	return sumRows(m.refunds, start, end), nil
}

func sumRows(rows []windowRow, start, end time.Time) int64 {
	var sum int64
	for _, r := range rows {
		if inWindow(r.at, start, end) {
			sum += r.amount
		}
	}
	return sum
}

func (m *mockRepository) CountMessagesCreated(ctx context.Context, start, end time.Time) (int64, error) {
	if err := m.track("messages"); err != nil {
		return 0, err
	}
	var n int64
	for _, at := range m.messages {
		if inWindow(at, start, end) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) CountDeliveredMessages(ctx context.Context, start, end time.Time) (int64, error) {
	if err := m.track("delivered"); err != nil {
		return 0, err
	}
	seen := map[string]bool{}
	for _, s := range m.statuses {
		if (s.status == "delivered" || s.status == "read") && inWindow(s.at, start, end) {
			seen[s.messageID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m *mockRepository) AttendanceByClassType(ctx context.Context, since time.Time) (map[string]int64, error) {
	if err := m.track("attendance"); err != nil {
		return nil, err
	}
	return m.attendance, nil
}

func (m *mockRepository) ActiveMembers(ctx context.Context) (int64, error) {
	if err := m.track("active"); err != nil {
		return 0, err
	}
	return m.active, nil
}

func (m *mockRepository) MemberProfiles(ctx context.Context) ([]MemberProfile, error) {
	if err := m.track("profiles"); err != nil {
		return nil, err
	}
	return m.profiles, nil
}

func (m *mockRepository) Totals(ctx context.Context) (*Totals, error) {
	if err := m.track("totals"); err != nil {
		return nil, err
	}
	copied := *m.totals
	return &copied, nil
}

// memoryCache is a cache.Service backed by a map of JSON blobs
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }
