package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

type memoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *memoryAuditLog) Record(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAuditLog) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

type memoryDeliveryCache struct {
	mu          sync.Mutex
	entries     map[uint]cachedDelivery
	hits        int
	invalidated []uint
}

func newMemoryDeliveryCache() *memoryDeliveryCache {
	return &memoryDeliveryCache{entries: make(map[uint]cachedDelivery)}
}

func (m *memoryDeliveryCache) GetDelivery(_ context.Context, id uint, day string) (*DeliveryDetail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.Day != day {
		return nil, false
	}
	m.hits++
	return entry.Detail, true
}

func (m *memoryDeliveryCache) SetDelivery(_ context.Context, day string, detail *DeliveryDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[detail.ID] = cachedDelivery{Day: day, Detail: detail}
}

func (m *memoryDeliveryCache) InvalidateDeliveries(_ context.Context, ids ...uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
		m.invalidated = append(m.invalidated, id)
	}
}

var errAuditDown = errors.New("audit store unreachable")

func items(lines ...ItemInput) *[]ItemInput {
	return &lines
}

func strPtr(v string) *string {
	return &v
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
