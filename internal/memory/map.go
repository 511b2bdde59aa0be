package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MapStore is an in-process domain.KVStore, used when nothing should touch
// the disk.
type MapStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMapStore() *MapStore {
	return &MapStore{data: make(map[string]string)}
}

func (m *MapStore) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MapStore) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MapStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys with prefix in ascending order.
func (m *MapStore) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
