package services

import (
	"context"
	"fmt"
	"sync"
)

// MockStorage keeps objects in memory
type MockStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
	mu           sync.RWMutex
}

// NewMockStorage creates an empty in-memory storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *MockStorage) PutObject(_ context.Context, key, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	m.contentTypes[key] = contentType
	return nil
}

func (m *MockStorage) PresignGetURL(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("object not found in mock storage: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

func (m *MockStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.contentTypes, key)
	m.mu.Unlock()
	return nil
}

// Object returns a stored object and its content type
func (m *MockStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[key]
	return body, m.contentTypes[key], ok
}

// Keys lists every stored key
func (m *MockStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
