package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ntarasov/cloudpipe/internal/ports"
)

// Проверка, что Storage удовлетворяет порту ObjectStorage.
var _ ports.ObjectStorage = (*Storage)(nil)

// Storage — in-memory объектное хранилище: пара к in-memory очереди для
// локального запуска без облака и для тестов прикладной логики.
type Storage struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func New() *Storage {
	return &Storage{buckets: make(map[string]map[string][]byte)}
}

func (s *Storage) EnsureBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string][]byte)
	}
	return nil
}

func (s *Storage) Put(_ context.Context, bucket, key string, body []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return fmt.Errorf("bucket %s: %w", bucket, ports.ErrObjectNotFound)
	}
	b[key] = append([]byte(nil), body...)
	return nil
}

func (s *Storage) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ports.ErrObjectNotFound)
	}
	data, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ports.ErrObjectNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *Storage) List(_ context.Context, bucket, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ports.ErrObjectNotFound)
	}

	var keys []string
	for k := range b {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
