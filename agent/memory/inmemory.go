package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// InMemoryStore keeps entries in an in-process slice. It is the default
// backend for local development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry

	maxEntries int
	now        func() time.Time
	logger     *zap.Logger
}

// NewInMemoryStore creates an in-process store. maxEntries 0 means
// unbounded.
func NewInMemoryStore(maxEntries int, logger *zap.Logger) *InMemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryStore{
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.With(zap.String("component", "memory_inmemory")),
	}
}

func (s *InMemoryStore) Write(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		evict := len(s.entries) - s.maxEntries
		s.entries = append([]Entry(nil), s.entries[evict:]...)
	}
	return nil
}

func (s *InMemoryStore) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var out []Entry
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Text), needle) {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *InMemoryStore) SearchType(ctx context.Context, entryType string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Type == entryType {
			out = append(out, s.entries[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *InMemoryStore) Latest(ctx context.Context, entryType string) (*Entry, error) {
	matches, err := s.SearchType(ctx, entryType, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	e := matches[0]
	return &e, nil
}

func (s *InMemoryStore) All(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := len(s.entries)
	s.entries = nil
	s.logger.Info("memory cleared", zap.Int("entries", cleared))
	return nil
}
