package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "coachsim:memory:"

// RedisStore keeps one agent's entries in a Redis list, JSON-encoded,
// oldest first. Same semantics as InMemoryStore; the list is trimmed to
// maxEntries on write.
type RedisStore struct {
	client     *redis.Client
	key        string
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger
}

// NewRedisStore creates a Redis-backed store for the named agent.
func NewRedisStore(client *redis.Client, owner string, maxEntries int, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:     client,
		key:        redisKeyPrefix + owner,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.With(zap.String("component", "memory_redis"), zap.String("owner", owner)),
	}
}

func (s *RedisStore) Write(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal memory entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, payload)
	if s.maxEntries > 0 {
		pipe.LTrim(ctx, s.key, int64(-s.maxEntries), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write memory entry: %w", err)
	}
	return nil
}

// load reads the full list. The demo's logs are small enough that a
// full scan per query is fine.
func (s *RedisStore) load(ctx context.Context) ([]Entry, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read memory entries: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			s.logger.Warn("skipping undecodable memory entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *RedisStore) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Text), needle) {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *RedisStore) SearchType(ctx context.Context, entryType string, limit int) ([]Entry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type == entryType {
			out = append(out, entries[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *RedisStore) Latest(ctx context.Context, entryType string) (*Entry, error) {
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

func (s *RedisStore) All(ctx context.Context) ([]Entry, error) {
	return s.load(ctx)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	s.logger.Info("memory cleared")
	return nil
}
