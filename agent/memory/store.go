// Package memory implements the per-agent append-only memory stores.
//
// This is deliberately a placeholder for a real memory service: entries
// are kept as an ordered list per agent and queried with substring and
// type scans, nothing fancier. Two backends share the same semantics,
// an in-process list (default) and a Redis list.
package memory

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Entry types written by the agents.
const (
	TypeIntakeSummary        = "intake_summary"
	TypeIntakeLive           = "intake_live"
	TypeDateExchange         = "date_exchange"
	TypeDateExchangeEval     = "date_exchange_eval"
	TypeDateDeltaInsight     = "date_delta_insight"
	TypeMatchmakerReflection = "matchmaker_reflection"
	TypeDateScore            = "date_score"
	TypeMatchReport          = "match_report"
	TypePipelineReport       = "pipeline_report"
)

// Entry is one memory record.
type Entry struct {
	Text      string            `json:"text"`
	Type      string            `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Store is an append-only memory log for a single agent.
type Store interface {
	// Write appends an entry. A zero Timestamp is filled in.
	Write(ctx context.Context, e Entry) error

	// Search returns up to limit entries whose text contains query
	// (case-insensitive), in insertion order. limit <= 0 means all.
	Search(ctx context.Context, query string, limit int) ([]Entry, error)

	// SearchType returns up to limit entries of the given type,
	// newest first. limit <= 0 means all.
	SearchType(ctx context.Context, entryType string, limit int) ([]Entry, error)

	// Latest returns the newest entry of the given type, or nil when
	// the store holds none.
	Latest(ctx context.Context, entryType string) (*Entry, error)

	// All returns every entry in insertion order.
	All(ctx context.Context) ([]Entry, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// Backend names accepted by Config.Backend.
const (
	BackendInMemory = "inmemory"
	BackendRedis    = "redis"
)

// Config selects and bounds the memory backend.
type Config struct {
	// Backend is BackendInMemory or BackendRedis. Empty means in-memory.
	Backend string

	// MaxEntries caps each agent's log; oldest entries are evicted.
	// 0 means unbounded.
	MaxEntries int
}

// Factory builds per-agent stores for the configured backend.
type Factory struct {
	cfg    Config
	client *redis.Client
	logger *zap.Logger
}

// NewFactory creates a Factory. client may be nil unless the backend
// is BackendRedis.
func NewFactory(cfg Config, client *redis.Client, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, client: client, logger: logger}
}

// ForOwner returns the memory store for the named agent.
func (f *Factory) ForOwner(owner string) Store {
	if f.cfg.Backend == BackendRedis && f.client != nil {
		return NewRedisStore(f.client, owner, f.cfg.MaxEntries, f.logger)
	}
	return NewInMemoryStore(f.cfg.MaxEntries, f.logger)
}
