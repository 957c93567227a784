package agent

import (
	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// Registry owns the demo users, one matchmaker per user, and the
// singleton evaluator. Built once at startup.
type Registry struct {
	users       []types.Profile
	matchmakers map[string]*Matchmaker
	evaluator   *Evaluator
}

// NewRegistry seeds the demo users and their agents, each with its own
// memory store from the factory.
func NewRegistry(stores *memory.Factory, logger *zap.Logger) *Registry {
	users := DemoUsers()

	r := &Registry{
		users:       users,
		matchmakers: make(map[string]*Matchmaker, len(users)),
	}
	for _, u := range users {
		r.matchmakers[u.UserID] = NewMatchmaker(u, stores.ForOwner(u.UserID), logger)
	}
	r.evaluator = NewEvaluator(stores.ForOwner("evaluator"), logger)
	return r
}

// ListUsers returns all demo profiles.
func (r *Registry) ListUsers() []types.Profile {
	out := make([]types.Profile, len(r.users))
	copy(out, r.users)
	return out
}

// User returns the profile for a user id, or nil.
func (r *Registry) User(userID string) *types.Profile {
	for i := range r.users {
		if r.users[i].UserID == userID {
			u := r.users[i]
			return &u
		}
	}
	return nil
}

// Matchmaker returns the advocate agent for a user id, or nil.
func (r *Registry) Matchmaker(userID string) *Matchmaker {
	return r.matchmakers[userID]
}

// Evaluator returns the singleton neutral evaluator.
func (r *Registry) Evaluator() *Evaluator {
	return r.evaluator
}
