// Package session holds the transient conversational state of the
// registration flow. State lives in process memory only: the durable
// vehicle binding survives restarts through the external session id, so a
// lost session merely re-asks for a display name on the next interaction.
package session

import (
	"hash/fnv"
	"sync"
)

// Phase enumerates the registration states of one conversation.
type Phase int

const (
	// PhaseAwaitingUsername means the session was asked for a display name.
	PhaseAwaitingUsername Phase = iota
	// PhaseRegistered means the session is bound to a named vehicle.
	PhaseRegistered
)

// State is the per-conversation registration state.
type State struct {
	Phase Phase
	// Name is the bound display name; set only in PhaseRegistered.
	Name string
}

const defaultShardCount = 32

// Store is a sharded in-process map keyed by external session id.
// Operations on one key are serialized by the owning shard; different
// sessions proceed in parallel with no global lock.
type Store struct {
	shards []shard
}

type shard struct {
	mu     sync.Mutex
	states map[string]State
}

// NewStore constructs a store with the default shard count.
func NewStore() *Store {
	shards := make([]shard, defaultShardCount)
	for i := range shards {
		shards[i].states = make(map[string]State)
	}
	return &Store{shards: shards}
}

// Get returns the state for the session, reporting absence.
func (s *Store) Get(sessionID string) (State, bool) {
	sh := s.shard(sessionID)
	sh.mu.Lock()
	state, ok := sh.states[sessionID]
	sh.mu.Unlock()
	return state, ok
}

// Set overwrites the state for the session.
func (s *Store) Set(sessionID string, state State) {
	sh := s.shard(sessionID)
	sh.mu.Lock()
	sh.states[sessionID] = state
	sh.mu.Unlock()
}

// Clear removes the session entry.
func (s *Store) Clear(sessionID string) {
	sh := s.shard(sessionID)
	sh.mu.Lock()
	delete(sh.states, sessionID)
	sh.mu.Unlock()
}

func (s *Store) shard(sessionID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.shards[h.Sum32()%uint32(len(s.shards))]
}
