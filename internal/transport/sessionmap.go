package transport

import "sync"

const shardCount = 16

// SessionMap is the process-wide concurrent map spec.md §4.B/§5 describes:
// lock-striped so many session goroutines can insert/remove/mutate without
// contending on a single mutex, mirroring the teacher's per-field mutex
// granularity in internal/gameserver/client.go.
type SessionMap struct {
	shards [shardCount]sessionShard
}

type sessionShard struct {
	mu    sync.RWMutex
	byID  map[uint64]*Session
}

// NewSessionMap returns an empty SessionMap.
func NewSessionMap() *SessionMap {
	m := &SessionMap{}
	for i := range m.shards {
		m.shards[i].byID = make(map[uint64]*Session)
	}
	return m
}

func (m *SessionMap) shardFor(connID uint64) *sessionShard {
	return &m.shards[connID%shardCount]
}

// Insert registers s under its connection id.
func (m *SessionMap) Insert(s *Session) {
	shard := m.shardFor(s.connID)
	shard.mu.Lock()
	shard.byID[s.connID] = s
	shard.mu.Unlock()
}

// Remove unregisters the session with connID, if present.
func (m *SessionMap) Remove(connID uint64) {
	shard := m.shardFor(connID)
	shard.mu.Lock()
	delete(shard.byID, connID)
	shard.mu.Unlock()
}

// Get returns the session for connID, if present.
func (m *SessionMap) Get(connID uint64) (*Session, bool) {
	shard := m.shardFor(connID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	s, ok := shard.byID[connID]
	return s, ok
}

// ByPlayerID scans every shard for the session currently bound to
// playerID, as a linear scan across all shards.
func (m *SessionMap) ByPlayerID(playerID int64) (*Session, bool) {
	for i := range m.shards {
		shard := &m.shards[i]
		shard.mu.RLock()
		for _, s := range shard.byID {
			if s.PlayerID() == playerID {
				shard.mu.RUnlock()
				return s, true
			}
		}
		shard.mu.RUnlock()
	}
	return nil, false
}
