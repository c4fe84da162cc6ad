package session

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

type shard struct {
	mu       sync.RWMutex
	sessions map[Key]*Session
}

// Store is the process-wide session map. It is sharded by session key so
// turns for unrelated conversations never contend on one lock, while appends
// for the same key serialize on their shard.
type Store struct {
	shards [shardCount]*shard
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[Key]*Session)}
	}
	return s
}

func (s *Store) shardFor(key Key) *shard {
	h := fnv.New32a()
	h.Write([]byte(key.Channel))
	h.Write([]byte{0})
	h.Write([]byte(key.ID))
	return s.shards[h.Sum32()%shardCount]
}

// Turns returns a copy of the ordered turn history for a conversation, oldest
// first. Unknown and archived sessions yield an empty history.
func (s *Store) Turns(ch Channel, id string) []Turn {
	key := Key{Channel: ch, ID: id}
	sh := s.shardFor(key)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, exists := sh.sessions[key]
	if !exists || sess.Archived {
		return nil
	}

	turns := make([]Turn, len(sess.Turns))
	copy(turns, sess.Turns)
	return turns
}

// Append records a completed turn, creating the session if it does not exist
// yet. History is trimmed to the most recent MaxTurns entries and
// LastActivity is bumped to the turn's timestamp, all under one shard lock so
// concurrent appends for the same id cannot tear the window.
func (s *Store) Append(ch Channel, id string, turn Turn) {
	key := Key{Channel: ch, ID: id}
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, exists := sh.sessions[key]
	if !exists || sess.Archived {
		sess = &Session{Key: key}
		sh.sessions[key] = sess
	}

	sess.Turns = append(sess.Turns, turn)
	if len(sess.Turns) > MaxTurns {
		trimmed := make([]Turn, MaxTurns)
		copy(trimmed, sess.Turns[len(sess.Turns)-MaxTurns:])
		sess.Turns = trimmed
	}
	sess.LastActivity = turn.CreatedAt
}

// Archive converts a session into an archived record that retains only a
// summary. Archived records survive the idle sweep and are purged after the
// archive retention window. Reports whether the session existed.
func (s *Store) Archive(ch Channel, id, summary string, at time.Time) bool {
	key := Key{Channel: ch, ID: id}
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, exists := sh.sessions[key]
	if !exists {
		return false
	}

	sess.Turns = nil
	sess.Archived = true
	sess.ArchivedAt = at
	sess.Summary = summary
	return true
}

// Sweep removes idle sessions whose LastActivity predates idleCutoff and
// purges archived records older than archiveCutoff. The idle check happens
// under the shard lock at removal time, so a session that just received a
// turn is never deleted out from under it.
func (s *Store) Sweep(idleCutoff, archiveCutoff time.Time) (evicted, purged int) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, sess := range sh.sessions {
			if sess.Archived {
				if sess.ArchivedAt.Before(archiveCutoff) {
					delete(sh.sessions, key)
					purged++
				}
				continue
			}
			if sess.LastActivity.Before(idleCutoff) {
				delete(sh.sessions, key)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	return evicted, purged
}

// Count returns the number of active (non-archived) sessions on a channel.
func (s *Store) Count(ch Channel) int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for key, sess := range sh.sessions {
			if key.Channel == ch && !sess.Archived {
				count++
			}
		}
		sh.mu.RUnlock()
	}
	return count
}

// CountArchived returns the number of archived call records awaiting purge.
func (s *Store) CountArchived() int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, sess := range sh.sessions {
			if sess.Archived {
				count++
			}
		}
		sh.mu.RUnlock()
	}
	return count
}
