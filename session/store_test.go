package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turnAt(n int, at time.Time) Turn {
	return Turn{
		UserText:      fmt.Sprintf("question %d", n),
		AssistantText: fmt.Sprintf("answer %d", n),
		CreatedAt:     at,
	}
}

func TestStoreAppendCreatesSession(t *testing.T) {
	store := NewStore()

	assert.Empty(t, store.Turns(ChannelWeb, "s1"))

	now := time.Now()
	store.Append(ChannelWeb, "s1", turnAt(1, now))

	turns := store.Turns(ChannelWeb, "s1")
	require.Len(t, turns, 1)
	assert.Equal(t, "question 1", turns[0].UserText)
	assert.Equal(t, 1, store.Count(ChannelWeb))
}

func TestStoreChannelNamespacesAreDistinct(t *testing.T) {
	store := NewStore()
	now := time.Now()

	store.Append(ChannelWeb, "same-id", turnAt(1, now))
	store.Append(ChannelVoice, "same-id", turnAt(2, now))

	assert.Len(t, store.Turns(ChannelWeb, "same-id"), 1)
	assert.Len(t, store.Turns(ChannelVoice, "same-id"), 1)
	assert.Equal(t, "question 1", store.Turns(ChannelWeb, "same-id")[0].UserText)
	assert.Equal(t, "question 2", store.Turns(ChannelVoice, "same-id")[0].UserText)
}

func TestStoreTrimsToMostRecentTurns(t *testing.T) {
	store := NewStore()
	base := time.Now()

	for i := 1; i <= 11; i++ {
		store.Append(ChannelVoice, "call-1", turnAt(i, base.Add(time.Duration(i)*time.Second)))
	}

	turns := store.Turns(ChannelVoice, "call-1")
	require.Len(t, turns, MaxTurns)
	// Oldest dropped: turns 2..11 retained in arrival order.
	assert.Equal(t, "question 2", turns[0].UserText)
	assert.Equal(t, "question 11", turns[9].UserText)
}

func TestStoreLastActivityTracksNewestTurn(t *testing.T) {
	store := NewStore()
	first := time.Now()
	second := first.Add(time.Minute)

	store.Append(ChannelWeb, "s1", turnAt(1, first))
	store.Append(ChannelWeb, "s1", turnAt(2, second))

	// A sweep with a cutoff between the two appends must keep the session.
	evicted, _ := store.Sweep(first.Add(time.Second), first.Add(-time.Hour))
	assert.Equal(t, 0, evicted)
	assert.Len(t, store.Turns(ChannelWeb, "s1"), 2)
}

func TestStoreTurnsReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Append(ChannelWeb, "s1", turnAt(1, time.Now()))

	turns := store.Turns(ChannelWeb, "s1")
	turns[0].AssistantText = "mutated"

	assert.Equal(t, "answer 1", store.Turns(ChannelWeb, "s1")[0].AssistantText)
}

func TestStoreSweep(t *testing.T) {
	store := NewStore()
	now := time.Now()

	store.Append(ChannelWeb, "idle", turnAt(1, now.Add(-time.Hour)))
	store.Append(ChannelWeb, "fresh", turnAt(2, now))

	evicted, purged := store.Sweep(now.Add(-30*time.Minute), now.Add(-24*time.Hour))

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 0, purged)
	assert.Empty(t, store.Turns(ChannelWeb, "idle"))
	assert.Len(t, store.Turns(ChannelWeb, "fresh"), 1)
}

func TestStoreArchiveLifecycle(t *testing.T) {
	store := NewStore()
	now := time.Now()

	store.Append(ChannelVoice, "call-1", turnAt(1, now.Add(-2*time.Hour)))
	require.True(t, store.Archive(ChannelVoice, "call-1", "caller asked about pricing", now.Add(-2*time.Hour)))
	assert.False(t, store.Archive(ChannelVoice, "missing", "", now))

	// Archived records are invisible to conversations and immune to the
	// idle sweep.
	assert.Empty(t, store.Turns(ChannelVoice, "call-1"))
	assert.Equal(t, 0, store.Count(ChannelVoice))
	assert.Equal(t, 1, store.CountArchived())

	evicted, purged := store.Sweep(now, now.Add(-24*time.Hour))
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 0, purged)
	assert.Equal(t, 1, store.CountArchived())

	// Past the retention window the record is purged, counted separately
	// from idle evictions.
	evicted, purged = store.Sweep(now, now.Add(-time.Hour))
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 1, purged)
	assert.Equal(t, 0, store.CountArchived())
}

func TestStoreConcurrentAppendsSameID(t *testing.T) {
	store := NewStore()

	const writers = 8
	const appendsPerWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < appendsPerWriter; i++ {
				store.Append(ChannelVoice, "call-1", Turn{
					UserText:      fmt.Sprintf("w%d-%d", w, i),
					AssistantText: "ok",
					CreatedAt:     time.Now(),
				})
			}
		}(w)
	}
	wg.Wait()

	turns := store.Turns(ChannelVoice, "call-1")
	require.Len(t, turns, MaxTurns)
	for _, turn := range turns {
		assert.NotEmpty(t, turn.UserText)
		assert.Equal(t, "ok", turn.AssistantText)
	}
	assert.Equal(t, 1, store.Count(ChannelVoice))
}

func TestStoreConcurrentAppendsDistinctIDs(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			store.Append(ChannelWeb, id, turnAt(i, time.Now()))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 64, store.Count(ChannelWeb))
}
