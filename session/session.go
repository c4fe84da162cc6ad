package session

import "time"

// Channel identifies the transport a conversation arrived on. A voice call
// and a web chat are always distinct sessions, even when their identifiers
// are spelled the same.
type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelWeb   Channel = "web"
)

// Key is the fully qualified session identifier: channel plus the opaque
// conversation id assigned by the provider (voice) or the client (web).
type Key struct {
	Channel Channel
	ID      string
}

// Turn is one user input paired with one assistant reply. Turns are never
// mutated after creation.
type Turn struct {
	UserText      string
	AssistantText string
	CreatedAt     time.Time
}

// MaxTurns bounds the retained history per session; oldest turns are dropped
// first so recency wins over completeness.
const MaxTurns = 10

// Session holds the bounded, ordered turn history for one conversation.
// Completed call sessions are archived with a summary before being purged.
type Session struct {
	Key          Key
	Turns        []Turn
	LastActivity time.Time

	Archived   bool
	ArchivedAt time.Time
	Summary    string
}
