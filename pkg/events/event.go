package events

import (
	"context"
	"time"
)

// Event types emitted by the persona pipeline.
const (
	TypeProfileScraped         = "PROFILE_SCRAPED"
	TypeKnowledgeBaseGenerated = "KNOWLEDGE_BASE_GENERATED"
	TypeChatSessionStarted     = "CHAT_SESSION_STARTED"
	TypeChatSessionDeleted     = "CHAT_SESSION_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PROFILE_SCRAPED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher delivers events to a bus. Callers treat publish failures as
// non-fatal and only log them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func ProfileScraped(username string, repositories int, cachedAt time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeProfileScraped,
		Data: map[string]interface{}{
			"username":     username,
			"repositories": repositories,
			"cached_at":    cachedAt,
		},
		OccurredAt: cachedAt,
	}
}

func KnowledgeBaseGenerated(username string, summaries, totalTokens int, generatedAt time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeKnowledgeBaseGenerated,
		Data: map[string]interface{}{
			"username":     username,
			"summaries":    summaries,
			"total_tokens": totalTokens,
		},
		OccurredAt: generatedAt,
	}
}

func ChatSessionStarted(sessionId, username string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeChatSessionStarted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"username":   username,
		},
		OccurredAt: at,
	}
}

func ChatSessionDeleted(sessionId, username string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeChatSessionDeleted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"username":   username,
		},
		OccurredAt: at,
	}
}
