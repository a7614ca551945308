package domain

import "time"

// Event types published after successful commits.
const (
	EventPostCreated        = "post.created"
	EventCommentCreated     = "comment.created"
	EventFollowConfirmed    = "follow.confirmed"
	EventChatMessageCreated = "chat.message.created"
)

// Event is a domain event destined for the event stream. AggregateID is
// the primary key of the entity the event is about.
type Event struct {
	Type        string      `json:"type"`
	AggregateID int64       `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload,omitempty"`
}
