package ledger

import "context"

type EventType string

const (
	EventEntryCreated EventType = "entry_created"
	EventEntryUpdated EventType = "entry_updated"
	EventEntryDeleted EventType = "entry_deleted"
)

// EntryEvent is emitted after a ledger operation has committed.
type EntryEvent struct {
	Type    EventType `json:"type"`
	OwnerID OwnerID   `json:"owner_id"`
	Entry   Entry     `json:"entry"`
	At      int64     `json:"at"`
}

// EventPublisher delivers committed entry events. Publishing is outside the
// atomic unit; a failure never undoes ledger state.
type EventPublisher interface {
	Publish(ctx context.Context, event EntryEvent) error
}
