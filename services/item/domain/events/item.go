package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicItemSaved is the Watermill topic published when an Item is persisted.
const TopicItemSaved = "item.saved"

// TopicTitleRejected is the Watermill topic published when the title guard
// blocks a save.
const TopicTitleRejected = "item.title_rejected"

// ItemSavedEvent is published after an Item is inserted or updated.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemSaved).
type ItemSavedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     uuid.UUID `json:"item_id"`
	OrgID      uuid.UUID `json:"org_id"`
	ItemType   string    `json:"item_type"`
	Title      string    `json:"title"`
	Created    bool      `json:"created"` // false for updates of an existing item
	CreatedAt  time.Time `json:"created_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TitleRejectedEvent is published when a save is blocked because the
// Component title holds characters outside the whitelist.
type TitleRejectedEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Version       int       `json:"version"`
	OrgID         uuid.UUID `json:"org_id"`
	ItemID        uuid.UUID `json:"item_id,omitempty"`
	MessageTitle  string    `json:"message_title"`
	MessageBody   string    `json:"message_body"`
	MessageDetail string    `json:"message_detail"`
	OccurredAt    time.Time `json:"occurred_at"`
}
