package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is the core aggregate for this bounded context: one content item as the
// authoring tool sees it.
type Item struct {
	ID        uuid.UUID
	OrgID     uuid.UUID // tenant scope: always filter by this in queries
	Type      ItemType
	Title     ItemTitle
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem constructs an Item aggregate with generated ID and current timestamps.
func NewItem(orgID uuid.UUID, itemType ItemType, title ItemTitle) (*Item, error) {
	now := time.Now().UTC()
	return &Item{
		ID:        uuid.New(),
		OrgID:     orgID,
		Type:      itemType,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ItemTypeName reports the item's type name, e.g. "Component".
func (i *Item) ItemTypeName() string {
	if i == nil {
		return ""
	}
	return i.Type.String()
}

// TitleValue returns the item's current title.
func (i *Item) TitleValue() string {
	if i == nil {
		return ""
	}
	return i.Title.String()
}

// WithTitle returns a copy of the item carrying a draft title. The stored
// aggregate is left untouched until the copy is saved.
func (i *Item) WithTitle(title ItemTitle) *Item {
	draft := *i
	draft.Title = title
	return &draft
}
