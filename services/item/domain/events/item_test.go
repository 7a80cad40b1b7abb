package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/titleguard/services/item/domain/events"
)

func TestItemSavedEvent_JSONFieldNames(t *testing.T) {
	evt := events.ItemSavedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     uuid.New(),
		OrgID:      uuid.New(),
		ItemType:   "Component",
		Title:      "Widget",
		Created:    true,
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{"event_id", "version", "item_id", "org_id", "item_type", "title", "created", "created_at", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestTitleRejectedEvent_JSONFieldNames(t *testing.T) {
	evt := events.TitleRejectedEvent{
		EventID:       uuid.New(),
		Version:       1,
		OrgID:         uuid.New(),
		ItemID:        uuid.New(),
		MessageTitle:  "Invalid Component Title",
		MessageBody:   "body",
		MessageDetail: "detail",
		OccurredAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{"event_id", "version", "org_id", "item_id", "message_title", "message_body", "message_detail", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestTopics_Values(t *testing.T) {
	if events.TopicItemSaved != "item.saved" {
		t.Errorf("expected %q, got %q", "item.saved", events.TopicItemSaved)
	}
	if events.TopicTitleRejected != "item.title_rejected" {
		t.Errorf("expected %q, got %q", "item.title_rejected", events.TopicTitleRejected)
	}
}
