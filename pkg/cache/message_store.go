package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const messageKeyPrefix = "messages"

// CachedMessage is one message-center notification as stored in Redis.
type CachedMessage struct {
	ID            uuid.UUID `json:"id"`
	OrgID         uuid.UUID `json:"org_id"`
	ItemID        uuid.UUID `json:"item_id,omitempty"`
	Severity      string    `json:"severity"`
	MessageTitle  string    `json:"message_title"`
	MessageBody   string    `json:"message_body"`
	MessageDetail string    `json:"message_detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessageStore keeps a capped, newest-first list of notifications per org.
// Key format: "messages:{orgID}"
type MessageStore struct {
	client *RedisClient
	limit  int
	ttl    time.Duration
}

// NewMessageStore returns a MessageStore keeping at most limit messages per org.
// The whole list expires ttl after the last push.
func NewMessageStore(r *RedisClient, limit int, ttl time.Duration) *MessageStore {
	if limit <= 0 {
		limit = 100
	}
	return &MessageStore{client: r, limit: limit, ttl: ttl}
}

// Push prepends msg to its org's list and trims the list to the configured limit.
func (s *MessageStore) Push(ctx context.Context, msg *CachedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("message marshal: %w", err)
	}

	key := s.key(msg.OrgID)
	pipe := s.client.Client().TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.limit-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("message push: %w", err)
	}
	return nil
}

// Recent returns up to n messages for the org, newest first. n <= 0 or above
// the store limit is clamped to the limit.
func (s *MessageStore) Recent(ctx context.Context, orgID uuid.UUID, n int) ([]*CachedMessage, error) {
	if n <= 0 || n > s.limit {
		n = s.limit
	}
	raw, err := s.client.Client().LRange(ctx, s.key(orgID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("message range: %w", err)
	}

	msgs := make([]*CachedMessage, 0, len(raw))
	for _, r := range raw {
		var m CachedMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("message unmarshal: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}

// Clear drops every message for the org.
func (s *MessageStore) Clear(ctx context.Context, orgID uuid.UUID) error {
	if err := s.client.Client().Del(ctx, s.key(orgID)).Err(); err != nil {
		return fmt.Errorf("message clear: %w", err)
	}
	return nil
}

func (s *MessageStore) key(orgID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", messageKeyPrefix, orgID)
}
