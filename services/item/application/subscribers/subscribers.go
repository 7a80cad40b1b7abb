// Package subscribers consumes the item context's own events in the worker
// process.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/events"
	"github.com/ghuser/titleguard/pkg/logger"
	itemEvents "github.com/ghuser/titleguard/services/item/domain/events"
)

// Subscriber is the part of the event bus the worker consumes from.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler events.Handler) (<-chan error, error)
}

type itemWarmer interface {
	Set(ctx context.Context, item *cache.CachedItem) error
}

// Handlers binds each item topic to its handler.
func Handlers(warm itemWarmer, log logger.Logger) map[string]events.Handler {
	return map[string]events.Handler{
		itemEvents.TopicItemSaved:     ItemSaved(warm, log),
		itemEvents.TopicTitleRejected: TitleRejected(log),
	}
}

// Register subscribes every handler and logs delivery failures until ctx ends.
func Register(ctx context.Context, bus Subscriber, handlers map[string]events.Handler, log logger.Logger) error {
	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := bus.Subscribe(ctx, topic, h)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func() {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber gave up on message", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}
	slices.Sort(topics)
	log.Info("event subscribers registered", "topics", topics)
	return nil
}

// ItemSaved warms the read cache from item.saved. Cache errors are logged and
// the message is still acked; the API falls back to Postgres on a miss.
func ItemSaved(warm itemWarmer, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var ev itemEvents.ItemSavedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", itemEvents.TopicItemSaved, err)
		}
		if err := warm.Set(ctx, cachedItem(ev)); err != nil {
			log.WarnContext(ctx, "cache warm failed", "item_id", ev.ItemID, "error", err)
			return nil
		}
		log.DebugContext(ctx, "cache warmed", "item_id", ev.ItemID, "org_id", ev.OrgID, "created", ev.Created)
		return nil
	}
}

// TitleRejected keeps an audit line for every blocked save.
func TitleRejected(log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var ev itemEvents.TitleRejectedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", itemEvents.TopicTitleRejected, err)
		}
		log.InfoContext(ctx, "title rejected",
			"event_id", ev.EventID,
			"org_id", ev.OrgID,
			"item_id", ev.ItemID,
			"message_title", ev.MessageTitle,
			"occurred_at", ev.OccurredAt,
		)
		return nil
	}
}

func cachedItem(ev itemEvents.ItemSavedEvent) *cache.CachedItem {
	return &cache.CachedItem{
		ID:        ev.ItemID,
		OrgID:     ev.OrgID,
		ItemType:  ev.ItemType,
		Title:     ev.Title,
		CreatedAt: ev.CreatedAt,
		UpdatedAt: ev.OccurredAt,
	}
}
