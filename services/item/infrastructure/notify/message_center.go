// Package notify implements commands.Notifier: the Redis-backed message
// center users read from, and an in-memory Recorder for echoing a diagnostic
// back on the request that triggered it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgcache "github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/telemetry"
	"github.com/ghuser/titleguard/services/item/domain/commands"
	domainevents "github.com/ghuser/titleguard/services/item/domain/events"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

// SeverityError marks a notification raised by a blocked save.
const SeverityError = "error"

// MessageStore is the persistence the message center writes to.
// *pkgcache.MessageStore satisfies it.
type MessageStore interface {
	Push(ctx context.Context, msg *pkgcache.CachedMessage) error
	Recent(ctx context.Context, orgID uuid.UUID, n int) ([]*pkgcache.CachedMessage, error)
}

// Publisher emits integration events. *events.EventBus satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, topic, eventID string, version int, v any) error
}

// MessageCenter stores user-facing notifications per org and announces each
// one on the event bus.
type MessageCenter struct {
	store   MessageStore
	bus     Publisher
	metrics *telemetry.TitleGuardMetrics
	log     logger.Logger
	now     func() time.Time
}

// NewMessageCenter returns a MessageCenter. bus and metrics may be nil.
func NewMessageCenter(store MessageStore, bus Publisher, metrics *telemetry.TitleGuardMetrics, log logger.Logger) *MessageCenter {
	return &MessageCenter{
		store:   store,
		bus:     bus,
		metrics: metrics,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// For returns a Notifier that files messages under orgID and itemID.
func (m *MessageCenter) For(orgID, itemID uuid.UUID) commands.Notifier {
	return &scoped{center: m, orgID: orgID, itemID: itemID}
}

// Recent returns up to limit notifications for orgID, newest first.
func (m *MessageCenter) Recent(ctx context.Context, orgID uuid.UUID, limit int) ([]*pkgcache.CachedMessage, error) {
	return m.store.Recent(ctx, orgID, limit)
}

func (m *MessageCenter) register(ctx context.Context, orgID, itemID uuid.UUID, msg models.ValidationMessage) {
	now := m.now()
	cm := &pkgcache.CachedMessage{
		ID:            uuid.New(),
		OrgID:         orgID,
		ItemID:        itemID,
		Severity:      SeverityError,
		MessageTitle:  msg.MessageTitle,
		MessageBody:   msg.MessageBody,
		MessageDetail: msg.MessageDetail,
		CreatedAt:     now,
	}

	m.log.WarnContext(ctx, "title rejected",
		"org_id", orgID,
		"item_id", itemID,
		"message_title", msg.MessageTitle,
	)
	m.metrics.RecordRejection(ctx, string(models.ItemTypeComponent))

	// Fire-and-forget: failures are logged, never returned.
	if err := m.store.Push(ctx, cm); err != nil {
		m.log.ErrorContext(ctx, "message center push failed", "org_id", orgID, "error", err)
	}
	if m.bus == nil {
		return
	}
	evt := domainevents.TitleRejectedEvent{
		EventID:       cm.ID,
		Version:       1,
		OrgID:         orgID,
		ItemID:        itemID,
		MessageTitle:  msg.MessageTitle,
		MessageBody:   msg.MessageBody,
		MessageDetail: msg.MessageDetail,
		OccurredAt:    now,
	}
	if err := m.bus.PublishJSON(ctx, domainevents.TopicTitleRejected, evt.EventID.String(), evt.Version, evt); err != nil {
		m.log.ErrorContext(ctx, "publish title rejected failed", "org_id", orgID, "error", err)
	}
}

type scoped struct {
	center *MessageCenter
	orgID  uuid.UUID
	itemID uuid.UUID
}

func (s *scoped) RegisterError(ctx context.Context, msg models.ValidationMessage) {
	s.center.register(ctx, s.orgID, s.itemID, msg)
}
