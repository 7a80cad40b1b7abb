package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/logger"
	"github.com/ghuser/titleguard/pkg/telemetry"
	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/domain/commands"
	"github.com/ghuser/titleguard/services/item/domain/models"
	"github.com/ghuser/titleguard/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

// ItemService runs item creation, guarded saves and cached reads. Events are
// written by the repository alongside each change.
type ItemService struct {
	repo    repositories.ItemRepository
	cache   *pkgcache.ItemCache
	metrics *telemetry.TitleGuardMetrics
	log     logger.Logger
}

// NewItemService builds the service. itemCache and metrics may be nil.
func NewItemService(repo repositories.ItemRepository, itemCache *pkgcache.ItemCache, metrics *telemetry.TitleGuardMetrics, log logger.Logger) *ItemService {
	return &ItemService{repo: repo, cache: itemCache, metrics: metrics, log: log}
}

// Create validates and persists a new Item. Component titles must pass the
// character whitelist; the repository publishes ItemSavedEvent.
func (s *ItemService) Create(ctx context.Context, orgID uuid.UUID, itemType, title string) (*models.Item, error) {
	t, err := models.ParseItemType(itemType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemType, err)
	}
	itemTitle, err := models.NewItemTitle(title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemTitle, err)
	}

	item, err := models.NewItem(orgID, t, itemTitle)
	if err != nil {
		return nil, err
	}

	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		if errors.Is(err, itemdomain.ErrInvalidTitleCharacters) {
			s.metrics.RecordRejection(ctx, item.Type.String())
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemTitle, err)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.metrics.RecordSave(ctx, item.Type.String(), true)

	return item, nil
}

// Save applies a new title to a stored item and runs the guarded save:
// ValidateTitleCommand wrapping SaveCommand over an EditingSurface holding
// the draft. A blocked save reports its diagnostic to notifier and returns
// ErrTitleRejected.
func (s *ItemService) Save(ctx context.Context, orgID, id uuid.UUID, title string, notifier commands.Notifier) (*SaveResult, error) {
	stored, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", id, err)
	}
	itemTitle, err := models.NewItemTitle(title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemTitle, err)
	}

	surface := NewEditingSurface(stored.WithTitle(itemTitle))
	guard := commands.NewValidateTitleCommand(NewSaveCommand(s.repo, surface, s.metrics), surface, notifier)

	sel := commands.Selection{OrgID: orgID, ItemIDs: []uuid.UUID{id}}
	if !guard.IsAvailable(ctx, sel) {
		return nil, itemdomain.ErrCommandUnavailable
	}
	if !guard.IsEnabled(ctx, sel) {
		return nil, itemdomain.ErrCommandDisabled
	}

	res, err := guard.Execute(ctx, sel, &commands.Pipeline{Origin: "api"})
	if err != nil {
		return nil, err
	}
	if res == nil {
		s.log.WarnContext(ctx, "save blocked by title guard", "item_id", id, "org_id", orgID)
		return nil, itemdomain.ErrTitleRejected
	}

	saved, ok := res.(*SaveResult)
	if !ok {
		return nil, fmt.Errorf("unexpected save result %T", res)
	}
	s.evict(ctx, orgID, id)
	return saved, nil
}

// Check runs the title rules without saving or notifying. The bool is true
// when the title would be rejected.
func (s *ItemService) Check(title string) (models.ValidationMessage, bool) {
	if !domainsvcs.HasInvalidCharacters(title) {
		return models.ValidationMessage{}, false
	}
	return domainsvcs.ComposeDiagnostic(title), true
}

// GetByID serves from the Redis read model when it can and falls back to
// Postgres. A miss re-warms the cache in the background.
func (s *ItemService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Item, error) {
	if item, ok := s.fromCache(ctx, orgID, id); ok {
		return item, nil
	}

	item, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if s.cache != nil {
		warmCtx := context.WithoutCancel(ctx)
		go func() {
			if err := s.cache.Set(warmCtx, ToCachedItem(item)); err != nil {
				s.log.DebugContext(warmCtx, "item cache warm failed", "item_id", item.ID, "error", err)
			}
		}()
	}
	return item, nil
}

func (s *ItemService) fromCache(ctx context.Context, orgID, id uuid.UUID) (*models.Item, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, orgID, id)
	switch {
	case err == nil:
		return fromCachedItem(cached), true
	case !errors.Is(err, redis.Nil):
		s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
	}
	return nil, false
}

func (s *ItemService) List(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.repo.FindByOrgID(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list org %s: %w", orgID, err)
	}
	return items, total, nil
}

// Delete removes the item and its cache entry. An unknown ID yields
// ErrItemNotFound.
func (s *ItemService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	switch exists, err := s.repo.Exists(ctx, orgID, id); {
	case err != nil:
		return fmt.Errorf("look up item %s: %w", id, err)
	case !exists:
		return itemdomain.ErrItemNotFound
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.evict(ctx, orgID, id)
	return nil
}

// evict drops a stale cache entry; the worker re-warms it from item.saved.
func (s *ItemService) evict(ctx context.Context, orgID, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), orgID, id); err != nil {
		s.log.WarnContext(ctx, "item cache evict failed", "item_id", id, "error", err)
	}
}

func fromCachedItem(c *pkgcache.CachedItem) *models.Item {
	return &models.Item{
		ID:        c.ID,
		OrgID:     c.OrgID,
		Type:      models.ItemType(c.ItemType),
		Title:     models.ItemTitle(c.Title),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCachedItem maps an Item to its Redis read model.
func ToCachedItem(item *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:        item.ID,
		OrgID:     item.OrgID,
		ItemType:  item.Type.String(),
		Title:     item.Title.String(),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
