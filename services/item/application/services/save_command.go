package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ghuser/titleguard/pkg/telemetry"
	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/domain/commands"
	"github.com/ghuser/titleguard/services/item/domain/models"
	"github.com/ghuser/titleguard/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

// EditingSurface holds the draft item a save is about to persist. It is the
// commands.ItemSource handed to the title guard.
type EditingSurface struct {
	mu    sync.RWMutex
	draft *models.Item
}

var _ commands.ItemSource = (*EditingSurface)(nil)

// NewEditingSurface opens draft on a new surface. A nil draft means nothing is open.
func NewEditingSurface(draft *models.Item) *EditingSurface {
	return &EditingSurface{draft: draft}
}

// CurrentItem returns the open draft. An empty surface yields a nil interface,
// not a typed nil.
func (s *EditingSurface) CurrentItem(context.Context) domainsvcs.TitledItem {
	d := s.Draft()
	if d == nil {
		return nil
	}
	return d
}

// Draft returns the open draft item, or nil.
func (s *EditingSurface) Draft() *models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Open replaces the draft on the surface.
func (s *EditingSurface) Open(draft *models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
}

// SaveResult is the commands.Result produced by SaveCommand.
type SaveResult struct {
	Item    *models.Item
	Created bool
	SavedAt time.Time
}

// SaveCommand persists the item open on an EditingSurface. It is the command
// the title guard wraps.
type SaveCommand struct {
	repo    repositories.ItemRepository
	surface *EditingSurface
	metrics *telemetry.TitleGuardMetrics
}

var _ commands.Command = (*SaveCommand)(nil)

// NewSaveCommand returns a SaveCommand writing surface's draft through repo.
// metrics may be nil.
func NewSaveCommand(repo repositories.ItemRepository, surface *EditingSurface, metrics *telemetry.TitleGuardMetrics) *SaveCommand {
	return &SaveCommand{repo: repo, surface: surface, metrics: metrics}
}

// IsAvailable reports whether exactly one item is selected.
func (c *SaveCommand) IsAvailable(_ context.Context, sel commands.Selection) bool {
	_, ok := sel.Single()
	return ok
}

// IsEnabled reports whether the surface holds the selected item.
func (c *SaveCommand) IsEnabled(_ context.Context, sel commands.Selection) bool {
	id, ok := sel.Single()
	if !ok {
		return false
	}
	draft := c.surface.Draft()
	return draft != nil && draft.ID == id && draft.OrgID == sel.OrgID
}

// Execute inserts or updates the draft and returns a *SaveResult.
func (c *SaveCommand) Execute(ctx context.Context, sel commands.Selection, _ *commands.Pipeline) (commands.Result, error) {
	if !c.IsEnabled(ctx, sel) {
		return nil, itemdomain.ErrCommandDisabled
	}
	item := c.surface.Draft()
	if err := domainsvcs.ValidateItemForSave(item); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemTitle, err)
	}

	exists, err := c.repo.Exists(ctx, item.OrgID, item.ID)
	if err != nil {
		return nil, fmt.Errorf("check item: %w", err)
	}
	if exists {
		err = c.repo.Update(ctx, item)
	} else {
		err = c.repo.Save(ctx, item)
	}
	if err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	c.metrics.RecordSave(ctx, item.Type.String(), !exists)
	return &SaveResult{Item: item, Created: !exists, SavedAt: item.UpdatedAt}, nil
}
