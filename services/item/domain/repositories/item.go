package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/titleguard/services/item/domain/models"
)

// DefaultPageSize applies when a list query asks for no limit.
const DefaultPageSize = 20

// QueryOpts pages through an org's items.
type QueryOpts struct {
	Limit  int
	Offset int
}

// Normalize fills in the default page size and clamps a negative offset.
func (o QueryOpts) Normalize() QueryOpts {
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ItemReader answers org-scoped lookups. The title audit only needs this half.
type ItemReader interface {
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Item, error)
	Exists(ctx context.Context, orgID, id uuid.UUID) (bool, error)

	// FindByOrgID returns one page plus the org's total item count.
	FindByOrgID(ctx context.Context, orgID uuid.UUID, opts QueryOpts) ([]*models.Item, int, error)

	// FindByType returns every item of itemType in the org, unpaged.
	FindByType(ctx context.Context, orgID uuid.UUID, itemType models.ItemType) ([]*models.Item, error)
}

// ItemWriter persists items. Save and Update publish item.saved in the same
// transaction as the row change.
type ItemWriter interface {
	Save(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// ItemRepository is what the save path works against.
type ItemRepository interface {
	ItemReader
	ItemWriter
}
