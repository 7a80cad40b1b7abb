// Package postgres stores items in PostgreSQL through sqlc-generated queries
// and writes item.saved to the transactional outbox alongside each change.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/titleguard/pkg/database"
	"github.com/ghuser/titleguard/pkg/events"
	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	domainevents "github.com/ghuser/titleguard/services/item/domain/events"
	"github.com/ghuser/titleguard/services/item/domain/models"
	"github.com/ghuser/titleguard/services/item/domain/repositories"
	"github.com/ghuser/titleguard/services/item/infrastructure/persistence/postgres/db"
)

const uniqueViolation = "23505"

type ItemRepository struct {
	db   *database.Database
	read *db.Queries
	bus  *events.EventBus
}

var _ repositories.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository returns a repository over database. bus may be nil, in
// which case writes skip the outbox.
func NewItemRepository(database *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: database, read: db.New(database.DB()), bus: bus}
}

// Save inserts a new item. A duplicate ID yields ErrItemAlreadyExists.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.write(ctx, item, true, func(q *db.Queries) error {
		err := q.InsertItem(ctx, db.InsertItemParams{
			ID:        item.ID,
			OrgID:     item.OrgID,
			ItemType:  item.Type.String(),
			Title:     item.Title.String(),
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
		if isUniqueViolation(err) {
			return itemdomain.ErrItemAlreadyExists
		}
		return err
	})
}

// Update stores a new title and bumps UpdatedAt. A missing row yields
// ErrItemNotFound.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()
	return r.write(ctx, item, false, func(q *db.Queries) error {
		n, err := q.UpdateItemTitle(ctx, db.UpdateItemTitleParams{
			ID:        item.ID,
			OrgID:     item.OrgID,
			Title:     item.Title.String(),
			UpdatedAt: item.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return itemdomain.ErrItemNotFound
		}
		return nil
	})
}

// write runs change and the outbox insert in one transaction, so item.saved
// is recorded exactly when the row is.
func (r *ItemRepository) write(ctx context.Context, item *models.Item, created bool, change func(q *db.Queries) error) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := change(db.New(tx)); err != nil {
			if errors.Is(err, itemdomain.ErrItemAlreadyExists) || errors.Is(err, itemdomain.ErrItemNotFound) {
				return err
			}
			return fmt.Errorf("write item %s: %w", item.ID, err)
		}
		if r.bus == nil {
			return nil
		}
		if err := r.publishSaved(tx, item, created); err != nil {
			return fmt.Errorf("outbox item.saved: %w", err)
		}
		return nil
	})
}

func (r *ItemRepository) publishSaved(tx *sql.Tx, item *models.Item, created bool) error {
	msg, err := savedMessage(item, created)
	if err != nil {
		return err
	}
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return err
	}
	return p.Publish(domainevents.TopicItemSaved, msg)
}

func (r *ItemRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Item, error) {
	row, err := r.read.GetItemByID(ctx, db.GetItemByIDParams{ID: id, OrgID: orgID})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, itemdomain.ErrItemNotFound
	case err != nil:
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return rowToItem(row), nil
}

// FindByOrgID returns one page, newest first, plus the org's total.
func (r *ItemRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	opts = opts.Normalize()
	rows, err := r.read.FindItemsByOrgID(ctx, db.FindItemsByOrgIDParams{
		OrgID:  orgID,
		Limit:  int32(opts.Limit),
		Offset: int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	total, err := r.read.CountItemsByOrgID(ctx, orgID)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	return rowsToItems(rows), int(total), nil
}

// FindByType returns every item of itemType in the org, oldest first.
func (r *ItemRepository) FindByType(ctx context.Context, orgID uuid.UUID, itemType models.ItemType) ([]*models.Item, error) {
	rows, err := r.read.FindItemsByType(ctx, db.FindItemsByTypeParams{OrgID: orgID, ItemType: itemType.String()})
	if err != nil {
		return nil, fmt.Errorf("list %s items: %w", itemType, err)
	}
	return rowsToItems(rows), nil
}

func (r *ItemRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if err := r.read.DeleteItem(ctx, db.DeleteItemParams{ID: id, OrgID: orgID}); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func (r *ItemRepository) Exists(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	ok, err := r.read.ItemExists(ctx, db.ItemExistsParams{ID: id, OrgID: orgID})
	if err != nil {
		return false, fmt.Errorf("item exists %s: %w", id, err)
	}
	return ok, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func savedMessage(item *models.Item, created bool) (*message.Message, error) {
	ev := domainevents.ItemSavedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     item.ID,
		OrgID:      item.OrgID,
		ItemType:   item.Type.String(),
		Title:      item.Title.String(),
		Created:    created,
		CreatedAt:  item.CreatedAt,
		OccurredAt: item.UpdatedAt,
	}
	return events.NewJSONMessage(ev.EventID.String(), ev.Version, ev)
}

func rowToItem(row db.ItemItem) *models.Item {
	return &models.Item{
		ID:        row.ID,
		OrgID:     row.OrgID,
		Type:      models.ItemType(row.ItemType),
		Title:     models.ItemTitle(row.Title),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func rowsToItems(rows []db.ItemItem) []*models.Item {
	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}
	return items
}
