package services

import (
	"github.com/ghuser/titleguard/pkg/app"
	"github.com/ghuser/titleguard/pkg/cache"
	"github.com/ghuser/titleguard/pkg/config"
	"github.com/ghuser/titleguard/services/item/infrastructure/notify"
	"github.com/ghuser/titleguard/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item     *ItemService
	Messages *notify.MessageCenter

	// Production masks internal error messages in HTTP responses.
	Production bool
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewItemRepository(a.Db, a.EventBus)
	itemCache := cache.NewItemCache(a.Redis, a.Config.ItemCacheTTL)
	return &Services{
		Item:       NewItemService(repo, itemCache, a.Metrics, a.Logger),
		Messages:   notify.NewMessageCenter(a.MessageStore(), a.EventBus, a.Metrics, a.Logger),
		Production: a.Config.Environment == config.EnvProduction,
	}
}
