package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/titleguard/pkg/app"
	"github.com/ghuser/titleguard/services/item/application/handlers"
	appsvcs "github.com/ghuser/titleguard/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a))
}

// Mount registers the item context's handlers over svcs.
func Mount(r chi.Router, svcs *appsvcs.Services) {
	items := handlers.NewGetItemHandler(svcs)
	titles := handlers.NewTitleHandler(svcs)
	r.Group(func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
			r.Get("/", items.List)
			r.Get("/{id}", items.Get)
			r.Put("/{id}", handlers.NewPutItemHandler(svcs).Execute)
			r.Delete("/{id}", items.Delete)
		})
		r.Post("/titles/check", titles.Check)
		r.Get("/messages", titles.Messages)
	})
}
