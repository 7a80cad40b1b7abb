// Package commands defines the authoring-tool command contract and the title
// guard that stands in for Save.
package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/titleguard/services/item/domain/models"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

// Selection identifies the items a command is invoked on, scoped to one org.
type Selection struct {
	OrgID   uuid.UUID
	ItemIDs []uuid.UUID
}

// Single returns the only selected item ID, or false when zero or several
// items are selected.
func (s Selection) Single() (uuid.UUID, bool) {
	if len(s.ItemIDs) != 1 {
		return uuid.Nil, false
	}
	return s.ItemIDs[0], true
}

// Pipeline carries per-invocation state along a chain of commands. Guarding
// commands forward it untouched.
type Pipeline struct {
	Origin string // what triggered the command, e.g. "api"
	Values map[string]string
}

// Result is whatever the executed command produced. Its concrete type belongs
// to that command.
type Result any

// Command is a host command. Availability decides whether it is offered for a
// selection at all; enablement decides whether it can run right now.
type Command interface {
	IsAvailable(ctx context.Context, sel Selection) bool
	IsEnabled(ctx context.Context, sel Selection) bool
	Execute(ctx context.Context, sel Selection, pipeline *Pipeline) (Result, error)
}

// ItemSource returns the item currently open on the editing surface, or nil
// when nothing is open.
type ItemSource interface {
	CurrentItem(ctx context.Context) domainsvcs.TitledItem
}

// Notifier is the user-visible message surface. Delivery is fire-and-forget:
// implementations handle their own failures.
type Notifier interface {
	RegisterError(ctx context.Context, msg models.ValidationMessage)
}
