package commands

import (
	"context"

	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

// ValidateTitleCommand is a drop-in substitute for Save. It blocks the save of
// a Component whose title holds characters outside the whitelist and reports a
// diagnostic instead; every other case is delegated to the wrapped command.
type ValidateTitleCommand struct {
	save     Command
	source   ItemSource
	notifier Notifier
}

var _ Command = (*ValidateTitleCommand)(nil)

// NewValidateTitleCommand returns a guard around save that reads the current
// item from source and reports rejections to notifier.
func NewValidateTitleCommand(save Command, source ItemSource, notifier Notifier) *ValidateTitleCommand {
	return &ValidateTitleCommand{save: save, source: source, notifier: notifier}
}

// IsAvailable mirrors the wrapped command.
func (c *ValidateTitleCommand) IsAvailable(ctx context.Context, sel Selection) bool {
	return c.save.IsAvailable(ctx, sel)
}

// IsEnabled mirrors the wrapped command.
func (c *ValidateTitleCommand) IsEnabled(ctx context.Context, sel Selection) bool {
	return c.save.IsEnabled(ctx, sel)
}

// Execute validates the current Component title. On failure the diagnostic
// goes to the notifier and (nil, nil) is returned without saving. Otherwise the
// wrapped command's result and error are returned unchanged.
func (c *ValidateTitleCommand) Execute(ctx context.Context, sel Selection, pipeline *Pipeline) (Result, error) {
	title, ok := domainsvcs.ExtractTitle(c.source.CurrentItem(ctx))
	if ok && domainsvcs.HasInvalidCharacters(title) {
		c.notifier.RegisterError(ctx, domainsvcs.ComposeDiagnostic(title))
		return nil, nil
	}
	return c.save.Execute(ctx, sel, pipeline)
}
