package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates an item with the same unique constraint already exists.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidItemTitle indicates the item title violates structural constraints (length).
	ErrInvalidItemTitle = errors.New("invalid item title")

	// ErrInvalidItemType indicates an unknown item type name.
	ErrInvalidItemType = errors.New("invalid item type")

	// ErrInvalidTitleCharacters indicates a Component title contains characters
	// outside the allowed Basic Latin whitelist.
	ErrInvalidTitleCharacters = errors.New("title contains invalid characters")

	// ErrTitleRejected indicates a guarded save was blocked and a diagnostic was
	// posted to the message center instead.
	ErrTitleRejected = errors.New("save blocked by title validation")

	// ErrCommandUnavailable indicates the save command is not available for the selection.
	ErrCommandUnavailable = errors.New("command not available")

	// ErrCommandDisabled indicates the save command is available but currently disabled.
	ErrCommandDisabled = errors.New("command disabled")
)
