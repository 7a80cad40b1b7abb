package models

import (
	"fmt"
	"unicode/utf8"
)

// ItemTitle is a value object representing a structurally valid item title.
// Encapsulates length rules only: 1 <= characters <= 255. Character-set rules
// for Components live in the domain services package.
type ItemTitle string

const (
	minItemTitleLength = 1
	maxItemTitleLength = 255
)

// NewItemTitle constructs an ItemTitle or returns an error if constraints are violated.
func NewItemTitle(s string) (ItemTitle, error) {
	n := utf8.RuneCountInString(s)
	if n < minItemTitleLength {
		return "", fmt.Errorf("item title must be at least %d character", minItemTitleLength)
	}
	if n > maxItemTitleLength {
		return "", fmt.Errorf("item title must not exceed %d characters", maxItemTitleLength)
	}
	return ItemTitle(s), nil
}

// String returns the underlying string value.
func (t ItemTitle) String() string {
	return string(t)
}
