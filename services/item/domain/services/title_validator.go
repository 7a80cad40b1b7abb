// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond the domain layer and x/text.
package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

// WhitelistExpression is the allowed-character rule as shown to authors.
// It covers space through DEL in Basic Latin except '/' (U+002F) and '\' (U+005C).
const WhitelistExpression = `/^[\u0020-\u002e\u0030-\u005b\u005d-\u007f]*$/`

// InvalidTitleMessageTitle is the fixed short label of every title diagnostic.
const InvalidTitleMessageTitle = "Invalid Component Title"

var whitelistRe = regexp.MustCompile(`^[\x{0020}-\x{002e}\x{0030}-\x{005b}\x{005d}-\x{007f}]*$`)

// TitledItem is the part of a content item the title guard reads.
type TitledItem interface {
	ItemTypeName() string
	TitleValue() string
}

// IsAllowed reports whether r is inside the title whitelist.
func IsAllowed(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x2e:
		return true
	case r >= 0x30 && r <= 0x5b:
		return true
	case r >= 0x5d && r <= 0x7f:
		return true
	default:
		return false
	}
}

// HasInvalidCharacters reports whether title holds at least one character
// outside the whitelist. The empty title has nothing to validate.
func HasInvalidCharacters(title string) bool {
	if title == "" {
		return false
	}
	return !whitelistRe.MatchString(title)
}

// FindInvalidCharacters returns every offending character of title in order of
// occurrence, duplicates included. Bytes that are not valid UTF-8 are reported
// one byte at a time.
func FindInvalidCharacters(title string) []string {
	if !HasInvalidCharacters(title) {
		return []string{}
	}

	found := make([]string, 0, 4)
	for i := 0; i < len(title); {
		r, size := utf8.DecodeRuneInString(title[i:])
		if r == utf8.RuneError || !IsAllowed(r) {
			found = append(found, title[i:i+size])
		}
		i += size
	}
	return found
}

// BuildSuggestedTitle returns a cosmetic replacement for title: canonical
// decomposition, combining diacritical marks (U+0300–U+036F) dropped, then the
// first occurrence of charsToStrip joined into one literal removed.
//
// The joined literal only matches when the offending characters sit next to
// each other after decomposition, so the suggestion is not guaranteed to pass
// the whitelist.
func BuildSuggestedTitle(title string, charsToStrip []string) string {
	decomposed := norm.NFD.String(title)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036f {
			continue
		}
		b.WriteRune(r)
	}
	suggested := b.String()

	if literal := strings.Join(charsToStrip, ""); literal != "" {
		suggested = strings.Replace(suggested, literal, "", 1)
	}
	return suggested
}

// ExtractTitle returns the item's title when the item is a Component.
func ExtractTitle(item TitledItem) (string, bool) {
	if item == nil {
		return "", false
	}
	if item.ItemTypeName() != models.ItemTypeComponent.String() {
		return "", false
	}
	return item.TitleValue(), true
}

// ComposeDiagnostic builds the user-facing report for a title that failed the
// whitelist. Callers are expected to have checked HasInvalidCharacters first.
func ComposeDiagnostic(title string) models.ValidationMessage {
	offending := FindInvalidCharacters(title)
	offendingList := strings.Join(offending, ",")
	suggested := BuildSuggestedTitle(title, offending)

	plural := " an invalid character."
	if len(offending) > 1 {
		plural = " invalid characters."
	}

	return models.ValidationMessage{
		MessageTitle: InvalidTitleMessageTitle,
		MessageBody: "The name of the component contains" + plural +
			"  Remove or change " + offendingList + " and try saving again.",
		MessageDetail: "The characters " + offendingList + " are not allowed. \n" +
			"Try changing \"" + title + "\" to \"" + suggested + "\". \n" +
			"Characters must match the expression " + WhitelistExpression + " .",
	}
}

// ValidateTitle returns an error wrapping ErrInvalidTitleCharacters that lists
// the offending characters, or nil when title passes the whitelist.
func ValidateTitle(title string) error {
	offending := FindInvalidCharacters(title)
	if len(offending) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", itemdomain.ErrInvalidTitleCharacters, strings.Join(offending, ","))
}
