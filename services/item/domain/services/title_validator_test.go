package services

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	itemdomain "github.com/ghuser/titleguard/services/item/domain"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

const (
	eAcute       = "\u00e9" // precomposed
	nTilde       = "\u00f1"
	uAcute       = "\u00fa"
	omega        = "\u03a9" // no canonical decomposition
	grinningFace = "\U0001F600"
)

func TestIsAllowed(t *testing.T) {
	allowed := []rune{' ', '!', '-', '.', '0', '9', ':', '@', 'A', 'Z', '[', ']', '^', '_', '`', 'a', 'z', '{', '~', 0x7f}
	for _, r := range allowed {
		if !IsAllowed(r) {
			t.Errorf("IsAllowed(%U) = false, want true", r)
		}
	}

	rejected := []rune{'/', '\\', 0x00, '\t', '\n', 0x1f, 0x80, 0xe9, 0x301, 0x3a9, 0x1F600}
	for _, r := range rejected {
		if IsAllowed(r) {
			t.Errorf("IsAllowed(%U) = true, want false", r)
		}
	}
}

func TestIsAllowed_MatchesWhitelistAcrossBasicLatin(t *testing.T) {
	for r := rune(0); r <= 0xff; r++ {
		want := (r >= 0x20 && r <= 0x2e) || (r >= 0x30 && r <= 0x5b) || (r >= 0x5d && r <= 0x7f)
		if got := IsAllowed(r); got != want {
			t.Fatalf("IsAllowed(%U) = %v, want %v", r, got, want)
		}
		if again := IsAllowed(r); again != want {
			t.Fatalf("IsAllowed(%U) changed between calls", r)
		}
		if got := HasInvalidCharacters(string(r)); got == want {
			t.Fatalf("HasInvalidCharacters(%q) = %v, disagrees with IsAllowed", string(r), got)
		}
	}
}

func TestHasInvalidCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"plain title", "Valid Title 123", false},
		{"punctuation", "Item-Name_123!@#.[]{}~", false},
		{"DEL is allowed", "Name\x7f", false},
		{"forward slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"precomposed accent", "caf" + eAcute, true},
		{"greek", omega + "mega", true},
		{"emoji", "hi " + grinningFace, true},
		{"tab", "a\tb", true},
		{"invalid utf-8", "a\xffb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasInvalidCharacters(tt.input); got != tt.want {
				t.Fatalf("HasInvalidCharacters(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindInvalidCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"clean title", "Valid Title 123", []string{}},
		{"empty", "", []string{}},
		{"single accent", "caf" + eAcute, []string{eAcute}},
		{"slashes in order", `a/b\c`, []string{"/", `\`}},
		{"duplicates preserved", "a//b", []string{"/", "/"}},
		{"mixed order", nTilde + "and" + uAcute, []string{nTilde, uAcute}},
		{"astral character kept whole", "hi" + grinningFace, []string{grinningFace}},
		{"invalid byte reported alone", "a\xffb", []string{"\xff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindInvalidCharacters(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FindInvalidCharacters(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildSuggestedTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		strip []string
		want  string
	}{
		{"accent stripped by decomposition", "caf" + eAcute, []string{eAcute}, "cafe"},
		{"several accents", nTilde + "and" + uAcute, []string{nTilde, uAcute}, "nandu"},
		{"contiguous offenders removed", `a/\b`, []string{"/", `\`}, "ab"},
		{"non-contiguous offenders left in place", `a/b\c`, []string{"/", `\`}, `a/b\c`},
		{"only first run removed", "a//b//c", []string{"/", "/"}, "ab//c"},
		{"undecomposable character removed", omega + "mega", []string{omega}, "mega"},
		{"nothing to strip", "Plain", nil, "Plain"},
		{"combining marks already decomposed", "e\u0301t\u0301e", []string{"\u0301", "\u0301"}, "ete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSuggestedTitle(tt.title, tt.strip); got != tt.want {
				t.Fatalf("BuildSuggestedTitle(%q, %q) = %q, want %q", tt.title, tt.strip, got, tt.want)
			}
		})
	}
}

type stubItem struct {
	typeName string
	title    string
}

func (s stubItem) ItemTypeName() string { return s.typeName }
func (s stubItem) TitleValue() string   { return s.title }

func TestExtractTitle(t *testing.T) {
	t.Run("component returns title", func(t *testing.T) {
		title, ok := ExtractTitle(stubItem{typeName: "Component", title: "Hello"})
		if !ok || title != "Hello" {
			t.Fatalf("expected (%q, true), got (%q, %v)", "Hello", title, ok)
		}
	})

	t.Run("folder is skipped", func(t *testing.T) {
		if _, ok := ExtractTitle(stubItem{typeName: "Folder", title: "a/b"}); ok {
			t.Fatal("expected no title for Folder")
		}
	})

	t.Run("nil item is skipped", func(t *testing.T) {
		if _, ok := ExtractTitle(nil); ok {
			t.Fatal("expected no title for nil item")
		}
	})

	t.Run("typed nil aggregate is skipped", func(t *testing.T) {
		var item *models.Item
		if _, ok := ExtractTitle(item); ok {
			t.Fatal("expected no title for nil *models.Item")
		}
	})

	t.Run("aggregate component", func(t *testing.T) {
		item := &models.Item{Type: models.ItemTypeComponent, Title: "Banner"}
		title, ok := ExtractTitle(item)
		if !ok || title != "Banner" {
			t.Fatalf("expected (%q, true), got (%q, %v)", "Banner", title, ok)
		}
	})
}

func TestComposeDiagnostic(t *testing.T) {
	t.Run("single accented character", func(t *testing.T) {
		title := "caf" + eAcute
		msg := ComposeDiagnostic(title)

		if msg.MessageTitle != "Invalid Component Title" {
			t.Fatalf("unexpected title: %q", msg.MessageTitle)
		}
		wantBody := "The name of the component contains an invalid character.  Remove or change " + eAcute + " and try saving again."
		if msg.MessageBody != wantBody {
			t.Fatalf("body:\n got %q\nwant %q", msg.MessageBody, wantBody)
		}
		wantDetail := "The characters " + eAcute + " are not allowed. \n" +
			"Try changing \"" + title + "\" to \"cafe\". \n" +
			"Characters must match the expression " + WhitelistExpression + " ."
		if msg.MessageDetail != wantDetail {
			t.Fatalf("detail:\n got %q\nwant %q", msg.MessageDetail, wantDetail)
		}
	})

	t.Run("two different characters use plural", func(t *testing.T) {
		msg := ComposeDiagnostic(`a/b\c`)
		if !strings.Contains(msg.MessageBody, "contains invalid characters.") {
			t.Fatalf("expected plural wording, got %q", msg.MessageBody)
		}
		if !strings.Contains(msg.MessageBody, `Remove or change /,\ and try`) {
			t.Fatalf("expected comma separated list, got %q", msg.MessageBody)
		}
		if !strings.Contains(msg.MessageDetail, `to "a/b\c"`) {
			t.Fatalf("expected unchanged suggestion for non-contiguous offenders, got %q", msg.MessageDetail)
		}
	})

	t.Run("repeated character counts each occurrence", func(t *testing.T) {
		msg := ComposeDiagnostic("a//b")
		if !strings.Contains(msg.MessageBody, "contains invalid characters.") {
			t.Fatalf("expected plural wording, got %q", msg.MessageBody)
		}
		if !strings.Contains(msg.MessageBody, "Remove or change /,/ and") {
			t.Fatalf("expected duplicate listed twice, got %q", msg.MessageBody)
		}
	})

	t.Run("whitelist rule is restated", func(t *testing.T) {
		msg := ComposeDiagnostic("x/")
		if !strings.HasSuffix(msg.MessageDetail, "/^[\\u0020-\\u002e\\u0030-\\u005b\\u005d-\\u007f]*$/ .") {
			t.Fatalf("unexpected detail suffix: %q", msg.MessageDetail)
		}
	})
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("Valid Title 123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateTitle(""); err != nil {
		t.Fatalf("empty title must pass, got %v", err)
	}

	err := ValidateTitle(`a/b\c`)
	if !errors.Is(err, itemdomain.ErrInvalidTitleCharacters) {
		t.Fatalf("expected ErrInvalidTitleCharacters, got %v", err)
	}
	if !strings.HasSuffix(err.Error(), `: /,\`) {
		t.Fatalf("expected offending list in error, got %q", err.Error())
	}
}
