package shortcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/teerapatch/linklytics/pkg/core/domain"
)

func TestGenerate(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(code) != Length {
			t.Errorf("expected %d chars, got %q", Length, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Errorf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 54^8 space should not collide
	if len(seen) != 100 {
		t.Errorf("expected 100 distinct codes, got %d", len(seen))
	}
}

func TestAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, c := range "0O1lIo" {
		if strings.ContainsRune(Alphabet, c) {
			t.Errorf("alphabet contains ambiguous glyph %q", c)
		}
	}
}

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		want  error
	}{
		{"valid simple", "my-link", nil},
		{"valid with underscore", "my_link_42", nil},
		{"valid minimum length", "abc", nil},
		{"valid maximum length", strings.Repeat("a", 30), nil},
		{"too short", "ab", domain.ErrAliasInvalid},
		{"too long", strings.Repeat("a", 31), domain.ErrAliasInvalid},
		{"space", "my link", domain.ErrAliasInvalid},
		{"slash", "my/link", domain.ErrAliasInvalid},
		{"unicode", "lïnk", domain.ErrAliasInvalid},
		{"reserved lowercase", "admin", domain.ErrAliasReserved},
		{"reserved uppercase", "ADMIN", domain.ErrAliasReserved},
		{"reserved mixed case", "Login", domain.ErrAliasReserved},
		{"reserved system word", "null", domain.ErrAliasReserved},
		// Length is checked before the reserved set
		{"short reserved word", "qr", domain.ErrAliasInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlias(tt.alias)
			if !errors.Is(err, tt.want) && err != tt.want {
				t.Errorf("ValidateAlias(%q) = %v, want %v", tt.alias, err, tt.want)
			}
		})
	}
}
