// Package shortcode generates random short codes and validates
// user-supplied custom aliases.
package shortcode

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	"github.com/teerapatch/linklytics/pkg/core/domain"
)

// Alphabet excludes visually ambiguous glyphs (0/O/o, 1/l/I/L).
const Alphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// Length of generated codes. At len(Alphabet)^8 combinations, collisions
// come from concurrent duplicates, not alphabet exhaustion.
const Length = 8

// Custom alias bounds. Generated codes always satisfy them.
const (
	MinLength = 3
	MaxLength = 30
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Reserved words that can't be used as custom aliases: routing prefixes,
// static asset paths, legal pages and system words. Matched case-insensitively.
var reserved = map[string]struct{}{
	// Routes
	"api": {}, "auth": {}, "login": {}, "register": {}, "dashboard": {},
	"settings": {}, "health": {}, "healthz": {}, "status": {}, "admin": {},
	"help": {}, "support": {}, "card": {},
	// Static assets
	"static": {}, "assets": {}, "public": {}, "images": {}, "css": {}, "js": {},
	// Legal pages
	"about": {}, "terms": {}, "privacy": {}, "contact": {},
	// Features
	"analytics": {}, "stats": {}, "profile": {}, "links": {}, "qr": {},
	// System words
	"null": {}, "undefined": {}, "true": {}, "false": {}, "new": {}, "delete": {},
}

// Generate returns a random code of Length characters drawn uniformly from
// Alphabet. crypto/rand keeps codes unguessable; sequential or time-derived
// codes would let links be enumerated.
func Generate() (string, error) {
	b := make([]byte, Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// ValidateAlias checks a custom alias against the shape rules and the
// reserved-word set. Rules are checked in order and the first failure wins:
// length, charset, reserved word.
func ValidateAlias(alias string) error {
	if len(alias) < MinLength || len(alias) > MaxLength {
		return domain.ErrAliasInvalid
	}
	if !aliasPattern.MatchString(alias) {
		return domain.ErrAliasInvalid
	}
	if _, ok := reserved[strings.ToLower(alias)]; ok {
		return domain.ErrAliasReserved
	}
	return nil
}
