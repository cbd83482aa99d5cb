package domain

import "errors"

// Domain errors for control flow. Anything not listed here is an
// unclassified storage failure and propagates unchanged.
var (
	ErrNotFound         = errors.New("link not found")
	ErrForbidden        = errors.New("not the owner of this link")
	ErrAliasInvalid     = errors.New("alias must be 3-30 characters of letters, numbers, hyphens and underscores")
	ErrAliasReserved    = errors.New("this alias is reserved")
	ErrAliasTaken       = errors.New("alias already taken")
	ErrGenerationFailed = errors.New("failed to generate a unique short code")

	// ErrConflict is returned by repositories on a uniqueness violation.
	// Services translate it to ErrAliasTaken or absorb it into a retry.
	ErrConflict = errors.New("short code already exists")
)

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err indicates a uniqueness conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
