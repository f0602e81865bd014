// Package normalize canonicalizes raw company identifiers (bare domains or
// full URLs) into comparable host keys. Two identifiers that refer to the
// same host must produce the same key regardless of scheme, "www." prefix,
// casing, or trailing path.
//
// Key is a pure function and idempotent: Key(Key(x)) == Key(x) for every
// valid x. The rest of the engine relies on that property to compare stored
// URL fields against incoming identifiers.
package normalize

import (
	"errors"
	"strings"
)

// ErrInvalidKey reports an identifier that is not host-shaped after
// canonicalization (empty, or without a dot-separated label).
var ErrInvalidKey = errors.New("invalid identifier: not host-shaped")

// Key canonicalizes raw into a lowercase host key:
//
//	strip scheme (http://, https://; case-insensitive)
//	strip everything after the first '/', '?', or '#'
//	lowercase
//	strip a leading "www." label
//
// It returns ErrInvalidKey when the remainder is empty or contains no
// dot-separated label.
func Key(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	lower := strings.ToLower(s)
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(lower, scheme) {
			s = s[len(scheme):]
			break
		}
	}

	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "www.")

	if !LooksLikeHost(s) {
		return "", ErrInvalidKey
	}
	return s, nil
}

// LooksLikeHost reports whether s is host-shaped: non-empty, contains at
// least one interior dot, and has no whitespace. It deliberately does not
// validate against the public suffix list; the store is the authority on
// which hosts exist.
func LooksLikeHost(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	i := strings.IndexByte(s, '.')
	return i > 0 && i < len(s)-1
}
