package alert

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Namespace prefixes every fingerprint so suppression entries cannot
// collide with unrelated keys sharing the store.
const Namespace = "alert:"

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 16

// maxDescription bounds how much of the description participates in
// the fingerprint.
const maxDescription = 200

// digitPlaceholder replaces each maximal run of digits so alerts that
// differ only in counts, ids or timestamps collapse to one key.
const digitPlaceholder = 'n'

// Fingerprint derives the deterministic suppression key for an alert:
// a namespace tag plus a fixed-length SHA-256 prefix over the
// environment, type, component, severity and normalized description.
func Fingerprint(a Alert) string {
	basis := strings.Join([]string{
		a.Environment,
		a.Type,
		a.Component,
		a.Severity,
		normalizeDescription(a.Description),
	}, ":")
	sum := sha256.Sum256([]byte(basis))
	return Namespace + hex.EncodeToString(sum[:])[:fingerprintLen]
}

// normalizeDescription canonicalizes the free-text part of the
// fingerprint basis: the first 200 characters, lower-cased, with digit
// runs collapsed to a placeholder and everything outside [a-z0-9\s]
// stripped.
func normalizeDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) > maxDescription {
		runes = runes[:maxDescription]
	}

	var b strings.Builder
	b.Grow(len(runes))
	inDigits := false
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			if !inDigits {
				b.WriteRune(digitPlaceholder)
				inDigits = true
			}
			continue
		}
		inDigits = false

		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
