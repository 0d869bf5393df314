package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Street-suffix and directional tokens removed during normalization. Removal
// is whole-word only; a suffix token that happens to be a real word elsewhere
// in the address is still removed (known over-merge, see DESIGN.md).
var (
	suffixTokens = map[string]bool{
		"street": true, "st": true,
		"road": true, "rd": true,
		"avenue": true, "ave": true,
		"drive": true, "dr": true,
		"lane": true, "ln": true,
		"court": true, "ct": true,
		"circle": true, "cir": true,
		"boulevard": true, "blvd": true,
		"place": true, "pl": true,
		"way":     true,
		"parkway": true, "pkwy": true,
		"trail": true, "trl": true,
	}
	directionalTokens = map[string]bool{
		"north": true, "south": true, "east": true, "west": true,
		"n": true, "s": true, "e": true, "w": true,
	}

	nonWordRegex    = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeAddress canonicalizes a free-text postal address into the dedup
// key used to group legacy rows: lowercase, strip punctuation, drop street
// suffixes and directionals, collapse whitespace. Purely syntactic; no
// geocoding. Idempotent. Empty input yields "".
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return ""
	}
	addr = nonWordRegex.ReplaceAllString(addr, "")
	addr = multiSpaceRegex.ReplaceAllString(addr, " ")

	fields := strings.Fields(addr)
	kept := fields[:0]
	for _, f := range fields {
		if suffixTokens[f] || directionalTokens[f] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Fingerprint returns a stable hex key for a normalized address, used as the
// unique dedup column on the properties table.
func Fingerprint(addr string) string {
	normalized := NormalizeAddress(addr)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:16])
}
