package session

import (
	"net/url"
	"strings"
)

// Payload separators: byte 0x1E separates pairs, byte
// 0x1F separates key from value within a pair. Percent-encoding keys and
// values guarantees neither byte can appear literally in encoded form.
const (
	pairDelimiter = "\x1E"
	kvDelimiter   = "\x1F"

	// maxPayloadBytes bounds total encoded payload length.
	maxPayloadBytes = 4096
)

// encodeKV percent-encodes a key or value: URL-safe characters pass
// through unchanged, a space becomes '+', everything else becomes
// %XX. net/url.QueryEscape already implements exactly this rule set
// (letters, digits, '-', '_', '.', '~' pass through) so there is no reason
// to hand-roll it; decodeKV's QueryUnescape turns '+' back into a space.
func encodeKV(s string) string {
	return url.QueryEscape(s)
}

func decodeKV(s string) string {
	// The store only ever decodes strings it encoded itself, so a
	// malformed escape here would mean internal corruption, not untrusted
	// input; fall back to the raw string rather than propagating an error
	// through an accessor that cannot fail for payloads this store wrote.
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// splitPairs decomposes a payload into its encoded-key/encoded-value pairs,
// preserving order. Malformed pairs (no kvDelimiter) are skipped.
func splitPairs(payload string) []pair {
	if payload == "" {
		return nil
	}
	parts := strings.Split(payload, pairDelimiter)
	pairs := make([]pair, 0, len(parts))
	for _, p := range parts {
		k, v, ok := strings.Cut(p, kvDelimiter)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{key: k, val: v})
	}
	return pairs
}

type pair struct {
	key string
	val string
}

func joinPairs(pairs []pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + kvDelimiter + p.val
	}
	return strings.Join(parts, pairDelimiter)
}

// setValue returns payload with encodedKey's value set to encodedVal,
// removing any existing pair for that key and appending the new pair at
// the end, and whether the result fits within maxPayloadBytes.
func setValue(payload, encodedKey, encodedVal string) (string, bool) {
	pairs := splitPairs(payload)
	for i := range pairs {
		if pairs[i].key == encodedKey {
			pairs = append(pairs[:i], pairs[i+1:]...)
			break
		}
	}
	pairs = append(pairs, pair{key: encodedKey, val: encodedVal})
	candidate := joinPairs(pairs)
	if len(candidate) > maxPayloadBytes {
		return payload, false
	}
	return candidate, true
}

// getValue returns the decoded value for encodedKey, or ok=false.
func getValue(payload, encodedKey string) (string, bool) {
	for _, p := range splitPairs(payload) {
		if p.key == encodedKey {
			return decodeKV(p.val), true
		}
	}
	return "", false
}

// removeValue excises the first pair matching encodedKey, if present.
func removeValue(payload, encodedKey string) string {
	pairs := splitPairs(payload)
	for i, p := range pairs {
		if p.key == encodedKey {
			pairs = append(pairs[:i], pairs[i+1:]...)
			break
		}
	}
	return joinPairs(pairs)
}
