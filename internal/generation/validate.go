package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"strings"
)

const (
	maxFrontRunes     = 200
	maxBackRunes      = 500
	truncatedBackBody = 450
	ellipsis          = "..."
)

// ValidatedFlashcard is a model-proposed card that passed validation.
type ValidatedFlashcard struct {
	Front  string
	Back   string
	TagIDs []int64
}

// Fingerprint identifies a card by content. Case and whitespace differences
// produce the same fingerprint.
func (f ValidatedFlashcard) Fingerprint() string {
	return Fingerprint(f.Front, f.Back)
}

func Fingerprint(front, back string) string {
	normalized := normalizeForFingerprint(front) + "\n" + normalizeForFingerprint(back)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeForFingerprint(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ValidateFlashcard returns nil unless raw is an object with non-empty string
// front and back. Oversized fields are cut down rather than rejected.
func ValidateFlashcard(raw any) *ValidatedFlashcard {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	front, ok := obj["front"].(string)
	if !ok {
		return nil
	}
	back, ok := obj["back"].(string)
	if !ok {
		return nil
	}

	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		return nil
	}

	if r := []rune(front); len(r) > maxFrontRunes {
		front = string(r[:maxFrontRunes])
	}
	if r := []rune(back); len(r) > maxBackRunes {
		back = string(r[:truncatedBackBody]) + ellipsis
	}

	return &ValidatedFlashcard{
		Front:  front,
		Back:   back,
		TagIDs: SanitizeTagIDs(obj["tag_ids"]),
	}
}

// SanitizeTagIDs keeps positive integers from raw in first-seen order without
// duplicates. Anything that is not a list yields an empty slice.
func SanitizeTagIDs(raw any) []int64 {
	ids := []int64{}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []int64:
		for _, id := range v {
			items = append(items, id)
		}
	case []int:
		for _, id := range v {
			items = append(items, id)
		}
	default:
		return ids
	}

	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		id, ok := positiveInt(item)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func positiveInt(v any) (int64, bool) {
	var id int64
	switch n := v.(type) {
	case int:
		id = int64(n)
	case int32:
		id = int64(n)
	case int64:
		id = n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n >= math.MaxInt64 {
			return 0, false
		}
		id = int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, false
		}
		id = parsed
	default:
		return 0, false
	}
	return id, id > 0
}
