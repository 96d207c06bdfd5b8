package generation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

type RepairStage string

const (
	// RepairStagePartialCards recovered complete card objects from a broken cards array.
	RepairStagePartialCards RepairStage = "partial_cards"
	// RepairStageDocument repaired the response as a whole document.
	RepairStageDocument RepairStage = "document"
)

type RepairResult struct {
	Cards []any
	Stage RepairStage
}

var (
	cardsArrayStart = regexp.MustCompile(`"cards"\s*:\s*\[`)
	cardsArrayEnd   = regexp.MustCompile(`\]\s*\}?\s*(?:` + "```" + `)?\s*$`)
	blockBoundary   = regexp.MustCompile(`\}\s*,\s*\{`)
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
)

// Repair tries to recover cards from a completion whose content did not parse.
// It first salvages complete card objects from the cards array, then falls
// back to repairing the whole document. ok is false when nothing parseable
// could be recovered.
func Repair(raw string) (*RepairResult, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	if cards := extractPartialCards(raw); len(cards) > 0 {
		return &RepairResult{Cards: cards, Stage: RepairStagePartialCards}, true
	}

	if cards, ok := repairDocument(raw); ok {
		return &RepairResult{Cards: cards, Stage: RepairStageDocument}, true
	}

	return nil, false
}

func extractPartialCards(raw string) []any {
	loc := cardsArrayStart.FindStringIndex(raw)
	if loc == nil {
		return nil
	}

	// loc[1]-1 is the opening bracket.
	cards, closed := decodeCardStream(raw[loc[1]-1:])
	if !closed {
		// The decoder gave up early; complete cards after the break are
		// only reachable block by block.
		cards = mergeUsableCards(cards, splitCardBlocks(raw[loc[1]:]))
	}
	if hasUsableCard(cards) {
		return cards
	}
	return nil
}

// decodeCardStream reads array elements one at a time and stops at the first
// element that does not decode, keeping everything before it. closed reports
// whether the array's closing bracket was reached.
func decodeCardStream(s string) (cards []any, closed bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('[') {
		return nil, false
	}

	for dec.More() {
		var v any
		if err := dec.Decode(&v); err != nil {
			return cards, false
		}
		cards = append(cards, v)
	}

	tok, err = dec.Token()
	return cards, err == nil && tok == json.Delim(']')
}

// mergeUsableCards appends the usable cards of extra that base does not
// already hold, keyed by front and back.
func mergeUsableCards(base, extra []any) []any {
	seen := make(map[string]struct{}, len(base))
	for _, c := range base {
		if key, ok := usableCardKey(c); ok {
			seen[key] = struct{}{}
		}
	}
	for _, c := range extra {
		key, ok := usableCardKey(c)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		base = append(base, c)
	}
	return base
}

// splitCardBlocks handles arrays the decoder gives up on early, such as a
// malformed element followed by good ones.
func splitCardBlocks(body string) []any {
	body = cardsArrayEnd.ReplaceAllString(strings.TrimSpace(body), "")
	if body == "" {
		return nil
	}

	blocks := blockBoundary.Split(body, -1)
	var cards []any
	for i, block := range blocks {
		block = strings.TrimSpace(block)
		if !strings.HasPrefix(block, "{") {
			block = "{" + block
		}
		if !strings.HasSuffix(block, "}") {
			block += "}"
		}
		block = trailingComma.ReplaceAllString(block, "$1")

		last := i == len(blocks)-1
		if last && (oddQuotes(block) || !balanced(block)) {
			continue
		}

		var v any
		dec := json.NewDecoder(strings.NewReader(block))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			continue
		}
		cards = append(cards, v)
	}
	return cards
}

// repairDocument succeeds only when the repaired document holds at least one
// usable card; an empty or card-less document leaves the parse error standing.
func repairDocument(raw string) ([]any, bool) {
	if repaired, err := jsonrepair.JSONRepair(raw); err == nil {
		if cards, ok := cardsFromDocument(repaired); ok {
			return cards, true
		}
	}

	return cardsFromDocument(balanceDocument(raw))
}

// balanceDocument closes whatever a truncated response left open.
func balanceDocument(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "{["); i >= 0 {
		s = s[i:]
	} else {
		return ""
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))

	inString, stack := scan(s)
	if inString {
		s += `"`
	}

	s = strings.TrimRight(s, " \t\r\n")
	switch {
	case strings.HasSuffix(s, ","):
		s = strings.TrimSuffix(s, ",")
	case strings.HasSuffix(s, ":"):
		s += "null"
	}

	var b strings.Builder
	b.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}

	return trailingComma.ReplaceAllString(b.String(), "$1")
}

// cardsFromDocument accepts either {"cards": [...]} or a bare array of cards.
func cardsFromDocument(doc string) ([]any, bool) {
	if strings.TrimSpace(doc) == "" {
		return nil, false
	}

	var v any
	dec := json.NewDecoder(strings.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}

	var cards []any
	switch t := v.(type) {
	case map[string]any:
		cards, _ = t["cards"].([]any)
	case []any:
		cards = t
	}
	// A repaired list of loose strings is prose, not cards.
	if !hasUsableCard(cards) {
		return nil, false
	}
	return cards, true
}

func hasUsableCard(cards []any) bool {
	for _, c := range cards {
		if _, ok := usableCardKey(c); ok {
			return true
		}
	}
	return false
}

func usableCardKey(c any) (string, bool) {
	obj, ok := c.(map[string]any)
	if !ok {
		return "", false
	}
	front, _ := obj["front"].(string)
	back, _ := obj["back"].(string)
	front, back = strings.TrimSpace(front), strings.TrimSpace(back)
	if front == "" || back == "" {
		return "", false
	}
	return front + "\n" + back, true
}

// scan reports whether s ends inside a string literal and which brackets are
// still open, ignoring anything inside strings.
func scan(s string) (inString bool, stack []byte) {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return inString, stack
}

func oddQuotes(s string) bool {
	count := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			count++
		}
	}
	return count%2 == 1
}

func balanced(s string) bool {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inString
}
