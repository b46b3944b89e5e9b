package tutor

import "strings"

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE SPLITTER
// Splits a raw model reply into the student-facing text and the state block.
// ══════════════════════════════════════════════════════════════════════════════

// SplitResponse separates the raw teacher reply on the first occurrence of
// the state delimiter. When the delimiter is absent the whole reply is
// display text and the delta is empty; the parser treats an empty delta as
// invalid, which routes the turn to the fallback synthesizer.
func SplitResponse(raw string) (displayText, deltaText string) {
	before, after, found := strings.Cut(raw, StateDelimiter)
	if !found {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(before), stripCodeFences(after)
}

// stripCodeFences removes markdown code-fence markers that models sometimes
// wrap around the JSON despite instructions.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
