// Package boundary locates individual hand spans inside a raw hand-history
// buffer. Detection tries room-specific headers first and falls back to
// generic structural markers; a buffer with no markers yields an empty result
// rather than an error.
package boundary

import (
	"regexp"
	"strings"
)

// minHandLen guards against marker matches inside trailing noise: anything
// shorter cannot be a complete hand.
const minHandLen = 50

// Span is one detected hand: byte offsets into the original buffer plus the
// trimmed text between them.
type Span struct {
	Start int
	End   int
	Text  string
}

// Room-specific and generic hand headers, tried as one combined multiline
// match. Structural markers live in a separate fallback tier: mixing them
// into the header pass would split every hand at its HOLE CARDS line.
var headerPatterns = []string{
	`(?m)^PokerStars\s+(?:Hand|Game|Zoom\s+Hand)\s*#\d+`,
	`(?m)^Poker\s+Hand\s*#\w+`,
	`(?m)^Game\s+Hand\s*#\d+`,
	`(?m)^Winamax\s+Poker\s*-`,
	`(?m)^888(?:poker|\.pt)\s+Hand\s*#\d+`,
	`(?m)^#Game\s+No\s*:\s*\d+`,
	`(?m)^Hand\s*#\d+`,
	`(?m)^Tournament\s*#\d+.*Hand\s*#\d+`,
}

// Structural markers used only when no room header matched anywhere in the
// buffer (headerless exports).
var structuralPatterns = []string{
	`(?m)^\*\*\*\s*HOLE\s+CARDS\s*\*\*\*`,
	`(?m)^\*\*\*\s*POCKET\s+CARDS\s*\*\*\*`,
	`(?m)^\*\*\*\s*PRE-?FLOP\s*\*\*\*`,
	`(?m)^Table\s+['"].*['"].*\d+-max`,
}

var (
	headerRe     = regexp.MustCompile(`(?i)` + strings.Join(headerPatterns, "|"))
	structuralRe = regexp.MustCompile(`(?i)` + strings.Join(structuralPatterns, "|"))
	starBarRe    = regexp.MustCompile(`(?im)^\*\*\*.*\*\*\*`)
)

// Detect returns the ordered, non-overlapping hand spans of buf. Each span
// runs from one header match to the next (the last runs to the end of the
// buffer). Text before the first marker is discarded. Spans shorter than a
// minimal plausible hand are dropped.
func Detect(buf string) []Span {
	locs := headerRe.FindAllStringIndex(buf, -1)
	if len(locs) == 0 {
		locs = structuralRe.FindAllStringIndex(buf, -1)
	}
	if len(locs) == 0 && strings.Contains(buf, "***") {
		// Last resort: any *** marker line.
		locs = starBarRe.FindAllStringIndex(buf, -1)
	}

	var spans []Span
	for i, loc := range locs {
		start := loc[0]
		end := len(buf)
		if i < len(locs)-1 {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(buf[start:end])
		if len(text) <= minHandLen {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Text: text})
	}
	return spans
}
