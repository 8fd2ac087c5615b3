// Package textutil provides shared text helpers for hand-history parsing:
// amount normalization across room locales, card parsing, player-name
// cleanup and timestamp extraction.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyRe  = regexp.MustCompile(`[$€£¥₹¢]`)
	bracketRe   = regexp.MustCompile(`\s*\[.*?\]`)
	parenRe     = regexp.MustCompile(`\s*\(.*?\)`)
	cardRe      = regexp.MustCompile(`(?i)[AKQJT2-9][schd]`)
	bountyRe    = regexp.MustCompile(`(?i)\$?([0-9][0-9,. ]*)\s+bounty`)
	isoTimeRe   = regexp.MustCompile(`(\d{4})[-/](\d{2})[-/](\d{2})\s+(\d{2}:\d{2}:\d{2})`)
	euroTimeRe  = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}:\d{2}:\d{2})`)
	time888Re   = regexp.MustCompile(`\*\*\*\s+(\d{2})\s+(\d{2})\s+(\d{4})\s+(\d{2}:\d{2}:\d{2})`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// CleanAmount normalizes a monetary amount string to a float. It strips
// currency symbols, whitespace and wrapping parentheses, then disambiguates
// thousands vs decimal separators: when both '.' and ',' appear the last one
// wins as the decimal separator, so "1.500,00" is 1500.00 and "1,500.00" is
// also 1500.00. A lone comma followed by at most two digits is a decimal
// separator ("1500,00"), otherwise a thousands separator ("1,500").
// Returns (0, false) when nothing numeric remains.
func CleanAmount(s string) (float64, bool) {
	s = currencyRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "()")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractBounty pulls a progressive-knockout bounty amount out of stack or
// pot text ("... $12.50 bounty"). Bounties use their own pattern so they are
// never conflated with chip stacks.
func ExtractBounty(s string) (float64, bool) {
	m := bountyRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return CleanAmount(m[1])
}

// NormalizePlayerName collapses whitespace and strips trailing bracketed or
// parenthesized annotations some rooms append ("Player1 [ME]").
func NormalizePlayerName(name string) string {
	name = wsRe.ReplaceAllString(name, " ")
	name = bracketRe.ReplaceAllString(name, "")
	name = parenRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

var suitMap = strings.NewReplacer(
	"♠", "s", "♣", "c", "♥", "h", "♦", "d",
	"♤", "s", "♧", "c", "♡", "h", "♢", "d",
)

// ParseCards extracts cards from a board or hole-card string, normalizing
// unicode suits and case: "[Ah kD]" -> ["Ah", "Kd"].
func ParseCards(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.Trim(s, "[]")
	s = suitMap.Replace(s)

	var cards []string
	for _, m := range cardRe.FindAllString(s, -1) {
		cards = append(cards, strings.ToUpper(m[:1])+strings.ToLower(m[1:]))
	}
	return cards
}

// ExtractTimestamp finds a timestamp in a header line and normalizes it to
// "2006-01-02 15:04:05". Recognizes ISO-like "2024/01/15 12:34:56" and
// European "15/01/2024 12:34:56" orderings.
func ExtractTimestamp(line string) string {
	if m := isoTimeRe.FindStringSubmatch(line); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3] + " " + m[4]
	}
	if m := euroTimeRe.FindStringSubmatch(line); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1] + " " + m[4]
	}
	return ""
}

// ExtractTimestamp888 handles the 888 session-header form
// "*** 04 08 2025 09:26:37" (day month year).
func ExtractTimestamp888(line string) string {
	m := time888Re.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[3] + "-" + m[2] + "-" + m[1] + " " + m[4]
}
