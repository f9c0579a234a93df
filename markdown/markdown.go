// Package markdown scrubs markdown syntax out of model text. Narrative and
// chat prompts ask for plain text, but models still slip in headings, bold
// markers and list bullets; clients render the result verbatim, so leftover
// syntax shows up as literal asterisks on screen.
package markdown

import (
	"regexp"
	"strings"
)

var (
	fenceRe      = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`]*)`")
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	orderedRe    = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	quoteRe      = regexp.MustCompile(`(?m)^>\s?`)
	ruleRe       = regexp.MustCompile(`(?m)^(\s*[-*_]){3,}\s*$`)
)

// Strip removes markdown formatting, keeping the readable text.
func Strip(text string) string {
	out := fenceRe.ReplaceAllString(text, "$1")
	out = imageRe.ReplaceAllString(out, "$1")
	out = linkRe.ReplaceAllString(out, "$1")
	out = boldRe.ReplaceAllString(out, "$1$2")
	out = italicRe.ReplaceAllString(out, "$1$2")
	out = inlineCodeRe.ReplaceAllString(out, "$1")
	out = headingRe.ReplaceAllString(out, "")
	out = bulletRe.ReplaceAllString(out, "")
	out = orderedRe.ReplaceAllString(out, "")
	out = quoteRe.ReplaceAllString(out, "")
	out = ruleRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// SplitParagraphs breaks narrative text on blank lines, dropping empties.
func SplitParagraphs(text string) []string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	var out []string
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}
