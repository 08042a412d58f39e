package github

import (
	"regexp"
	"strings"
)

var (
	fencedCode    = regexp.MustCompile("(?s)```.*?```")
	badgeLink     = regexp.MustCompile(`\[!\[.*?\]\(.*?\)\]\((.*?)\)`)
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	htmlTag       = regexp.MustCompile(`<[^>]+>`)
	heading       = regexp.MustCompile(`(?m)^#+\s*`)
	horizontalBar = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	boldStars     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicStar    = regexp.MustCompile(`\*([^*]+)\*`)
	boldUnders    = regexp.MustCompile(`__([^_]+)__`)
	italicUnder   = regexp.MustCompile(`_([^_]+)_`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	disallowed    = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// CleanReadme flattens markdown into a single line of prose so it can be
// embedded in a prompt. Code fences are dropped entirely; links keep both
// their text and their target.
func CleanReadme(markdown string) string {
	if markdown == "" {
		return ""
	}

	text := fencedCode.ReplaceAllString(markdown, "")
	text = badgeLink.ReplaceAllString(text, "$1")
	text = markdownLink.ReplaceAllStringFunc(text, func(m string) string {
		parts := markdownLink.FindStringSubmatch(m)
		label, target := strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
		if label == target {
			return target
		}
		return label + " " + target
	})
	text = htmlTag.ReplaceAllString(text, "")
	text = heading.ReplaceAllString(text, "")
	text = horizontalBar.ReplaceAllString(text, "")
	text = boldStars.ReplaceAllString(text, "$1")
	text = italicStar.ReplaceAllString(text, "$1")
	text = boldUnders.ReplaceAllString(text, "$1")
	text = italicUnder.ReplaceAllString(text, "$1")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = disallowed.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
