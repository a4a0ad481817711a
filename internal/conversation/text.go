package conversation

import (
	"regexp"
	"strings"
)

// Markdown and markup artifacts get read aloud by TTS engines, so segment
// text is scrubbed right before synthesis. Segment.Text keeps the original
// wording for analytics.
var markdownCleaners = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("```[^`]*```"), ""},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},
	{regexp.MustCompile(`__([^_]+)__`), "$1"},
	{regexp.MustCompile(`_([^_]+)_`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`(?m)^>\s+`), ""},
	{regexp.MustCompile(`(?m)^[-*_]{3,}$`), ""},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanForTTS strips markdown emphasis, headers, links, code, list markers,
// blockquotes and HTML tags, then collapses whitespace.
func CleanForTTS(text string) string {
	cleaned := text
	for _, c := range markdownCleaners {
		cleaned = c.re.ReplaceAllString(cleaned, c.repl)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
}

var (
	excitedEmphasis   = regexp.MustCompile(`(?i)\b(amazing|incredible|fantastic|awesome|wow)\b`)
	angryEmphasis     = regexp.MustCompile(`(?i)\b(never|always|completely|absolutely|ridiculous)\b`)
	surprisedEmphasis = regexp.MustCompile(`(?i)\b(really|seriously|what|unbelievable)\b`)
	allCapsEmphasis   = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	quotedEmphasis    = regexp.MustCompile(`"([^"]*)"`)
	starredEmphasis   = regexp.MustCompile(`\*([^*]+)\*`)
)

// EmphasisWords lists words worth stressing, from emotional keywords plus
// structural markers (ALL CAPS, quotes, *stars*). Order is first occurrence;
// duplicates are dropped.
func EmphasisWords(text string, emotion EmotionType) []string {
	var raw []string
	switch emotion {
	case EmotionExcited:
		raw = append(raw, excitedEmphasis.FindAllString(text, -1)...)
	case EmotionAngry:
		raw = append(raw, angryEmphasis.FindAllString(text, -1)...)
	case EmotionSurprised:
		raw = append(raw, surprisedEmphasis.FindAllString(text, -1)...)
	}
	raw = append(raw, allCapsEmphasis.FindAllString(text, -1)...)
	for _, m := range quotedEmphasis.FindAllStringSubmatch(text, -1) {
		raw = append(raw, m[1])
	}
	for _, m := range starredEmphasis.FindAllStringSubmatch(text, -1) {
		raw = append(raw, m[1])
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.TrimSpace(w)
		if w == "" || seen[strings.ToLower(w)] {
			continue
		}
		seen[strings.ToLower(w)] = true
		out = append(out, w)
	}
	return out
}
