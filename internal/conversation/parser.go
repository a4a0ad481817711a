package conversation

import (
	"regexp"
	"strings"
)

// utterance is one parsed (speaker, text) pair before enhancement.
type utterance struct {
	Speaker string
	Text    string
}

// fallbackSpeaker labels untagged scripts so that any non-blank text still
// produces output.
const fallbackSpeaker = "Speaker 1"

// Speaker tag patterns in priority order. Labels are case-preserved.
var speakerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(speaker \d+|host|guest|interviewer|interviewee)\s*:\s*(.*)$`),
	regexp.MustCompile(`^(\[S\d+\])\s*:?\s*(.*)$`),
	regexp.MustCompile(`^([A-Z][A-Za-z0-9 ]*?)\s*:\s*(.*)$`),
	regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)\s*:\s*(.*)$`),
}

// ParseScript extracts ordered (speaker, utterance) pairs. Lines without a
// recognized tag continue the previous speaker's utterance; a leading
// untagged line is attributed to the fallback speaker. It fails only when
// the script contains no extractable text at all.
func ParseScript(script string) ([]utterance, error) {
	if strings.TrimSpace(script) == "" {
		return nil, &ParseError{Reason: "script is empty"}
	}

	var (
		out            []utterance
		currentSpeaker string
		currentText    string
	)

	flush := func() {
		if currentSpeaker != "" && strings.TrimSpace(currentText) != "" {
			out = append(out, utterance{Speaker: currentSpeaker, Text: strings.TrimSpace(currentText)})
		}
		currentText = ""
	}

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matched := false
		for _, p := range speakerPatterns {
			m := p.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			flush()
			currentSpeaker = normalizeLabel(m[1])
			currentText = strings.TrimSpace(m[2])
			matched = true
			break
		}
		if matched {
			continue
		}

		// Soft-wrap continuation of the current speaker.
		if currentSpeaker == "" {
			currentSpeaker = fallbackSpeaker
		}
		if currentText == "" {
			currentText = line
		} else {
			currentText += " " + line
		}
	}
	flush()

	if len(out) == 0 {
		return nil, &ParseError{Reason: "no extractable dialogue text"}
	}
	return out, nil
}

// normalizeLabel canonicalizes the role-pair labels that match
// case-insensitively, and preserves everything else verbatim.
func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	switch strings.ToLower(label) {
	case "host":
		return "Host"
	case "guest":
		return "Guest"
	case "interviewer":
		return "Interviewer"
	case "interviewee":
		return "Interviewee"
	}
	if lower := strings.ToLower(label); strings.HasPrefix(lower, "speaker ") {
		return "Speaker " + strings.TrimSpace(label[len("speaker "):])
	}
	return label
}
