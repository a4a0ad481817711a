package conversation

import (
	"errors"
	"fmt"
)

// ParseError means the script contained no extractable non-blank content.
// It aborts a run before any synthesis work begins.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "script parse failed: " + e.Reason }

// ProfileError means the speaker/voice mapping does not line up with the
// parsed script. Raised before synthesis starts.
type ProfileError struct {
	Speaker string
	Reason  string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("speaker %q: %s", e.Speaker, e.Reason)
}

// AssemblyError means segment audio could not be normalized into one
// stream. Fatal, since partial audio would be misleading.
type AssemblyError struct {
	Detail string
}

func (e *AssemblyError) Error() string { return "audio assembly failed: " + e.Detail }

// ErrAllSegmentsFailed is returned when not a single segment synthesized.
var ErrAllSegmentsFailed = errors.New("all segments failed to synthesize")
