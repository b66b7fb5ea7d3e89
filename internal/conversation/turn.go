// Package conversation extracts the most recent conversational turns from
// captured chat-site HTML. Extraction is best-effort: chat sites restyle
// their markup constantly, so each platform gets an ordered chain of
// selector strategies that degrade from precise to heuristic. Failure to
// find a conversation is a normal outcome, reported as an empty Sample.
package conversation

import "strings"

// Role tags who produced a turn.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"

	// RoleNone marks text blocks captured without role inference (unknown
	// platforms only).
	RoleNone Role = ""
)

// Turn is one message within a conversation.
type Turn struct {
	Role Role
	Text string
}

// Sample holds the most recent turns in order, oldest first. Known platforms
// yield at most two role-tagged turns; unknown platforms yield up to four
// untagged text blocks. An empty Sample is the extraction-failure sentinel.
type Sample struct {
	Turns []Turn
}

// Empty reports whether extraction found nothing usable.
func (s Sample) Empty() bool {
	return len(s.Turns) == 0
}

// Text renders the sample as the wire payload the backend expects:
// "User: ..."/"AI: ..." paragraphs for tagged turns, plain paragraphs for
// untagged ones, joined by blank lines.
func (s Sample) Text() string {
	parts := make([]string, 0, len(s.Turns))
	for _, turn := range s.Turns {
		switch turn.Role {
		case RoleUser:
			parts = append(parts, "User: "+turn.Text)
		case RoleAI:
			parts = append(parts, "AI: "+turn.Text)
		default:
			parts = append(parts, turn.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
