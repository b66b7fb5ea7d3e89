package conversation

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is one message-like element a strategy pulled from the document.
// Role is set only when the strategy could classify the element itself
// (e.g. from a data attribute); otherwise the chain's role mode decides.
type Candidate struct {
	sel  *goquery.Selection
	Text string
	Role Role
}

var (
	whitespaceRE = regexp.MustCompile(`\s+`)

	// leadingArtifactRE strips index numbers and avatar initials that some
	// platforms render inside the message container.
	leadingArtifactRE = regexp.MustCompile(`^\s*[\d\w\-]+\s*`)
)

// cleanText trims and collapses internal whitespace to single spaces.
func cleanText(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// stripLeadingArtifact removes a leading index/avatar token. Only applied on
// platforms known to prepend one; it eats the first word otherwise.
func stripLeadingArtifact(s string) string {
	return leadingArtifactRE.ReplaceAllString(s, "")
}

// hasInteractiveContent reports whether the element embeds form controls,
// which marks it as UI chrome rather than a message.
func hasInteractiveContent(sel *goquery.Selection) bool {
	return sel.Find("input, button").Length() > 0
}

// withinAny reports whether the element sits inside any of the given
// ancestor selectors.
func withinAny(sel *goquery.Selection, ancestors string) bool {
	return sel.Closest(ancestors).Length() > 0
}

// containsNavigationCopy filters out elements carrying known sidebar or
// navigation text.
func containsNavigationCopy(text string) bool {
	return strings.Contains(text, "Recent") ||
		strings.Contains(text, "New chat") ||
		strings.Contains(text, "Search for")
}

// lastN returns the trailing n candidates in document order.
func lastN(cands []Candidate, n int) []Candidate {
	if len(cands) <= n {
		return cands
	}
	return cands[len(cands)-n:]
}
