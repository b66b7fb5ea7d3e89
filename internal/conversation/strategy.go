package conversation

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/solthron/assist-api/internal/platform"
)

// Strategy selects message-like candidates from a parsed document. Strategies
// are pure over the document and must not fail: no candidates means "try the
// next strategy", never an error.
type Strategy interface {
	Name() string
	Candidates(doc *goquery.Document) []Candidate
}

// roleMode decides how turns are tagged once a chain has produced its final
// candidate pair.
type roleMode int

const (
	// rolesFromCandidate trusts the role each strategy attached.
	rolesFromCandidate roleMode = iota
	// rolesPositional tags the first of the pair as user, the second as AI.
	rolesPositional
	// rolesHeuristic classifies each element by text shape and ancestry.
	rolesHeuristic
	// rolesNone leaves turns untagged (unknown platforms).
	rolesNone
)

// chain is the ordered strategy list for one platform.
type chain struct {
	strategies []Strategy
	roles      roleMode
	// minCandidates is how many candidates a strategy must produce before
	// the chain stops falling through. Known platforms need a full pair;
	// the generic chain accepts a single block.
	minCandidates int
	// keep is how many trailing candidates become turns.
	keep int
	// stripArtifacts enables leading index/avatar removal (Gemini renders
	// avatar tokens inside the message container).
	stripArtifacts bool
}

// chainFor returns the extraction chain for a platform. Unlisted platforms
// share the generic chain: their markup never had dedicated selectors, and
// the structural scan holds up well enough on them.
func chainFor(p platform.Platform) chain {
	switch p {
	case platform.ChatGPT:
		return chain{
			strategies:    []Strategy{authorRoleAttr{}, genericBlocks{}},
			roles:         rolesFromCandidate,
			minCandidates: 2,
			keep:          2,
		}
	case platform.Claude:
		return chain{
			strategies:    []Strategy{selectorScan{name: "claude-prose", selector: ".prose, [data-testid*=\"message\"]", minLen: 1, maxLen: 0}, genericBlocks{}},
			roles:         rolesPositional,
			minCandidates: 2,
			keep:          2,
		}
	case platform.Gemini:
		return chain{
			strategies:     []Strategy{geminiPrimary{}, geminiStructural{}, geminiRolePair{}},
			roles:          rolesHeuristic,
			minCandidates:  2,
			keep:           2,
			stripArtifacts: true,
		}
	default:
		return chain{
			strategies:    []Strategy{genericBlocks{}},
			roles:         rolesNone,
			minCandidates: 1,
			keep:          4,
		}
	}
}

// authorRoleAttr matches ChatGPT's explicit role attribute. The most
// reliable strategy in the repertoire: the role comes straight off the DOM.
type authorRoleAttr struct{}

func (authorRoleAttr) Name() string { return "author-role-attr" }

func (authorRoleAttr) Candidates(doc *goquery.Document) []Candidate {
	var cands []Candidate
	doc.Find("[data-message-author-role]").Each(func(_ int, sel *goquery.Selection) {
		role := RoleAI
		if sel.AttrOr("data-message-author-role", "") == "user" {
			role = RoleUser
		}
		text := cleanText(sel.Text())
		if text == "" {
			return
		}
		cands = append(cands, Candidate{sel: sel, Text: text, Role: role})
	})
	return cands
}

// selectorScan is a plain selector sweep with optional length bounds.
type selectorScan struct {
	name     string
	selector string
	minLen   int
	maxLen   int // 0 = unbounded
}

func (s selectorScan) Name() string { return s.name }

func (s selectorScan) Candidates(doc *goquery.Document) []Candidate {
	var cands []Candidate
	doc.Find(s.selector).Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if len(text) < s.minLen {
			return
		}
		if s.maxLen > 0 && len(text) > s.maxLen {
			return
		}
		cands = append(cands, Candidate{sel: sel, Text: text})
	})
	return cands
}

// geminiPrimary targets Gemini's message-content containers, filtering out
// sidebar and navigation chrome by ancestry.
type geminiPrimary struct{}

func (geminiPrimary) Name() string { return "gemini-primary" }

func (geminiPrimary) Candidates(doc *goquery.Document) []Candidate {
	const selector = `message-content[id*="message-content"], ` +
		`[id*="model-response-message-content"], ` +
		`.model-response-text, ` +
		`.markdown.markdown-main-panel, ` +
		`.conversation-container .response-content`

	var cands []Candidate
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if len(text) <= 30 || len(text) >= 5000 {
			return
		}
		if withinAny(sel, ".side-navigation, .recent-chats, nav") {
			return
		}
		cands = append(cands, Candidate{sel: sel, Text: text})
	})
	return cands
}

// geminiStructural is the broader fallback: scan likely message blocks
// inside the chat history container, excluding interactive elements and
// navigation copy.
type geminiStructural struct{}

func (geminiStructural) Name() string { return "gemini-structural" }

func (geminiStructural) Candidates(doc *goquery.Document) []Candidate {
	history := doc.Find("#chat-history, .chat-history, .conversation-container").First()
	if history.Length() == 0 {
		return nil
	}

	var cands []Candidate
	history.Find(`div[class*="response"], div[class*="message"], p, .markdown`).Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if len(text) <= 50 || len(text) >= 3000 {
			return
		}
		if withinAny(sel, "button, input") {
			return
		}
		if containsNavigationCopy(text) {
			return
		}
		cands = append(cands, Candidate{sel: sel, Text: text})
	})
	return cands
}

// geminiRolePair is the last resort: pair the final user-classified element
// with the final model-classified element.
type geminiRolePair struct{}

func (geminiRolePair) Name() string { return "gemini-role-pair" }

func (geminiRolePair) Candidates(doc *goquery.Document) []Candidate {
	users := doc.Find(`[class*="user"], .user-message, [role="user"]`)
	models := doc.Find(`[class*="model"], [class*="response"], .ai-message`)
	if users.Length() == 0 || models.Length() == 0 {
		return nil
	}

	var cands []Candidate
	if sel := users.Last(); sel.Length() > 0 {
		if text := cleanText(sel.Text()); text != "" {
			cands = append(cands, Candidate{sel: sel, Text: text, Role: RoleUser})
		}
	}
	if sel := models.Last(); sel.Length() > 0 {
		if text := cleanText(sel.Text()); text != "" {
			cands = append(cands, Candidate{sel: sel, Text: text, Role: RoleAI})
		}
	}
	return cands
}

// genericBlocks scans any page for recent substantial text blocks. Used as
// the whole chain for unknown platforms and as the tail fallback elsewhere.
type genericBlocks struct{}

func (genericBlocks) Name() string { return "generic-blocks" }

func (genericBlocks) Candidates(doc *goquery.Document) []Candidate {
	const selector = `p, div[class*="message"], div[class*="chat"], ` +
		`div[role="presentation"], [role="article"]`

	var cands []Candidate
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if len(text) <= 20 || len(text) >= 3000 {
			return
		}
		if hasInteractiveContent(sel) {
			return
		}
		cands = append(cands, Candidate{sel: sel, Text: text})
	})
	return cands
}

// likelyUser classifies a candidate as user-authored: short messages,
// questions, the first of the pair, or a user-indicating class/ancestor.
func likelyUser(c Candidate, idx int) bool {
	if len(c.Text) < 100 || strings.Contains(c.Text, "?") || idx == 0 {
		return true
	}
	if c.sel != nil {
		if c.sel.HasClass("user") || withinAny(c.sel, `[class*="user"]`) {
			return true
		}
	}
	return false
}
