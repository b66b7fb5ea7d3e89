package conversation

import (
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/solthron/assist-api/internal/platform"
)

// Extractor pulls the last conversational turns out of captured page HTML.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger disables strategy logging.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractHTML parses raw HTML and extracts the sample for a platform.
// An unparseable document yields the empty sentinel, not an error.
func (e *Extractor) ExtractHTML(p platform.Platform, htmlSrc io.Reader) Sample {
	doc, err := goquery.NewDocumentFromReader(htmlSrc)
	if err != nil {
		e.logger.Debug("conversation html unparseable", "platform", p, "error", err)
		return Sample{}
	}
	return e.Extract(p, doc)
}

// ExtractString is ExtractHTML over an in-memory document.
func (e *Extractor) ExtractString(p platform.Platform, htmlSrc string) Sample {
	return e.ExtractHTML(p, strings.NewReader(htmlSrc))
}

// Extract runs the platform's strategy chain over the document. Strategies
// are tried in order until one yields enough candidates; the trailing
// candidates become the sample's turns. Never fails: a strategy that
// panics on hostile markup counts as "no candidates" and the chain moves on.
func (e *Extractor) Extract(p platform.Platform, doc *goquery.Document) Sample {
	ch := chainFor(p)

	var cands []Candidate
	for _, strat := range ch.strategies {
		got := runStrategy(strat, doc)
		if len(got) >= ch.minCandidates {
			cands = got
			break
		}
		e.logger.Debug("extraction strategy fell through",
			"platform", p,
			"strategy", strat.Name(),
			"candidates", len(got),
		)
	}
	if len(cands) < ch.minCandidates {
		return Sample{}
	}

	cands = lastN(cands, ch.keep)

	turns := make([]Turn, 0, len(cands))
	for i, c := range cands {
		text := c.Text
		if ch.stripArtifacts {
			text = stripLeadingArtifact(text)
		}
		if text == "" {
			continue
		}
		turns = append(turns, Turn{Role: assignRole(ch.roles, c, i), Text: text})
	}
	if len(turns) < ch.minCandidates {
		return Sample{}
	}
	return Sample{Turns: turns}
}

// runStrategy isolates a single strategy invocation; selector engines can
// choke on pathological markup and that must read as an empty result.
func runStrategy(s Strategy, doc *goquery.Document) (cands []Candidate) {
	defer func() {
		if r := recover(); r != nil {
			cands = nil
		}
	}()
	return s.Candidates(doc)
}

func assignRole(mode roleMode, c Candidate, idx int) Role {
	switch mode {
	case rolesFromCandidate:
		if c.Role != RoleNone {
			return c.Role
		}
		// Fallback strategies carry no role; fall back to position.
		if idx == 0 {
			return RoleUser
		}
		return RoleAI
	case rolesPositional:
		if idx == 0 {
			return RoleUser
		}
		return RoleAI
	case rolesHeuristic:
		if c.Role != RoleNone {
			return c.Role
		}
		if likelyUser(c, idx) {
			return RoleUser
		}
		return RoleAI
	default:
		return RoleNone
	}
}
