package conversation

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/solthron/assist-api/internal/platform"
)

func testExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const chatgptHTML = `<html><body>
<div data-message-author-role="user">What is the capital of France and why is it important historically?</div>
<div data-message-author-role="assistant">The capital of France is Paris. It has been the political and cultural heart of the country since the medieval era.</div>
<div data-message-author-role="user">How many people live there approximately today?</div>
<div data-message-author-role="assistant">The city proper has around 2.1 million residents, with over 12 million in the metropolitan area.</div>
</body></html>`

func TestExtract_ChatGPT_RolesFromAttribute(t *testing.T) {
	sample := testExtractor().ExtractString(platform.ChatGPT, chatgptHTML)

	if sample.Empty() {
		t.Fatal("expected non-empty sample")
	}
	if len(sample.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(sample.Turns))
	}
	if sample.Turns[0].Role != RoleUser {
		t.Errorf("first turn role = %q, want user", sample.Turns[0].Role)
	}
	if sample.Turns[1].Role != RoleAI {
		t.Errorf("second turn role = %q, want ai", sample.Turns[1].Role)
	}
	if !strings.Contains(sample.Turns[0].Text, "How many people") {
		t.Errorf("expected the most recent user turn, got %q", sample.Turns[0].Text)
	}
	if !strings.Contains(sample.Turns[1].Text, "2.1 million") {
		t.Errorf("expected the most recent AI turn, got %q", sample.Turns[1].Text)
	}
}

func TestExtract_ChatGPT_WireFormat(t *testing.T) {
	sample := testExtractor().ExtractString(platform.ChatGPT, chatgptHTML)

	text := sample.Text()
	if !strings.HasPrefix(text, "User: ") {
		t.Errorf("rendered text should start with User:, got %q", text)
	}
	if !strings.Contains(text, "\n\nAI: ") {
		t.Errorf("rendered text should contain AI: paragraph, got %q", text)
	}
}

func TestExtract_Claude_PositionalRoles(t *testing.T) {
	html := `<html><body>
<div class="prose">Can you explain how garbage collection works in Go for a beginner?</div>
<div class="prose">Go uses a concurrent mark-and-sweep collector. It runs alongside your program, marking reachable objects and sweeping the rest, keeping pause times very short.</div>
</body></html>`

	sample := testExtractor().ExtractString(platform.Claude, html)

	if len(sample.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(sample.Turns))
	}
	if sample.Turns[0].Role != RoleUser || sample.Turns[1].Role != RoleAI {
		t.Errorf("positional roles wrong: %q / %q", sample.Turns[0].Role, sample.Turns[1].Role)
	}
}

func TestExtract_Gemini_PrimarySelectors(t *testing.T) {
	html := `<html><body>
<nav class="side-navigation"><div class="model-response-text">This long navigation entry should be excluded from extraction even though it matches a selector.</div></nav>
<div class="conversation-container">
  <div class="response-content">Could you please summarize the main plot points of the novel we discussed?</div>
  <div class="response-content">Certainly. The novel follows a young cartographer who discovers that the maps she draws begin to reshape the coastline itself, forcing her to choose between her craft and her home.</div>
</div>
</body></html>`

	sample := testExtractor().ExtractString(platform.Gemini, html)

	if len(sample.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(sample.Turns))
	}
	// The short questioning turn should classify as user.
	if sample.Turns[0].Role != RoleUser {
		t.Errorf("first turn role = %q, want user", sample.Turns[0].Role)
	}
	if sample.Turns[1].Role != RoleAI {
		t.Errorf("second turn role = %q, want ai", sample.Turns[1].Role)
	}
	for _, turn := range sample.Turns {
		if strings.Contains(turn.Text, "navigation entry") {
			t.Errorf("sidebar content leaked into sample: %q", turn.Text)
		}
	}
}

func TestExtract_Gemini_FallsThroughToStructuralScan(t *testing.T) {
	// No primary selectors present: the chain must fall through to the
	// structural scan inside the chat history container.
	html := `<html><body>
<div id="chat-history">
  <p>What would be a sensible weekly training plan for a first marathon attempt?</p>
  <p>A sensible plan builds gradually over sixteen weeks: three easy runs, one long run that grows by a mile each week, and a rest day after the long effort. Keep most mileage conversational.</p>
</div>
</body></html>`

	sample := testExtractor().ExtractString(platform.Gemini, html)

	if sample.Empty() {
		t.Fatal("expected fallback strategy to produce a sample")
	}
	if len(sample.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(sample.Turns))
	}
}

func TestExtract_Gemini_RolePairLastResort(t *testing.T) {
	html := `<html><body>
<div class="user-bubble">Explain recursion briefly please, with one concrete example I can follow.</div>
<div class="model-bubble">Recursion is a function calling itself on a smaller input until a base case stops it. Computing factorial(n) as n times factorial(n-1), with factorial(0) equal to one, is the classic example that shows both the self-call and the stopping condition clearly.</div>
</body></html>`

	sample := testExtractor().ExtractString(platform.Gemini, html)

	if len(sample.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(sample.Turns))
	}
	if sample.Turns[0].Role != RoleUser || sample.Turns[1].Role != RoleAI {
		t.Errorf("roles = %q / %q, want user / ai", sample.Turns[0].Role, sample.Turns[1].Role)
	}
}

func TestExtract_Unknown_UntaggedBlocks(t *testing.T) {
	html := `<html><body>
<p>First substantial block of page text that easily clears the length filter.</p>
<p>Second substantial block of page text that also clears the length filter.</p>
<p>Third substantial block of page text, again long enough to be kept here.</p>
<p>Fourth substantial block of page text, the most recent one on the page.</p>
<p>tiny</p>
</body></html>`

	sample := testExtractor().ExtractString(platform.Unknown, html)

	if sample.Empty() {
		t.Fatal("expected generic extraction to succeed")
	}
	for _, turn := range sample.Turns {
		if turn.Role != RoleNone {
			t.Errorf("unknown platform must not infer roles, got %q", turn.Role)
		}
	}
	if strings.Contains(sample.Text(), "User:") {
		t.Error("untagged sample must render without role prefixes")
	}
	if strings.Contains(sample.Text(), "tiny") {
		t.Error("length filter should drop short chrome text")
	}
}

func TestExtract_InteractiveBlocksExcluded(t *testing.T) {
	html := `<html><body>
<div class="message-row">This block embeds a control and is navigation chrome, not a message at all. <button>Send</button></div>
<p>An actual message long enough to pass the minimum length filter applied here.</p>
</body></html>`

	sample := testExtractor().ExtractString(platform.Unknown, html)

	for _, turn := range sample.Turns {
		if strings.Contains(turn.Text, "embeds a control") {
			t.Errorf("interactive block leaked into sample: %q", turn.Text)
		}
	}
}

func TestExtract_EmptyDocumentIsSentinel(t *testing.T) {
	for _, p := range []platform.Platform{platform.ChatGPT, platform.Claude, platform.Gemini, platform.Unknown} {
		sample := testExtractor().ExtractString(p, "<html><body></body></html>")
		if !sample.Empty() {
			t.Errorf("platform %s: expected empty sentinel for empty page", p)
		}
	}
}

func TestExtract_SingleMessageIsInsufficientOnKnownPlatform(t *testing.T) {
	html := `<html><body>
<div data-message-author-role="user">Only one message exists here so there is no full exchange to analyze.</div>
</body></html>`

	sample := testExtractor().ExtractString(platform.ChatGPT, html)
	if !sample.Empty() {
		t.Error("a lone turn cannot form a two-turn sample on a known platform")
	}
}

func TestExtract_WhitespaceCollapsed(t *testing.T) {
	html := `<html><body>
<div data-message-author-role="user">What    is
		the     answer to this rather oddly formatted question today?</div>
<div data-message-author-role="assistant">The answer,
	 spread over
	 lines, is that whitespace gets collapsed into single spaces on output.</div>
</body></html>`

	sample := testExtractor().ExtractString(platform.ChatGPT, html)
	if sample.Empty() {
		t.Fatal("expected sample")
	}
	for _, turn := range sample.Turns {
		if strings.Contains(turn.Text, "  ") || strings.Contains(turn.Text, "\n") {
			t.Errorf("whitespace not collapsed: %q", turn.Text)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"a\n\nb\tc", "a b c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
