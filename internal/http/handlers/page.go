package handlers

import (
	"context"

	"github.com/solthron/assist-api/internal/conversation"
	"github.com/solthron/assist-api/internal/platform"
)

// PageHandler handles page inspection: platform detection and conversation
// extraction. Both are free and never touch the upstream backend.
type PageHandler struct {
	extractor *conversation.Extractor
}

// NewPageHandler creates a new page handler.
func NewPageHandler(extractor *conversation.Extractor) *PageHandler {
	return &PageHandler{extractor: extractor}
}

// DetectPlatformInput carries the page URL to classify.
type DetectPlatformInput struct {
	URL string `query:"url" required:"true" doc:"Page URL to classify"`
}

// DetectPlatformOutput reports the detected platform.
type DetectPlatformOutput struct {
	Body struct {
		Platform    string `json:"platform"`
		Known       bool   `json:"known"`
		DisplayName string `json:"display_name"`
	}
}

// DetectPlatform classifies a page URL. Unrecognized hosts report
// "unknown" rather than an error.
func (h *PageHandler) DetectPlatform(ctx context.Context, input *DetectPlatformInput) (*DetectPlatformOutput, error) {
	p := platform.Detect(input.URL)
	out := &DetectPlatformOutput{}
	out.Body.Platform = string(p)
	out.Body.Known = p.Known()
	out.Body.DisplayName = p.DisplayName()
	return out, nil
}

// ExtractConversationInput carries a page capture.
type ExtractConversationInput struct {
	Body struct {
		URL  string `json:"url" minLength:"1" doc:"Page URL, used for platform detection"`
		HTML string `json:"html" minLength:"1" doc:"Captured page HTML"`
	}
}

// ConversationTurn is one extracted message.
type ConversationTurn struct {
	Role string `json:"role,omitempty"`
	Text string `json:"text"`
}

// ExtractConversationOutput reports the extracted turns. An unreadable
// page yields found=false with no turns, not an error.
type ExtractConversationOutput struct {
	Body struct {
		Platform string             `json:"platform"`
		Found    bool               `json:"found"`
		Turns    []ConversationTurn `json:"turns,omitempty"`
		Text     string             `json:"text,omitempty"`
	}
}

// ExtractConversation runs the extraction strategy chain over a page capture.
func (h *PageHandler) ExtractConversation(ctx context.Context, input *ExtractConversationInput) (*ExtractConversationOutput, error) {
	p := platform.Detect(input.Body.URL)
	sample := h.extractor.ExtractString(p, input.Body.HTML)

	out := &ExtractConversationOutput{}
	out.Body.Platform = string(p)
	if sample.Empty() {
		return out, nil
	}

	out.Body.Found = true
	out.Body.Text = sample.Text()
	out.Body.Turns = make([]ConversationTurn, 0, len(sample.Turns))
	for _, turn := range sample.Turns {
		out.Body.Turns = append(out.Body.Turns, ConversationTurn{Role: string(turn.Role), Text: turn.Text})
	}
	return out, nil
}
