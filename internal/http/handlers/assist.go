package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/solthron/assist-api/internal/constants"
	"github.com/solthron/assist-api/internal/service"
)

// AssistHandler handles feature invocations: the credit-gated operations
// that call the upstream AI backend.
type AssistHandler struct {
	assist *service.AssistService
}

// NewAssistHandler creates a new assist handler.
func NewAssistHandler(assist *service.AssistService) *AssistHandler {
	return &AssistHandler{assist: assist}
}

// AssistOutput wraps a feature run result. Gate denials and backend
// failures are 200s with state "error": the invocation itself worked and
// the body carries the user-facing message.
type AssistOutput struct {
	Body service.AssistResult
}

// ProcessTextInput represents a text feature request.
type ProcessTextInput struct {
	Body struct {
		Feature string `json:"feature" doc:"Feature id, e.g. reframe_casual or convert_concise"`
		Text    string `json:"text" minLength:"1" doc:"Text to process"`
	}
}

// ProcessText runs a reframe, convert, explain or persona feature.
func (h *AssistHandler) ProcessText(ctx context.Context, input *ProcessTextInput) (*AssistOutput, error) {
	result, err := h.assist.ProcessText(ctx, constants.Feature(input.Body.Feature), input.Body.Text)
	if err != nil {
		return nil, mapAssistError(err)
	}
	return &AssistOutput{Body: *result}, nil
}

// ProcessImageInput represents an image feature request.
type ProcessImageInput struct {
	Body struct {
		Feature  string `json:"feature" enum:"image_prompt,image_caption"`
		ImageURL string `json:"image_url" minLength:"1" doc:"Data URL or https URL of the image"`
	}
}

// ProcessImage runs an image prompt or caption feature.
func (h *AssistHandler) ProcessImage(ctx context.Context, input *ProcessImageInput) (*AssistOutput, error) {
	result, err := h.assist.ProcessImage(ctx, constants.Feature(input.Body.Feature), input.Body.ImageURL)
	if err != nil {
		return nil, mapAssistError(err)
	}
	return &AssistOutput{Body: *result}, nil
}

// ProcessConversationInput represents a conversation analysis request. The
// extension captures the page and ships URL plus HTML; extraction happens
// server side so an unreadable page never costs credits.
type ProcessConversationInput struct {
	Body struct {
		Feature string `json:"feature" enum:"smart_followups,smart_actions"`
		URL     string `json:"url" minLength:"1" doc:"Page URL, used for platform detection"`
		HTML    string `json:"html" minLength:"1" doc:"Captured page HTML"`
	}
}

// ProcessConversation runs smart followups or smart actions over a page capture.
func (h *AssistHandler) ProcessConversation(ctx context.Context, input *ProcessConversationInput) (*AssistOutput, error) {
	result, err := h.assist.ProcessConversation(ctx, constants.Feature(input.Body.Feature), input.Body.URL, input.Body.HTML)
	if err != nil {
		return nil, mapAssistError(err)
	}
	return &AssistOutput{Body: *result}, nil
}

// ProcessEnhancementsInput represents a smart enhancements request.
type ProcessEnhancementsInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" doc:"Selected text to enhance"`
	}
}

// ProcessEnhancements runs smart enhancements over selected text.
func (h *AssistHandler) ProcessEnhancements(ctx context.Context, input *ProcessEnhancementsInput) (*AssistOutput, error) {
	result, err := h.assist.ProcessEnhancements(ctx, input.Body.Text)
	if err != nil {
		return nil, mapAssistError(err)
	}
	return &AssistOutput{Body: *result}, nil
}

// StatusOutput reports the orchestrator state and the last completed result.
type StatusOutput struct {
	Body struct {
		State      service.State         `json:"state"`
		LastResult *service.AssistResult `json:"last_result,omitempty"`
	}
}

// GetStatus returns the current operation state.
func (h *AssistHandler) GetStatus(ctx context.Context, input *struct{}) (*StatusOutput, error) {
	state, last := h.assist.Status()
	out := &StatusOutput{}
	out.Body.State = state
	out.Body.LastResult = last
	return out, nil
}

// CostsOutput lists the credit price of every known feature.
type CostsOutput struct {
	Body struct {
		Costs map[string]int `json:"costs"`
	}
}

// allFeatures is every feature id the engine knows about.
var allFeatures = []constants.Feature{
	constants.FeatureReframeCasual,
	constants.FeatureReframeTechnical,
	constants.FeatureReframeProfessional,
	constants.FeatureReframeELI5,
	constants.FeatureReframeShort,
	constants.FeatureReframeLong,
	constants.FeatureConvertConcise,
	constants.FeatureConvertBalanced,
	constants.FeatureConvertDetailed,
	constants.FeaturePersonaGenerator,
	constants.FeatureImagePrompt,
	constants.FeatureImageCaption,
	constants.FeatureExplainMeaning,
	constants.FeatureExplainStory,
	constants.FeatureExplainELI5,
	constants.FeatureSmartFollowups,
	constants.FeatureSmartActions,
	constants.FeatureSmartEnhancements,
	constants.FeatureSaveNote,
	constants.FeatureSavePrompt,
	constants.FeatureSavePersona,
}

// GetCosts returns the feature cost table so the extension can render
// prices without hardcoding them.
func GetCosts(ctx context.Context, input *struct{}) (*CostsOutput, error) {
	out := &CostsOutput{}
	out.Body.Costs = make(map[string]int, len(allFeatures))
	for _, f := range allFeatures {
		out.Body.Costs[string(f)] = constants.CreditCost(f)
	}
	return out, nil
}

// FeatureInfo describes one feature for the extension's mode picker.
type FeatureInfo struct {
	Feature     string `json:"feature"`
	Cost        int    `json:"cost"`
	Free        bool   `json:"free"`
	Placeholder string `json:"placeholder"`
}

// FeaturesOutput lists every feature with cost and input hint.
type FeaturesOutput struct {
	Body struct {
		Features []FeatureInfo `json:"features"`
	}
}

// GetFeatures returns the full feature catalog.
func GetFeatures(ctx context.Context, input *struct{}) (*FeaturesOutput, error) {
	out := &FeaturesOutput{}
	out.Body.Features = make([]FeatureInfo, 0, len(allFeatures))
	for _, f := range allFeatures {
		out.Body.Features = append(out.Body.Features, FeatureInfo{
			Feature:     string(f),
			Cost:        constants.CreditCost(f),
			Free:        f.IsFree(),
			Placeholder: constants.Placeholder(f),
		})
	}
	return out, nil
}

func mapAssistError(err error) error {
	if errors.Is(err, service.ErrUnsupportedFeature) {
		return huma.Error422UnprocessableEntity("unsupported feature for this operation")
	}
	return huma.Error500InternalServerError("feature invocation failed")
}
