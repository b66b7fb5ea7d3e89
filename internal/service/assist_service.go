package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/solthron/assist-api/internal/backend"
	"github.com/solthron/assist-api/internal/constants"
	"github.com/solthron/assist-api/internal/conversation"
	"github.com/solthron/assist-api/internal/credits"
	"github.com/solthron/assist-api/internal/platform"
)

// State is the orchestrator's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// ErrUnsupportedFeature rejects features an operation cannot run.
var ErrUnsupportedFeature = errors.New("unsupported feature for this operation")

// AssistResult is the outcome of one feature invocation.
type AssistResult struct {
	OpID    string            `json:"op_id"`
	State   State             `json:"state"`
	Feature constants.Feature `json:"feature"`
	// Output is the generated text for single-output features.
	Output string `json:"output,omitempty"`
	// Items carries list results (follow-ups, actions, enhancements).
	Items []string `json:"items,omitempty"`
	// Message is the user-facing error on StateError.
	Message string `json:"message,omitempty"`
	// Credits reports what the gate decided, when a gate ran.
	Credits *credits.Decision `json:"credits,omitempty"`
}

// AssistService orchestrates feature runs: credit gate, backend call,
// error-to-message mapping and the loading state machine. Operations are
// single-slot: starting a new one supersedes the previous, and a superseded
// operation's completion is discarded instead of clobbering current state.
type AssistService struct {
	client    *backend.Client
	gate      *credits.Gate
	extractor *conversation.Extractor
	session   *SessionService
	logger    *slog.Logger

	mu    sync.Mutex
	opID  string
	state State
	last  *AssistResult
}

// NewAssistService creates the orchestrator in the idle state.
func NewAssistService(client *backend.Client, gate *credits.Gate, extractor *conversation.Extractor, session *SessionService, logger *slog.Logger) *AssistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistService{
		client:    client,
		gate:      gate,
		extractor: extractor,
		session:   session,
		logger:    logger,
		state:     StateIdle,
	}
}

// Status returns the current state and the latest completed result.
func (s *AssistService) Status() (State, *AssistResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.last
}

// ProcessText runs a text feature: reframing, conversion, explanation or
// persona generation.
func (s *AssistService) ProcessText(ctx context.Context, feature constants.Feature, text string) (*AssistResult, error) {
	if !isTextFeature(feature) {
		return nil, ErrUnsupportedFeature
	}

	op := s.begin()

	decision := s.gate.Authorize(ctx, feature)
	if !decision.Allowed {
		return s.deny(op, feature, decision), nil
	}

	req := backend.EnhanceRequest{Topic: text, Mode: feature}
	req.Tone, req.Length = deriveToneAndLength(feature, text)

	output, err := s.client.EnhanceText(ctx, req)
	if err != nil {
		return s.fail(op, feature, &decision, err), nil
	}
	return s.succeed(ctx, op, feature, &decision, output, nil), nil
}

// ProcessImage runs an image feature over a data-URL encoded image.
func (s *AssistService) ProcessImage(ctx context.Context, feature constants.Feature, imageURL string) (*AssistResult, error) {
	if feature != constants.FeatureImagePrompt && feature != constants.FeatureImageCaption {
		return nil, ErrUnsupportedFeature
	}

	op := s.begin()

	decision := s.gate.Authorize(ctx, feature)
	if !decision.Allowed {
		return s.deny(op, feature, decision), nil
	}

	output, err := s.client.ProcessImage(ctx, backend.ImageRequest{ImageURL: imageURL, Mode: feature})
	if err != nil {
		return s.fail(op, feature, &decision, err), nil
	}
	return s.succeed(ctx, op, feature, &decision, output, nil), nil
}

// ProcessConversation runs smart followups or smart actions over a page
// capture. Extraction happens before the credit gate: an unreadable page
// must never cost credits.
func (s *AssistService) ProcessConversation(ctx context.Context, feature constants.Feature, pageURL, html string) (*AssistResult, error) {
	if feature != constants.FeatureSmartFollowups && feature != constants.FeatureSmartActions {
		return nil, ErrUnsupportedFeature
	}

	op := s.begin()

	p := platform.Detect(pageURL)
	sample := s.extractor.ExtractString(p, html)
	if sample.Empty() {
		return s.failMessage(op, feature, nil, constants.MsgExtractionFailed), nil
	}

	decision := s.gate.Authorize(ctx, feature)
	if !decision.Allowed {
		return s.deny(op, feature, decision), nil
	}

	req := backend.ConversationRequest{Conversation: sample.Text(), Platform: string(p)}

	var items []string
	var err error
	if feature == constants.FeatureSmartFollowups {
		items, err = s.client.SmartFollowups(ctx, req)
	} else {
		items, err = s.client.SmartActions(ctx, req)
	}
	if err != nil {
		return s.fail(op, feature, &decision, err), nil
	}
	return s.succeed(ctx, op, feature, &decision, "", items), nil
}

// ProcessEnhancements runs smart enhancements over selected text.
func (s *AssistService) ProcessEnhancements(ctx context.Context, text string) (*AssistResult, error) {
	feature := constants.FeatureSmartEnhancements
	op := s.begin()

	decision := s.gate.Authorize(ctx, feature)
	if !decision.Allowed {
		return s.deny(op, feature, decision), nil
	}

	items, err := s.client.SmartEnhancements(ctx, text)
	if err != nil {
		return s.fail(op, feature, &decision, err), nil
	}
	return s.succeed(ctx, op, feature, &decision, "", items), nil
}

// begin claims the operation slot: any in-flight operation is superseded.
func (s *AssistService) begin() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading {
		s.logger.Debug("superseding in-flight operation", "op_id", s.opID)
	}
	s.opID = ulid.Make().String()
	s.state = StateLoading
	return s.opID
}

// finish installs a completed result unless the operation was superseded.
func (s *AssistService) finish(opID string, result *AssistResult) *AssistResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opID != s.opID {
		s.logger.Debug("discarding stale operation result", "op_id", opID)
		result.State = StateIdle // superseded; caller gets the result, state does not change
		return result
	}
	s.state = result.State
	s.last = result
	return result
}

func (s *AssistService) succeed(ctx context.Context, opID string, feature constants.Feature, decision *credits.Decision, output string, items []string) *AssistResult {
	result := &AssistResult{
		OpID:    opID,
		State:   StateSuccess,
		Feature: feature,
		Output:  output,
		Items:   items,
		Credits: decision,
	}
	if output != "" {
		if err := s.session.SetLastResult(ctx, output); err != nil {
			s.logger.Warn("failed to persist last result", "error", err)
		}
	}
	return s.finish(opID, result)
}

func (s *AssistService) deny(opID string, feature constants.Feature, decision credits.Decision) *AssistResult {
	message := decision.Message
	if message == "" {
		message = constants.MsgAccountStatus
	}
	return s.finish(opID, &AssistResult{
		OpID:    opID,
		State:   StateError,
		Feature: feature,
		Message: message,
		Credits: &decision,
	})
}

func (s *AssistService) fail(opID string, feature constants.Feature, decision *credits.Decision, err error) *AssistResult {
	s.logger.Error("feature failed", "feature", feature, "error", err)
	return s.failMessage(opID, feature, decision, userMessage(err))
}

func (s *AssistService) failMessage(opID string, feature constants.Feature, decision *credits.Decision, message string) *AssistResult {
	return s.finish(opID, &AssistResult{
		OpID:    opID,
		State:   StateError,
		Feature: feature,
		Message: message,
		Credits: decision,
	})
}

// userMessage maps an error to what the user should read. Each failure
// kind gets its own message so "backend down", "backend said no" and
// "backend sent garbage" stay distinguishable.
func userMessage(err error) string {
	switch {
	case backend.IsTimeout(err):
		return constants.MsgNoResponse
	case backend.IsTransport(err):
		return constants.MsgNetworkError
	case backend.IsShape(err):
		return "Invalid response format from service. Please try again."
	case backend.IsAPI(err):
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return constants.MsgAccountStatus
	default:
		return constants.MsgNoResponse
	}
}

func isTextFeature(f constants.Feature) bool {
	switch {
	case strings.HasPrefix(string(f), "reframe_"),
		strings.HasPrefix(string(f), "convert_"),
		strings.HasPrefix(string(f), "explain_"):
		return true
	case f == constants.FeaturePersonaGenerator:
		return true
	}
	return false
}

// deriveToneAndLength fills the request's tone and length the way each
// feature family expects.
func deriveToneAndLength(feature constants.Feature, text string) (tone, length string) {
	name := string(feature)

	switch {
	case strings.HasPrefix(name, "convert_"):
		tone = "professional"
		switch feature {
		case constants.FeatureConvertConcise:
			length = "concise"
		case constants.FeatureConvertDetailed:
			length = "detailed"
		default:
			length = "balanced"
		}
	case strings.HasPrefix(name, "explain_"):
		tone = "professional"
		length = "balanced"
	case feature == constants.FeaturePersonaGenerator:
		// The backend derives persona shape itself.
	default:
		switch {
		case strings.Contains(name, "technical"):
			tone = "technical"
		case strings.Contains(name, "casual"):
			tone = "casual"
		case strings.Contains(name, "professional"):
			tone = "professional"
		default:
			tone = DetectTone(text)
		}
		switch {
		case strings.Contains(name, "concise"):
			length = "concise"
		case strings.Contains(name, "detailed"):
			length = "detailed"
		default:
			length = "balanced"
		}
	}
	return tone, length
}
