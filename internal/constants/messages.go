package constants

import "time"

// Request timeouts.
const (
	// DefaultRequestTimeout applies to most API endpoints.
	DefaultRequestTimeout = 30 * time.Second

	// BackendRequestTimeout bounds a single backend round trip. The
	// extension predecessor had no timeout at all and could leave the UI
	// loading forever; the bound is deliberate here.
	BackendRequestTimeout = 120 * time.Second
)

// User-facing messages. The credit and extraction strings are contractual:
// the extension UI pattern-matches on them.
const (
	// MsgInsufficientCredits is formatted with (required, available).
	MsgInsufficientCredits = "Insufficient credits. This feature requires %d credits, but you have %d."

	// MsgDeductFailed is the fallback when the backend rejects a deduction
	// without its own message.
	MsgDeductFailed = "Credit deduction failed"

	// MsgAccountStatus is the generic authorization-denied fallback.
	MsgAccountStatus = "Please check your account status."

	// MsgExtractionFailed reports the conversation-unavailable sentinel.
	MsgExtractionFailed = "Unable to extract conversation. Please ensure there is a conversation visible on the page."

	// MsgNetworkError covers transport-level failures.
	MsgNetworkError = "Network error. Please check your connection and try again."

	// MsgNoResponse covers an empty or unreadable backend reply.
	MsgNoResponse = "Connection issue. Please try again."
)

// Placeholder text shown per selected feature when no input is available.
var placeholders = map[Feature]string{
	FeatureImagePrompt:       "Right-click an image to generate a prompt...",
	FeatureImageCaption:      "Right-click an image to generate a caption...",
	FeatureSaveNote:          "Highlight text and double-click to save as note...",
	FeatureSavePrompt:        "Highlight text and double-click to save as prompt...",
	FeatureSavePersona:       "Highlight text and double-click to save as persona...",
	FeatureSmartFollowups:    "Right-click on an AI chat page to generate follow-up questions...",
	FeatureSmartActions:      "Right-click on an AI chat page to generate actionable steps...",
	FeatureSmartEnhancements: "Highlight text and double-click to get enhancement suggestions...",
	FeaturePersonaGenerator:  "Highlight a keyword and double-click to generate an AI persona...",
}

// DefaultPlaceholder is used for features without a specific prompt.
const DefaultPlaceholder = "Highlight text to begin..."

// Placeholder returns the input hint for a feature.
func Placeholder(f Feature) string {
	if msg, ok := placeholders[f]; ok {
		return msg
	}
	return DefaultPlaceholder
}
