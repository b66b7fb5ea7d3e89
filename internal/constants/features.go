// Package constants defines centralized configuration for feature credit
// pricing, request timeouts, and user-facing messages. Change values here to
// update pricing across the entire application. The credit buckets must match
// the backend's ledger exactly.
package constants

// Feature identifies one assist operation mode.
type Feature string

// Text processing modes (reframe bucket).
const (
	FeatureReframeCasual       Feature = "reframe_casual"
	FeatureReframeTechnical    Feature = "reframe_technical"
	FeatureReframeProfessional Feature = "reframe_professional"
	FeatureReframeELI5         Feature = "reframe_eli5"
	FeatureReframeShort        Feature = "reframe_short"
	FeatureReframeLong         Feature = "reframe_long"
)

// Prompt conversion modes.
const (
	FeatureConvertConcise  Feature = "convert_concise"
	FeatureConvertBalanced Feature = "convert_balanced"
	FeatureConvertDetailed Feature = "convert_detailed"
)

// Persona generation.
const (
	FeaturePersonaGenerator Feature = "persona_generator"
)

// Image processing modes.
const (
	FeatureImagePrompt  Feature = "image_prompt"
	FeatureImageCaption Feature = "image_caption"
)

// Explain modes.
const (
	FeatureExplainMeaning Feature = "explain_meaning"
	FeatureExplainStory   Feature = "explain_story"
	FeatureExplainELI5    Feature = "explain_eli5"
)

// AI assistant modes (conversation analysis).
const (
	FeatureSmartFollowups    Feature = "smart_followups"
	FeatureSmartActions      Feature = "smart_actions"
	FeatureSmartEnhancements Feature = "smart_enhancements"
)

// Free storage modes.
const (
	FeatureSaveNote    Feature = "save_note"
	FeatureSavePrompt  Feature = "save_prompt"
	FeatureSavePersona Feature = "save_persona"
)

// Credit costs per bucket.
const (
	CostTextProcessing = 6
	CostConvertPrompt  = 8
	CostPersona        = 10
	CostImage          = 12
	CostExplain        = 5
	CostAIAssistant    = 15
	CostFree           = 0

	// DefaultCost applies to any feature id absent from every bucket. New
	// feature ids must keep working without a table update, so an unmapped
	// id prices at the text-processing rate rather than failing.
	DefaultCost = 6
)

var creditBuckets = map[Feature]int{
	FeatureReframeCasual:       CostTextProcessing,
	FeatureReframeTechnical:    CostTextProcessing,
	FeatureReframeProfessional: CostTextProcessing,
	FeatureReframeELI5:         CostTextProcessing,
	FeatureReframeShort:        CostTextProcessing,
	FeatureReframeLong:         CostTextProcessing,

	FeatureConvertConcise:  CostConvertPrompt,
	FeatureConvertBalanced: CostConvertPrompt,
	FeatureConvertDetailed: CostConvertPrompt,

	FeaturePersonaGenerator: CostPersona,

	FeatureImagePrompt:  CostImage,
	FeatureImageCaption: CostImage,

	FeatureExplainMeaning: CostExplain,
	FeatureExplainStory:   CostExplain,
	FeatureExplainELI5:    CostExplain,

	FeatureSmartFollowups:    CostAIAssistant,
	FeatureSmartActions:      CostAIAssistant,
	FeatureSmartEnhancements: CostAIAssistant,

	FeatureSaveNote:    CostFree,
	FeatureSavePrompt:  CostFree,
	FeatureSavePersona: CostFree,
}

// CreditCost returns the credit price for a feature. Total: unmapped ids
// resolve to DefaultCost.
func CreditCost(f Feature) int {
	if cost, ok := creditBuckets[f]; ok {
		return cost
	}
	return DefaultCost
}

// IsFree reports whether the feature never requires credits.
func (f Feature) IsFree() bool {
	return CreditCost(f) == 0
}

// IsSave reports whether the feature is a local storage operation.
func (f Feature) IsSave() bool {
	return f == FeatureSaveNote || f == FeatureSavePrompt || f == FeatureSavePersona
}
