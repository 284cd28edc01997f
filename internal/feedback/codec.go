// Package feedback encodes the questionnaire payload and photo list stored
// on each feedback entry.
package feedback

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// NotAvailable is rendered in place of an absent section or field.
const NotAvailable = "N/A"

// PhysicalResponse captures irritation and usage compliance.
type PhysicalResponse struct {
	AdverseReaction string `json:"adverse_reaction"` // yes, no
	Compliancy      string `json:"compliancy"`       // yes, partially, no
}

// EffectivenessMetrics holds the 1-10 effectiveness scores.
type EffectivenessMetrics struct {
	Absorption         int `json:"absorption"`
	Hydration          int `json:"hydration"`
	TextureImprovement int `json:"texture_improvement"`
	PrimaryImprovement int `json:"primary_improvement"`
	OverallImprovement int `json:"overall_improvement"`
}

// UserExperience describes the sensory side of the product.
type UserExperience struct {
	Smell        string `json:"smell"`       // pleasant, neutral, unpleasant
	Texture      string `json:"texture"`     // light, medium, thick
	Application  string `json:"application"` // easy, moderate, difficult
	Satisfaction int    `json:"satisfaction"`
}

// EmotionalRead is the tester's overall impression.
type EmotionalRead struct {
	SkinLooks     string `json:"skin_looks"`     // yes, somewhat, no, too_early
	ContinueUsing string `json:"continue_using"` // yes, maybe, no
	Confidence    int    `json:"confidence"`
}

// Payload is the full questionnaire. Sections are present or absent as a
// whole; a nil section decodes from a blob that lacks it.
type Payload struct {
	PhysicalResponse     *PhysicalResponse     `json:"physical_response,omitempty"`
	EffectivenessMetrics *EffectivenessMetrics `json:"effectiveness_metrics,omitempty"`
	UserExperience       *UserExperience       `json:"user_experience,omitempty"`
	EmotionalRead        *EmotionalRead        `json:"emotional_read,omitempty"`
	AdminNotes           string                `json:"admin_notes,omitempty"`
}

// FromForm builds a payload from submitted questionnaire fields. Numeric
// fields that are missing or unparseable become 0. Enum fields are stored
// verbatim.
func FromForm(form url.Values) Payload {
	return Payload{
		PhysicalResponse: &PhysicalResponse{
			AdverseReaction: form.Get("adverse_reaction"),
			Compliancy:      form.Get("compliancy"),
		},
		EffectivenessMetrics: &EffectivenessMetrics{
			Absorption:         formInt(form, "absorption"),
			Hydration:          formInt(form, "hydration"),
			TextureImprovement: formInt(form, "texture_imp"),
			PrimaryImprovement: formInt(form, "primary_imp"),
			OverallImprovement: formInt(form, "overall_imp"),
		},
		UserExperience: &UserExperience{
			Smell:        form.Get("smell"),
			Texture:      form.Get("texture"),
			Application:  form.Get("application"),
			Satisfaction: formInt(form, "satisfaction"),
		},
		EmotionalRead: &EmotionalRead{
			SkinLooks:     form.Get("skin_looks"),
			ContinueUsing: form.Get("continue_using"),
			Confidence:    formInt(form, "confidence"),
		},
		AdminNotes: form.Get("notes"),
	}
}

func formInt(form url.Values, key string) int {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	// Browsers may submit range inputs as "7.0".
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

// Encode serializes p to the stored text form.
func Encode(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored blob. An empty blob is an empty payload.
func Decode(data string) (Payload, error) {
	var p Payload
	if strings.TrimSpace(data) == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// DecodeLenient is Decode for display paths: malformed blobs yield an
// empty payload and ok=false instead of an error.
func DecodeLenient(data string) (p Payload, ok bool) {
	p, err := Decode(data)
	if err != nil {
		return Payload{}, false
	}
	return p, true
}

// DecodeRaw returns the stored blob as generic JSON for export. It returns
// nil when the blob is empty or malformed.
func DecodeRaw(data string) json.RawMessage {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return nil
	}
	return json.RawMessage(trimmed)
}
