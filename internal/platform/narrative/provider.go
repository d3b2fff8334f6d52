// Package narrative supplies free-text clinical content (lab values, imaging
// reports, referral reasons, notes) from a chat-completion model. Every
// caller goes through a Resolver, which bounds the call in time and falls
// back to locally generated text on any failure.
package narrative

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no provider is configured.
var ErrUnavailable = errors.New("narrative: provider unavailable")

// Kind identifies the clinical content a prompt asks for.
type Kind string

const (
	KindLabResult        Kind = "lab_result"
	KindRadiologyReport  Kind = "radiology_report"
	KindReferralReason   Kind = "referral_reason"
	KindClinicalNote     Kind = "clinical_note"
	KindDischargeSummary Kind = "discharge_summary"
)

// DefaultTemperature is the sampling temperature used for every kind.
const DefaultTemperature = 0.7

// MaxTokens returns the completion budget for the kind.
func (k Kind) MaxTokens() int {
	switch k {
	case KindLabResult:
		return 50
	case KindRadiologyReport:
		return 250
	case KindReferralReason, KindDischargeSummary:
		return 200
	case KindClinicalNote:
		return 150
	default:
		return 100
	}
}

// Prompt is a single completion request.
type Prompt struct {
	Kind        Kind
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// NewPrompt builds a prompt with the kind's token budget and the default
// temperature.
func NewPrompt(kind Kind, system, user string) Prompt {
	return Prompt{
		Kind:        kind,
		System:      system,
		User:        user,
		MaxTokens:   kind.MaxTokens(),
		Temperature: DefaultTemperature,
	}
}

// Provider completes prompts. Implementations must honour ctx cancellation.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}
