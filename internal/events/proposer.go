// Package events generates and validates the narrative events that
// punctuate each turn: category selection, the built-in template
// catalog, model-proposed events, and multi-step event chains.
package events

import (
	"context"

	"github.com/aldric/regent/internal/realm"
)

// Request describes the situation an event is wanted for.
type Request struct {
	Kingdom  *realm.Kingdom
	Category realm.EventCategory

	// Chain is set when the event continues an existing storyline.
	Chain *ChainContext
}

// ChainContext carries the storyline state a proposer can build on.
type ChainContext struct {
	Type     string
	Step     int
	Outcomes []realm.ChainOutcome
}

// Proposal is candidate event content from a proposer. It is validated
// and clamped before becoming a playable event.
type Proposal struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Choices     []realm.Choice `json:"choices"`
}

// Proposer produces candidate event content. The model-backed client
// implements this; a failed or malformed proposal is never fatal — the
// catalog substitutes template content instead.
type Proposer interface {
	Propose(ctx context.Context, req Request) (*Proposal, error)
}

// Validate checks a proposal for playability: a title, a description,
// and two to four choices each with text. Impacts are clamped to the
// configured magnitude cap rather than rejected.
func (p *Proposal) Validate() error {
	if p.Title == "" {
		return &realm.ValidationError{Field: "title", Reason: "empty"}
	}
	if p.Description == "" {
		return &realm.ValidationError{Field: "description", Reason: "empty"}
	}
	if len(p.Choices) < 2 || len(p.Choices) > 4 {
		return &realm.ValidationError{Field: "choices", Reason: "need 2-4 choices"}
	}
	for i := range p.Choices {
		if p.Choices[i].Text == "" {
			return &realm.ValidationError{Field: "choices", Reason: "choice missing text"}
		}
		p.Choices[i].Impact = p.Choices[i].Impact.Clamp()
	}
	return nil
}
