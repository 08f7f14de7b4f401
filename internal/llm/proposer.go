package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aldric/regent/internal/events"
	"github.com/aldric/regent/internal/realm"
)

const proposerSystem = `You write short narrative events for a medieval kingdom-management game.
Respond with a single JSON object and nothing else:
{"title": "...", "description": "...", "choices": [{"text": "...", "impact": {"population": 0, "economy": 0, "military": 0, "happiness": 0}}]}
Rules:
- 2 or 3 choices, each a plausible ruler's decision with tradeoffs.
- economy, military and happiness impacts are integers in [-20, 20].
- population impacts are integers in [-200, 200].
- description is 1-3 sentences, second person, no markdown.`

// Propose asks the model for event content matching the requested
// category and kingdom situation. Malformed output is returned as an
// error; the caller substitutes template content.
func (c *Client) Propose(ctx context.Context, req events.Request) (*events.Proposal, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("llm client not configured")
	}

	prompt := buildPrompt(req)
	text, err := c.Complete(ctx, proposerSystem, prompt, 600)
	if err != nil {
		return nil, err
	}

	var proposal events.Proposal
	if err := json.Unmarshal([]byte(extractJSON(text)), &proposal); err != nil {
		return nil, &realm.ValidationError{Field: "proposal", Reason: err.Error()}
	}
	return &proposal, nil
}

func buildPrompt(req events.Request) string {
	k := req.Kingdom
	var b strings.Builder
	fmt.Fprintf(&b, "Kingdom: %s (turn %d, difficulty %s)\n", k.Name, k.Turn, k.Difficulty)
	fmt.Fprintf(&b, "Stats: population %d, economy %d, military %d, happiness %d\n",
		k.Stats.Population, k.Stats.Economy, k.Stats.Military, k.Stats.Happiness)

	switch req.Category {
	case realm.EventInternal:
		b.WriteString("Write an INTERNAL event: domestic politics, economy, or the populace.\n")
	case realm.EventExternal:
		b.WriteString("Write an EXTERNAL event: foreign powers, borders, or trade partners.\n")
	default:
		b.WriteString("Write a RANDOM event: omens, discoveries, or strange occurrences.\n")
	}

	if req.Chain != nil {
		fmt.Fprintf(&b, "This continues a %s storyline at step %d.\n", req.Chain.Type, req.Chain.Step+1)
		for _, o := range req.Chain.Outcomes {
			fmt.Fprintf(&b, "Earlier the ruler chose: %s\n", o.Choice)
		}
		b.WriteString("A choice may set \"continue_chain\": true to push the storyline onward or \"end_chain\": true to close it.\n")
	}
	return b.String()
}

// extractJSON trims any prose the model wraps around the JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

var _ events.Proposer = (*Client)(nil)
