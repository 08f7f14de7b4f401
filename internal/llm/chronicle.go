// Chronicle generation — converts a kingdom's recent history into
// narrative prose.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ChronicleData holds the raw material for one chronicle entry.
type ChronicleData struct {
	KingdomName string
	Turn        int
	Difficulty  string

	Population int
	Economy    int
	Military   int
	Happiness  int

	// Recent resolved events, newest first: "title — choice taken".
	Decisions []string

	// Completed storylines: "type: trigger (n chapters)".
	Storylines []string
}

// Chronicle is one generated entry of the royal record.
type Chronicle struct {
	GeneratedAt time.Time `json:"generated_at"`
	Turn        int       `json:"turn"`
	Content     string    `json:"content"`
}

// GenerateChronicle writes a court-historian account of the kingdom's
// recent turns. Without a configured client (or on API failure) it
// produces a plain factual digest instead.
func GenerateChronicle(ctx context.Context, client *Client, data *ChronicleData) (*Chronicle, error) {
	if !client.Enabled() {
		return &Chronicle{
			GeneratedAt: time.Now().UTC(),
			Turn:        data.Turn,
			Content:     fallbackChronicle(data),
		}, nil
	}

	system := `You are the court historian of a medieval kingdom, writing the official chronicle.
Write a single entry covering the recent turns: the ruler's decisions, the state of the realm, and the mood of the people.
Period prose, slightly formal, a touch of wry observation. Under 300 words. Do not break character or mention that this is a game.`

	content, err := client.Complete(ctx, system, buildChroniclePrompt(data), 600)
	if err != nil {
		// Chronicle is decoration; degrade to the digest.
		return &Chronicle{
			GeneratedAt: time.Now().UTC(),
			Turn:        data.Turn,
			Content:     fallbackChronicle(data),
		}, nil
	}

	return &Chronicle{
		GeneratedAt: time.Now().UTC(),
		Turn:        data.Turn,
		Content:     content,
	}, nil
}

func buildChroniclePrompt(data *ChronicleData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kingdom: %s, year of reign %d (difficulty %s)\n", data.KingdomName, data.Turn, data.Difficulty)
	fmt.Fprintf(&b, "The realm: %d souls, economy %d/100, military %d/100, happiness %d/100\n",
		data.Population, data.Economy, data.Military, data.Happiness)

	if len(data.Decisions) > 0 {
		b.WriteString("Recent decisions of the crown:\n")
		for _, d := range data.Decisions {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(data.Storylines) > 0 {
		b.WriteString("Concluded affairs of state:\n")
		for _, s := range data.Storylines {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

func fallbackChronicle(data *ChronicleData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "In the %d. turn of the reign over %s, the realm counted %d souls.\n",
		data.Turn, data.KingdomName, data.Population)
	fmt.Fprintf(&b, "The treasury stood at %d, the army at %d, and the people's contentment at %d.\n",
		data.Economy, data.Military, data.Happiness)
	for _, d := range data.Decisions {
		fmt.Fprintf(&b, "It is recorded that %s.\n", d)
	}
	return b.String()
}
