package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldric/regent/internal/entropy"
	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
)

type stubProposer struct {
	proposal *Proposal
	err      error
}

func (s stubProposer) Propose(context.Context, Request) (*Proposal, error) {
	return s.proposal, s.err
}

func eventKingdom(stats realm.Stats) *realm.Kingdom {
	return &realm.Kingdom{
		ID:    "k1",
		Owner: "tester",
		Name:  "Testmark",
		Stats: stats,
		Turn:  3,
		Phase: realm.PhaseAwaitingAction,
	}
}

func TestSelectCategoryOverrides(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), nil, nil)

	// Acute distress forces internal events.
	assert.Equal(t, realm.EventInternal, c.SelectCategory(realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 20}))
	assert.Equal(t, realm.EventInternal, c.SelectCategory(realm.Stats{Population: 1000, Economy: 15, Military: 40, Happiness: 60}))
	// A dominant military invites outside attention.
	assert.Equal(t, realm.EventExternal, c.SelectCategory(realm.Stats{Population: 1000, Economy: 50, Military: 80, Happiness: 60}))
}

func TestSelectCategoryWeightedDraw(t *testing.T) {
	stats := realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60}

	// Base weights 0.4/0.4/0.2: mid rolls land in the EXTERNAL band,
	// only the top fifth reaches RANDOM.
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), nil, nil)
	assert.Equal(t, realm.EventExternal, c.SelectCategory(stats))
	c = NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.7), nil, nil)
	assert.Equal(t, realm.EventExternal, c.SelectCategory(stats))
	c = NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.85), nil, nil)
	assert.Equal(t, realm.EventRandom, c.SelectCategory(stats))

	// A weak economy doubles the internal weight; a low roll picks it.
	weak := realm.Stats{Population: 1000, Economy: 40, Military: 60, Happiness: 60}
	c = NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.1), nil, nil)
	assert.Equal(t, realm.EventInternal, c.SelectCategory(weak))
	c = NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.9), nil, nil)
	assert.Equal(t, realm.EventRandom, c.SelectCategory(weak))

	// An unhappy populace boosts INTERNAL the same way: the roll that
	// picked EXTERNAL on balanced stats stays internal here.
	glum := realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 40}
	c = NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), nil, nil)
	assert.Equal(t, realm.EventInternal, c.SelectCategory(glum))
}

func TestGenerateTemplateOnly(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), nil, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	out := c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Event)
	assert.Nil(t, out.Chain)
	assert.Empty(t, out.Notifications)

	assert.Equal(t, k.ID, out.Event.KingdomID)
	assert.Equal(t, realm.EventExternal, out.Event.Type)
	assert.GreaterOrEqual(t, len(out.Event.Choices), 2)
	assert.False(t, out.Event.Resolved)
}

func TestGenerateUsesProposer(t *testing.T) {
	proposal := &Proposal{
		Title:       "The Alchemist's Offer",
		Description: "A traveling alchemist claims to transmute lead.",
		Choices: []realm.Choice{
			{Text: "Fund the experiments", Impact: realm.Impact{Economy: -50}}, // over the cap
			{Text: "Banish the charlatan", Impact: realm.Impact{Happiness: -2}},
		},
	}
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{proposal: proposal}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	out := c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Event)
	assert.Equal(t, "The Alchemist's Offer", out.Event.Title)
	assert.Empty(t, out.Notifications)
	// Oversized impacts are clamped, not rejected.
	assert.Equal(t, -realm.MaxImpactMagnitude, out.Event.Choices[0].Impact.Economy)
}

func TestGenerateScalesImpactsForDifficulty(t *testing.T) {
	proposal := &Proposal{
		Title:       "The Alchemist's Offer",
		Description: "A traveling alchemist claims to transmute lead.",
		Choices: []realm.Choice{
			{Text: "Fund the experiments", Impact: realm.Impact{Economy: 10, Happiness: -10}},
			{Text: "Banish the charlatan", Impact: realm.Impact{Happiness: -5}},
		},
	}
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{proposal: proposal}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})
	k.Difficulty = realm.DifficultyEasy

	out := c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Event)
	// The displayed numbers carry the difficulty scaling: EASY amplifies
	// gains and softens losses.
	assert.Equal(t, realm.Impact{Economy: 12, Happiness: -8}, out.Event.Choices[0].Impact)
	assert.Equal(t, realm.Impact{Happiness: -4}, out.Event.Choices[1].Impact)
}

func TestGenerateLeavesTemplatesUntouched(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), nil, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})
	k.Difficulty = realm.DifficultyHard

	// The same template drawn twice must show identical numbers; scaling
	// that bled into the shared template would compound per draw.
	first := c.Generate(context.Background(), k, false).Event
	second := c.Generate(context.Background(), k, false).Event
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Choices, second.Choices)
}

func TestGenerateFallsBackOnProposerError(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{err: errors.New("model unavailable")}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	out := c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Event)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, realm.NotifyInfo, out.Notifications[0].Type)
	assert.Contains(t, out.Notifications[0].Message, "scribes")
}

func TestGenerateFallsBackOnInvalidProposal(t *testing.T) {
	bad := &Proposal{Title: "Half-formed", Description: "?", Choices: []realm.Choice{{Text: "only one"}}}
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{proposal: bad}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	out := c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Event)
	assert.NotEqual(t, "Half-formed", out.Event.Title)
	require.Len(t, out.Notifications, 1)
}

func TestGenerateOpensChain(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.1), nil, nil)

	// Stable stats draw the diplomatic arc.
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 60})
	out := c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Chain)
	assert.Equal(t, ChainDiplomatic, out.Chain.Type)
	assert.Equal(t, out.Chain.ID, out.Event.ChainID)
	assert.Equal(t, 1, out.Event.Step)
	assert.Equal(t, "The Envoy Arrives", out.Event.Title)

	// A distressed kingdom draws the crisis arc instead.
	k = eventKingdom(realm.Stats{Population: 1000, Economy: 50, Military: 40, Happiness: 40})
	out = c.Generate(context.Background(), k, false)
	require.NotNil(t, out.Chain)
	assert.Equal(t, ChainCrisis, out.Chain.Type)
}

func TestGenerateSuppressesChainWhileActive(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.1), nil, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	out := c.Generate(context.Background(), k, true)
	assert.Nil(t, out.Chain)
	require.NotNil(t, out.Event)
	assert.Empty(t, out.Event.ChainID)
}

func TestNextChainEvent(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), nil, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	chain := NewChain(ChainDiplomatic, k, 5)
	require.NotNil(t, chain)
	chain.CurrentStep = 1

	next, err := c.NextChainEvent(context.Background(), chain, k, "terms_offered")
	require.NoError(t, err)
	assert.Equal(t, "Terms on the Table", next.Title)
	assert.Equal(t, 2, next.Step)
	assert.Equal(t, chain.ID, next.ChainID)

	// Unknown keys restart from the template's opening scene.
	next, err = c.NextChainEvent(context.Background(), chain, k, "no_such_scene")
	require.NoError(t, err)
	assert.Equal(t, "The Envoy Arrives", next.Title)

	chain.Type = "UNKNOWN"
	_, err = c.NextChainEvent(context.Background(), chain, k, "terms_offered")
	assert.Error(t, err)
}

func TestNextChainEventUsesProposer(t *testing.T) {
	proposal := &Proposal{
		Title:       "A Second Envoy",
		Description: "The Compact sends a higher-ranking voice to press its case.",
		Choices: []realm.Choice{
			{Text: "Hear the new terms", Impact: realm.Impact{Economy: 4}},
			{Text: "Send them both home", Impact: realm.Impact{Military: 2}, EndChain: true},
		},
	}
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{proposal: proposal}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	chain := NewChain(ChainDiplomatic, k, 5)
	require.NotNil(t, chain)
	chain.CurrentStep = 1

	next, err := c.NextChainEvent(context.Background(), chain, k, "terms_offered")
	require.NoError(t, err)
	assert.Equal(t, "A Second Envoy", next.Title)
	assert.Equal(t, chain.ID, next.ChainID)
	assert.Equal(t, 2, next.Step)
	// A proposed choice without storyline flags keeps the chain open; an
	// explicit end is respected.
	assert.True(t, next.Choices[0].ContinueChain)
	assert.False(t, next.Choices[1].ContinueChain)
	assert.True(t, next.Choices[1].EndChain)
}

func TestNextChainEventClosesAtStepCap(t *testing.T) {
	proposal := &Proposal{
		Title:       "The Final Audience",
		Description: "The envoy asks for your last word.",
		Choices: []realm.Choice{
			{Text: "Seal the pact", Impact: realm.Impact{Economy: 6}},
			{Text: "Let the talks lapse", Impact: realm.Impact{Military: 2}},
		},
	}
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{proposal: proposal}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	chain := NewChain(ChainDiplomatic, k, 5)
	require.NotNil(t, chain)
	chain.CurrentStep = 4

	next, err := c.NextChainEvent(context.Background(), chain, k, "")
	require.NoError(t, err)
	assert.Equal(t, 5, next.Step)
	for _, choice := range next.Choices {
		assert.True(t, choice.EndChain, "%q must close the storyline at the cap", choice.Text)
		assert.False(t, choice.ContinueChain)
	}
}

func TestNextChainEventFallsBackOnProposerError(t *testing.T) {
	c := NewCatalog(rules.DefaultBalance(), entropy.Fixed(0.5), stubProposer{err: errors.New("model unavailable")}, nil)
	k := eventKingdom(realm.Stats{Population: 1000, Economy: 60, Military: 60, Happiness: 60})

	chain := NewChain(ChainDiplomatic, k, 5)
	require.NotNil(t, chain)
	chain.CurrentStep = 1

	next, err := c.NextChainEvent(context.Background(), chain, k, "terms_offered")
	require.NoError(t, err)
	assert.Equal(t, "Terms on the Table", next.Title)
	assert.Equal(t, 2, next.Step)
}

func TestNewChainUnknownType(t *testing.T) {
	k := eventKingdom(realm.Stats{})
	assert.Nil(t, NewChain("UNKNOWN", k, 5))
}

func TestChainTemplateIntegrity(t *testing.T) {
	for name, tpl := range chainTemplates {
		t.Run(name, func(t *testing.T) {
			_, ok := tpl.Steps[tpl.Start]
			require.True(t, ok, "start step %q missing", tpl.Start)

			for key, step := range tpl.Steps {
				assert.GreaterOrEqual(t, len(step.Choices), 2, "step %q", key)
				for _, choice := range step.Choices {
					assert.NotEmpty(t, choice.Text, "step %q", key)
					if choice.NextEvent != "" {
						_, ok := tpl.Steps[choice.NextEvent]
						assert.True(t, ok, "step %q points at unknown scene %q", key, choice.NextEvent)
					}
					if !choice.ContinueChain {
						assert.True(t, choice.EndChain, "step %q has a choice that neither continues nor ends", key)
					}
				}
			}
		})
	}
}

func TestTemplateCatalogIntegrity(t *testing.T) {
	for category, pool := range templates {
		require.NotEmpty(t, pool, "%s", category)
		for _, tpl := range pool {
			assert.NotEmpty(t, tpl.Title)
			assert.NotEmpty(t, tpl.Description)
			require.GreaterOrEqual(t, len(tpl.Choices), 2, "%s", tpl.Title)
			require.LessOrEqual(t, len(tpl.Choices), 4, "%s", tpl.Title)
			for _, choice := range tpl.Choices {
				assert.NotEmpty(t, choice.Text, "%s", tpl.Title)
				assert.Equal(t, choice.Impact, choice.Impact.Clamp(), "%s impact exceeds cap", tpl.Title)
			}
		}
	}
}

func TestProposalValidate(t *testing.T) {
	valid := func() *Proposal {
		return &Proposal{
			Title:       "t",
			Description: "d",
			Choices:     []realm.Choice{{Text: "a"}, {Text: "b"}},
		}
	}

	assert.NoError(t, valid().Validate())

	p := valid()
	p.Title = ""
	assert.Error(t, p.Validate())

	p = valid()
	p.Description = ""
	assert.Error(t, p.Validate())

	p = valid()
	p.Choices = p.Choices[:1]
	assert.Error(t, p.Validate())

	p = valid()
	p.Choices[1].Text = ""
	assert.Error(t, p.Validate())

	p = valid()
	p.Choices[0].Impact = realm.Impact{Population: 5000, Economy: 99}
	require.NoError(t, p.Validate())
	assert.Equal(t, realm.MaxImpactMagnitude*realm.PopulationImpactScale, p.Choices[0].Impact.Population)
	assert.Equal(t, realm.MaxImpactMagnitude, p.Choices[0].Impact.Economy)
}

func TestResolveChoice(t *testing.T) {
	e := &realm.Event{
		Choices: []realm.Choice{
			{Text: "first", Impact: realm.Impact{Economy: 5}},
			{Text: "second"},
		},
	}

	choice, err := ResolveChoice(e, 0)
	require.NoError(t, err)
	assert.Equal(t, "first", choice.Text)

	_, err = ResolveChoice(e, 2)
	var verr *realm.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = ResolveChoice(e, -1)
	assert.Error(t, err)

	e.Resolved = true
	_, err = ResolveChoice(e, 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	chain := &realm.EventChain{
		Type:        ChainCrisis,
		Trigger:     "A sickness is spreading through the river district",
		CurrentStep: 3,
		Outcomes: []realm.ChainOutcome{
			{Step: 1, Impact: realm.Impact{Happiness: -8, Economy: -5}},
			{Step: 2, Impact: realm.Impact{Economy: -8, Happiness: 6}},
			{Step: 3, Impact: realm.Impact{Happiness: 8}},
		},
	}

	s := Summarize(chain)
	assert.Equal(t, ChainCrisis, s.Type)
	assert.Equal(t, 3, s.Steps)
	assert.Equal(t, realm.Impact{Economy: -13, Happiness: 6}, s.TotalImpact)
}
