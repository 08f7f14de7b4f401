package events

import "github.com/aldric/regent/internal/realm"

// template is one built-in event. Templates are the offline catalog
// and the fallback when a proposer fails.
type template struct {
	Title       string
	Description string
	Category    realm.EventCategory
	Choices     []realm.Choice
}

// peaceful is the never-fatal fallback: always available, mild stakes,
// no choice can end a game on its own.
var peaceful = template{
	Title:       "A Quiet Season",
	Description: "The kingdom enjoys a rare stretch of calm. Your advisors suggest using the lull productively.",
	Category:    realm.EventRandom,
	Choices: []realm.Choice{
		{Text: "Hold a modest festival for the people", Impact: realm.Impact{Happiness: 5, Economy: -2}},
		{Text: "Quietly shore up the treasury", Impact: realm.Impact{Economy: 3, Happiness: -1}},
		{Text: "Let the season pass undisturbed", Impact: realm.Impact{}},
	},
}

// templates is the built-in catalog, grouped by category.
var templates = map[realm.EventCategory][]template{
	realm.EventInternal: {
		{
			Title:       "Merchant Guild Dispute",
			Description: "The merchant guilds are feuding over market stall rights, and trade in the capital is grinding to a halt.",
			Category:    realm.EventInternal,
			Choices: []realm.Choice{
				{Text: "Side with the established guilds", Impact: realm.Impact{Economy: 5, Happiness: -5}},
				{Text: "Open the markets to all traders", Impact: realm.Impact{Economy: -3, Happiness: 8}},
				{Text: "Impose a royal arbitration fee", Impact: realm.Impact{Economy: 8, Happiness: -8}},
			},
		},
		{
			Title:       "Harvest Shortfall",
			Description: "Early frosts have damaged the outlying farms. Granary stewards warn the winter stores may not stretch.",
			Category:    realm.EventInternal,
			Choices: []realm.Choice{
				{Text: "Buy grain from neighboring realms", Impact: realm.Impact{Economy: -10, Happiness: 5, Population: 50}},
				{Text: "Ration the granaries through winter", Impact: realm.Impact{Happiness: -8, Population: -30}},
			},
		},
		{
			Title:       "Tax Reform Petition",
			Description: "A coalition of landowners petitions for lower levies, hinting that collection may get harder if refused.",
			Category:    realm.EventInternal,
			Choices: []realm.Choice{
				{Text: "Grant the reduction", Impact: realm.Impact{Economy: -8, Happiness: 10}},
				{Text: "Refuse and tighten enforcement", Impact: realm.Impact{Economy: 6, Happiness: -10}},
				{Text: "Offer a partial compromise", Impact: realm.Impact{Economy: -2, Happiness: 3}},
			},
		},
		{
			Title:       "Artisans' Exhibition",
			Description: "The craftsmen's quarter proposes a grand exhibition to showcase the kingdom's finest work.",
			Category:    realm.EventInternal,
			Choices: []realm.Choice{
				{Text: "Fund it from the royal purse", Impact: realm.Impact{Economy: -5, Happiness: 10}},
				{Text: "Permit it without patronage", Impact: realm.Impact{Happiness: 3}},
			},
		},
	},
	realm.EventExternal: {
		{
			Title:       "Border Skirmish",
			Description: "Raiders have struck a frontier village. The garrison commander requests orders.",
			Category:    realm.EventExternal,
			Choices: []realm.Choice{
				{Text: "Dispatch a punitive expedition", Impact: realm.Impact{Military: 5, Economy: -8, Happiness: 3}},
				{Text: "Reinforce the frontier defensively", Impact: realm.Impact{Military: 3, Economy: -4}},
				{Text: "Pay the raiders to move on", Impact: realm.Impact{Economy: -12, Military: -5, Happiness: -3}},
			},
		},
		{
			Title:       "Trade Delegation",
			Description: "A wealthy foreign delegation offers exclusive trade terms in exchange for harbor privileges.",
			Category:    realm.EventExternal,
			Choices: []realm.Choice{
				{Text: "Accept the exclusive arrangement", Impact: realm.Impact{Economy: 12, Military: -3}},
				{Text: "Negotiate open terms for all", Impact: realm.Impact{Economy: 5, Happiness: 3}},
				{Text: "Decline and keep the harbors sovereign", Impact: realm.Impact{Military: 3, Economy: -5}},
			},
		},
		{
			Title:       "Refugee Caravan",
			Description: "A caravan of refugees from a war-torn neighbor has arrived at the gates seeking shelter.",
			Category:    realm.EventExternal,
			Choices: []realm.Choice{
				{Text: "Welcome them into the kingdom", Impact: realm.Impact{Population: 120, Happiness: 5, Economy: -6}},
				{Text: "Offer supplies but turn them away", Impact: realm.Impact{Economy: -3, Happiness: -2}},
				{Text: "Close the gates", Impact: realm.Impact{Happiness: -8, Military: 2}},
			},
		},
	},
	realm.EventRandom: {
		{
			Title:       "Strange Comet",
			Description: "A comet blazes across the night sky. The court astrologers disagree violently about its meaning.",
			Category:    realm.EventRandom,
			Choices: []realm.Choice{
				{Text: "Declare it a royal omen of fortune", Impact: realm.Impact{Happiness: 8}},
				{Text: "Commission a scholarly study", Impact: realm.Impact{Economy: -3, Happiness: 3}},
				{Text: "Forbid public speculation", Impact: realm.Impact{Happiness: -5}},
			},
		},
		{
			Title:       "Ancient Ruins Unearthed",
			Description: "Quarry workers have broken into a buried ruin filled with relics of a forgotten age.",
			Category:    realm.EventRandom,
			Choices: []realm.Choice{
				{Text: "Sell the relics to collectors", Impact: realm.Impact{Economy: 10, Happiness: -3}},
				{Text: "Found a royal museum", Impact: realm.Impact{Economy: -5, Happiness: 8}},
				{Text: "Seal the ruin and post guards", Impact: realm.Impact{Military: 2, Economy: -2}},
			},
		},
		{
			Title:       "Traveling Carnival",
			Description: "A famous traveling carnival asks leave to set up on the commons for a fortnight.",
			Category:    realm.EventRandom,
			Choices: []realm.Choice{
				{Text: "Grant leave and tax the gate", Impact: realm.Impact{Economy: 4, Happiness: 6}},
				{Text: "Refuse; the commons stay quiet", Impact: realm.Impact{Happiness: -4}},
			},
		},
		peaceful,
	},
}
