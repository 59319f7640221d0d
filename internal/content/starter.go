package content

import "github.com/sandsofduat/duat-server/internal/game"

// Starter returns the built-in starter catalog: the Desert Wanderer card
// set and the early-act enemies. Used by tests and as a fallback when no
// content directory is configured.
func Starter() *Catalog {
	catalog, err := build(starterCards, starterEnemies)
	if err != nil {
		// The starter set is compiled in; a validation failure here is a
		// programming error.
		panic(err)
	}
	return catalog
}

// StarterHand returns the ordered opening hand drawn from the starter
// card set.
func (c *Catalog) StarterHand() []game.Card {
	ids := []string{"tomb_strike", "tomb_strike", "sandstone_ward", "ankh_blessing", "desert_whisper"}
	hand := make([]game.Card, 0, len(ids))
	for _, id := range ids {
		if card, ok := c.Cards[id]; ok {
			hand = append(hand, card)
		}
	}
	return hand
}

var starterCards = []cardDoc{
	{
		ID: "desert_whisper", Name: "Desert Whisper", Cost: 0,
		Effects: []effectDoc{{Kind: "DRAW", Value: 1, Target: "SELF"}},
	},
	{
		ID: "sand_grain", Name: "Sand Grain", Cost: 0,
		Effects: []effectDoc{{Kind: "GAIN_SAND", Value: 1, Target: "SELF"}},
	},
	{
		ID: "tomb_strike", Name: "Tomb Strike", Cost: 1,
		Effects: []effectDoc{{Kind: "DAMAGE", Value: 6, Target: "OPPONENT"}},
	},
	{
		ID: "sandstone_ward", Name: "Sandstone Ward", Cost: 1,
		Effects: []effectDoc{{Kind: "BLOCK", Value: 6, Target: "SELF"}},
	},
	{
		ID: "ankh_blessing", Name: "Ankh Blessing", Cost: 1,
		Effects: []effectDoc{{Kind: "HEAL", Value: 5, Target: "SELF"}},
	},
	{
		ID: "scarab_swarm", Name: "Scarab Swarm", Cost: 2,
		Effects: []effectDoc{{Kind: "DAMAGE", Value: 9, Target: "OPPONENT"}},
	},
	{
		ID: "papyrus_scroll", Name: "Papyrus Scroll", Cost: 2,
		Effects: []effectDoc{{Kind: "DRAW", Value: 2, Target: "SELF"}},
	},
	{
		ID: "serpents_coil", Name: "Serpent's Coil", Cost: 2,
		Effects: []effectDoc{
			{Kind: "DAMAGE", Value: 5, Target: "OPPONENT"},
			{Kind: "APPLY_STATUS", Value: 2, Target: "OPPONENT", Status: "WEAK"},
		},
	},
	{
		ID: "mummys_wrath", Name: "Mummy's Wrath", Cost: 3,
		Effects: []effectDoc{{Kind: "DAMAGE", Value: 14, Target: "OPPONENT"}},
	},
	{
		ID: "isis_grace", Name: "Isis's Grace", Cost: 3,
		Effects: []effectDoc{
			{Kind: "HEAL", Value: 8, Target: "SELF"},
			{Kind: "DRAW", Value: 1, Target: "SELF"},
		},
	},
	{
		ID: "pyramid_power", Name: "Pyramid Power", Cost: 4,
		Effects: []effectDoc{{Kind: "DAMAGE", Value: 18, Target: "OPPONENT"}},
	},
	{
		ID: "thoths_wisdom", Name: "Thoth's Wisdom", Cost: 4,
		Effects: []effectDoc{
			{Kind: "DRAW", Value: 3, Target: "SELF"},
			{Kind: "GAIN_SAND", Value: 2, Target: "SELF"},
		},
	},
	{
		ID: "anubis_judgment", Name: "Anubis Judgment", Cost: 5,
		Effects: []effectDoc{{Kind: "DAMAGE", Value: 25, Target: "OPPONENT"}},
	},
	{
		ID: "ras_solar_flare", Name: "Ra's Solar Flare", Cost: 6,
		Effects: []effectDoc{{Kind: "DAMAGE", Value: 30, Target: "OPPONENT"}},
	},
}

var starterEnemies = []enemyDoc{
	{
		ID: "scarab", Name: "Scarab", Health: 20, MaxHealth: 20,
		Actions: []actionDoc{
			{
				Name: "Claw Strike", Cost: 1, Weight: 0.6,
				Description: "A quick claw attack dealing 8 damage.",
				Effects:     []effectDoc{{Kind: "DAMAGE", Value: 8, Target: "OPPONENT"}},
			},
			{
				Name: "Guard Stance", Cost: 2, Weight: 0.3,
				Description: "Defensive stance, gaining 12 block.",
				Effects:     []effectDoc{{Kind: "BLOCK", Value: 12, Target: "SELF"}},
			},
			{
				Name: "Fury Swipe", Cost: 3, Weight: 0.4,
				Description: "A powerful attack dealing 15 damage.",
				Effects:     []effectDoc{{Kind: "DAMAGE", Value: 15, Target: "OPPONENT"}},
			},
		},
	},
	{
		ID: "tomb_guardian", Name: "Tomb Guardian", Health: 35, MaxHealth: 35,
		Actions: []actionDoc{
			{
				Name: "Stone Fist", Cost: 2, Weight: 0.5,
				Description: "A crushing blow dealing 10 damage.",
				Effects:     []effectDoc{{Kind: "DAMAGE", Value: 10, Target: "OPPONENT"}},
			},
			{
				Name: "Ancient Bulwark", Cost: 2, Weight: 0.4,
				Description: "Raises a ward of 14 block.",
				Effects:     []effectDoc{{Kind: "BLOCK", Value: 14, Target: "SELF"}},
			},
			{
				Name: "Curse of Ages", Cost: 3, Weight: 0.3,
				Description: "Weakens the intruder for 2 turns.",
				Effects: []effectDoc{
					{Kind: "APPLY_STATUS", Value: 2, Target: "OPPONENT", Status: "WEAK"},
					{Kind: "DAMAGE", Value: 4, Target: "OPPONENT"},
				},
			},
		},
	},
}
