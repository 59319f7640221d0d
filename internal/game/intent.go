package game

import "math/rand"

// Intent selector defaults from the combat design: below the low-health
// threshold the enemy leans defensive, otherwise aggressive.
const (
	DefaultLowHealthThreshold = 0.3
	DefaultDefensiveBonus     = 1.5
	DefaultAggressiveBonus    = 1.2
)

// IntentSelector chooses the enemy's next action from the affordable
// subset of its action table using a health-aware weighted policy. The
// randomness source is injected so selection is reproducible in tests.
type IntentSelector struct {
	rng *rand.Rand

	LowHealthThreshold float64
	DefensiveBonus     float64
	AggressiveBonus    float64
}

// NewIntentSelector creates a selector with the default bias parameters.
func NewIntentSelector(rng *rand.Rand) *IntentSelector {
	return &IntentSelector{
		rng:                rng,
		LowHealthThreshold: DefaultLowHealthThreshold,
		DefensiveBonus:     DefaultDefensiveBonus,
		AggressiveBonus:    DefaultAggressiveBonus,
	}
}

// Select returns the chosen action, or nil when no action is affordable
// (the enemy turn passes and sand keeps accruing).
func (s *IntentSelector) Select(enemy *Combatant, actions []EnemyAction) *EnemyAction {
	affordable := make([]EnemyAction, 0, len(actions))
	for _, action := range actions {
		if enemy.HourGlass.CanAfford(action.Cost) {
			affordable = append(affordable, action)
		}
	}
	if len(affordable) == 0 {
		return nil
	}

	weights := make([]float64, len(affordable))
	total := 0.0
	for i, action := range affordable {
		weights[i] = s.biasedWeight(enemy, action)
		total += weights[i]
	}
	if total <= 0 {
		// Degenerate weights: fall back to uniform choice.
		chosen := affordable[s.rng.Intn(len(affordable))]
		return &chosen
	}

	roll := s.rng.Float64() * total
	for i, action := range affordable {
		roll -= weights[i]
		if roll < 0 {
			chosen := action
			return &chosen
		}
	}
	chosen := affordable[len(affordable)-1]
	return &chosen
}

// biasedWeight applies the health-based bias to an action's base weight.
func (s *IntentSelector) biasedWeight(enemy *Combatant, action EnemyAction) float64 {
	weight := action.Weight
	healthFraction := float64(enemy.Health) / float64(enemy.MaxHealth)

	if healthFraction < s.LowHealthThreshold {
		if action.HasEffectKind(EffectBlock) {
			weight *= s.DefensiveBonus
		}
	} else if action.HasEffectKind(EffectDamage) {
		weight *= s.AggressiveBonus
	}
	return weight
}
