// Package content loads the static card and enemy catalogs produced by the
// asset pipeline. The combat engine consumes this data and never writes it;
// a malformed catalog is a contract violation and fails the load.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandsofduat/duat-server/internal/game"
	"github.com/sandsofduat/duat-server/internal/game/hourglass"
)

// Catalog is the validated content set for the combat server.
type Catalog struct {
	Cards   map[string]game.Card
	Enemies map[string]Enemy
}

// Enemy is one enemy archetype: its stat block and action table.
type Enemy struct {
	ID        string
	Name      string
	Health    int
	MaxHealth int
	Actions   []game.EnemyAction
}

type effectDoc struct {
	Kind   string `json:"kind"`
	Value  int    `json:"value"`
	Target string `json:"target"`
	Status string `json:"status,omitempty"`
}

type cardDoc struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Cost    int         `json:"cost"`
	Effects []effectDoc `json:"effects"`
}

type actionDoc struct {
	Name        string      `json:"name"`
	Cost        int         `json:"cost"`
	Weight      float64     `json:"weight"`
	Description string      `json:"description"`
	Effects     []effectDoc `json:"effects"`
}

type enemyDoc struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Health    int         `json:"health"`
	MaxHealth int         `json:"max_health"`
	Actions   []actionDoc `json:"actions"`
}

var effectKinds = map[string]game.EffectKind{
	"DAMAGE":       game.EffectDamage,
	"HEAL":         game.EffectHeal,
	"BLOCK":        game.EffectBlock,
	"GAIN_SAND":    game.EffectGainSand,
	"DRAW":         game.EffectDraw,
	"APPLY_STATUS": game.EffectApplyStatus,
}

var targetSelectors = map[string]game.TargetSelector{
	"SELF":     game.TargetSelf,
	"OPPONENT": game.TargetOpponent,
}

var statusKinds = map[string]game.StatusKind{
	"VULNERABLE": game.StatusVulnerable,
	"WEAK":       game.StatusWeak,
	"STRENGTH":   game.StatusStrength,
	"DEXTERITY":  game.StatusDexterity,
}

// Load reads cards.json and enemies.json from dir and validates every
// entry. Any unknown kind, selector, status, out-of-range cost, or
// non-positive weight aborts the load.
func Load(dir string) (*Catalog, error) {
	var cards []cardDoc
	if err := readJSON(filepath.Join(dir, "cards.json"), &cards); err != nil {
		return nil, err
	}
	var enemies []enemyDoc
	if err := readJSON(filepath.Join(dir, "enemies.json"), &enemies); err != nil {
		return nil, err
	}
	return build(cards, enemies)
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return nil
}

func build(cards []cardDoc, enemies []enemyDoc) (*Catalog, error) {
	catalog := &Catalog{
		Cards:   make(map[string]game.Card, len(cards)),
		Enemies: make(map[string]Enemy, len(enemies)),
	}

	for _, doc := range cards {
		if doc.ID == "" {
			return nil, fmt.Errorf("card %q: missing id", doc.Name)
		}
		if _, dup := catalog.Cards[doc.ID]; dup {
			return nil, fmt.Errorf("card %s: duplicate id", doc.ID)
		}
		if doc.Cost < 0 || doc.Cost > hourglass.AbsoluteMaxCapacity {
			return nil, fmt.Errorf("card %s: cost %d outside 0..%d", doc.ID, doc.Cost, hourglass.AbsoluteMaxCapacity)
		}
		effects, err := parseEffects(doc.Effects)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", doc.ID, err)
		}
		catalog.Cards[doc.ID] = game.Card{
			ID:      doc.ID,
			Name:    doc.Name,
			Cost:    doc.Cost,
			Effects: effects,
		}
	}

	for _, doc := range enemies {
		if doc.ID == "" {
			return nil, fmt.Errorf("enemy %q: missing id", doc.Name)
		}
		if _, dup := catalog.Enemies[doc.ID]; dup {
			return nil, fmt.Errorf("enemy %s: duplicate id", doc.ID)
		}
		if doc.MaxHealth <= 0 || doc.Health <= 0 || doc.Health > doc.MaxHealth {
			return nil, fmt.Errorf("enemy %s: invalid health %d/%d", doc.ID, doc.Health, doc.MaxHealth)
		}
		actions := make([]game.EnemyAction, 0, len(doc.Actions))
		for _, a := range doc.Actions {
			if a.Cost < 0 || a.Cost > hourglass.AbsoluteMaxCapacity {
				return nil, fmt.Errorf("enemy %s action %q: cost %d outside 0..%d", doc.ID, a.Name, a.Cost, hourglass.AbsoluteMaxCapacity)
			}
			if a.Weight <= 0 {
				return nil, fmt.Errorf("enemy %s action %q: non-positive weight %v", doc.ID, a.Name, a.Weight)
			}
			effects, err := parseEffects(a.Effects)
			if err != nil {
				return nil, fmt.Errorf("enemy %s action %q: %w", doc.ID, a.Name, err)
			}
			actions = append(actions, game.EnemyAction{
				Name:        a.Name,
				Cost:        a.Cost,
				Effects:     effects,
				Weight:      a.Weight,
				Description: a.Description,
			})
		}
		catalog.Enemies[doc.ID] = Enemy{
			ID:        doc.ID,
			Name:      doc.Name,
			Health:    doc.Health,
			MaxHealth: doc.MaxHealth,
			Actions:   actions,
		}
	}

	return catalog, nil
}

func parseEffects(docs []effectDoc) ([]game.Effect, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no effects")
	}
	effects := make([]game.Effect, 0, len(docs))
	for _, doc := range docs {
		kind, ok := effectKinds[doc.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown effect kind %q", doc.Kind)
		}
		target, ok := targetSelectors[doc.Target]
		if !ok {
			return nil, fmt.Errorf("unknown target selector %q", doc.Target)
		}
		if doc.Value < 0 {
			return nil, fmt.Errorf("negative effect value %d", doc.Value)
		}
		effect := game.Effect{Kind: kind, Value: doc.Value, Target: target}
		if kind == game.EffectApplyStatus {
			status, ok := statusKinds[doc.Status]
			if !ok {
				return nil, fmt.Errorf("unknown status kind %q", doc.Status)
			}
			effect.Status = status
		}
		effects = append(effects, effect)
	}
	return effects, nil
}
