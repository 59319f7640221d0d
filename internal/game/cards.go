package game

import (
	"encoding/json"
	"fmt"
)

// EffectKind identifies what an effect descriptor does when resolved.
type EffectKind int

const (
	EffectDamage EffectKind = iota
	EffectHeal
	EffectBlock
	EffectGainSand
	EffectDraw
	EffectApplyStatus
)

var effectKindNames = map[EffectKind]string{
	EffectDamage:      "DAMAGE",
	EffectHeal:        "HEAL",
	EffectBlock:       "BLOCK",
	EffectGainSand:    "GAIN_SAND",
	EffectDraw:        "DRAW",
	EffectApplyStatus: "APPLY_STATUS",
}

func (k EffectKind) String() string {
	if name, ok := effectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(k))
}

// MarshalJSON emits the effect kind by name so wire frames stay readable.
func (k EffectKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *EffectKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, kindName := range effectKindNames {
		if kindName == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown effect kind %q", name)
}

// TargetSelector names which combatant an effect resolves against.
type TargetSelector int

const (
	TargetSelf TargetSelector = iota
	TargetOpponent
)

var targetSelectorNames = map[TargetSelector]string{
	TargetSelf:     "SELF",
	TargetOpponent: "OPPONENT",
}

func (ts TargetSelector) String() string {
	if name, ok := targetSelectorNames[ts]; ok {
		return name
	}
	return fmt.Sprintf("TARGET_%d", int(ts))
}

// StatusKind is the closed set of timed statuses a combatant can carry.
type StatusKind int

const (
	StatusVulnerable StatusKind = iota // incoming damage x1.5
	StatusWeak                        // outgoing damage reduced
	StatusStrength                    // outgoing damage increased
	StatusDexterity                   // block gained increased
)

var statusKindNames = map[StatusKind]string{
	StatusVulnerable: "VULNERABLE",
	StatusWeak:       "WEAK",
	StatusStrength:   "STRENGTH",
	StatusDexterity:  "DEXTERITY",
}

func (sk StatusKind) String() string {
	if name, ok := statusKindNames[sk]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(sk))
}

// Effect is one immutable effect descriptor from the content catalog.
// Status is only meaningful for EffectApplyStatus.
type Effect struct {
	Kind   EffectKind
	Value  int
	Target TargetSelector
	Status StatusKind
}

func (e Effect) String() string {
	return fmt.Sprintf("%s(%d) -> %s", e.Kind, e.Value, e.Target)
}

// Card is an immutable playable card supplied by the content layer. The
// sand cost is bounded by the hourglass capacity at catalog validation.
type Card struct {
	ID      string
	Name    string
	Cost    int
	Effects []Effect
}

// EnemyAction is one immutable entry of an enemy's action table. Weight is
// the base selection weight fed to the intent selector.
type EnemyAction struct {
	Name        string
	Cost        int
	Effects     []Effect
	Weight      float64
	Description string
}

// HasEffectKind reports whether any of the action's effects has the given
// kind. The intent selector uses this for its health-based weight bias.
func (a EnemyAction) HasEffectKind(kind EffectKind) bool {
	for _, e := range a.Effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
