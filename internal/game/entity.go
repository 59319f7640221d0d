package game

import (
	"github.com/sandsofduat/duat-server/internal/game/hourglass"
)

// Combatant is one participant in an encounter. It is owned exclusively by
// the CombatManager for the session's lifetime; no other component holds a
// mutable reference.
type Combatant struct {
	ID        string
	Name      string
	IsPlayer  bool
	Health    int
	MaxHealth int

	// Block is a per-turn damage-mitigation pool. It does not carry over:
	// StartTurn resets it to zero.
	Block int

	// Statuses maps a status kind to its remaining duration in turns.
	Statuses map[StatusKind]int

	HourGlass *hourglass.HourGlass
}

// NewCombatant creates a combatant with full ownership of the given
// hourglass.
func NewCombatant(id, name string, health, maxHealth int, hg *hourglass.HourGlass, isPlayer bool) *Combatant {
	if health > maxHealth {
		health = maxHealth
	}
	return &Combatant{
		ID:        id,
		Name:      name,
		IsPlayer:  isPlayer,
		Health:    health,
		MaxHealth: maxHealth,
		Statuses:  make(map[StatusKind]int),
		HourGlass: hg,
	}
}

// IsAlive reports whether the combatant still has health remaining.
func (c *Combatant) IsAlive() bool {
	return c.Health > 0
}

// StatusDuration returns the remaining duration of a status, zero if the
// status is not active.
func (c *Combatant) StatusDuration(kind StatusKind) int {
	return c.Statuses[kind]
}

// ApplyStatus sets a status's remaining duration. Non-positive durations
// remove the status.
func (c *Combatant) ApplyStatus(kind StatusKind, duration int) {
	if duration <= 0 {
		delete(c.Statuses, kind)
		return
	}
	c.Statuses[kind] = duration
}

// TakeDamage applies incoming damage. Vulnerable amplifies it, block
// absorbs up to its current value first, and the remainder reduces health
// clamped at zero. Returns the health actually lost, which may be less
// than the nominal amount.
func (c *Combatant) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if c.StatusDuration(StatusVulnerable) > 0 {
		amount = amount * 3 / 2
	}

	absorbed := amount
	if absorbed > c.Block {
		absorbed = c.Block
	}
	c.Block -= absorbed

	remaining := amount - absorbed
	before := c.Health
	c.Health -= remaining
	if c.Health < 0 {
		c.Health = 0
	}
	return before - c.Health
}

// Heal restores health up to MaxHealth and returns the actual amount
// gained.
func (c *Combatant) Heal(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := c.Health
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	return c.Health - before
}

// AddBlock raises the block pool. There is no upper bound.
func (c *Combatant) AddBlock(amount int) {
	if amount < 0 {
		return
	}
	c.Block += amount
}

// StartTurn resets per-turn state: block returns to zero and every timed
// status ticks down by one, expiring at zero.
func (c *Combatant) StartTurn() {
	c.Block = 0
	for kind, remaining := range c.Statuses {
		remaining--
		if remaining <= 0 {
			delete(c.Statuses, kind)
		} else {
			c.Statuses[kind] = remaining
		}
	}
}

// outgoingDamage applies the source's Strength and Weak modifiers to a
// nominal damage value, floored at zero.
func (c *Combatant) outgoingDamage(base int) int {
	modified := base
	if s := c.StatusDuration(StatusStrength); s > 0 {
		modified += s
	}
	if w := c.StatusDuration(StatusWeak); w > 0 {
		modified -= w
	}
	if modified < 0 {
		modified = 0
	}
	return modified
}

// outgoingBlock applies the source's Dexterity modifier to a nominal block
// value.
func (c *Combatant) outgoingBlock(base int) int {
	if d := c.StatusDuration(StatusDexterity); d > 0 {
		return base + d
	}
	return base
}
