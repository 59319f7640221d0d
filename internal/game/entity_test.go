package game

import (
	"testing"
	"time"

	"github.com/sandsofduat/duat-server/internal/game/hourglass"
)

func newTestCombatant(health, maxHealth int) *Combatant {
	hg := hourglass.New(6, time.Second, time.Unix(1000, 0))
	return NewCombatant("c1", "Test", health, maxHealth, hg, false)
}

func TestCombatant_BlockAbsorbsDamage(t *testing.T) {
	c := newTestCombatant(30, 30)
	c.AddBlock(10)

	actual := c.TakeDamage(15)

	if c.Block != 0 {
		t.Errorf("Expected block 0 after absorption, got %d", c.Block)
	}
	if c.Health != 25 {
		t.Errorf("Expected health 25, got %d", c.Health)
	}
	if actual != 5 {
		t.Errorf("Expected actual damage 5, got %d", actual)
	}
}

func TestCombatant_BlockFullyAbsorbs(t *testing.T) {
	c := newTestCombatant(30, 30)
	c.AddBlock(20)

	actual := c.TakeDamage(15)

	if actual != 0 {
		t.Errorf("Expected no health lost, got %d", actual)
	}
	if c.Block != 5 {
		t.Errorf("Expected 5 block remaining, got %d", c.Block)
	}
	if c.Health != 30 {
		t.Errorf("Expected health unchanged at 30, got %d", c.Health)
	}
}

func TestCombatant_DamageClampsAtZero(t *testing.T) {
	c := newTestCombatant(5, 30)

	actual := c.TakeDamage(12)

	if c.Health != 0 {
		t.Errorf("Expected health clamped at 0, got %d", c.Health)
	}
	if actual != 5 {
		t.Errorf("Expected actual damage 5, got %d", actual)
	}
	if c.IsAlive() {
		t.Error("Expected combatant to be dead at 0 health")
	}
}

func TestCombatant_HealClampsAtMax(t *testing.T) {
	c := newTestCombatant(25, 30)

	healed := c.Heal(10)

	if healed != 5 {
		t.Errorf("Expected actual healing 5, got %d", healed)
	}
	if c.Health != 30 {
		t.Errorf("Expected health 30, got %d", c.Health)
	}
}

func TestCombatant_StatusDecay(t *testing.T) {
	c := newTestCombatant(30, 30)
	c.ApplyStatus(StatusVulnerable, 2)

	c.StartTurn()
	if got := c.StatusDuration(StatusVulnerable); got != 1 {
		t.Errorf("Expected duration 1 after one turn, got %d", got)
	}

	c.StartTurn()
	if _, ok := c.Statuses[StatusVulnerable]; ok {
		t.Error("Expected status removed after two turns")
	}
}

func TestCombatant_StartTurnResetsBlock(t *testing.T) {
	c := newTestCombatant(30, 30)
	c.AddBlock(8)

	c.StartTurn()

	if c.Block != 0 {
		t.Errorf("Expected block reset to 0, got %d", c.Block)
	}
}

func TestCombatant_VulnerableAmplifiesDamage(t *testing.T) {
	c := newTestCombatant(30, 30)
	c.ApplyStatus(StatusVulnerable, 2)

	actual := c.TakeDamage(10)

	if actual != 15 {
		t.Errorf("Expected 15 damage under vulnerable, got %d", actual)
	}
}

func TestCombatant_OutgoingModifiers(t *testing.T) {
	c := newTestCombatant(30, 30)

	c.ApplyStatus(StatusStrength, 3)
	if got := c.outgoingDamage(8); got != 11 {
		t.Errorf("Expected strength to raise damage to 11, got %d", got)
	}

	c.ApplyStatus(StatusWeak, 5)
	if got := c.outgoingDamage(8); got != 6 {
		t.Errorf("Expected net damage 6 with strength 3 and weak 5, got %d", got)
	}

	c.ApplyStatus(StatusWeak, 20)
	if got := c.outgoingDamage(8); got != 0 {
		t.Errorf("Expected damage floored at 0, got %d", got)
	}

	c.ApplyStatus(StatusDexterity, 2)
	if got := c.outgoingBlock(6); got != 8 {
		t.Errorf("Expected dexterity to raise block to 8, got %d", got)
	}
}
