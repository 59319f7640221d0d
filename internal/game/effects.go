package game

import "fmt"

// resolveEffect applies a single effect descriptor against a source/target
// pair and records the occurrence on the visual effect queue with the
// actual magnitude (block can partially absorb damage, healing can cap).
//
// An unknown effect kind or target selector means the externally supplied
// catalog is corrupted; that is a contract violation and fails loudly
// rather than silently no-opping.
func (cm *CombatManager) resolveEffect(effect Effect, source, opponent *Combatant) error {
	var target *Combatant
	switch effect.Target {
	case TargetSelf:
		target = source
	case TargetOpponent:
		target = opponent
	default:
		return fmt.Errorf("resolve effect %s: unresolvable target selector %d", effect.Kind, int(effect.Target))
	}

	switch effect.Kind {
	case EffectDamage:
		dealt := target.TakeDamage(source.outgoingDamage(effect.Value))
		cm.visuals.push(EffectDamage, target.ID, dealt, cm.now)

	case EffectHeal:
		healed := target.Heal(effect.Value)
		cm.visuals.push(EffectHeal, target.ID, healed, cm.now)

	case EffectBlock:
		granted := source.outgoingBlock(effect.Value)
		target.AddBlock(granted)
		cm.visuals.push(EffectBlock, target.ID, granted, cm.now)

	case EffectGainSand:
		// Sand always goes to the source, capped at capacity.
		hg := source.HourGlass
		before := hg.Current()
		hg.Set(before + effect.Value)
		cm.visuals.push(EffectGainSand, source.ID, hg.Current()-before, cm.now)

	case EffectDraw:
		// Deck management is external: only the draw intent is signalled.
		if cm.onDraw != nil {
			cm.onDraw(effect.Value)
		}
		cm.visuals.push(EffectDraw, source.ID, effect.Value, cm.now)

	case EffectApplyStatus:
		if _, ok := statusKindNames[effect.Status]; !ok {
			return fmt.Errorf("resolve effect %s: unknown status kind %d", effect.Kind, int(effect.Status))
		}
		target.ApplyStatus(effect.Status, effect.Value)
		cm.visuals.push(EffectApplyStatus, target.ID, effect.Value, cm.now)

	default:
		return fmt.Errorf("resolve effect: unknown effect kind %d", int(effect.Kind))
	}

	return nil
}

// resolveAll resolves an ordered effect list strictly in declaration order.
func (cm *CombatManager) resolveAll(effects []Effect, source, opponent *Combatant) error {
	for _, effect := range effects {
		if err := cm.resolveEffect(effect, source, opponent); err != nil {
			return err
		}
	}
	return nil
}
