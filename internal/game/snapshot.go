package game

// CombatantView is a point-in-time snapshot of one combatant for the
// presentation layer and event payloads.
type CombatantView struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Health            int            `json:"health"`
	MaxHealth         int            `json:"max_health"`
	Block             int            `json:"block"`
	Sand              int            `json:"sand"`
	MaxSand           int            `json:"max_sand"`
	Statuses          map[string]int `json:"statuses,omitempty"`
	IntentName        string         `json:"intent,omitempty"`
	IntentDescription string         `json:"intent_description,omitempty"`
}

// Snapshot is the complete read-only combat state exposed to the
// presentation layer.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	Phase     string        `json:"phase"`
	SubPhase  string        `json:"sub_phase"`
	Turn      int           `json:"turn"`
	Player    CombatantView `json:"player"`
	Enemy     CombatantView `json:"enemy"`
	HandSize  int           `json:"hand_size"`
	Hand      []CardView    `json:"hand,omitempty"`
	Outcome   Outcome       `json:"outcome,omitempty"`
}

// CardView describes one in-hand card for the presentation layer.
type CardView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

func viewOf(c *Combatant) CombatantView {
	view := CombatantView{
		ID:        c.ID,
		Name:      c.Name,
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
		Block:     c.Block,
		Sand:      c.HourGlass.Current(),
		MaxSand:   c.HourGlass.Capacity(),
	}
	if len(c.Statuses) > 0 {
		view.Statuses = make(map[string]int, len(c.Statuses))
		for kind, remaining := range c.Statuses {
			view.Statuses[kind.String()] = remaining
		}
	}
	return view
}

// Snapshot returns the current state for rendering: phase, sub-phase, turn
// number, both combatants, the telegraphed enemy intent (if any), and the
// player's hand.
func (cm *CombatManager) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: cm.id,
		Phase:     cm.phase.String(),
		SubPhase:  cm.subPhase.String(),
		Turn:      cm.turn,
		Outcome:   cm.outcome,
	}
	if cm.player != nil {
		snap.Player = viewOf(cm.player)
	}
	if cm.enemy != nil {
		snap.Enemy = viewOf(cm.enemy)
		if cm.intent != nil {
			snap.Enemy.IntentName = cm.intent.Name
			snap.Enemy.IntentDescription = cm.intent.Description
		}
	}
	snap.HandSize = len(cm.hand)
	for _, card := range cm.hand {
		snap.Hand = append(snap.Hand, CardView{ID: card.ID, Name: card.Name, Cost: card.Cost})
	}
	return snap
}
