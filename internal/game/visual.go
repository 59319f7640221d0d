package game

import "time"

// VisualEffect describes one effect occurrence for the presentation layer:
// what happened, to whom, and the actual magnitude after mitigation.
type VisualEffect struct {
	Kind      EffectKind `json:"kind"`
	TargetID  string     `json:"target_id"`
	Amount    int        `json:"amount"`
	Timestamp time.Time  `json:"timestamp"`
}

// visualQueue is the append-only buffer of pending visual effects. The
// renderer drains it exactly once per presentation frame; effect order
// matches resolution order.
type visualQueue struct {
	pending []VisualEffect
}

func (q *visualQueue) push(kind EffectKind, targetID string, amount int, at time.Time) {
	q.pending = append(q.pending, VisualEffect{
		Kind:      kind,
		TargetID:  targetID,
		Amount:    amount,
		Timestamp: at,
	})
}

// drain returns the queued effects in order and clears the queue.
func (q *visualQueue) drain() []VisualEffect {
	effects := q.pending
	q.pending = nil
	return effects
}
