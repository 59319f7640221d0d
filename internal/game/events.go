package game

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType indicates the category of a combat event.
type EventType string

const (
	EventCombatStarted       EventType = "combat_started"
	EventCardPlayed          EventType = "card_played"
	EventPlayerTurnStarted   EventType = "player_turn_started"
	EventPlayerTurnEnded     EventType = "player_turn_ended"
	EventEnemyTurnStarted    EventType = "enemy_turn_started"
	EventEnemyActionExecuted EventType = "enemy_action_executed"
	EventEnemyTurnEnded      EventType = "enemy_turn_ended"
	EventCombatEnded         EventType = "combat_ended"
)

// Event carries the observer payload for a combat state change.
type Event struct {
	Type      EventType
	SessionID string
	Turn      int
	Timestamp time.Time

	// CardID and ActionName are set for card_played and
	// enemy_action_executed respectively.
	CardID     string
	ActionName string

	// Outcome is set on combat_ended: OutcomeVictory or OutcomeDefeat.
	Outcome Outcome

	// Player and Enemy are point-in-time snapshots, safe to retain.
	Player CombatantView
	Enemy  CombatantView
}

// Handler reacts to a combat event. Handlers must not mutate combat state.
type Handler func(Event)

// EventBus is a synchronous observer registry. A panicking handler is
// recovered and logged so one faulty observer cannot break combat.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	logger   *zap.Logger
}

// NewEventBus constructs an empty bus.
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		handlers: make(map[EventType][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for one event type.
func (bus *EventBus) Subscribe(eventType EventType, handler Handler) {
	if handler == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[eventType] = append(bus.handlers[eventType], handler)
}

// Publish delivers the event to every registered handler in registration
// order, isolating each handler's failures.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	handlers := bus.handlers[event.Type]
	bus.mu.RUnlock()

	for _, handler := range handlers {
		bus.invoke(event, handler)
	}
}

func (bus *EventBus) invoke(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("combat event handler panicked",
				zap.String("event", string(event.Type)),
				zap.Any("panic", r),
			)
		}
	}()
	handler(event)
}
