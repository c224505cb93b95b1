// Package events is a small synchronous event bus. Campaign operations emit
// events; listeners registered by the engine and front ends react to them.
// Delivery is single pass: events emitted by a listener are queued and
// delivered after the current event, never recursively.
package events

// Event types emitted by a campaign.
const (
	AreaEntered       = "area_entered"
	AreaLeft          = "area_left"
	WorldMapEntered   = "world_map_entered"
	LocationRevealed  = "location_revealed"
	VisibilityChanged = "visibility_changed"
	DateChanged       = "date_changed"
	EncounterSpawned  = "encounter_spawned"
	QuestAdded        = "quest_added"
	QuestCompleted    = "quest_completed"
)

// Event is something that happened in the simulation.
type Event struct {
	Type string
	Data map[string]any
}

// Listener handles one event.
type Listener func(Event)

// Bus dispatches events to listeners by type. The zero value is usable.
type Bus struct {
	listeners map[string][]Listener
	queue     []Event
	busy      bool
}

// Subscribe registers a listener for an event type. The type "*" receives
// every event.
func (b *Bus) Subscribe(eventType string, l Listener) {
	if b.listeners == nil {
		b.listeners = map[string][]Listener{}
	}
	b.listeners[eventType] = append(b.listeners[eventType], l)
}

// Emit delivers an event to its listeners.
func (b *Bus) Emit(eventType string, data map[string]any) {
	b.queue = append(b.queue, Event{Type: eventType, Data: data})
	if b.busy {
		return
	}
	b.busy = true
	defer func() { b.busy = false }()
	for len(b.queue) > 0 {
		ev := b.queue[0]
		b.queue = b.queue[1:]
		for _, l := range b.listeners[ev.Type] {
			l(ev)
		}
		for _, l := range b.listeners["*"] {
			l(ev)
		}
	}
}
