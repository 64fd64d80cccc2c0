package bedrock

import (
	"sort"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/constraint"
)

// EventType enumerates the world's lifecycle events.
type EventType int

const (
	// Collision events fire for physical (solved) contacts.
	EventCollisionEnter EventType = iota
	EventCollisionStay
	EventCollisionExit

	// Trigger events fire for overlaps involving a trigger body; trigger
	// manifolds are never solved.
	EventTriggerEnter
	EventTriggerStay
	EventTriggerExit

	EventBodySleep
	EventBodyWake

	EventJointBroken
)

func (t EventType) String() string {
	switch t {
	case EventCollisionEnter:
		return "collision-enter"
	case EventCollisionStay:
		return "collision-stay"
	case EventCollisionExit:
		return "collision-exit"
	case EventTriggerEnter:
		return "trigger-enter"
	case EventTriggerStay:
		return "trigger-stay"
	case EventTriggerExit:
		return "trigger-exit"
	case EventBodySleep:
		return "body-sleep"
	case EventBodyWake:
		return "body-wake"
	case EventJointBroken:
		return "joint-broken"
	}
	return "unknown"
}

// Event is one world occurrence. BodyB is zero for single-body events;
// Joint is set only for joint events.
type Event struct {
	Type  EventType
	BodyA actor.BodyID
	BodyB actor.BodyID
	Joint constraint.JointID
	Time  float64
}

// pairKey is the canonical ordered id pair used to track overlap state
// across steps.
type pairKey struct {
	a, b actor.BodyID
}

func makePairKey(a, b actor.BodyID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// EventBus tracks overlap state across steps to derive enter/stay/exit
// transitions and delivers events synchronously to subscribers at the end of
// each step, in deterministic order.
type EventBus struct {
	collisions map[pairKey]bool
	triggers   map[pairKey]bool

	pending []Event

	subscribers map[int]func(Event)
	nextSub     int
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		collisions:  make(map[pairKey]bool),
		triggers:    make(map[pairKey]bool),
		subscribers: make(map[int]func(Event)),
	}
}

// Subscribe registers a handler and returns its subscription id. Handlers
// run synchronously during flush, in subscription order.
func (e *EventBus) Subscribe(handler func(Event)) int {
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = handler
	return id
}

// Unsubscribe removes a handler; unknown ids report false.
func (e *EventBus) Unsubscribe(id int) bool {
	if _, ok := e.subscribers[id]; !ok {
		return false
	}
	delete(e.subscribers, id)
	return true
}

// recordOverlaps diffs this step's overlap set against the previous step's,
// queuing enter/stay/exit events. Called once per step for collisions and
// once for triggers.
func (e *EventBus) recordOverlaps(current map[pairKey]bool, trigger bool, time float64) {
	previous := e.collisions
	enter, stay, exit := EventCollisionEnter, EventCollisionStay, EventCollisionExit
	if trigger {
		previous = e.triggers
		enter, stay, exit = EventTriggerEnter, EventTriggerStay, EventTriggerExit
	}

	var keys []pairKey
	for key := range current {
		keys = append(keys, key)
	}
	for key := range previous {
		if !current[key] {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	for _, key := range keys {
		eventType := exit
		switch {
		case current[key] && previous[key]:
			eventType = stay
		case current[key]:
			eventType = enter
		}
		e.pending = append(e.pending, Event{
			Type:  eventType,
			BodyA: key.a,
			BodyB: key.b,
			Time:  time,
		})
	}

	if trigger {
		e.triggers = current
	} else {
		e.collisions = current
	}
}

// recordBody queues a single-body event (sleep/wake).
func (e *EventBus) recordBody(eventType EventType, id actor.BodyID, time float64) {
	e.pending = append(e.pending, Event{Type: eventType, BodyA: id, Time: time})
}

// recordJoint queues a joint event.
func (e *EventBus) recordJoint(eventType EventType, id constraint.JointID, time float64) {
	e.pending = append(e.pending, Event{Type: eventType, Joint: id, Time: time})
}

// forgetBody drops a removed body's overlap state so no spurious exit events
// fire against it.
func (e *EventBus) forgetBody(id actor.BodyID) {
	for key := range e.collisions {
		if key.a == id || key.b == id {
			delete(e.collisions, key)
		}
	}
	for key := range e.triggers {
		if key.a == id || key.b == id {
			delete(e.triggers, key)
		}
	}
}

// flush delivers all pending events in order and clears the queue.
func (e *EventBus) flush() {
	if len(e.pending) == 0 {
		return
	}

	var subIDs []int
	for id := range e.subscribers {
		subIDs = append(subIDs, id)
	}
	sort.Ints(subIDs)

	for _, event := range e.pending {
		for _, id := range subIDs {
			e.subscribers[id](event)
		}
	}
	e.pending = e.pending[:0]
}
