package session

// EventType identifies session events.
type EventType int

const (
	EventToolChanged EventType = iota
	EventDrawingChanged
	EventShapesChanged
	EventSelectionChanged
	EventViewChanged
	EventReferenceChanged
	EventBusyChanged
	EventOutputReady
	EventGenerateFailed
	EventMeasurementChanged
	EventCleared
	EventClosed
)

var eventNames = [...]string{
	"tool_changed",
	"drawing_changed",
	"shapes_changed",
	"selection_changed",
	"view_changed",
	"reference_changed",
	"busy_changed",
	"output_ready",
	"generate_failed",
	"measurement_changed",
	"cleared",
	"closed",
}

func (e EventType) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

func (e EventType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Event is delivered to listeners with the session lock held. Listeners
// must not call back into the session.
type Event struct {
	Type    EventType `json:"type"`
	Session string    `json:"session"`
	Data    any       `json:"data,omitempty"`
}

// EventListener is a callback for session events.
type EventListener func(Event)

// On registers a listener for one event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Subscribe registers a listener for every event. The returned function
// removes it.
func (s *Session) Subscribe(listener EventListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subSeq++
	id := s.subSeq
	s.subscribers[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// emit triggers listeners. The caller holds the lock.
func (s *Session) emit(event EventType, data any) {
	ev := Event{Type: event, Session: s.ID, Data: data}
	for _, l := range s.listeners[event] {
		l(ev)
	}
	for _, l := range s.subscribers {
		l(ev)
	}
}
