package session

import "sync"

// EventType identifies a session state change.
type EventType int

const (
	// EventImageChanged carries the new current *image.RGBA, or nil.
	EventImageChanged EventType = iota
	// EventSelectionChanged carries the selection geometry.Rect.
	EventSelectionChanged
	// EventZoomChanged carries the zoom level as float64.
	EventZoomChanged
	// EventHistoryChanged carries a HistoryState.
	EventHistoryChanged
	// EventTransformCacheChanged carries whether a forward result is held.
	EventTransformCacheChanged
	// EventOperationLogged carries the oplog.Entry.
	EventOperationLogged
	// EventOperationFailed carries the error.
	EventOperationFailed
	// EventViewportDragged carries the target scroll offset as geometry.Point2D.
	EventViewportDragged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// HistoryState is the payload of EventHistoryChanged.
type HistoryState struct {
	CanUndo, CanRedo bool
}

// bus dispatches events to listeners outside of any session lock.
type bus struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

func (b *bus) on(event EventType, listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[EventType][]EventListener)
	}
	b.listeners[event] = append(b.listeners[event], listener)
}

func (b *bus) emit(event EventType, data interface{}) {
	b.mu.RLock()
	listeners := b.listeners[event]
	b.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

type event struct {
	typ  EventType
	data interface{}
}

// events collects notifications while the session lock is held.
type events []event

func (e *events) add(typ EventType, data interface{}) {
	*e = append(*e, event{typ, data})
}
