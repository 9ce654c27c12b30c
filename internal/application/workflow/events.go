package workflow

import (
	"sync"
	"time"

	"github.com/sorbetes/garment-ops/pkg/logger"
)

// EventType workflow event kinds.
type EventType string

const (
	EventWorkflowCreated    EventType = "WORKFLOW_CREATED"
	EventWorkflowStarted    EventType = "WORKFLOW_STARTED"
	EventWorkflowPaused     EventType = "WORKFLOW_PAUSED"
	EventWorkflowResumed    EventType = "WORKFLOW_RESUMED"
	EventWorkflowCompleted  EventType = "WORKFLOW_COMPLETED"
	EventWorkflowCancelled  EventType = "WORKFLOW_CANCELLED"
	EventStepStarted        EventType = "STEP_STARTED"
	EventStepCompleted      EventType = "STEP_COMPLETED"
	EventStepDelayed        EventType = "STEP_DELAYED"
	EventWorkerAssigned     EventType = "WORKER_ASSIGNED"
	EventBottleneckDetected EventType = "BOTTLENECK_DETECTED"
)

// Event a typed workflow state transition. Detail carries event-specific
// fields (reason, worker id, severity) without a type per event.
type Event struct {
	Type       EventType
	WorkflowID string
	OrderID    string
	StepID     string
	Stage      string
	At         time.Time
	Detail     map[string]string
}

// Bus is an in-process publish/subscribe fan-out. Publishing never blocks:
// a subscriber whose buffer is full loses the event (logged at warn), so no
// listener can stall the engine.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
	log  *logger.Logger
}

// NewBus builds the bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{subs: make(map[int]chan Event), log: log}
}

// Subscribe registers a listener with the given buffer size and returns its
// channel plus an unsubscribe func. Unsubscribing closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
}

// Publish delivers the event to every subscriber, dropping on full buffers.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Warn().
				Str("event", string(e.Type)).
				Str("workflow_id", e.WorkflowID).
				Msg("subscriber buffer full, event dropped")
		}
	}
}
