package hub

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

const relayBufferSize = 256

// Event is one broadcast as seen by an in-process subscriber. Kind is the
// externally visible event name, which differs from the envelope type for
// edits.
type Event struct {
	Kind    string          `json:"kind"`
	Message *domain.Message `json:"message"`
}

// eventKind maps an envelope type to the stream-facing event name.
func eventKind(t domain.MessageType) string {
	if t == domain.MessageEditOperation {
		return "clip_edit"
	}
	return string(t)
}

// Relay fans broadcast events out to in-process subscribers, such as a
// bridge feeding an external message bus. Publishing never blocks; a slow
// subscriber loses events rather than stalling the hub.
type Relay struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewRelay creates an empty relay.
func NewRelay() *Relay {
	return &Relay{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new event stream. The caller must drain the
// channel and call the returned cancel function when done.
func (r *Relay) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, relayBufferSize)
	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subs[ch]; ok {
			delete(r.subs, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber, dropping it for those
// whose buffers are full.
func (r *Relay) Publish(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subs {
		select {
		case ch <- evt:
		default:
			logrus.WithField("kind", evt.Kind).Warn("Relay subscriber buffer full, dropping event")
		}
	}
}
