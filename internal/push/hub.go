// Package push fans state snapshots and named events out to the live
// display connections of a device identity.
package push

import (
	"context"
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"

	"homeboard/internal/errs"
	"homeboard/internal/models"
	"homeboard/internal/providers"
)

const (
	EventConnected = "connected"
	EventState     = "state"
	EventPopup     = "popup"
)

// ErrClosed is returned by Subscribe after the hub has shut down.
var ErrClosed = errors.New("push hub closed")

// Event is one named, already encoded message.
type Event struct {
	Name string
	Data []byte
}

// IdentityResolver reports the server's current device identity.
type IdentityResolver interface {
	DeviceID(ctx context.Context) (string, error)
}

type HubInterface interface {
	Subscribe(ctx context.Context, deviceID string) (*Subscription, error)
	BroadcastState(deviceID string, doc models.SharedState)
	BroadcastEvent(deviceID, name string, payload any)
	BroadcastAll(doc models.SharedState)
	Count() int
	Close()
}

// Hub keeps one observer set per device identity. Sends never block: a
// subscription whose buffer is full is dropped and its stream ends.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[*Subscription]struct{}
	closed   bool
	buffer   int
	identity IdentityResolver
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewHub(identity IdentityResolver, bufferSize int, logger providers.Logger, metrics providers.MetricsProviderInterface) *Hub {
	return &Hub{
		subs:     make(map[string]map[*Subscription]struct{}),
		buffer:   max(bufferSize, 1),
		identity: identity,
		logger:   logger,
		metrics:  metrics,
	}
}

// Subscribe registers a new connection for deviceID. A deviceID that is not
// the server's current identity yields errs.ErrNotFound and registers nothing.
func (h *Hub) Subscribe(ctx context.Context, deviceID string) (*Subscription, error) {
	current, err := h.identity.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve device id: %w", err)
	}
	if deviceID == "" || deviceID != current {
		return nil, errs.ErrNotFound
	}

	s := &Subscription{
		hub:      h,
		deviceID: deviceID,
		events:   make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	set, ok := h.subs[deviceID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[deviceID] = set
	}
	set[s] = struct{}{}
	h.metrics.SetSubscribers(h.countLocked())
	h.logger.Debugf(providers.TypePush, "subscribed %s (%d live)", deviceID, len(set))
	return s, nil
}

func (h *Hub) BroadcastState(deviceID string, doc models.SharedState) {
	h.broadcast(deviceID, EventState, doc)
}

func (h *Hub) BroadcastEvent(deviceID, name string, payload any) {
	h.broadcast(deviceID, name, payload)
}

// BroadcastAll sends the state snapshot to every identity with live connections.
func (h *Hub) BroadcastAll(doc models.SharedState) {
	data, ok := h.encode(EventState, doc)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.subs {
		h.sendLocked(id, Event{Name: EventState, Data: data})
	}
}

func (h *Hub) broadcast(deviceID, name string, payload any) {
	data, ok := h.encode(name, payload)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(deviceID, Event{Name: name, Data: data})
}

func (h *Hub) encode(name string, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Errorf(providers.TypePush, "encode %s event: %v", name, err)
		return nil, false
	}
	return data, true
}

func (h *Hub) sendLocked(deviceID string, ev Event) {
	set := h.subs[deviceID]
	if len(set) == 0 {
		return
	}
	delivered, evicted := 0, 0
	for s := range set {
		select {
		case s.events <- ev:
			delivered++
		default:
			h.removeLocked(s)
			evicted++
		}
	}
	if evicted > 0 {
		h.logger.Warnf(providers.TypePush, "evicted %d slow subscriber(s) of %s on %s", evicted, deviceID, ev.Name)
		h.metrics.SetSubscribers(h.countLocked())
	}
	h.metrics.AddBroadcasts(ev.Name, delivered, evicted)
}

// removeLocked deregisters s and ends its stream. It is a no-op for a
// subscription that was already removed.
func (h *Hub) removeLocked(s *Subscription) {
	set, ok := h.subs[s.deviceID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.events)
	if len(set) == 0 {
		delete(h.subs, s.deviceID)
	}
}

// Count returns the number of live subscriptions across all identities.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.countLocked()
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

// Close ends every stream and refuses new subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	n := 0
	for _, set := range h.subs {
		for s := range set {
			h.removeLocked(s)
			n++
		}
	}
	h.metrics.SetSubscribers(0)
	h.logger.Infof(providers.TypePush, "push hub closed, %d stream(s) ended", n)
}

// Subscription is one live display connection.
type Subscription struct {
	hub      *Hub
	deviceID string
	events   chan Event
}

// Events is closed when the subscription is evicted, closed, or the hub shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) DeviceID() string {
	return s.deviceID
}

// Close deregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
	h.metrics.SetSubscribers(h.countLocked())
}
