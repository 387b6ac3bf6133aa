package services

import (
	"sync"

	"homeboard/internal/models"
)

// gatedNotifier records broadcasts in delivery order. Once armed, the next
// broadcast signals entered and blocks until release is closed.
type gatedNotifier struct {
	mu      sync.Mutex
	armed   bool
	order   []string
	entered chan struct{}
	release chan struct{}
}

func newGatedNotifier() *gatedNotifier {
	return &gatedNotifier{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedNotifier) arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
}

func (g *gatedNotifier) BroadcastState(_ string, doc models.SharedState) {
	g.record("state:" + doc.Note)
}

func (g *gatedNotifier) BroadcastEvent(_ string, name string, payload any) {
	label := name
	if ev, ok := payload.(models.PopupEvent); ok {
		label += ":" + ev.Action
	}
	g.record(label)
}

func (g *gatedNotifier) BroadcastAll(doc models.SharedState) {
	g.record("all:" + doc.Note)
}

func (g *gatedNotifier) Delivered() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

func (g *gatedNotifier) record(label string) {
	g.mu.Lock()
	hold := g.armed
	g.armed = false
	g.mu.Unlock()

	if hold {
		close(g.entered)
		<-g.release
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.order = append(g.order, label)
}
