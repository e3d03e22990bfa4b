package vizembed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// SelectionBroadcast bridges the synchronous bus to buffered channels so
// transports (WebSocket/SSE) can stream selections to remote surfaces.
type SelectionBroadcast struct {
	mu   sync.RWMutex
	subs map[int]chan SelectionEvent
	next int
}

// NewSelectionBroadcast creates a broadcast bridge.
func NewSelectionBroadcast() *SelectionBroadcast {
	return &SelectionBroadcast{
		subs: make(map[int]chan SelectionEvent),
	}
}

// Attach subscribes the bridge to a bus and returns the bus subscription.
func (b *SelectionBroadcast) Attach(bus *Bus) Subscription {
	return bus.Subscribe(TopicSelection, b.HandleSelection)
}

// HandleSelection satisfies the bus Handler signature and fans the event out.
// Slow consumers are skipped rather than blocking the publisher.
func (b *SelectionBroadcast) HandleSelection(_ context.Context, event SelectionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel of selection events and a cancel func.
func (b *SelectionBroadcast) Subscribe() (<-chan SelectionEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan SelectionEvent, 8)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams selection events as JSON.
func (b *SelectionBroadcast) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := b.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for selection events.
func (b *SelectionBroadcast) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := b.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
