// Package sse streams saved-plant changes to connected clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultReplay is the number of recent events kept for reconnecting clients.
const DefaultReplay = 32

// Event is a single SSE message. ID is assigned by the broker when empty.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// PlantChange is the payload of plant events.
type PlantChange struct {
	ScientificName string `json:"scientificName,omitempty"`
}

type subscribeReq struct {
	ch     chan []byte
	lastID string
}

// Broker fans events out to subscribers.
//
// A single goroutine owns the client set and the replay buffer; public
// methods talk to it over channels.
type Broker struct {
	replay int

	subscribeCh   chan subscribeReq
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that remembers the last replay events.
func NewBroker(replay int) *Broker {
	if replay <= 0 {
		replay = DefaultReplay
	}

	b := &Broker{
		replay:        replay,
		subscribeCh:   make(chan subscribeReq),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func encode(event Event) ([]byte, bool) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, false
	}
	return []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, payload)), true
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	type entry struct {
		id  string
		raw []byte
	}
	var history []entry

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case req := <-b.subscribeCh:
			clients[req.ch] = struct{}{}
			if req.lastID == "" {
				continue
			}
			for i, e := range history {
				if e.id != req.lastID {
					continue
				}
				for _, missed := range history[i+1:] {
					select {
					case req.ch <- missed.raw:
					default:
					}
				}
				break
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			raw, ok := encode(event)
			if !ok {
				continue
			}
			history = append(history, entry{id: event.ID, raw: raw})
			if len(history) > b.replay {
				history = history[len(history)-b.replay:]
			}
			for ch := range clients {
				select {
				case ch <- raw:
				default:
					// Slow client; drop rather than block the loop.
				}
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client. Events published after lastID that are still in
// the replay buffer are delivered first.
func (b *Broker) Subscribe(lastID string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscribeReq{ch: ch, lastID: lastID}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends event to all clients and returns its id.
func (b *Broker) Publish(event Event) string {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if b.closed.Load() {
		return event.ID
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
	return event.ID
}

// PublishPlantEvent matches plantstore.ChangeFunc.
func (b *Broker) PublishPlantEvent(kind, scientificName string) {
	b.Publish(Event{Type: kind, Data: PlantChange{ScientificName: scientificName}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(r.Header.Get("Last-Event-ID"))
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
