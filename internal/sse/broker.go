// Package sse implements a Server-Sent Events broker that tells browsers
// when the note store changes.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Event types sent to clients.
const (
	EventNoteAdded    = "note.added"
	EventStoreChanged = "store.changed"
)

const (
	subscriptionBuffer = 64
	replayFrames       = 32
	retryHintMillis    = 3000
)

// Event is one message for every connected client. Data is sent as JSON.
type Event struct {
	Type string
	Data any
}

// Subscription is a connected client. Frames yields fully encoded SSE
// frames and is closed on Unsubscribe or when the broker closes.
type Subscription struct {
	frames chan []byte
}

// Frames returns the channel of encoded frames.
func (s *Subscription) Frames() <-chan []byte {
	return s.frames
}

// offer never blocks; a slow client loses frames instead of stalling others.
func (s *Subscription) offer(raw []byte) {
	select {
	case s.frames <- raw:
	default:
	}
}

type joinRequest struct {
	after uint64
	reply chan *Subscription
}

type frame struct {
	seq uint64
	raw []byte
}

// Broker fans events out to SSE clients.
//
// One goroutine owns the subscriptions, the event sequence, the replay
// buffer and the store.changed throttle. Everything else reaches it over
// channels, so none of that state is locked.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	join    chan joinRequest
	leave   chan *Subscription
	events  chan Event
	changed chan struct{}
	count   chan chan int

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often an idle stream gets a comment line.
// Zero disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

// NewBroker starts a broker. store.changed is sent at most once per
// changeThrottle.
func NewBroker(changeThrottle time.Duration, opts ...Option) *Broker {
	if changeThrottle <= 0 {
		changeThrottle = 2 * time.Second
	}
	b := &Broker{
		throttle:  changeThrottle,
		keepAlive: 15 * time.Second,
		join:      make(chan joinRequest),
		leave:     make(chan *Subscription),
		events:    make(chan Event, 256),
		changed:   make(chan struct{}, 16),
		count:     make(chan chan int),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	subs := make(map[*Subscription]struct{})
	var (
		seq        uint64
		recent     []frame
		lastChange time.Time
	)

	emit := func(e Event) {
		data, err := json.Marshal(e.Data)
		if err != nil {
			slog.Warn("sse: encode event", slog.String("type", e.Type), slog.String("error", err.Error()))
			return
		}
		seq++
		f := frame{seq: seq, raw: fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, e.Type, data)}
		recent = append(recent, f)
		if len(recent) > replayFrames {
			recent = recent[len(recent)-replayFrames:]
		}
		for s := range subs {
			s.offer(f.raw)
		}
	}

	for {
		select {
		case <-b.quit:
			for s := range subs {
				close(s.frames)
			}
			return

		case req := <-b.join:
			s := &Subscription{frames: make(chan []byte, subscriptionBuffer)}
			if req.after > 0 {
				for _, f := range recent {
					if f.seq > req.after {
						s.offer(f.raw)
					}
				}
			}
			subs[s] = struct{}{}
			req.reply <- s

		case s := <-b.leave:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.frames)
			}

		case e := <-b.events:
			emit(e)

		case <-b.changed:
			if now := time.Now(); now.Sub(lastChange) >= b.throttle {
				lastChange = now
				emit(Event{Type: EventStoreChanged, Data: struct{}{}})
			}

		case reply := <-b.count:
			reply <- len(subs)
		}
	}
}

// send hands v to the loop, or gives up once the loop has stopped.
func send[T any](b *Broker, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every subscription. It is idempotent.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.quit) })
	<-b.done
}

// Subscribe registers a client. Frames newer than lastEventID that are
// still in the replay buffer are queued first; pass 0 for none. After
// Close the returned subscription is already closed.
func (b *Broker) Subscribe(lastEventID uint64) *Subscription {
	reply := make(chan *Subscription, 1)
	if !send(b, b.join, joinRequest{after: lastEventID, reply: reply}) {
		s := &Subscription{frames: make(chan []byte)}
		close(s.frames)
		return s
	}
	return <-reply
}

// Unsubscribe removes a client and closes its frames channel.
func (b *Broker) Unsubscribe(s *Subscription) {
	send(b, b.leave, s)
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	reply := make(chan int, 1)
	if !send(b, b.count, reply) {
		return 0
	}
	return <-reply
}

// Publish queues an event for every connected client.
func (b *Broker) Publish(e Event) {
	send(b, b.events, e)
}

// PublishNoteAdded announces a freshly appended note.
func (b *Broker) PublishNoteAdded(id int) {
	b.Publish(Event{Type: EventNoteAdded, Data: map[string]int{"id": id}})
}

// PublishStoreChanged reports that the store file changed on disk.
// Bursts collapse to one event per throttle interval.
func (b *Broker) PublishStoreChanged() {
	send(b, b.changed, struct{}{})
}

// ServeHTTP streams events to one client (GET /api/events). A
// Last-Event-ID header resumes from the replay buffer.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", retryHintMillis)
	flusher.Flush()

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	sub := b.Subscribe(lastID)
	defer b.Unsubscribe(sub)

	var ping <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case raw, ok := <-sub.Frames():
			if !ok {
				return
			}
			_, _ = w.Write(raw)
			flusher.Flush()
		}
	}
}
