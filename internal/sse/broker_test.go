package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// next returns the next frame or fails after a second.
func next(t *testing.T, s *Subscription) string {
	t.Helper()
	select {
	case raw, ok := <-s.Frames():
		if !ok {
			t.Fatal("subscription closed")
		}
		return string(raw)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
	}
	return ""
}

// drain collects whatever is queued after a short settle delay.
func drain(s *Subscription) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case raw := <-s.Frames():
			out = append(out, string(raw))
		default:
			return out
		}
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients = %d, want 0", n)
	}
	s := b.Subscribe(0)
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	b.Unsubscribe(s)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients after unsubscribe = %d, want 0", n)
	}
	if _, ok := <-s.Frames(); ok {
		t.Error("frames should be closed after unsubscribe")
	}
}

func TestNoteAddedFrame(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	s := b.Subscribe(0)

	b.PublishNoteAdded(3)

	want := "id: 1\nevent: note.added\ndata: {\"id\":3}\n\n"
	if got := next(t, s); got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
}

func TestStoreChangedThrottled(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	s := b.Subscribe(0)

	b.PublishNoteAdded(1)
	b.PublishStoreChanged()
	b.PublishNoteAdded(2)
	b.PublishStoreChanged()

	var added, changed int
	for _, f := range drain(s) {
		switch {
		case strings.Contains(f, "event: "+EventStoreChanged):
			changed++
		case strings.Contains(f, "event: "+EventNoteAdded):
			added++
		}
	}
	if added != 2 {
		t.Errorf("note.added frames = %d, want 2", added)
	}
	if changed != 1 {
		t.Errorf("store.changed frames = %d, want 1", changed)
	}
}

func TestSubscribeReplaysAfterLastEventID(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	first := b.Subscribe(0)

	for id := 1; id <= 3; id++ {
		b.PublishNoteAdded(id)
	}
	if got := len(drain(first)); got != 3 {
		t.Fatalf("live frames = %d, want 3", got)
	}

	resumed := b.Subscribe(1)
	frames := drain(resumed)
	if len(frames) != 2 {
		t.Fatalf("replayed frames = %d, want 2", len(frames))
	}
	if !strings.HasPrefix(frames[0], "id: 2\n") || !strings.HasPrefix(frames[1], "id: 3\n") {
		t.Errorf("replay = %q", frames)
	}

	if got := drain(b.Subscribe(0)); len(got) != 0 {
		t.Errorf("fresh subscription replayed %d frames", len(got))
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	b.Subscribe(0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriptionBuffer*2; i++ {
			b.PublishNoteAdded(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
	if n := b.ClientCount(); n != 1 {
		t.Errorf("clients = %d, want 1", n)
	}
}

func TestServeHTTP(t *testing.T) {
	b := NewBroker(100*time.Millisecond, WithKeepAlive(20*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.PublishNoteAdded(7)
	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	for _, want := range []string{"retry: 3000\n\n", "event: note.added", `"id":7`, ": ping\n\n"} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q in %q", want, body)
		}
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(20 * time.Millisecond)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients after disconnect = %d", n)
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	s := b.Subscribe(0)

	b.Close()
	b.Close()

	select {
	case _, ok := <-s.Frames():
		if ok {
			t.Fatal("expected closed frames channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for close")
	}

	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients after close = %d", n)
	}
	if _, ok := <-b.Subscribe(0).Frames(); ok {
		t.Error("subscription after close should be closed")
	}
	b.PublishNoteAdded(1)
	b.PublishStoreChanged()
	b.Unsubscribe(s)
}
