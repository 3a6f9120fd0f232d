package websocket

import (
	"context"
	"strconv"
	"testing"
	"time"
)

// Clients that connect before the hub loop has caught up must still be
// registered; an early registration may never be dropped or the
// connection closed.
func TestRegisterClientSurvivesBusyHub(t *testing.T) {
	hub := NewHub()

	const n = 16
	clients := make([]*Client, n)
	for i := range clients {
		clients[i] = &Client{
			Hub:       hub,
			Send:      make(chan []byte, 64),
			ListingID: "listing-1",
			ID:        strconv.Itoa(i),
		}
		// The hub loop is not running yet; these must queue, not drop.
		hub.RegisterClient(clients[i])
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for _, c := range clients {
		received := false
		for !received {
			if time.Now().After(deadline) {
				t.Fatalf("client %s never received a broadcast, registration lost", c.ID)
			}
			hub.BroadcastToListing("listing-1", []byte(`{"event":"ping"}`))
			select {
			case <-c.Send:
				received = true
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

func TestUnregisterRemovesClientFromRoom(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// leaves is registered first, so once stays sees a broadcast both
	// registrations have been processed.
	leaves := &Client{Hub: hub, Send: make(chan []byte, 64), ListingID: "listing-1", ID: "leaves"}
	stays := &Client{Hub: hub, Send: make(chan []byte, 64), ListingID: "listing-1", ID: "stays"}
	hub.RegisterClient(leaves)
	hub.RegisterClient(stays)

	deadline := time.Now().Add(5 * time.Second)
	for registered := false; !registered; {
		if time.Now().After(deadline) {
			t.Fatal("registrations never landed")
		}
		hub.BroadcastToListing("listing-1", []byte(`{"event":"ping"}`))
		select {
		case <-stays.Send:
			registered = true
		case <-time.After(10 * time.Millisecond):
		}
	}

	hub.UnregisterClient(leaves)

	// Drain until the hub closes the channel; anything received before
	// the close was broadcast while the removal was still queued.
	for closed := false; !closed; {
		if time.Now().After(deadline) {
			t.Fatal("unregistered client's channel never closed")
		}
		hub.BroadcastToListing("listing-1", []byte(`{"event":"ping"}`))
		select {
		case _, ok := <-leaves.Send:
			closed = !ok
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The remaining client is still wired up after the removal.
	hub.BroadcastToListing("listing-1", []byte(`{"event":"ping"}`))
	select {
	case <-stays.Send:
	case <-time.After(5 * time.Second):
		t.Fatal("remaining client stopped receiving broadcasts")
	}
}
