package live

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokering/smokering-backend/internal/posts"
)

type staticFollowers map[int64][]int64

func (s staticFollowers) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s[userID], nil
}

func newTestClient(hub *Hub, userID int64) *Client {
	return &Client{hub: hub, userID: userID, send: make(chan []byte, clientSendBuffer)}
}

// waitStopped blocks until the hub's run loop has exited.
func waitStopped(t *testing.T, hub *Hub) {
	t.Helper()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestHubFanOut(t *testing.T) {
	followers := staticFollowers{10: {20, 30}}
	hub := NewHub(followers)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	follower := newTestClient(hub, 20)
	actor := newTestClient(hub, 30)
	hub.add(follower)
	hub.add(actor)

	hub.PublishFeedEvent(posts.FeedEvent{
		Type:          "post.liked",
		ActorID:       30,
		SubjectUserID: 10,
	})

	select {
	case payload := <-follower.send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "post.liked", event["type"])
	case <-time.After(time.Second):
		t.Fatal("follower never received the event")
	}

	// The acting user does not get an echo of their own event.
	select {
	case <-actor.send:
		t.Fatal("actor received their own event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(staticFollowers{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := newTestClient(hub, 20)
	hub.add(client)

	cancel()
	waitStopped(t, hub)

	// The hub closed the connected client's send channel on the way out.
	select {
	case _, open := <-client.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("client send channel was not closed")
	}

	t.Run("attach after shutdown returns and closes the client", func(t *testing.T) {
		late := newTestClient(hub, 21)

		finished := make(chan struct{})
		go func() {
			hub.add(late)
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("add blocked after the hub stopped")
		}

		_, open := <-late.send
		assert.False(t, open)
	})

	t.Run("detach after shutdown returns", func(t *testing.T) {
		finished := make(chan struct{})
		go func() {
			hub.remove(client)
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("remove blocked after the hub stopped")
		}
	})

	t.Run("publish after shutdown returns", func(t *testing.T) {
		finished := make(chan struct{})
		go func() {
			for i := 0; i < eventBuffer+10; i++ {
				hub.PublishFeedEvent(posts.FeedEvent{Type: "post.created"})
			}
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("publish blocked after the hub stopped")
		}
	})
}
