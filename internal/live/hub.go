// internal/live/hub.go
// Fan-out of feed events to connected followers over websockets.

package live

import (
	"context"
	"encoding/json"
	"log"

	"github.com/smokering/smokering-backend/internal/posts"
)

// FollowerSource resolves the follower set of a user for event fan-out
type FollowerSource interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// eventBuffer bounds the publish queue; events beyond it are dropped rather
// than blocking request handlers.
const eventBuffer = 256

// Hub tracks connected clients by user and fans feed events out to the
// followers of the event's subject. Run must be started before clients
// connect.
type Hub struct {
	followers FollowerSource

	register   chan *Client
	unregister chan *Client
	events     chan posts.FeedEvent

	// done is closed when Run exits so producers stop enqueueing instead
	// of blocking on a loop nobody drains.
	done chan struct{}

	// clients is keyed by user ID; a user may hold several connections
	clients map[int64]map[*Client]bool
}

// NewHub creates a hub
func NewHub(followers FollowerSource) *Hub {
	return &Hub{
		followers:  followers,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan posts.FeedEvent, eventBuffer),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
	}
}

// Run processes registrations and event fan-out until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true

		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if conns[client] {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}

		case event := <-h.events:
			h.fanOut(ctx, event)

		case <-ctx.Done():
			close(h.done)
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			return
		}
	}
}

// PublishFeedEvent queues an event for delivery. It never blocks; under
// sustained backpressure or after shutdown events are dropped.
func (h *Hub) PublishFeedEvent(event posts.FeedEvent) {
	select {
	case <-h.done:
	case h.events <- event:
	default:
		log.Printf("live: event queue full, dropping %s", event.Type)
	}
}

// add attaches a client to the hub, or closes its connection when the hub
// has already shut down.
func (h *Hub) add(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// remove detaches a client. After shutdown this is a no-op; Run already
// closed every send channel.
func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) fanOut(ctx context.Context, event posts.FeedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("live: failed to marshal %s event: %v", event.Type, err)
		return
	}

	followerIDs, err := h.followers.GetFollowerIDs(ctx, event.SubjectUserID)
	if err != nil {
		log.Printf("live: failed to resolve followers of user %d: %v", event.SubjectUserID, err)
		return
	}

	for _, id := range followerIDs {
		if id == event.ActorID {
			continue
		}
		for client := range h.clients[id] {
			select {
			case client.send <- payload:
			default:
				// Slow consumer; drop the message, not the connection.
			}
		}
	}
}
