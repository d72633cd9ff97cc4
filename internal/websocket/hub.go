package websocket

import (
	"context"
	"encoding/json"

	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/pkg/events"
)

const moduleHub = "EVENT_STREAM"

// Hub fans delivered domain events out to connected operator sessions. All client bookkeeping
// happens on the Run goroutine.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}

	logger logger.ILogger
}

type outbound struct {
	eventType events.Type
	data      []byte
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.logger.Info(moduleHub, "Operator connected", map[string]interface{}{
				"user_id": client.UserID.String(),
				"clients": len(h.clients),
			})

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info(moduleHub, "Operator disconnected", map[string]interface{}{
					"user_id": client.UserID.String(),
					"clients": len(h.clients),
				})
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.Wants(msg.eventType) {
					continue
				}
				select {
				case client.Send <- msg.data:
				default:
					h.logger.Warn(moduleHub, "Client send buffer full, dropping connection", map[string]interface{}{
						"user_id": client.UserID.String(),
					})
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

// Publish queues envelope for every interested client. It has the events.Handler shape so the
// hub can be registered on the consumer.
func (h *Hub) Publish(ctx context.Context, envelope events.Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{eventType: events.Canonical(envelope.Type), data: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
