package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/acspacelit/indicadores/internal/infrastructure"
)

const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients, owned by the Run loop
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	count   atomic.Int64
	logger  *slog.Logger
	metrics hubMetrics
}

type hubMetrics struct {
	connections metric.Int64UpDownCounter
	messages    metric.Int64Counter
	dropped     metric.Int64Counter
}

// NewHub creates a hub. Call Run to start delivering messages.
func NewHub(logger *slog.Logger, meter metric.Meter) (*Hub, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	var m hubMetrics
	var err error
	if m.connections, err = meter.Int64UpDownCounter("websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections")); err != nil {
		return nil, err
	}
	if m.messages, err = meter.Int64Counter("websocket_messages_total",
		metric.WithDescription("WebSocket messages queued for delivery")); err != nil {
		return nil, err
	}
	if m.dropped, err = meter.Int64Counter("websocket_dropped_messages_total",
		metric.WithDescription("WebSocket messages dropped on full buffers")); err != nil {
		return nil, err
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    m,
	}, nil
}

// Run delivers messages until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(ctx, client)
			}
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.metrics.connections.Add(ctx, 1)

			h.logger.InfoContext(client.context(ctx), "Client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.deliver(ctx, client, mustMarshal(Message{
				Type: TypeConnection,
				Data: map[string]string{
					"status":    "connected",
					"client_id": client.id,
				},
				Timestamp: time.Now(),
				TraceID:   client.traceID,
			}))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(ctx, client)
				h.logger.InfoContext(client.context(ctx), "Client unregistered",
					slog.Int("total_clients", len(h.clients)),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(ctx, client, message)
			}
			h.logger.DebugContext(ctx, "Broadcast delivered",
				slog.Int("client_count", len(h.clients)),
				slog.Int("message_size", len(message)))
		}
	}
}

// deliver queues message for one client, disconnecting it when its buffer
// is full.
func (h *Hub) deliver(ctx context.Context, client *Client, message []byte) {
	select {
	case client.send <- message:
		h.metrics.messages.Add(ctx, 1)
	default:
		h.metrics.dropped.Add(ctx, 1)
		h.remove(ctx, client)
		h.logger.WarnContext(ctx, "Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) remove(ctx context.Context, client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	h.metrics.connections.Add(ctx, -1)
}

// Broadcast sends a typed message to every connected client. It never
// blocks; the message is dropped when the hub is stopped or saturated.
func (h *Hub) Broadcast(ctx context.Context, messageType string, data interface{}) {
	message, err := json.Marshal(Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now(),
		TraceID:   infrastructure.GetTraceID(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- message:
	default:
		h.metrics.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("type", messageType)))
		h.logger.WarnContext(ctx, "Broadcast queue full, message dropped",
			slog.String("message_type", messageType))
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client; it is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func mustMarshal(m Message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return data
}
