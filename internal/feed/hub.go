// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

package feed

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/prosepilot/api/internal/platform/constants"
	"github.com/prosepilot/api/pkg/uuid"
)

// Tuning for individual websocket connections.
const (
	// writeWait is the deadline for a single outbound frame.
	writeWait = 10 * time.Second

	// pongWait bounds how long a silent client stays connected.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = 50 * time.Second

	// clientBufferSize is the per-client outbound queue. A client that
	// cannot drain it is disconnected rather than allowed to block the hub.
	clientBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced by the HTTP middleware chain before the
		// upgrade; the handshake itself accepts any origin that got here.
		return true
	},
}

// client is one connected websocket consumer.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub relays every change notification to all connected websocket clients.
//
// # Architecture
//
// One goroutine owns the client registry (register/unregister/broadcast
// channels), mirroring the store's own notification stream into a form a
// browser can consume. Clients run the same notify-then-refetch contract as
// [Reconciler]: frames carry an [Event], never data to patch from.
type Hub struct {
	client *redis.Client
	logger *slog.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	done chan struct{}
	once sync.Once
}

// NewHub creates a [Hub] on an existing Redis client.
func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	return &Hub{
		client:     redisClient,
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

/*
Start subscribes to every feed channel and runs the relay loop.

Parameters:
  - ctx: context.Context — cancel to stop the hub.

Returns:
  - error: subscription failure.
*/
func (hub *Hub) Start(ctx context.Context) error {
	pubsub := hub.client.PSubscribe(ctx, constants.FeedChannelPattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go hub.relay(ctx, pubsub)
	go hub.run(ctx)

	hub.logger.Info("feed_hub_started")
	return nil
}

// relay forwards Redis notifications into the broadcast channel.
func (hub *Hub) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer func() { _ = pubsub.Close() }()

	events := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-hub.done:
			return
		case message, ok := <-events:
			if !ok {
				return
			}
			select {
			case hub.broadcast <- []byte(message.Payload):
			default:
				// A full broadcast buffer means consumers will catch up on
				// the next event; dropping keeps the relay from stalling.
				hub.logger.Warn("feed_hub_broadcast_dropped")
			}
		}
	}
}

// run owns the client registry.
func (hub *Hub) run(ctx context.Context) {
	clients := make(map[string]*client)

	closeAll := func() {
		for _, c := range clients {
			close(c.send)
		}
	}

	for {
		select {
		case <-ctx.Done():
			closeAll()
			return
		case <-hub.done:
			closeAll()
			return
		case c := <-hub.register:
			clients[c.id] = c
			hub.logger.Debug("feed_client_connected", slog.String("client_id", c.id), slog.Int("clients", len(clients)))
		case c := <-hub.unregister:
			if _, ok := clients[c.id]; ok {
				delete(clients, c.id)
				close(c.send)
			}
			hub.logger.Debug("feed_client_disconnected", slog.String("client_id", c.id), slog.Int("clients", len(clients)))
		case frame := <-hub.broadcast:
			for id, c := range clients {
				select {
				case c.send <- frame:
				default:
					// Slow consumer: drop the connection, not the hub.
					delete(clients, id)
					close(c.send)
				}
			}
		}
	}
}

// Stop shuts the hub down. Safe to call more than once.
func (hub *Hub) Stop() {
	hub.once.Do(func() { close(hub.done) })
}

// # HTTP Upgrade

/*
ServeHTTP handles GET /api/v1/feed.

Description: Upgrades the connection to a websocket and streams every
change notification to the client until it disconnects.

Response:
  - 101: websocket upgrade; frames are JSON-encoded [Event] values.
*/
func (hub *Hub) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		hub.logger.Warn("feed_upgrade_failed", slog.Any("error", err))
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, clientBufferSize),
	}

	hub.register <- c

	go c.writeLoop()
	go c.readLoop(hub)
}

// writeLoop pushes broadcast frames and keepalive pings to the peer.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; its job is detecting disconnects.
func (c *client) readLoop(hub *Hub) {
	defer func() {
		hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
