// Package network is a headless arena client. It joins a server over the
// necs websocket transport and queues the events the server sends.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	}
	return "unknown"
}

// eventBuffer bounds the events queued before the consumer drains them.
const eventBuffer = 256

// Client manages a WebSocket connection to an arena server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	joined    messages.JoinAccepted
	conn      *websocket.Conn
	log       *slog.Logger

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
	events     chan any
	dropped    int
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		state:      StateDisconnected,
		log:        logger.With("component", "client"),
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		events:     make(chan any, eventBuffer),
	}
}

// Connect dials the server in a background goroutine and sends req once
// the connection is up.
func (c *Client) Connect(address string, req messages.JoinRequest) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.log.Info("connected to server", "address", address)
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.SendMessage(req); err != nil {
			c.setError(fmt.Errorf("send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.accept(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.log.Warn("join rejected", "reason", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})
	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	onEvent[messages.KillEvent](c)
	onEvent[messages.SetHPEvent](c)
	onEvent[messages.SpawnEvent](c)
	onEvent[messages.PositionEvent](c)
	onEvent[messages.RestockEvent](c)
	onEvent[messages.BlockActionEvent](c)
	onEvent[messages.BlockLineEvent](c)
	onEvent[messages.GrenadeEvent](c)
	onEvent[messages.IntelPickupEvent](c)
	onEvent[messages.IntelDropEvent](c)
	onEvent[messages.IntelCaptureEvent](c)
	onEvent[messages.MoveObjectEvent](c)
	onEvent[messages.ChatEvent](c)
	onEvent[messages.RoundStateEvent](c)
	onEvent[messages.MapChangeEvent](c)
	onEvent[messages.CommandReply](c)

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.log.Info("disconnected", "err", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.log.Warn("client error", "err", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func onEvent[T any](c *Client) {
	router.On(func(_ *router.NetworkClient, evt T) {
		c.push(evt)
	})
}

func (c *Client) accept(msg messages.JoinAccepted) {
	c.log.Info("join accepted", "player", msg.PlayerID, "server", msg.ServerName, "map", msg.MapName, "tick_rate", msg.TickRate)
	c.mu.Lock()
	c.joined = msg
	c.state = StateJoinedGame
	c.mu.Unlock()
}

// push queues evt, dropping it when the consumer falls behind.
func (c *Client) push(evt any) {
	select {
	case c.events <- evt:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Joined returns the server's acceptance, valid once State is StateJoinedGame.
func (c *Client) Joined() messages.JoinAccepted {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.joined
}

// Dropped returns how many events were discarded on a full queue.
func (c *Client) Dropped() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dropped
}

// Events returns the queue of server events in arrival order.
func (c *Client) Events() <-chan any {
	return c.events
}

// DrainEvents returns all pending events, non-blocking.
func (c *Client) DrainEvents() []any {
	var out []any
	for {
		select {
		case v := <-c.events:
			out = append(out, v)
		default:
			return out
		}
	}
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}
