// Package messaging provides the live preview broadcaster pushing editing
// markup to websocket clients after every session change.
package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// Message types sent to preview clients
const (
	MessageRender = "render"
	MessageClosed = "closed"
)

// PreviewMessage is the payload pushed to every client of a session
type PreviewMessage struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId"`
	Revision   int64  `json:"revision"`
	Viewport   string `json:"viewport,omitempty"`
	SelectedID string `json:"selectedId,omitempty"`
	HTML       string `json:"html,omitempty"`
	CanUndo    bool   `json:"canUndo"`
	CanRedo    bool   `json:"canRedo"`
}

// PreviewBroadcaster owns the set of connected preview clients. All
// membership changes and fan-out happen on the Run goroutine.
type PreviewBroadcaster struct {
	sessionClients map[string]map[*PreviewClient]bool
	register       chan *PreviewClient
	unregister     chan *PreviewClient
	publish        chan PreviewMessage
	counts         map[string]int
	done           chan struct{}
	mu             sync.RWMutex
	logger         *logging.ChanneledLogger
}

// NewPreviewBroadcaster creates a broadcaster; call Run to start it
func NewPreviewBroadcaster(logger *logging.ChanneledLogger) *PreviewBroadcaster {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &PreviewBroadcaster{
		sessionClients: make(map[string]map[*PreviewClient]bool),
		register:       make(chan *PreviewClient),
		unregister:     make(chan *PreviewClient),
		publish:        make(chan PreviewMessage, 64),
		counts:         make(map[string]int),
		done:           make(chan struct{}),
		logger:         logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *PreviewBroadcaster) Run(ctx context.Context) {
	b.logger.Preview().Info("Preview broadcaster started")
	defer b.logger.Preview().Info("Preview broadcaster stopped")
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			for sessionID, clients := range b.sessionClients {
				for client := range clients {
					close(client.Send)
				}
				delete(b.sessionClients, sessionID)
			}
			b.setCount("", 0, true)
			return

		case client := <-b.register:
			if b.sessionClients[client.SessionID] == nil {
				b.sessionClients[client.SessionID] = make(map[*PreviewClient]bool)
			}
			b.sessionClients[client.SessionID][client] = true
			b.setCount(client.SessionID, len(b.sessionClients[client.SessionID]), false)
			b.logger.LogPreviewEvent("client registered", client.SessionID, len(b.sessionClients[client.SessionID]))

		case client := <-b.unregister:
			b.remove(client)

		case msg := <-b.publish:
			b.fanOut(msg)
		}
	}
}

func (b *PreviewBroadcaster) remove(client *PreviewClient) {
	clients, ok := b.sessionClients[client.SessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(b.sessionClients, client.SessionID)
	}
	b.setCount(client.SessionID, len(clients), false)
	b.logger.LogPreviewEvent("client unregistered", client.SessionID, len(clients))
}

func (b *PreviewBroadcaster) fanOut(msg PreviewMessage) {
	clients := b.sessionClients[msg.SessionID]
	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Preview().Error("Failed to marshal preview message", "error", err, "sessionId", msg.SessionID)
		return
	}
	for client := range clients {
		select {
		case client.Send <- data:
		default:
			b.logger.Preview().Warn("Preview client too slow, disconnecting", "sessionId", msg.SessionID)
			b.remove(client)
		}
	}
	if msg.Type == MessageClosed {
		for client := range b.sessionClients[msg.SessionID] {
			b.remove(client)
		}
	}
}

func (b *PreviewBroadcaster) setCount(sessionID string, n int, reset bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if reset {
		b.counts = make(map[string]int)
		return
	}
	if n == 0 {
		delete(b.counts, sessionID)
		return
	}
	b.counts[sessionID] = n
}

// Register queues a client for registration.
func (b *PreviewBroadcaster) Register(client *PreviewClient) {
	select {
	case b.register <- client:
	case <-b.done:
		close(client.Send)
	}
}

// Unregister queues a client for unregistration.
func (b *PreviewBroadcaster) Unregister(client *PreviewClient) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// Publish queues msg for the session's clients. It never blocks the caller:
// when the queue is full the message is dropped, the next change supersedes it.
func (b *PreviewBroadcaster) Publish(msg PreviewMessage) {
	if msg.Type == "" {
		msg.Type = MessageRender
	}
	select {
	case b.publish <- msg:
	default:
		b.logger.Preview().Warn("Preview queue full, message dropped", "sessionId", msg.SessionID)
	}
}

// CloseSession tells clients the session is gone and disconnects them
func (b *PreviewBroadcaster) CloseSession(sessionID string) {
	b.Publish(PreviewMessage{Type: MessageClosed, SessionID: sessionID})
}

// ConnectionCount returns the number of clients watching a session
func (b *PreviewBroadcaster) ConnectionCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.counts[sessionID]
}
