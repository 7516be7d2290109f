// Package messaging defines interfaces for real-time communication.
package messaging

// Publisher is what the editor needs to push preview updates. A nil-safe
// no-op implementation is NopPublisher.
type Publisher interface {
	Publish(msg PreviewMessage)
	CloseSession(sessionID string)
	ConnectionCount(sessionID string) int
}

// NopPublisher discards every message
type NopPublisher struct{}

func (NopPublisher) Publish(PreviewMessage)     {}
func (NopPublisher) CloseSession(string)        {}
func (NopPublisher) ConnectionCount(string) int { return 0 }
