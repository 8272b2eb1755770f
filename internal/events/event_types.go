package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded  EventType = "login_succeeded"
	EventLoginFailed     EventType = "login_failed"
	EventLoginThrottled  EventType = "login_throttled"
	EventTokensRefreshed EventType = "tokens_refreshed"
	EventRefreshRejected EventType = "refresh_rejected"
	EventLoggedOut       EventType = "logged_out"
)

// Event is an authentication fact emitted by the auth service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username,omitempty"`
	ClientIP  string      `json:"client_ip,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(eventType EventType, username, clientIP string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Username:  username,
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// TokensIssuedPayload payload.
type TokensIssuedPayload struct {
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoggedOutPayload payload.
type LoggedOutPayload struct {
	ClearedCookies int `json:"cleared_cookies"`
}
