package analytics

import "time"

// Topics for link usage events.
const (
	TopicLinkGenerated = "link.generated"
	TopicLinkResolved  = "link.resolved"
)

// LinkGeneratedEvent is emitted when a secure link is created.
type LinkGeneratedEvent struct {
	EventID   string    `json:"eventId"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	RequestID string    `json:"requestId,omitempty"`
}

// LinkResolvedEvent is emitted for every validation attempt, successful or
// not. Reason is empty for valid outcomes.
type LinkResolvedEvent struct {
	EventID    string    `json:"eventId"`
	Code       string    `json:"code"`
	Valid      bool      `json:"valid"`
	Reason     string    `json:"reason,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	RequestID  string    `json:"requestId,omitempty"`
}
