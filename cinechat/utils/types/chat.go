// cinechat/utils/types/chat.go
package types

import (
	"fmt"
	"time"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// PlaceholderTitle is the title every fresh session starts with; it is
// replaced exactly once, by derivation from the first user message.
const PlaceholderTitle = "New Chat"

// MessageState classifies a message beyond its wire flags.
// A bot message is pending between dispatch and resolution; the
// isLoading/isError pair on the wire can only encode the three states
// below because messages are built through the constructors here.
type MessageState string

const (
	StatePending  MessageState = "pending"
	StateResolved MessageState = "resolved"
	StateFailed   MessageState = "failed"
)

type Message struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	Text            string           `json:"text"`
	Recommendations []Recommendation `json:"recommendations"`
	IsLoading       bool             `json:"isLoading"`
	IsError         bool             `json:"isError"`
}

func (m Message) State() MessageState {
	switch {
	case m.IsLoading:
		return StatePending
	case m.IsError:
		return StateFailed
	default:
		return StateResolved
	}
}

// NewUserMessage builds a resolved user turn. ts is unix millis; the
// same ts must be shared with the paired pending bot message so the two
// ids line up.
func NewUserMessage(ts int64, text string) Message {
	return Message{
		ID:              fmt.Sprintf("%d-user", ts),
		Role:            RoleUser,
		Text:            text,
		Recommendations: []Recommendation{},
	}
}

// NewPendingBotMessage builds the placeholder half of the two-phase append.
func NewPendingBotMessage(ts int64) Message {
	return Message{
		ID:              fmt.Sprintf("%d-bot", ts),
		Role:            RoleBot,
		Text:            "",
		Recommendations: []Recommendation{},
		IsLoading:       true,
	}
}

// Resolved returns a copy of m resolved in place: same id, final text and
// recommendations, flags cleared.
func (m Message) Resolved(text string, recs []Recommendation) Message {
	m.Text = text
	if recs == nil {
		recs = []Recommendation{}
	}
	m.Recommendations = recs
	m.IsLoading = false
	m.IsError = false
	return m
}

// Failed returns a copy of m failed in place with the given user-facing text.
func (m Message) Failed(text string) Message {
	m.Text = text
	m.Recommendations = []Recommendation{}
	m.IsLoading = false
	m.IsError = true
	return m
}

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// LastActivity is the sort key for session listing: updatedAt, falling
// back to createdAt, falling back to the zero time.
func (s Session) LastActivity() time.Time {
	if t, err := time.Parse(time.RFC3339, s.UpdatedAt); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
		return t
	}
	return time.Time{}
}
