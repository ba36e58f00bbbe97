package models

import (
	"fmt"
	"time"
)

// Role identifies the author of a proposal chat message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a message role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown message role %q", s)
}

// Message is one entry of the proposal conversation log.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// ProposalSession is the persisted proposal aggregate.
type ProposalSession struct {
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Messages []Message `json:"messages"`
}

// Clone returns a copy of s with its own, never nil, message slice.
func (s ProposalSession) Clone() ProposalSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// LastAssistant returns the most recent assistant message.
func (s ProposalSession) LastAssistant() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}
