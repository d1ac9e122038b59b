// Package session keeps per-user interview state between chat turns.
package session

import (
	"context"
	"errors"

	"pet-matchmaker/internal/models"
)

var (
	ErrSessionStoreFailed = errors.New("SESSION_STORE_FAILED")
	// ErrCorruptSession marks a stored record that cannot be decoded. The
	// record is unusable but the store itself is healthy.
	ErrCorruptSession = errors.New("CORRUPT_SESSION")
)

// ConversationSession is the state of one user's preference interview.
// An absent session means the user is idle.
type ConversationSession struct {
	Collecting  bool                   `json:"collecting"`
	Preferences models.UserPreferences `json:"preferences"`
	CurrentStep int                    `json:"currentStep"`
}

// New starts an interview at the first question.
func New() *ConversationSession {
	return &ConversationSession{
		Collecting:  true,
		Preferences: models.UserPreferences{},
	}
}

func (s *ConversationSession) clone() *ConversationSession {
	out := *s
	out.Preferences = s.Preferences.Clone()
	return &out
}

// Counter is implemented by stores that can report how many interviews are
// in progress.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

type Store interface {
	Get(ctx context.Context, userID string) (*ConversationSession, bool, error)
	Put(ctx context.Context, userID string, s *ConversationSession) error
	Delete(ctx context.Context, userID string) error
}
