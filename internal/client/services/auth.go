// Package services holds the client-side workflows: signing in, saving and
// deleting notes with their image blobs, following the live change feed and
// draining the retry ledger.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
)

// AuthService wraps the token exchange. The sign-in result is held back until
// a fixed settle delay has elapsed, so a fast round trip doesn't make the
// sign-in screen flicker.
type AuthService struct {
	client      api.Client
	settleDelay time.Duration
	logger      logging.Logger
}

func NewAuthService(client api.Client, settleDelay time.Duration, l logging.Logger) *AuthService {
	return &AuthService{
		client:      client,
		settleDelay: settleDelay,
		logger:      l.With("module", "auth"),
	}
}

// SignIn exchanges the identity token for a session and returns the user id.
// It returns no earlier than settleDelay after being called, success or not.
func (s *AuthService) SignIn(ctx context.Context, identityToken string) (string, error) {

	start := time.Now()

	userID, err := s.client.SignIn(ctx, identityToken)

	if remaining := s.settleDelay - time.Since(start); remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err != nil {
		s.logger.Warn(ctx, "Sign-in failed", "error", err.Error())
		return "", err
	}

	s.logger.Info(ctx, "Signed in", "user_id", userID)
	return userID, nil
}

func (s *AuthService) IsLoggedIn() bool {
	return s.client.IsLoggedIn()
}

func (s *AuthService) UserID() string {
	return s.client.UserID()
}

// Logout drops the session tokens. Ledger rows are kept so pending blob work
// is not lost across sessions.
func (s *AuthService) Logout(ctx context.Context) {
	s.client.Logout()
	s.logger.Info(ctx, "Signed out")
}

func (s *AuthService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
