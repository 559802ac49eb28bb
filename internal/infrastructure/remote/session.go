package remote

import (
	"context"
	"errors"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
)

var ErrNoSession = errors.New("no session token configured")

// StaticSession serves the bearer token from config, or from a file that
// the login flow keeps up to date. The file wins when both are set.
type StaticSession struct {
	token     string
	tokenFile string
}

var _ ports.SessionStore = (*StaticSession)(nil)

func NewStaticSession(token string, tokenFile string) *StaticSession {
	return &StaticSession{
		token:     strings.TrimSpace(token),
		tokenFile: strings.TrimSpace(tokenFile),
	}
}

func (s *StaticSession) Token(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if s.tokenFile != "" {
		raw, err := os.ReadFile(s.tokenFile)
		if err != nil {
			return "", errs.Wrapf(err, "read token file %q", s.tokenFile)
		}
		if token := strings.TrimSpace(string(raw)); token != "" {
			return token, nil
		}
	}
	if s.token == "" {
		return "", ErrNoSession
	}
	return s.token, nil
}

// sessionTokenSource adapts a SessionStore to oauth2. The store is asked on
// every request so a re-login is picked up without restarting.
type sessionTokenSource struct {
	session ports.SessionStore
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.session.Token(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
