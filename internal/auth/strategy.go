package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"flix/internal/data"
)

var (
	// ErrNoCredentials means the request carried nothing to authenticate
	// with.
	ErrNoCredentials = errors.New("no credentials presented")

	// ErrIncorrectUsername and ErrIncorrectPassword are for internal logs
	// only. Handlers must surface both to the client as the same generic
	// authentication failure.
	ErrIncorrectUsername = errors.New("incorrect username")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// UserResolver is the slice of the user store the strategies need.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*data.User, error)
	GetByID(ctx context.Context, id string) (*data.User, error)
}

// Strategy resolves request credentials to a user identity or fails. New
// verification methods plug in here without touching route handlers.
type Strategy interface {
	Authenticate(ctx context.Context, r *http.Request) (*data.User, error)
}

// Local verifies a username and password carried in the request body.
type Local struct {
	Users UserResolver
}

type loginCredentials struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

func (s *Local) Authenticate(ctx context.Context, r *http.Request) (*data.User, error) {
	var creds loginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return nil, ErrNoCredentials
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrNoCredentials
	}

	user, err := s.Users.GetByUsername(ctx, creds.Username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return nil, ErrIncorrectUsername
		default:
			return nil, err
		}
	}

	if !user.PasswordMatches(creds.Password) {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// Bearer verifies a signed token from the Authorization header and resolves
// the embedded identity. A valid token whose user has since been deleted
// resolves to AnonymousUser, which callers must treat as unauthenticated.
type Bearer struct {
	Tokens *Tokens
	Users  UserResolver
}

func (s *Bearer) Authenticate(ctx context.Context, r *http.Request) (*data.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrNoCredentials
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, ErrInvalidToken
	}

	userID, err := s.Tokens.Verify(parts[1])
	if err != nil {
		return nil, err
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return data.AnonymousUser, nil
		default:
			return nil, err
		}
	}
	return user, nil
}
