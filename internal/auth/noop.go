package auth

import (
	"context"
	"errors"
)

// noopVerifier skips signature checks and treats the bearer token as the user
// id. Memory-mode development and the httpapi tests run with it.
type noopVerifier struct{}

func newNoopVerifier(_ Config) Verifier {
	return noopVerifier{}
}

func (noopVerifier) Verify(_ context.Context, token string) (AuthenticatedUser, error) {
	if token == "" {
		return AuthenticatedUser{}, errors.New("token must not be empty")
	}
	return AuthenticatedUser{UserID: token, Token: token}, nil
}
