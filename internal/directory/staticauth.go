package directory

import (
	"context"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

// StaticAuthenticator serves a fixed set of demo accounts behind the
// same Authenticator interface real accounts use, so nothing downstream
// ever special-cases them.
type StaticAuthenticator struct {
	accounts map[string]staticAccount
}

type staticAccount struct {
	password string
	actor    models.Actor
}

func NewStaticAuthenticator() *StaticAuthenticator {
	return &StaticAuthenticator{accounts: make(map[string]staticAccount)}
}

func (s *StaticAuthenticator) Register(login, password string, actor models.Actor) {
	s.accounts[login] = staticAccount{password: password, actor: actor}
}

func (s *StaticAuthenticator) Authenticate(ctx context.Context, login, password string) (models.Actor, error) {
	acc, ok := s.accounts[login]
	if !ok || acc.password != password {
		return models.Actor{}, ErrBadCredentials
	}
	return acc.actor, nil
}

var _ Authenticator = (*StaticAuthenticator)(nil)

// ChainAuthenticator tries each authenticator in turn, accepting the
// first match. Used to layer demo accounts over the directory-backed
// authenticator.
type ChainAuthenticator []Authenticator

func (c ChainAuthenticator) Authenticate(ctx context.Context, login, password string) (models.Actor, error) {
	for _, a := range c {
		actor, err := a.Authenticate(ctx, login, password)
		if err == nil {
			return actor, nil
		}
	}
	return models.Actor{}, ErrBadCredentials
}

var _ Authenticator = (ChainAuthenticator)(nil)
