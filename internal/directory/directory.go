// Package directory provides read access to customers and employees.
// The order engine validates party references here and enriches listing
// views with display names; it never mutates party data.
package directory

import (
	"context"
	"errors"

	"github.com/aslbekmam/flower-salon/pkg/models"
)

var (
	ErrNotFound       = errors.New("party not found")
	ErrBadCredentials = errors.New("bad credentials")
)

// Authenticator resolves login credentials to an actor. Implementations
// only need to produce the capability view of a principal; credential
// management beyond that is out of scope.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (models.Actor, error)
}
