// Package auth defines the authenticatable identity shape and the loader
// contract that resolves a sign-in identifier to one.
package auth

import (
	"context"
	"errors"

	"github.com/usergate/usergate-go/internal/model"
	"github.com/usergate/usergate-go/internal/repository"
)

var ErrIdentityNotFound = errors.New("identity not found")

// AuthorityUser is the single fixed authority granted to every identity.
// There is no role engine; the stored role field plays no part in
// authorization decisions.
const AuthorityUser = "USER"

// Identity is the capability set the authentication gate needs: the
// canonical sign-in identifier, the stored credential hash, and the granted
// authorities. Any record type can be adapted into one.
type Identity struct {
	Email        string
	PasswordHash string
	Authorities  []string
}

// Loader resolves an email to an authenticatable identity.
type Loader interface {
	LoadIdentity(ctx context.Context, email string) (Identity, error)
}

// UserGetter is the slice of the credential store the loader depends on.
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// StoreLoader adapts stored user records into identities.
type StoreLoader struct {
	store UserGetter
}

// NewStoreLoader creates a loader backed by the given credential store.
func NewStoreLoader(store UserGetter) *StoreLoader {
	return &StoreLoader{store: store}
}

// LoadIdentity fetches the user record for the email and adapts it.
// Returns ErrIdentityNotFound when no record matches.
func (l *StoreLoader) LoadIdentity(ctx context.Context, email string) (Identity, error) {
	user, err := l.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, err
	}
	return IdentityFromUser(user), nil
}

// IdentityFromUser converts a stored user record into an identity. The
// email serves as the sign-in identifier; the record's username is display
// metadata only.
func IdentityFromUser(u *model.User) Identity {
	return Identity{
		Email:        u.Email,
		PasswordHash: u.Password,
		Authorities:  []string{AuthorityUser},
	}
}
