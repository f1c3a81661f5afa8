package service

import (
	"context"
	"errors"

	"github.com/usergate/usergate-go/internal/auth"
	"github.com/usergate/usergate-go/internal/crypto"
	"github.com/usergate/usergate-go/internal/model"
	"github.com/usergate/usergate-go/internal/repository"
	"github.com/usergate/usergate-go/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already taken")
	ErrNotFound           = errors.New("user not found")
)

// UserStore is the credential-store contract the service depends on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, email string) error
}

// UserService handles user management and login business logic.
type UserService struct {
	store      UserStore
	identities auth.Loader
	tokens     *token.Service
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, identities auth.Loader, tokens *token.Service) *UserService {
	return &UserService{
		store:      store,
		identities: identities,
		tokens:     tokens,
	}
}

// Register creates a new user account. The password is hashed before it
// ever reaches the store.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if req.Email == "" {
		return model.UserResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.UserResponse{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := &model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: hash,
		Role:     req.Role,
		Address1: req.Address1,
		Address2: req.Address2,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

// Login verifies the submitted credentials and issues a token for the
// email on success. Bad credentials yield ErrInvalidCredentials; anything
// else is an internal failure and is reported as such, never collapsed
// into the credentials error.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	identity, err := s.identities.LoadIdentity(ctx, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return model.LoginResponse{}, ErrInvalidCredentials
		}
		return model.LoginResponse{}, err
	}

	if !crypto.VerifyPassword(req.Password, identity.PasswordHash) {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(identity.Email)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{Token: tok}, nil
}

// List returns all user records.
func (s *UserService) List(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]model.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, users[i].ToResponse())
	}
	return resp, nil
}

// Get returns the user with the given email.
func (s *UserService) Get(ctx context.Context, email string) (model.UserResponse, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrNotFound
		}
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

// Update replaces the record for the request's email. A non-empty password
// is hashed; an empty one keeps the stored hash, so plaintext never reaches
// the store on this path either.
func (s *UserService) Update(ctx context.Context, req model.UpdateUserRequest) (model.UserResponse, error) {
	if req.Email == "" {
		return model.UserResponse{}, ErrEmailRequired
	}

	current, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrNotFound
		}
		return model.UserResponse{}, err
	}

	password := current.Password
	if req.Password != "" {
		password, err = crypto.HashPassword(req.Password)
		if err != nil {
			return model.UserResponse{}, err
		}
	}

	user := &model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: password,
		Role:     req.Role,
		Address1: req.Address1,
		Address2: req.Address2,
	}

	if err := s.store.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrNotFound
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

// Delete removes the user with the given email.
func (s *UserService) Delete(ctx context.Context, email string) error {
	if err := s.store.Delete(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
