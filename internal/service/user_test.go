package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/usergate/usergate-go/internal/auth"
	"github.com/usergate/usergate-go/internal/crypto"
	"github.com/usergate/usergate-go/internal/model"
	"github.com/usergate/usergate-go/internal/repository"
	"github.com/usergate/usergate-go/internal/token"
)

// memStore is an in-memory UserStore with the repository's error contract.
type memStore struct {
	users map[string]model.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]model.User)}
}

func (m *memStore) Create(ctx context.Context, user *model.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (m *memStore) List(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *memStore) Update(ctx context.Context, user *model.User) error {
	if _, ok := m.users[user.Email]; !ok {
		return repository.ErrUserNotFound
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memStore) Delete(ctx context.Context, email string) error {
	if _, ok := m.users[email]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, email)
	return nil
}

func newTestService(t *testing.T) (*UserService, *memStore, *token.Service) {
	t.Helper()
	tokens, err := token.NewService(30 * time.Minute)
	if err != nil {
		t.Fatalf("token.NewService() unexpected error: %v", err)
	}
	store := newMemStore()
	svc := NewUserService(store, auth.NewStoreLoader(store), tokens)
	return svc, store, tokens
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{Password: "pw1"})
	if !errors.Is(err, ErrEmailRequired) {
		t.Errorf("Register() error = %v, want ErrEmailRequired", err)
	}

	_, err = svc.Register(context.Background(), model.RegisterRequest{Email: "a@x.com"})
	if !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("Register() error = %v, want ErrPasswordRequired", err)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, store, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "pw1",
	})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if resp.Email != "a@x.com" || resp.Username != "alice" {
		t.Errorf("Register() response = %+v, want submitted fields echoed", resp)
	}

	stored := store.users["a@x.com"]
	if stored.Password == "pw1" {
		t.Fatal("stored password equals plaintext")
	}
	if !crypto.VerifyPassword("pw1", stored.Password) {
		t.Error("stored hash does not verify against the plaintext")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := model.RegisterRequest{Email: "a@x.com", Password: "pw1"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newTestService(t)

	if _, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "a@x.com",
		Password: "pw1",
	}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "pw1"})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Login() returned empty token")
	}

	subject, err := tokens.ExtractSubject(resp.Token)
	if err != nil {
		t.Fatalf("ExtractSubject() unexpected error: %v", err)
	}
	if subject != "a@x.com" {
		t.Errorf("token subject = %q, want %q", subject, "a@x.com")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "a@x.com",
		Password: "pw1",
	}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials for wrong password", err)
	}

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "nobody@x.com", Password: "pw1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials for unknown email", err)
	}
}

type failingLoader struct{ err error }

func (f *failingLoader) LoadIdentity(ctx context.Context, email string) (auth.Identity, error) {
	return auth.Identity{}, f.err
}

func TestLoginInternalErrorNotCollapsed(t *testing.T) {
	tokens, err := token.NewService(30 * time.Minute)
	if err != nil {
		t.Fatalf("token.NewService() unexpected error: %v", err)
	}
	storeErr := errors.New("connection refused")
	svc := NewUserService(newMemStore(), &failingLoader{err: storeErr}, tokens)

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "pw1"})
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("internal failure collapsed into ErrInvalidCredentials")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("Login() error = %v, want store error passed through", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "nobody@x.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, store, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "pw1",
	}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	originalHash := store.users["a@x.com"].Password

	resp, err := svc.Update(context.Background(), model.UpdateUserRequest{
		Email:    "a@x.com",
		Username: "alice2",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if resp.Username != "alice2" || resp.Role != "admin" {
		t.Errorf("Update() response = %+v, want replaced fields", resp)
	}
	if store.users["a@x.com"].Password != originalHash {
		t.Error("empty update password replaced the stored hash")
	}

	if _, err := svc.Update(context.Background(), model.UpdateUserRequest{
		Email:    "a@x.com",
		Password: "pw2",
	}); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	updated := store.users["a@x.com"].Password
	if updated == "pw2" {
		t.Fatal("update stored plaintext password")
	}
	if !crypto.VerifyPassword("pw2", updated) {
		t.Error("updated hash does not verify against the new password")
	}
}

func TestUpdateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), model.UpdateUserRequest{Username: "x"})
	if !errors.Is(err, ErrEmailRequired) {
		t.Errorf("Update() error = %v, want ErrEmailRequired", err)
	}

	_, err = svc.Update(context.Background(), model.UpdateUserRequest{Email: "nobody@x.com"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "a@x.com",
		Password: "pw1",
	}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound after removal", err)
	}
	if _, err := svc.Get(context.Background(), "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound after delete", err)
	}
}
