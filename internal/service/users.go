package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"

	"github.com/google/uuid"
)

const (
	adminUsername = "admin"
	adminPassword = "admin"
)

type UserService struct {
	mu       *sync.Mutex
	users    repository.UserRepo
	sessions repository.SessionRepo
	notify   *Notifier
}

func NewUserService(mu *sync.Mutex, users repository.UserRepo, sessions repository.SessionRepo, notify *Notifier) *UserService {
	return &UserService{mu: mu, users: users, sessions: sessions, notify: notify}
}

// ListUsers returns accounts in registration order.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.Load(ctx)
}

// Register creates a non-admin account and logs it in. Usernames are
// compared exactly, so "Alice" and "alice" are different accounts.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	if findUser(users, username) >= 0 {
		return models.User{}, fmt.Errorf("%w: %q", ErrDuplicateUsername, username)
	}

	u := models.User{ID: uuid.NewString(), Username: username, Password: password}
	if err := s.users.Save(ctx, append(users, u)); err != nil {
		return models.User{}, err
	}
	s.notify.Publish(TopicUsers)

	if _, err := establish(ctx, s.sessions, s.notify, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Login leaves the current session untouched when the credentials are wrong.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	i := findUser(users, username)
	if i < 0 || users[i].Password != password {
		return models.User{}, ErrInvalidCredentials
	}

	if _, err := establish(ctx, s.sessions, s.notify, users[i]); err != nil {
		return models.User{}, err
	}
	return users[i], nil
}

// EnsureAdminBootstrap adds the admin/admin account if no user is named admin.
func (s *UserService) EnsureAdminBootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return err
	}
	if findUser(users, adminUsername) >= 0 {
		return nil
	}
	users = append(users, models.User{
		ID:       uuid.NewString(),
		Username: adminUsername,
		Password: adminPassword,
		IsAdmin:  true,
	})
	if err := s.users.Save(ctx, users); err != nil {
		return err
	}
	s.notify.Publish(TopicUsers)
	return nil
}

func findUser(users []models.User, username string) int {
	for i := range users {
		if users[i].Username == username {
			return i
		}
	}
	return -1
}
