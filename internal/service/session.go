package service

import (
	"context"
	"fmt"
	"sync"

	"cozy_nook/internal/models"
	"cozy_nook/internal/repository"
)

type SessionService struct {
	mu       *sync.Mutex
	sessions repository.SessionRepo
	carts    repository.CartRepo
	tokens   *TokenIssuer
	notify   *Notifier
}

func NewSessionService(mu *sync.Mutex, sessions repository.SessionRepo, carts repository.CartRepo, tokens *TokenIssuer, notify *Notifier) *SessionService {
	return &SessionService{mu: mu, sessions: sessions, carts: carts, tokens: tokens, notify: notify}
}

// Current returns nil when nobody is logged in.
func (s *SessionService) Current(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Load(ctx)
}

func (s *SessionService) Establish(ctx context.Context, u models.User) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return establish(ctx, s.sessions, s.notify, u)
}

// End clears the session and the cart together; logging out always empties
// the basket.
func (s *SessionService) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx); err != nil {
		return err
	}
	s.notify.Publish(TopicSession, TopicCart)
	return nil
}

func (s *SessionService) IssueToken(sess models.Session) (string, error) {
	return s.tokens.Issue(sess)
}

// Authenticate accepts a token only while the stored session still belongs
// to the user it was issued for, and returns the stored snapshot.
func (s *SessionService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	claimed, err := s.tokens.Parse(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	s.mu.Lock()
	current, err := s.sessions.Load(ctx)
	s.mu.Unlock()
	if err != nil {
		return models.Session{}, err
	}
	if current == nil || current.Username != claimed.Username {
		return models.Session{}, fmt.Errorf("%w: session ended", ErrUnauthenticated)
	}
	return *current, nil
}

// establish stores the snapshot of u; callers hold the service mutex.
func establish(ctx context.Context, sessions repository.SessionRepo, notify *Notifier, u models.User) (models.Session, error) {
	snap := models.SessionOf(u)
	if err := sessions.Save(ctx, snap); err != nil {
		return models.Session{}, err
	}
	notify.Publish(TopicSession)
	return snap, nil
}
