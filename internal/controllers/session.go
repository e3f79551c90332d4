package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
)

// Authenticator performs the account API's login and signup calls
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (models.SessionIdentity, error)
	Signup(ctx context.Context, reg models.Registration) error
}

// CredentialSlot persists one session across runs
type CredentialSlot interface {
	SaveSession(identity models.SessionIdentity) error
	LoadSession() (models.SessionIdentity, error)
	DeleteSession() error
}

// ValidationError is returned when a form is rejected before any request is made
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SessionStore holds the optional authenticated identity. It is read from
// gateway goroutines through Token and written only by the event loop.
type SessionStore struct {
	mu       sync.RWMutex
	identity *models.SessionIdentity

	auth     Authenticator
	slot     CredentialSlot
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewSessionStore creates an empty session store
func NewSessionStore(auth Authenticator, slot CredentialSlot, logger *logrus.Logger) *SessionStore {
	return &SessionStore{
		auth:     auth,
		slot:     slot,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Token returns the bearer token when a session exists
func (s *SessionStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return "", false
	}
	return s.identity.Token, true
}

// Authenticated reports whether a session exists
func (s *SessionStore) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Identity returns the current identity
func (s *SessionStore) Identity() (models.SessionIdentity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.SessionIdentity{}, false
	}
	return *s.identity, true
}

// Authenticate validates creds and asks the account API for a session. It
// does not change the store.
func (s *SessionStore) Authenticate(ctx context.Context, creds models.Credentials) (models.SessionIdentity, error) {
	if err := s.check(creds); err != nil {
		return models.SessionIdentity{}, err
	}
	identity, err := s.auth.Login(ctx, creds)
	if err != nil {
		return models.SessionIdentity{}, fmt.Errorf("failed to log in: %w", err)
	}
	return identity, nil
}

// Establish makes identity the current session and persists it. A failing
// slot is logged; the in-memory session still applies.
func (s *SessionStore) Establish(identity models.SessionIdentity) {
	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()

	if s.slot != nil {
		if err := s.slot.SaveSession(identity); err != nil {
			s.logger.WithError(err).Warn("Failed to persist session")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  identity.User.ID,
		"username": identity.User.Username,
	}).Info("Session established")
}

// Login authenticates and establishes the session. On failure the prior
// session is left untouched.
func (s *SessionStore) Login(ctx context.Context, creds models.Credentials) error {
	identity, err := s.Authenticate(ctx, creds)
	if err != nil {
		return err
	}
	s.Establish(identity)
	return nil
}

// Signup validates reg and creates the account. No session is established.
func (s *SessionStore) Signup(ctx context.Context, reg models.Registration) error {
	if err := s.check(reg); err != nil {
		return err
	}
	return s.auth.Signup(ctx, reg)
}

// Logout clears the session in memory and in the slot
func (s *SessionStore) Logout() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	if s.slot != nil {
		if err := s.slot.DeleteSession(); err != nil {
			s.logger.WithError(err).Warn("Failed to clear stored session")
		}
	}
	s.logger.Info("Logged out")
}

// Restore loads a persisted session and reports whether one was found
func (s *SessionStore) Restore() bool {
	if s.slot == nil {
		return false
	}
	identity, err := s.slot.LoadSession()
	if err != nil {
		if !errors.Is(err, models.ErrNoSession) {
			s.logger.WithError(err).Warn("Failed to read stored session")
		}
		return false
	}

	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()

	s.logger.WithField("username", identity.User.Username).Debug("Restored session")
	return true
}

// check maps struct validation failures to the messages shown in the login form
func (s *SessionStore) check(form interface{}) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	message := ""
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return &ValidationError{Message: "Please fill all fields"}
		case "eqfield":
			message = "Passwords do not match"
		case "email":
			if message == "" {
				message = "Please enter a valid email"
			}
		}
	}
	if message == "" {
		message = verrs.Error()
	}
	return &ValidationError{Message: message}
}
