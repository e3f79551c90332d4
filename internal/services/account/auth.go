package account

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/gateway"
)

// AuthClient talks to the account API's unauthenticated endpoints
type AuthClient struct {
	gw     *gateway.Client
	logger *logrus.Logger
}

// NewAuthClient creates an auth client. gw must not carry a token source.
func NewAuthClient(gw *gateway.Client, logger *logrus.Logger) *AuthClient {
	return &AuthClient{gw: gw, logger: logger}
}

// loginResponse is the body of a successful login
type loginResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Login exchanges credentials for a session identity
func (c *AuthClient) Login(ctx context.Context, creds models.Credentials) (models.SessionIdentity, error) {
	data, err := c.gw.Do(ctx, "login", http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return models.SessionIdentity{}, err
	}

	var resp loginResponse
	if err := c.gw.Decode("login", data, &resp); err != nil {
		return models.SessionIdentity{}, err
	}
	if resp.Token == "" {
		return models.SessionIdentity{}, c.gw.DecodeError("login", "missing token")
	}

	username := resp.Username
	if username == "" {
		username = creds.Username
	}

	c.logger.WithField("username", username).Debug("Login accepted")

	return models.SessionIdentity{
		Token: resp.Token,
		User:  models.User{ID: resp.ID, Username: username},
	}, nil
}

// Signup creates an account. It does not log in.
func (c *AuthClient) Signup(ctx context.Context, reg models.Registration) error {
	if _, err := c.gw.Do(ctx, "signup", http.MethodPost, "/auth/signup", nil, reg); err != nil {
		return fmt.Errorf("failed to sign up: %w", err)
	}
	return nil
}
