package backend

import (
	"context"
	"net/http"

	"github.com/veskr/storefront/internal/domain/user"
)

// userPayload is the wire shape of a user object.
type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
}

func (p userPayload) toDomain() *user.User {
	return &user.User{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		CreatedAt: parseTime(p.CreatedAt),
	}
}

// authPayload is the wire shape of login and registration responses.
type authPayload struct {
	AccessToken string      `json:"access_token"`
	User        userPayload `json:"user"`
}

// RegisterRequest holds the fields required to create an account.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate holds the mutable profile fields. Nil pointers are omitted
// from the request and left unchanged server-side.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Login exchanges credentials for a token and the user identity.
func (c *Client) Login(ctx context.Context, login, password string) (string, *user.User, error) {
	req := struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}{Login: login, Password: password}

	var resp authPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return "", nil, err
	}
	return resp.AccessToken, resp.User.toDomain(), nil
}

// Register creates an account and returns its first token and identity.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, *user.User, error) {
	var resp authPayload
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return "", nil, err
	}
	return resp.AccessToken, resp.User.toDomain(), nil
}

// Me validates the current token and returns the identity it belongs to.
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	var resp userPayload
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// UpdateProfile mutates the profile and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*user.User, error) {
	var resp userPayload
	if err := c.do(ctx, http.MethodPut, "/auth/me", upd, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}
