// ABOUTME: Account endpoints: login, register and logout
// ABOUTME: Login and register are unauthenticated; logout revokes the current token

package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse accepts both the facade's {token} and the auth service's
// {access_token} shapes
type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login calls POST /login and returns the bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", validationErrorf("email", "email and password are required")
	}

	var resp loginResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return "", &RequestError{
			Method: http.MethodPost,
			Path:   "/login",
			Err:    errors.New("invalid response from backend: missing token"),
		}
	}
	return token, nil
}

// Register calls POST /register. The response body is not used.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return validationErrorf("name", "name, email and password are required")
	}
	return c.do(ctx, c.httpClient, http.MethodPost, "/register", nil, registerRequest{Name: name, Email: email, Password: password}, nil)
}

// Logout calls POST /logout so the backend can revoke the token
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.authClient, http.MethodPost, "/logout", nil, nil, nil)
}

// ValidateRegistration checks the register form before any request is made
func ValidateRegistration(name, email, password, confirm string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return validationErrorf("name", "name, email and password are required")
	}
	if password != confirm {
		return validationErrorf("confirm", "passwords do not match")
	}
	return nil
}
