package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"printhub/console/internal/models"
)

type LoginResult struct {
	AccessToken string          `json:"access_token" validate:"required"`
	TokenType   string          `json:"token_type,omitempty"`
	Role        models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin staff"`
}

type RegisterResult struct {
	Detail   string `json:"detail,omitempty"`
	Username string `json:"username,omitempty"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token. The backend expects an
// OAuth2 password form rather than JSON.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out LoginResult
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, username, password string) (RegisterResult, error) {
	body, err := jsonBody(credentials{Username: username, Password: password})
	if err != nil {
		return RegisterResult{}, err
	}

	var out RegisterResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/register",
		body:        body,
		contentType: "application/json",
	}, &out)
	return out, err
}
