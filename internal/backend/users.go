package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"printhub/console/internal/models"
)

type AddUserInput struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

// userList accepts either a bare array or {"users": [...]}.
type userList struct {
	Users []models.User `validate:"dive"`
}

func (l *userList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &l.Users)
	}
	var wrapped struct {
		Users []models.User `json:"users"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	l.Users = wrapped.Users
	return nil
}

func (c *Caller) ListUsers(ctx context.Context) ([]models.User, error) {
	var out userList
	if err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/users",
	}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Caller) AddUser(ctx context.Context, in AddUserInput) error {
	if in.Role == "" {
		in.Role = models.UserRoleStaff
	}
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/users",
		body:        body,
		contentType: "application/json",
	}, nil)
}

func (c *Caller) DeleteUser(ctx context.Context, id int) error {
	return c.send(ctx, request{
		method: http.MethodDelete,
		path:   "/users/" + strconv.Itoa(id),
	}, nil)
}
