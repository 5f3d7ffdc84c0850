package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"household-expenses/internal/models"
	"household-expenses/internal/transport"
	"household-expenses/internal/validation"
)

const usersPath = "/users/"

// ErrInvalidCredentials is returned when the backend accepts the login
// request but names no user.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Transport is the subset of transport.Client the service needs.
type Transport interface {
	PostJSON(ctx context.Context, path string, body, out any) error
	GetJSON(ctx context.Context, path string, out any) error
	PutJSON(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// Service wraps the /users endpoints.
type Service struct {
	transport Transport
	validator *validation.Validator
}

// NewService creates a Service.
func NewService(t Transport) *Service {
	return &Service{transport: t, validator: validation.New()}
}

func failed(op string, err error) error {
	log.Printf("%s error: %v", op, err)
	return fmt.Errorf("failed to %s: %w", op, transport.Classify(err).Err())
}

func invalidID() error {
	return validation.Field("user", "id", "required", "id is a required field")
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, u models.User) (models.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if err := s.validator.Struct("user", u); err != nil {
		return models.User{}, err
	}
	var created models.User
	if err := s.transport.PostJSON(ctx, usersPath, u, &created); err != nil {
		return models.User{}, failed("register user", err)
	}
	return created, nil
}

type authRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type authResponse struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

// Authenticate checks the credentials and returns the matching identity.
// The backend does not echo the email, so identifier is used for it.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (models.Identity, error) {
	var resp authResponse
	err := s.transport.PostJSON(ctx, usersPath+"authenticate", authRequest{Identifier: identifier, Password: password}, &resp)
	if err != nil {
		return models.Identity{}, failed("authenticate user", err)
	}
	if resp.UserID == 0 {
		return models.Identity{}, ErrInvalidCredentials
	}
	return models.Identity{ID: resp.UserID, Name: resp.Name, Email: identifier}, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.transport.GetJSON(ctx, usersPath, &users); err != nil {
		return nil, failed("fetch users", err)
	}
	return users, nil
}

// GetUser looks a user up by id or email.
func (s *Service) GetUser(ctx context.Context, identifier string) (models.User, error) {
	if strings.TrimSpace(identifier) == "" {
		return models.User{}, validation.Field("user", "identifier", "required", "identifier is a required field")
	}
	var u models.User
	if err := s.transport.GetJSON(ctx, usersPath+url.PathEscape(identifier), &u); err != nil {
		return models.User{}, failed("fetch user", err)
	}
	return u, nil
}

// UpdateUser replaces the stored details of user id.
func (s *Service) UpdateUser(ctx context.Context, id int, u models.User) error {
	if id <= 0 {
		return invalidID()
	}
	if err := s.transport.PutJSON(ctx, fmt.Sprintf("%s%d", usersPath, id), u, nil); err != nil {
		return failed("update user", err)
	}
	return nil
}

// DeleteUser removes user id.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	if id <= 0 {
		return invalidID()
	}
	if err := s.transport.Delete(ctx, fmt.Sprintf("%s%d", usersPath, id)); err != nil {
		return failed("delete user", err)
	}
	return nil
}
