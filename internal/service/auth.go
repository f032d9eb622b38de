package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
	"github.com/sakif/devconnector/internal/validate"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// invalidCredentials is returned for an unknown email and a wrong password
// alike, so the response does not reveal which accounts exist.
func invalidCredentials() error {
	return apperror.ValidationFailed("", "Invalid Credentials")
}

// RegisterInput is the body of POST /api/users.
type RegisterInput struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

// LoginInput is the body of POST /api/auth.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// AuthService registers accounts and signs them in, either with a password
// or through GitHub.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the handler can
// respond (and set the cookie) in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account and signs it in. The email is stored
// lower-cased and the avatar is its Gravatar.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if len(in.Password) > maxPasswordBytes {
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       auth.GravatarURL(in.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return s.issue(user)
}

// Login checks the password for the account with the given email.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	return s.issue(user)
}

// LoginOrRegisterGitHub finishes a GitHub sign-in: the account linked to the
// GitHub ID is created on first login and refreshed afterwards. GitHub users
// with a private email get the noreply address for their login.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	email := strings.ToLower(strings.TrimSpace(gh.Email))
	if email == "" {
		email = strings.ToLower(gh.Login) + "@users.noreply.github.com"
	}

	user := &model.User{
		Name:     gh.DisplayName(),
		Email:    email,
		Avatar:   gh.AvatarURL,
		GitHubID: gh.ID,
	}
	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", gh.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", gh.Login),
	)

	return s.issue(user)
}

// GetUserByID returns the account behind an authenticated request.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("Token is not valid")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// TokenTTL is how long issued tokens stay valid; the handler uses it for the
// cookie lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
