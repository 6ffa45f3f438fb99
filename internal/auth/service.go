package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates username/password credentials and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := shared.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user.View()}, nil
}

// CurrentUser loads the account behind an authenticated principal.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*UserView, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User")
		}
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// EnsureUser creates the account when missing. Existing accounts are left untouched.
func (s *Service) EnsureUser(ctx context.Context, username, password, fullName, role string) (bool, error) {
	if username == "" || password == "" {
		return false, shared.NewValidationError("username and password are required")
	}
	if role != RoleAdmin && role != RoleCashier {
		return false, shared.NewValidationError("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	return s.repo.CreateUser(ctx, username, string(hash), fullName, role)
}
