package services

import (
	"context"
	"errors"

	"mercado/internal/domain"
	"mercado/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users *repos.UserRepo
}

// Register creates a client account and logs it in, returning the new user
// and a bearer token.
func (s *AuthService) Register(ctx context.Context, name, email, password, phone string) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, "", err
	}
	u, err := s.Users.Insert(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "client",
		Phone:        phone,
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.issue(ctx, &u)
	if err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrBadCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrBadCreds
	}
	token, err := s.issue(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) issue(ctx context.Context, u *domain.User) (string, error) {
	token := uuid.NewString()
	if err := s.Users.BindSession(ctx, token, u.ID); err != nil {
		return "", err
	}
	return token, nil
}

// CurrentUser resolves a bearer token to its verified (user, role) pair.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, token)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Users.UnbindSession(ctx, token)
}
