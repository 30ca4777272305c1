package services

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stocklock/internal/domain"
	"stocklock/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users      *repos.UserRepo
	BcryptCost int
}

func NewAuthService(users *repos.UserRepo, cost int) *AuthService {
	if cost <= 0 {
		cost = 12
	}
	return &AuthService{Users: users, BcryptCost: cost}
}

func (s *AuthService) Register(email, name, password string) (*domain.User, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:    "u-" + uuid.NewString()[:8],
		Email: email,
		Name:  name,
		Hash:  string(h),
		Role:  "USER",
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and binds a fresh session token to the user.
// The returned token is presented as a bearer token on later requests.
func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	token := uuid.NewString()
	if err := s.Users.BindSession(token, u.ID); err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Logout(token string) error {
	return s.Users.UnbindSession(token)
}

func (s *AuthService) CurrentUser(token string) (*domain.User, error) {
	return s.Users.SessionUser(token)
}
