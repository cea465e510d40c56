package service

import (
	"context"
	"fmt"
	"strings"

	"postboard/auth"
	"postboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type AuthService struct {
	users      UserStore
	tokens     *auth.Tokens
	bcryptCost int
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is returned on register and login.
type Session struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// NewAuthService hashes passwords with bcryptCost; zero means bcrypt.DefaultCost.
func NewAuthService(users UserStore, tokens *auth.Tokens, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	switch {
	case name == "":
		return nil, models.NewValidationError("Name is required")
	case email == "":
		return nil, models.NewValidationError("Email is required")
	case len(in.Password) < minPasswordLen:
		return nil, models.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, classify(err)
	}
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err != nil {
		return nil, classify(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return s.session(user)
}

// Me returns the caller's identity.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (models.UserSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.UserSummary{}, classify(err)
	}
	return user.Summary(), nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("issue token: %w", err))
	}
	return &Session{Token: token, User: user.Summary()}, nil
}
