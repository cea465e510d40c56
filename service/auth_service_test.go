package service

import (
	"context"
	"testing"
	"time"

	"postboard/auth"
	"postboard/models"
	"postboard/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() (*AuthService, *auth.Tokens) {
	tokens := auth.NewTokens("test-secret-key-12345678901234567890123456789012", time.Hour)
	return NewAuthService(storetest.NewUsers(), tokens, bcrypt.MinCost), tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newAuthService()

	session, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", session.User.Name)
	assert.Equal(t, "alice@example.com", session.User.Email)

	userID, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID.Hex(), userID)

	login, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	me, err := svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, session.User, me)
}

func TestAuthService_Register_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	tests := []struct {
		name string
		in   RegisterInput
		code string
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "secret1"}, models.CodeValidation},
		{"missing email", RegisterInput{Name: "A", Password: "secret1"}, models.CodeValidation},
		{"short password", RegisterInput{Name: "A", Email: "a@b.c", Password: "123"}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assertCode(t, err, tt.code)
		})
	}

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "dup@b.c", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "DUP@b.c", Password: "secret2"})
	assertCode(t, err, models.CodeConflict)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()
	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assertCode(t, err, models.CodeUnauthorized)
}

func TestAuthService_Me_NotFound(t *testing.T) {
	svc, _ := newAuthService()
	_, err := svc.Me(context.Background(), primitive.NewObjectID())
	assertCode(t, err, models.CodeNotFound)
}
