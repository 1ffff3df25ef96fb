package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

const testSecret = "test-secret"

func newUserService(mailer *recordingMailer) (*UserService, *repository.MemoryStore) {
	store := repository.NewMemoryStore(0)
	if mailer == nil {
		return NewUserService(store, nil, nil, testSecret), store
	}
	return NewUserService(store, mailer, nil, testSecret), store
}

func register(t *testing.T, svc *UserService, email string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana García",
		Email:    email,
		Password: "secreto123",
		Address:  "Av. Siempre Viva 742",
		Phone:    "11-5555-0000",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterStartsPending(t *testing.T) {
	mailer := &recordingMailer{}
	svc, _ := newUserService(mailer)

	u := register(t, svc, "ana@example.com")
	require.Equal(t, entity.RolePending, u.Role)
	require.False(t, u.Approved)
	require.NotEqual(t, "secreto123", u.Password, "the raw password must never be stored")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secreto123")))

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "ana@example.com", mailer.sent[0].to)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _ := newUserService(nil)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@example.com"})
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(nil)
	register(t, svc, "ana@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Otra Ana",
		Email:    "ana@example.com",
		Password: "otra",
		Address:  "Otra Calle 1",
		Phone:    "11-5555-0001",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesTokenWithClaims(t *testing.T) {
	ctx := context.Background()
	svc, store := newUserService(nil)
	u := register(t, svc, "ana@example.com")
	require.NoError(t, store.SetUserApproval(ctx, u.ID, true))

	token, err := svc.Login(ctx, "ana@example.com", "secreto123")
	require.NoError(t, err)

	claims := &JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, "ana@example.com", claims.Email)
	require.Equal(t, entity.RoleClient, claims.Role)
	require.True(t, claims.Approved)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(nil)
	register(t, svc, "ana@example.com")

	_, err := svc.Login(ctx, "ana@example.com", "equivocada")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nadie@example.com", "secreto123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetApprovalNotifiesBothWays(t *testing.T) {
	ctx := context.Background()
	mailer := &recordingMailer{}
	svc, store := newUserService(mailer)
	u := register(t, svc, "ana@example.com")

	require.NoError(t, svc.SetApproval(ctx, u.ID, true))
	got, err := store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.True(t, got.Approved)
	require.Equal(t, entity.RoleClient, got.Role)
	require.Equal(t, "Cuenta aprobada", mailer.sent[len(mailer.sent)-1].subject)

	require.NoError(t, svc.SetApproval(ctx, u.ID, false))
	got, err = store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.False(t, got.Approved)
	require.Equal(t, entity.RolePending, got.Role)
	require.Equal(t, "Cuenta pendiente", mailer.sent[len(mailer.sent)-1].subject)
}

func TestUpdateProfileKeepsRoleAndBalance(t *testing.T) {
	ctx := context.Background()
	svc, store := newUserService(nil)
	u := register(t, svc, "ana@example.com")
	require.NoError(t, store.SetUserApproval(ctx, u.ID, true))
	require.NoError(t, store.AdjustUserBalance(ctx, u.ID, 5000))

	require.NoError(t, svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{
		Name:     "Ana María García",
		Address:  "Calle Nueva 99",
		Phone:    "11-5555-0002",
		Password: "nuevo-secreto",
	}))

	got, err := store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "Ana María García", got.Name)
	require.Equal(t, entity.RoleClient, got.Role)
	require.Equal(t, 5000.0, got.Balance)
	require.True(t, got.Approved)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("nuevo-secreto")))
}

func TestSetApprovalUnknownUser(t *testing.T) {
	svc, _ := newUserService(nil)
	err := svc.SetApproval(context.Background(), "missing", true)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
