package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/notify"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const sessionTTL = 24 * time.Hour

// JwtCustomClaims is the principal handed to route guards: besides identity
// it carries the role and the approval flag that gate prices and purchasing.
type JwtCustomClaims struct {
	UserID   string      `json:"user_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
	Approved bool        `json:"approved"`
	jwt.RegisteredClaims
}

type UserService struct {
	store     repository.Store
	mailer    notify.Mailer
	rdb       *redis.Client
	jwtSecret []byte
}

func NewUserService(store repository.Store, mailer notify.Mailer, rdb *redis.Client, jwtSecret string) *UserService {
	return &UserService{store: store, mailer: mailer, rdb: rdb, jwtSecret: []byte(jwtSecret)}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// Register creates a PENDING, unapproved account. The password is stored as
// a bcrypt hash; the raw credential never goes past this call.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Address == "" || in.Phone == "" {
		return nil, ErrMissingFields
	}

	existing, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		Role:      entity.RolePending,
		Balance:   0,
		Approved:  false,
		CreatedAt: time.Now(),
		Address:   in.Address,
		Phone:     in.Phone,
		Password:  string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendMail(user.Email, "Registro recibido",
		"<h1>Bienvenido</h1><p>Su cuenta fue creada y está pendiente de aprobación.</p>")

	return user, nil
}

// Login verifies the credential and issues a signed token carrying the
// principal. The token is also cached in redis keyed by email.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	claims := &JwtCustomClaims{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Approved: user.Approved,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, email, token, sessionTTL).Err(); err != nil {
			logger.Error().Err(err).Msg("session cache write failed")
		}
	}
	return token, nil
}

type UpdateProfileInput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateProfile replaces the mutable profile fields, keeping role, balance
// and approval as they are.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) error {
	if in.Name == "" || in.Address == "" || in.Phone == "" || in.Password == "" {
		return ErrMissingFields
	}

	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Name = in.Name
	user.Address = in.Address
	user.Phone = in.Phone
	user.Password = string(hash)

	return s.store.UpdateUser(ctx, user)
}

// SetApproval toggles a user's approval. Approving promotes to CLIENT,
// unapproving demotes back to PENDING; the user is notified either way.
func (s *UserService) SetApproval(ctx context.Context, userID string, approved bool) error {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.SetUserApproval(ctx, userID, approved); err != nil {
		return fmt.Errorf("set approval: %w", err)
	}

	if approved {
		s.sendMail(user.Email, "Cuenta aprobada",
			"<h1>Su cuenta fue aprobada</h1><p>Ya puede ver precios y realizar pedidos.</p>")
	} else {
		s.sendMail(user.Email, "Cuenta pendiente",
			"<p>Su cuenta volvió al estado pendiente de aprobación.</p>")
	}
	return nil
}

func (s *UserService) AdjustBalance(ctx context.Context, userID string, delta float64) error {
	return s.store.AdjustUserBalance(ctx, userID, delta)
}

func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.store.GetUsers(ctx)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

// findByID scans the user list; the adapter contract has no lookup by id.
func (s *UserService) findByID(ctx context.Context, userID string) (*entity.User, error) {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for i := range users {
		if users[i].ID == userID {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
}

func (s *UserService) sendMail(to, subject, body string) {
	if s.mailer == nil || to == "" {
		return
	}
	if err := s.mailer.Send(to, subject, body); err != nil {
		logger.Error().Err(err).Str("to", to).Msg("send mail failed")
	}
}
