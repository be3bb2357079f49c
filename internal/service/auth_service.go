package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type tokenClaims struct {
	Vendor bool `json:"vendor"`
	Staff  bool `json:"staff"`
	jwt.RegisteredClaims
}

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	secret   []byte
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service signing HS256 tokens with secret.
func NewAuthService(userRepo repository.UserRepository, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account and signs the caller in.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if existing != nil {
		return nil, model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		IsVendor:     req.IsVendor,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Bool("is_vendor", user.IsVendor).
		Msg("user registered")

	return s.issue(user)
}

// Login checks credentials and returns a fresh token.
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID.String()).Msg("password mismatch")
		return nil, model.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*model.AuthResponse, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	claims := tokenClaims{
		Vendor: user.IsVendor,
		Staff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.AuthResponse{Token: token, ExpiresAt: expires.UTC(), User: *user}, nil
}

// ParseToken validates a bearer token.
func (s *authService) ParseToken(token string) (model.Actor, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug().Msg("expired token presented")
		}
		return model.Actor{}, model.ErrUnauthorised
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Actor{}, model.ErrUnauthorised
	}

	return model.Actor{UserID: userID, IsVendor: claims.Vendor, IsStaff: claims.Staff}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
