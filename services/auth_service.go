package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/storage"
	"github.com/clinic-thoughts/utils"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long a session token stays valid
const TokenTTL = 24 * time.Hour

// AuthService registers users and issues session tokens
type AuthService struct {
	store  storage.Storage
	secret []byte
	now    func() time.Time
	log    *logger.Logger
}

// NewAuthService creates an auth service signing tokens with secret
func NewAuthService(store storage.Storage, secret string, log *logger.Logger) *AuthService {
	return &AuthService{
		store:  store,
		secret: []byte(secret),
		now:    time.Now,
		log:    log,
	}
}

// Register creates a regular user account in an existing clinic
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	clinic, err := s.store.GetClinic(ctx, req.ClinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	// Check if username or email already exist
	existing, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, dto.InsertUser{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     models.RoleUser,
		ClinicID: &clinic.ID,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// Lost a race with a concurrent registration
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered", "user_id", user.ID, "clinic_id", clinic.ID)
	return user, nil
}

// Login authenticates a user by username and returns a token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateToken(*user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     token,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}

// CurrentUser returns the caller's profile joined with its clinic
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*dto.UserWithClinic, error) {
	user, err := s.store.GetUserWithClinic(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

// GenerateToken signs an HS256 token for user
func (s *AuthService) GenerateToken(user models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}

	now := s.now()
	expiresAt := now.Add(TokenTTL)
	claims := dto.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		ClinicID: user.ClinicID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken parses a token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*dto.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
