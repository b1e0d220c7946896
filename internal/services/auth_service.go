package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"dojohub/internal/caching"
	"dojohub/internal/logging"
	"dojohub/internal/models"
	"dojohub/internal/repositories"
)

const (
	tokenIssuer    = "dojohub-auth"
	tokenAudience  = "dojohub-api"
	loginAttempts  = 5
	loginWindow    = 15 * time.Minute
	minPasswordLen = 8
)

// AuthService issues and validates access and refresh tokens.
type AuthService interface {
	Login(ctx context.Context, academySlug, email, password string) (*models.TokenResponse, error)
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

// TokenClaims are the claims of an access token.
type TokenClaims struct {
	UserID    string      `json:"user_id"`
	AcademyID string      `json:"academy_id"`
	Role      models.Role `json:"role"`
	TokenID   string      `json:"token_id"`
	jwt.RegisteredClaims
}

// Identity parses the claim ids.
func (c *TokenClaims) Identity() (userID, academyID uuid.UUID, err error) {
	userID, err = uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id claim: %w", err)
	}
	academyID, err = uuid.Parse(c.AcademyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid academy id claim: %w", err)
	}
	return userID, academyID, nil
}

type authService struct {
	academyRepo repositories.AcademyRepository
	userRepo    repositories.UserRepository
	cacheSvc    caching.CacheService
	jwtSecret   []byte
	tokenTTL    time.Duration
	refreshTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(academyRepo repositories.AcademyRepository, userRepo repositories.UserRepository,
	cacheSvc caching.CacheService, jwtSecret string, tokenTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		academyRepo: academyRepo,
		userRepo:    userRepo,
		cacheSvc:    cacheSvc,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		refreshTTL:  refreshTTL,
		now:         time.Now,
	}
}

// HashPassword bcrypt-hashes a plain password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", invalidField("password", "password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login authenticates against one academy. Every attempt counts towards the
// (slug, email) limit and a successful login resets it.
func (s *authService) Login(ctx context.Context, academySlug, email, password string) (*models.TokenResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(academySlug))
	email = strings.ToLower(strings.TrimSpace(email))
	limitKey := fmt.Sprintf("login:%s:%s", slug, email)

	limited, err := s.cacheSvc.IsRateLimited(ctx, limitKey, loginAttempts, loginWindow)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("login rate limit unavailable")
	} else if limited {
		return nil, ErrRateLimited
	}

	academy, err := s.academyRepo.GetBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load academy: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, academy.ID, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if user.Status == models.UserStatusInactive {
		return nil, forbidden("account is inactive")
	}

	if err := s.cacheSvc.ResetRateLimit(ctx, limitKey); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to reset login rate limit")
	}

	return s.GenerateTokens(ctx, user)
}

// GenerateTokens signs an access token and stores a fresh refresh token.
func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := s.now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:    user.ID.String(),
		AcademyID: user.AcademyID.String(),
		Role:      user.Role,
		TokenID:   tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken, err := generateSecureToken()
	if err != nil {
		return nil, err
	}
	session, err := json.Marshal(models.RefreshSession{
		UserID:    user.ID.String(),
		AcademyID: user.AcademyID.String(),
		ExpiresAt: now.Add(s.refreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("encode refresh session: %w", err)
	}
	if err := s.cacheSvc.SetString(ctx, refreshKey(refreshToken), string(session), s.refreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		AcademyID:    user.AcademyID.String(),
		Role:         user.Role,
		IssuedAt:     now,
	}, nil
}

// RefreshToken rotates a refresh token. The old one is invalidated.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	if refreshToken == "" {
		return nil, invalidField("refresh_token", "refresh_token is required")
	}

	key := refreshKey(refreshToken)
	data, err := s.cacheSvc.GetString(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if data == "" {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	var session models.RefreshSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	if err := s.cacheSvc.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to delete rotated refresh token")
	}
	if s.now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
	}

	userID, err := uuid.Parse(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	academyID, err := uuid.Parse(session.AcademyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, academyID, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Status == models.UserStatusInactive {
		return nil, forbidden("account is inactive")
	}

	return s.GenerateTokens(ctx, user)
}

// ValidateToken validates an access token.
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(tokenAudience))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims, ok := jwtToken.Claims.(*TokenClaims)
	if !ok || !jwtToken.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: invalid role claim", ErrUnauthorized)
	}
	return claims, nil
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.cacheSvc.Delete(ctx, refreshKey(refreshToken))
}

// generateSecureToken returns 32 random bytes, base64url encoded.
func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashToken is the sha256 hex digest under which refresh tokens are stored.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func refreshKey(token string) string {
	return "refresh_token:" + hashToken(token)
}
