package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
)

const refreshPrefix = "rt_"

// Accounts is the slice of the store the token service needs.
type Accounts interface {
	UpsertUser(user model.User)
	GetUserByEmail(email string) (model.User, error)
	GetUserByID(id string) (model.User, error)
	SaveRefreshToken(tok model.RefreshToken)
	GetRefreshToken(id string) (model.RefreshToken, error)
	RevokeRefreshToken(id string, revokedAt time.Time) error
}

type Claims struct {
	UserID string         `json:"uid"`
	Email  string         `json:"email"`
	Role   model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresInSec int64  `json:"expires_in_sec"`
}

// Service signs artist sessions: short-lived HS256 access tokens plus
// rotating opaque refresh tokens whose hashes live in Accounts.
type Service struct {
	accounts   Accounts
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(accounts Accounts, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accounts:   accounts,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// SeedArtist creates the account if the email is not registered yet.
func (s *Service) SeedArtist(email, password string) error {
	email = normalizeEmail(email)
	if _, err := s.accounts.GetUserByEmail(email); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash artist password: %w", err)
	}
	now := s.now().UTC()
	s.accounts.UpsertUser(model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleArtist,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return nil
}

func (s *Service) Login(email, password string) (model.User, Tokens, error) {
	user, err := s.accounts.GetUserByEmail(normalizeEmail(email))
	if err != nil || user.Status != "active" {
		return model.User{}, Tokens{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, Tokens{}, ErrUnauthorized
	}
	tokens, err := s.issue(user)
	if err != nil {
		return model.User{}, Tokens{}, err
	}
	return user, tokens, nil
}

func (s *Service) ParseAccess(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("soulsound"),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil, !token.Valid:
		return Claims{}, ErrUnauthorized
	}
	return claims, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a new
// pair is issued.
func (s *Service) Refresh(refreshToken string) (Tokens, error) {
	stored, err := s.lookupRefresh(refreshToken)
	if err != nil {
		return Tokens{}, err
	}
	now := s.now().UTC()
	if stored.ExpiresAt.Before(now) {
		return Tokens{}, ErrTokenExpired
	}
	user, err := s.accounts.GetUserByID(stored.UserID)
	if err != nil {
		return Tokens{}, ErrUnauthorized
	}
	_ = s.accounts.RevokeRefreshToken(stored.ID, now)
	return s.issue(user)
}

func (s *Service) Logout(refreshToken string) error {
	stored, err := s.lookupRefresh(refreshToken)
	if err != nil {
		return err
	}
	if err := s.accounts.RevokeRefreshToken(stored.ID, s.now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}

func (s *Service) lookupRefresh(refreshToken string) (model.RefreshToken, error) {
	id, ok := refreshTokenID(refreshToken)
	if !ok {
		return model.RefreshToken{}, ErrUnauthorized
	}
	stored, err := s.accounts.GetRefreshToken(id)
	if err != nil || stored.RevokedAt != nil {
		return model.RefreshToken{}, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(stored.TokenHash), []byte(hashToken(refreshToken))) != 1 {
		return model.RefreshToken{}, ErrUnauthorized
	}
	return stored, nil
}

func (s *Service) issue(user model.User) (Tokens, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "soulsound",
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign access token: %w", err)
	}
	id := uuid.NewString()
	refresh := refreshPrefix + id + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.accounts.SaveRefreshToken(model.RefreshToken{
		ID:        id,
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	})
	return Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresInSec: int64(s.accessTTL.Seconds()),
	}, nil
}

func refreshTokenID(token string) (string, bool) {
	rest, ok := strings.CutPrefix(token, refreshPrefix)
	if !ok {
		return "", false
	}
	id, secret, ok := strings.Cut(rest, "_")
	if !ok || id == "" || secret == "" {
		return "", false
	}
	return id, true
}

func hashToken(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
