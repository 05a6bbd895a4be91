package auth

import (
	"context"
	"errors"
	"time"

	"github.com/globalbuilder/tourismserver/internal/db"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	blacklistPrefix = "token:blacklist:"
)

type Service struct {
	secret []byte
	db     db.Querier
	redis  *redis.Client
}

type Claims struct {
	UserID      string `json:"user_id"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewService(secret string, q db.Querier, redisClient *redis.Client) *Service {
	return &Service{
		secret: []byte(secret),
		db:     q,
		redis:  redisClient,
	}
}

// GenerateTokens issues an access/refresh pair for the caller and records
// the refresh token so logout can revoke it.
func (s *Service) GenerateTokens(ctx context.Context, caller policy.Caller) (TokenResponse, error) {
	access, err := s.signToken(caller, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(caller, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, caller.ID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

// ValidateRefreshToken checks signature, the blacklist, and the stored
// refresh-token row, and returns the caller embedded in the claims.
func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (policy.Caller, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return policy.Caller{}, err
	}

	blacklisted, err := s.isBlacklisted(ctx, token)
	if err != nil || blacklisted {
		return policy.Caller{}, errors.New("refresh token invalid")
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return policy.Caller{}, errors.New("refresh token invalid")
	}
	return callerFromClaims(claims), nil
}

func (s *Service) ValidateAccessToken(token string) (policy.Caller, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return policy.Caller{}, err
	}
	return callerFromClaims(claims), nil
}

// Logout revokes the refresh token: the row is marked revoked and the
// token goes on the redis blacklist until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return errors.New("refresh token invalid")
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL
	`, token); err != nil {
		return err
	}

	if s.redis != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl <= 0 {
			return nil
		}
		if err := s.redis.Set(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) isBlacklisted(ctx context.Context, token string) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Service) signToken(caller policy.Caller, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:      caller.ID,
		IsStaff:     caller.IsStaff,
		IsSuperuser: caller.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}

func callerFromClaims(claims *Claims) policy.Caller {
	return policy.Caller{
		ID:          claims.UserID,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}
}
