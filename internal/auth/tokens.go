package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenInvalid covers malformed, forged, revoked and expired tokens; the
// HTTP layer treats them all as a 401-class signal.
var ErrTokenInvalid = errors.New("auth: token invalid or expired")

// Claims carried inside the signed bearer token. Validity is governed by the
// Redis record, not by an exp claim, so logout revokes immediately and the
// record TTL can slide on refresh.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"uname"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed bearer tokens whose liveness is
// anchored in Redis.
type TokenManager struct {
	secret       []byte
	ttl          time.Duration
	refreshUnder time.Duration
	client       *redis.Client
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, secret string, ttl, refreshUnder time.Duration) *TokenManager {
	return &TokenManager{
		secret:       []byte(secret),
		ttl:          ttl,
		refreshUnder: refreshUnder,
		client:       client,
	}
}

// TTL exposes the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration { return tm.ttl }

// Issue signs a new token for the user and registers it in Redis with the
// configured TTL.
func (tm *TokenManager) Issue(ctx context.Context, userID int64, username string) (string, time.Time, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			Subject:  fmt.Sprintf("%d", userID),
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   "haocai-admin",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := now.Add(tm.ttl)
	if err := tm.client.Set(ctx, tokenKey(jti), userID, tm.ttl).Err(); err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates the token and confirms its Redis record is
// still alive. Returns the claims on success.
func (tm *TokenManager) Verify(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	if err := tm.client.Get(ctx, tokenKey(claims.ID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	return claims, nil
}

// ExtendIfNeeded slides the Redis record back to the full TTL when its
// remaining lifetime has fallen under the refresh low-water mark. Returns
// the absolute expiry after the call.
func (tm *TokenManager) ExtendIfNeeded(ctx context.Context, jti string) (time.Time, error) {
	remaining, err := tm.client.TTL(ctx, tokenKey(jti)).Result()
	if err != nil {
		return time.Time{}, err
	}
	if remaining < 0 {
		return time.Time{}, ErrTokenInvalid
	}
	if remaining < tm.refreshUnder {
		if err := tm.client.Expire(ctx, tokenKey(jti), tm.ttl).Err(); err != nil {
			return time.Time{}, err
		}
		remaining = tm.ttl
	}
	return time.Now().Add(remaining), nil
}

// Revoke deletes the token record. Verifying the token afterwards fails even
// though the signature remains valid.
func (tm *TokenManager) Revoke(ctx context.Context, jti string) error {
	return tm.client.Del(ctx, tokenKey(jti)).Err()
}

func tokenKey(jti string) string {
	return "token:" + jti
}
