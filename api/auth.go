// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "worksync"
	// MinSecretSize is the shortest accepted HMAC signing secret
	MinSecretSize = 32
)

var (
	ErrSecretTooShort = errors.New("token secret is too short")
	ErrInvalidToken   = errors.New("invalid token")
)

type contextKey string

const callerContextKey = contextKey("caller")

// TokenAuthority issues and verifies HS256 bearer tokens whose subject is
// the caller's address
type TokenAuthority struct {
	secret []byte
}

func NewTokenAuthority(secret []byte) (*TokenAuthority, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrSecretTooShort
	}
	return &TokenAuthority{secret: secret}, nil
}

// Issue returns a signed token for address. A zero ttl issues a token
// without expiry
func (t *TokenAuthority) Issue(address string, ttl time.Duration) (string, error) {
	if address == "" {
		return "", errors.New("address is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  address,
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks the token signature and expiry and returns its subject
func (t *TokenAuthority) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// requireCaller rejects requests without a valid bearer token and stores
// the caller's address in the request context
func (a *Api) requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			writeError(
				w,
				http.StatusUnauthorized,
				"Unauthorized",
				"missing bearer token",
			)
			return
		}
		caller, err := a.tokens.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			a.logger.Debug(
				"rejected token",
				"error", err,
				"request_id", requestID(r.Context()),
			)
			writeError(
				w,
				http.StatusUnauthorized,
				"Unauthorized",
				"invalid bearer token",
			)
			return
		}
		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerFrom returns the authenticated caller address
func callerFrom(ctx context.Context) string {
	caller, _ := ctx.Value(callerContextKey).(string)
	return caller
}
