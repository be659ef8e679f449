// internal/app/system/auth/auth.go
//
// Package auth implements bearer-token authentication. Tokens are signed
// JWTs (HS256) whose subject is the user id; a token is only honored while
// it is still listed in the user's tokens array, so logout and password
// changes revoke it server-side regardless of its expiry.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/gatherhub/internal/app/system/authz"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"github.com/dalemusser/gatherhub/internal/domain/models"
)

// TokenTTL is the expiry stamped into issued tokens. The claim is
// advisory: the user's tokens array is the sole authority for validity,
// so an expired-but-listed token still authenticates until it is
// replaced by refresh or revoked by logout.
const TokenTTL = 7 * 24 * time.Hour

var ErrTokenInvalid = errors.New("token invalid")

// UserLoader is the slice of the user store the middleware needs.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// TokenManager issues and verifies signed tokens.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Issue signs a token for the given user id, valid for TokenTTL.
func (tm *TokenManager) Issue(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Verify checks a token's signature and returns the user id it was
// issued for. Expiry is deliberately not checked here: the middleware's
// tokens-array lookup decides validity, and refresh/logout must keep
// working with an expired token.
func (tm *TokenManager) Verify(token string) (primitive.ObjectID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return tm.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	return id, nil
}

// Middleware verifies bearer tokens and loads the user into the request
// context.
type Middleware struct {
	Tokens *TokenManager
	Users  UserLoader
	Log    *zap.Logger
}

// LoadTokenUser resolves the Authorization header if present. A valid
// token attaches the user to the context; a missing or invalid token
// leaves the request anonymous. Handlers that require auth layer
// RequireSignedIn on top.
func (m *Middleware) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		uid, err := m.Tokens.Verify(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := timeouts.Short(r.Context())
		u, err := m.Users.GetByID(ctx, uid)
		cancel()
		if err != nil || !tokenListed(u, token) {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(authz.WithUser(r.Context(), u, token)))
	})
}

// RequireSignedIn rejects anonymous requests with 401 userTokenInvalid.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authz.UserCtx(r.Context()) == nil {
			httpjson.Fail(w, http.StatusUnauthorized, "userTokenInvalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects non-admin users with 403 userPermissionDenied.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := authz.UserCtx(r.Context())
		if u == nil {
			httpjson.Fail(w, http.StatusUnauthorized, "userTokenInvalid")
			return
		}
		if !u.IsAdmin() {
			httpjson.Fail(w, http.StatusForbidden, "userPermissionDenied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// tokenListed reports whether the presented token is still in the user's
// tokens array. Membership in the array is the revocation authority.
func tokenListed(u *models.User, token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}
