package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kritin29/Patient-Management-Web-App/internal/models"
	"github.com/rs/zerolog/log"
)

// TokenCookie is the cookie holding the signed-in user's JWT.
const TokenCookie = "token"

// TokenLifetime is how long a sign-in lasts.
const TokenLifetime = 24 * time.Hour

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// Manager signs and validates tokens with one HMAC secret.
type Manager struct {
	key []byte
}

// NewManager creates a Manager for secret.
func NewManager(secret string) *Manager {
	return &Manager{key: []byte(secret)}
}

// GenerateJWT creates a new JWT for a given user.
func (m *Manager) GenerateJWT(user models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ValidateJWT parses and validates a JWT string.
func (m *Manager) ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// block alg confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the token cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// ClaimsFromContext returns the claims stored by JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(UserClaimsKey).(*Claims)
	return c, ok
}

// SignedIn reports whether r carries a valid token.
func (m *Manager) SignedIn(r *http.Request) bool {
	tok := TokenFromRequest(r)
	if tok == "" {
		return false
	}
	_, err := m.ValidateJWT(tok)
	return err == nil
}

// JWTMiddleware creates a middleware for protecting routes.
func (m *Manager) JWTMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			claims, err := m.ValidateJWT(tokenStr)
			if err != nil {
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			log.Debug().Str("user_id", claims.UserID).Str("username", claims.Username).Msg("Authenticated request")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
