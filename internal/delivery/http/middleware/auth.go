package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

const (
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeSessionRevoked = "SESSION_REVOKED"
	CodeForbidden      = "FORBIDDEN"
)

var (
	ErrNoToken        = errors.New("missing bearer token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionRevoked = errors.New("session revoked")
)

// SessionChecker reports whether a token id has been revoked.
type SessionChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims are issued by the auth service: sub is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Principal struct {
	UserID    int64
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticator verifies HS256 bearer tokens and the revocation list.
type Authenticator struct {
	secret   []byte
	issuer   string
	sessions SessionChecker
}

func NewAuthenticator(secret, issuer string, sessions SessionChecker) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, sessions: sessions}
}

// Verify turns a raw token into a principal. It is shared by the HTTP
// middleware and the gRPC interceptor.
func (a *Authenticator) Verify(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrNoToken
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Principal{}, ErrInvalidToken
	}

	if claims.ID != "" && a.sessions != nil {
		revoked, err := a.sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail open: a lookup error lets the request through.
			slog.Warn("session revocation check failed", "error", err)
		} else if revoked {
			return Principal{}, ErrSessionRevoked
		}
	}

	p := Principal{UserID: userID, Role: domain.Role(claims.Role), TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func bearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth {
		return ""
	}
	return strings.TrimSpace(token)
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.Verify(r.Context(), bearer(r))
		switch {
		case errors.Is(err, ErrSessionRevoked):
			response.Error(w, http.StatusUnauthorized, CodeSessionRevoked, "session has been revoked")
			return
		case err != nil:
			response.Error(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireRole must run after Middleware.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, CodeUnauthorized, ErrNoToken.Error())
				return
			}
			if p.Role != role {
				response.Error(w, http.StatusForbidden, CodeForbidden, "role "+string(role)+" required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
