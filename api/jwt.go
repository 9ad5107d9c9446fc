package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"paygap/core"
)

// Claims are the JWT claims carried by paygap tokens. GUID identifies the
// admin account for audit fields; Role drives the search visibility policy.
type Claims struct {
	Username string    `json:"username"`
	GUID     string    `json:"guid,omitempty"`
	Role     core.Role `json:"role"`
	jwt.RegisteredClaims
}

func (a *API) generateJWT(username, guid string, role core.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		GUID:     guid,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.Auth.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "paygap",
			Subject:   username,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.Auth.JWTSecret))
}

func (a *API) validateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// callerFromRequest resolves the caller's claims from the Authorization
// header. Requests without a token are anonymous public callers.
func (a *API) callerFromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return &Claims{Role: core.RolePublic}, nil
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return nil, errors.New("malformed authorization header")
	}
	return a.validateJWT(tokenString)
}

// withAuth resolves the caller before invoking the handler. When adminOnly
// is set, public and anonymous callers are rejected.
func (a *API) withAuth(handler func(http.ResponseWriter, *http.Request, *Claims), adminOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.callerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or missing token", err, a.logger)
			return
		}
		if adminOnly && claims.Role != core.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required", nil, a.logger)
			return
		}
		handler(w, r, claims)
	}
}
