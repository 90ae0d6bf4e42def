package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminClaims are the claims of an admin token. An empty AgencyID grants
// access to every agency.
type AdminClaims struct {
	AgencyID string `json:"agency_id,omitempty"`
	jwt.RegisteredClaims
}

// CanAccess reports whether the token may read agencyID's data.
func (c AdminClaims) CanAccess(agencyID string) bool {
	return c.AgencyID == "" || c.AgencyID == agencyID
}

// AdminJWT enforces an HMAC-signed JWT for admin endpoints.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "admin auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := AdminClaims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAgencyScope rejects admin tokens scoped to another agency than the
// one named by the {agencyID} route parameter. Mount it after AdminJWT.
func RequireAgencyScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "missing admin claims", http.StatusUnauthorized)
			return
		}
		if !claims.CanAccess(chi.URLParam(r, "agencyID")) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminClaimsFromContext returns admin JWT claims if present.
func AdminClaimsFromContext(ctx context.Context) (AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(AdminClaims)
	return claims, ok
}

// SignAdminToken mints an HS256 admin token. An empty agencyID yields a
// platform-wide token.
func SignAdminToken(secret, subject, agencyID string, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("middleware: admin secret required")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		AgencyID: agencyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	return token.SignedString([]byte(secret))
}
