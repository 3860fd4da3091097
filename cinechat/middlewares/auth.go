// cinechat/middlewares/auth.go
package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware guards the view bridge with the stored identity token.
// The token is opaque, so the check is plain equality against whatever
// the issuer handed out; token() returns the current one (empty when
// logged out, which rejects everything).
func AuthMiddleware(token func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(auth, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			current := token()
			if current == "" || subtle.ConstantTimeCompare([]byte(parts[1]), []byte(current)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
