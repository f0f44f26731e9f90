package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pulsehr/attendance-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a valid access token. It runs after
// jwtauth.Verifier, which parses and verifies the token into the context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid access token")
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "Invalid access token")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
