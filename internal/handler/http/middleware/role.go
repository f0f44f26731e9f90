package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pulsehr/attendance-backend-go/internal/domain/user"
	"github.com/pulsehr/attendance-backend-go/internal/handler/http/response"
)

// RequireManager requires a role that can view other employees' attendance
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		role, ok := user.ParseRole(roleStr)
		if !ok || !role.CanViewOthers() {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires the admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		role, ok := user.ParseRole(roleStr)
		if !ok || !role.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
