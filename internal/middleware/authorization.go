package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// RequireRole middleware ensures the user has one of the specified roles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				logger.Warn("User role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StaffOnly guards mutating routes: a valid token with role admin or staff is
// required. With no secret configured the guard lets every request through.
func StaffOnly(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	if jwtSecret == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	authenticate := AuthMiddleware(jwtSecret, logger)
	authorize := RequireRole([]string{RoleAdmin, RoleStaff}, logger)
	return func(next http.Handler) http.Handler {
		return authenticate(authorize(next))
	}
}
