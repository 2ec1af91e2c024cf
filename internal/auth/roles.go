package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cablesur/claims-service/internal/domain"
)

// RequireRole ensures the principal has one of the allowed roles. With no
// arguments any authenticated staff user passes.
func RequireRole(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// CanWrite groups the roles allowed to file and mutate claims.
func CanWrite() fiber.Handler {
	return RequireRole(domain.StaffRoleAdmin, domain.StaffRoleOperator, domain.StaffRoleTechnician)
}

// AdminOnly restricts a route to administrators.
func AdminOnly() fiber.Handler {
	return RequireRole(domain.StaffRoleAdmin)
}
