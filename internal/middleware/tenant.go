package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/auth"
	"assembly-backend/internal/service"
)

// TenantMiddleware borne chaque requête à son tenant. Le tenant de l'URL
// est recoupé avec celui des claims: un jeton d'un autre tenant ne donne
// structurellement accès à rien.
type TenantMiddleware struct {
	members *service.MemberService
}

// NewTenantMiddleware TenantMiddleware
func NewTenantMiddleware(members *service.MemberService) *TenantMiddleware {
	return &TenantMiddleware{members: members}
}

// tenantIDFromPath extrait :tenantId de l'URL
func tenantIDFromPath(c *fiber.Ctx) (int64, error) {
	idStr := c.Params("tenantId")
	if idStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tenant ID is required")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// RequireMembership membre actif du tenant obligatoire
func (m *TenantMiddleware) RequireMembership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.GetClaimsFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		tenantID, err := tenantIDFromPath(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid tenant ID",
			})
		}

		// le tenant des claims fait foi, celui de l'URL doit concorder
		if claims.TenantID != tenantID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "tenant mismatch",
			})
		}

		if !m.members.IsActiveMember(tenantID, claims.MemberID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not a tenant member",
			})
		}

		c.Locals("tenantID", tenantID)
		return c.Next()
	}
}
