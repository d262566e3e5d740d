package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"assembly-backend/internal/auth"
	"assembly-backend/internal/model"
)

// AuthHandler authentification des membres
type AuthHandler struct {
	db           *gorm.DB
	jwtManager   *auth.JWTManager
	googleAuth   *auth.GoogleAuthenticator
	checker      *auth.PermissionChecker
	secureCookie bool
}

// NewAuthHandler AuthHandler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, googleAuth *auth.GoogleAuthenticator, checker *auth.PermissionChecker, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		db:           db,
		jwtManager:   jwtManager,
		googleAuth:   googleAuth,
		checker:      checker,
		secureCookie: secureCookie,
	}
}

// GoogleLoginRequest corps de la requête de connexion Google
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// MemberResponse membre exposé à l'API
type MemberResponse struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// AuthResponse réponse d'authentification
type AuthResponse struct {
	Member      MemberResponse `json:"member"`
	AccessToken string         `json:"access_token"`
	ExpiresIn   int64          `json:"expires_in"`
}

func memberResponse(member *model.Member) MemberResponse {
	return MemberResponse{
		ID:       member.ID,
		TenantID: member.TenantID,
		Email:    member.Email,
		FullName: member.FullName,
		Role:     model.ParseRole(member.Role).String(),
	}
}

// GoogleLogin connexion par ID token Google. Le membre doit préexister dans
// un tenant: pas de création de compte à la volée pour une assemblée.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil || req.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id_token is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	googleUser, err := h.googleAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid google token",
		})
	}

	var member model.Member
	err = h.db.Where("email = ? AND active = ?", googleUser.Email, true).First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "member not registered",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "database error",
		})
	}

	role := model.ParseRole(member.Role)
	accessToken, err := h.jwtManager.GenerateAccessToken(member.ID, member.TenantID, member.Email, role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate token",
		})
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(member.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate refresh token",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		Secure:   h.secureCookie,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(AuthResponse{
		Member:      memberResponse(&member),
		AccessToken: accessToken,
		ExpiresIn:   3600,
	})
}

// RefreshToken renouvelle le jeton d'accès
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "refresh token not found",
		})
	}

	memberID, err := h.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		c.Cookie(&fiber.Cookie{
			Name:     "refresh_token",
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   h.secureCookie,
			HTTPOnly: true,
		})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or expired refresh token",
		})
	}

	var member model.Member
	if err := h.db.First(&member, "id = ? AND active = ?", memberID, true).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "member not found",
		})
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(member.ID, member.TenantID, member.Email, model.ParseRole(member.Role))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"access_token": accessToken,
		"expires_in":   3600,
	})
}

// Logout efface le cookie de rafraîchissement
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.secureCookie,
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"message": "logged out"})
}

// GetMe membre courant et ses permissions aplaties
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var member model.Member
	if err := h.db.First(&member, "id = ?", claims.MemberID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "member not found",
		})
	}

	return c.JSON(fiber.Map{
		"member":      memberResponse(&member),
		"permissions": h.checker.Permissions(claims.CanonicalRole()),
	})
}
