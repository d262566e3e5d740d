package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"assembly-backend/internal/service"
)

// respondError mappe une erreur métier typée sur un statut HTTP. Le code
// machine est la seule donnée renvoyée; le texte libre reste côté client.
func respondError(c *fiber.Ctx, err error) error {
	var govErr *service.GovError
	if errors.As(err, &govErr) {
		status := fiber.StatusInternalServerError
		switch govErr.Kind {
		case service.KindValidation:
			status = fiber.StatusBadRequest
		case service.KindState:
			status = fiber.StatusConflict
		case service.KindNotFound:
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{"error": govErr.Code})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}

// tenantIDFromContext tenant posé par le middleware
func tenantIDFromContext(c *fiber.Ctx) int64 {
	tenantID, _ := c.Locals("tenantID").(int64)
	return tenantID
}

// paramInt64 paramètre d'URL entier
func paramInt64(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}
