package utils

import "github.com/gofiber/fiber/v3"

// SuccessResponse sends a standardized success envelope.
func SuccessResponse(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
