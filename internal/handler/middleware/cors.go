package middleware

import (
	"github.com/VadymFES/dekop-compliance/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMiddleware configures and returns CORS middleware. Credentials are
// allowed because the session travels in a cookie, so origins must be an
// explicit list, never a wildcard.
func CORSMiddleware(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Content-Type," + CSRFHeader,
		AllowCredentials: true,
	})
}
