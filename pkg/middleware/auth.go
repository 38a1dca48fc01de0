// Package middleware provides Fiber middleware shared by the HTTP routes.
package middleware

import (
	"errors"

	"github.com/amirasaad/finanze/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtProtected validates the bearer token and stores it under "user".
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwt.SigningMethodHS256.Alg(),
			Key:    []byte(cfg.Secret),
		},
		ContextKey:   "user",
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	status, title := fiber.StatusUnauthorized, "Token non valido o scaduto"
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		title = "Token mancante o malformato"
	}
	return c.Status(status).JSON(fiber.Map{
		"type":   "about:blank",
		"title":  title,
		"status": status,
		"detail": err.Error(),
	}, "application/problem+json")
}
