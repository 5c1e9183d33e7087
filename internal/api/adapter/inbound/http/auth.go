package http_handler

import (
	"errors"
	"strings"

	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RequesterKey holds the authenticated caller id in fiber locals.
const RequesterKey = "requester_id"

var errUnauthorized = errors.New("unauthorized")

// NewAuthMiddleware accepts HS256 bearer tokens and uses the sub claim as
// the caller identity.
func NewAuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	secret := []byte(cfg.JWTSecret)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "Authorization header with a bearer token is required")
		}

		var claims jwt.RegisteredClaims
		token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c, "Invalid or expired token")
		}
		if strings.TrimSpace(claims.Subject) == "" {
			return unauthorized(c, "Token has no subject")
		}

		c.Locals(RequesterKey, claims.Subject)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func requesterID(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals(RequesterKey).(string)
	if !ok || id == "" {
		return "", errUnauthorized
	}
	return id, nil
}
