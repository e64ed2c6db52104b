package middleware

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// Claim keys checked, in order, for the caller id and role.
var (
	subjectClaimKeys = []string{"sub", "user_id", "id"}
	roleClaimKeys    = []string{"role", "roles"}
)

const clockSkew = 30 * time.Second

// JWTProtected validates HMAC-signed bearer tokens issued by the identity provider and exposes
// the caller as the user_id and user_role locals. Browsers cannot set headers on websocket
// upgrades, so the token query parameter is accepted for those requests only.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithLeeway(clockSkew),
	)
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		raw, problem := tokenFromRequest(c)
		if raw == "" {
			return unauthorized(c, problem)
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c, "invalid token")
		}

		userID, ok := subjectFromClaims(claims)
		if !ok {
			return unauthorized(c, "token subject missing")
		}
		c.Locals("user_id", userID)

		if role := roleFromClaims(claims); role != RoleNone {
			c.Locals("user_role", string(role))
		}

		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) (string, string) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		if isWebSocketUpgrade(c) {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				return token, ""
			}
		}
		return "", "authorization header missing"
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", "invalid authorization header"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "invalid token"
	}
	return token, ""
}

func isWebSocketUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}

func unauthorized(c *fiber.Ctx, message string) error {
	return utils.Fail(c, fiber.StatusUnauthorized, message, fiber.Map{"redirect": LoginRoute})
}

// subjectFromClaims accepts numeric or decimal-string ids; zero is not a valid caller.
func subjectFromClaims(claims jwt.MapClaims) (uint, bool) {
	for _, key := range subjectClaimKeys {
		var (
			id  uint64
			err error
		)
		switch v := claims[key].(type) {
		case float64:
			if v <= 0 || v != float64(uint64(v)) {
				continue
			}
			id = uint64(v)
		case json.Number:
			id, err = strconv.ParseUint(v.String(), 10, 64)
		case string:
			id, err = strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		default:
			continue
		}
		if err == nil && id > 0 {
			return uint(id), true
		}
	}
	return 0, false
}

// roleFromClaims returns the first recognised role from a string or list claim.
func roleFromClaims(claims jwt.MapClaims) Role {
	for _, key := range roleClaimKeys {
		switch v := claims[key].(type) {
		case string:
			if role := ParseRole(v); role != RoleNone {
				return role
			}
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					if role := ParseRole(s); role != RoleNone {
						return role
					}
				}
			}
		}
	}
	return RoleNone
}
