package serverutils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "locator_session"
	SessionLocalKey   = "session_id"
)

// SessionMiddleware gives every visitor a stable anonymous session id, carried
// in a signed cookie. A missing or tampered cookie yields a fresh id.
func SessionMiddleware(secret string, ttl time.Duration) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		sid, err := parseSessionToken(ctx.Cookies(SessionCookieName), key)
		if err != nil {
			sid = uuid.NewString()
			token, err := signSessionToken(sid, key, ttl)
			if err != nil {
				return err
			}
			ctx.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(ttl),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		ctx.Locals(SessionLocalKey, sid)
		return ctx.Next()
	}
}

// SessionID returns the id set by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(SessionLocalKey).(string)
	return sid
}

func signSessionToken(sid string, key []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func parseSessionToken(tokenStr string, key []byte) (string, error) {
	if tokenStr == "" {
		return "", errors.New("no session cookie")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sid, _ := claims["sid"].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return "", errors.New("invalid session id")
	}
	return sid, nil
}
