package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"net/http"
	"strings"
	"time"
)

var ErrMissingBearerToken = fiber.Map{"error": "Missing bearer token."}
var ErrInvalidBearerToken = fiber.Map{"error": "Invalid bearer token provided."}
var ErrIpMismatch = fiber.Map{"error": "Connecting IP does not match the provided ip."}

const (
	localUserId  = "userId"
	localSession = "session"
)

type AssignedUser struct {
	UserID    uint   `json:"user_id"`
	Session   string `json:"session"`
	IpAddress string `json:"ip_address"`
	jwt.StandardClaims
}

func IssueToken(userId uint, session string, ipAddress string) (string, error) {
	claims := AssignedUser{
		UserID:    userId,
		Session:   session,
		IpAddress: ipAddress,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Duration(ServiceConfig.Jwt.Timeout) * time.Second).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ServiceConfig.Jwt.Secret))
}

func ValidateToken(providedToken string, ipAddress string) (*AssignedUser, fiber.Map) {
	claims := AssignedUser{}
	token, err := jwt.ParseWithClaims(providedToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(ServiceConfig.Jwt.Secret), nil
	})

	if err != nil {
		return nil, ErrInvalidBearerToken
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidBearerToken
	}

	if ServiceConfig.Jwt.BindIp && ipAddress != claims.IpAddress {
		return nil, ErrIpMismatch
	}

	return &claims, nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authorizationHeader := c.Get("Authorization")

	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return "", false
	}

	return strings.TrimPrefix(authorizationHeader, "Bearer "), true
}

func JwtRequired(c *fiber.Ctx) error {
	token, ok := bearerToken(c)

	if !ok {
		return c.Status(http.StatusUnauthorized).
			JSON(ErrMissingBearerToken)
	}

	claims, err := ValidateToken(token, c.IP())

	if err != nil {
		return c.Status(http.StatusUnauthorized).
			JSON(err)
	}

	c.Locals(localUserId, claims.UserID)
	c.Locals(localSession, claims.Session)
	return c.Next()
}

// JwtOptional attaches the user when a valid token is supplied and otherwise
// lets the request through anonymously.
func JwtOptional(c *fiber.Ctx) error {
	token, ok := bearerToken(c)

	if ok {
		if claims, err := ValidateToken(token, c.IP()); err == nil {
			c.Locals(localUserId, claims.UserID)
			c.Locals(localSession, claims.Session)
		}
	}

	return c.Next()
}

// CurrentUserId returns 0 for anonymous requests.
func CurrentUserId(c *fiber.Ctx) uint {
	userId, _ := c.Locals(localUserId).(uint)
	return userId
}

func CurrentSession(c *fiber.Ctx) string {
	session, _ := c.Locals(localSession).(string)
	return session
}
