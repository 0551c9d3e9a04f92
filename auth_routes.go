package main

import (
	"bbpApi/models"
	"errors"
	"github.com/alexedwards/argon2id"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Argon2IdParams these are calibrated to the current hardware
var Argon2IdParams = argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

var LoginRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{3,60}$`)

var ErrLoginDoesNotMatchPattern = fiber.Map{"error": "Login does not match pattern."}
var ErrPasswordTooShort = fiber.Map{"error": "Password must be at least 8 characters."}
var ErrLoginTaken = fiber.Map{"error": "Login is already registered."}
var ErrInvalidPassword = fiber.Map{"error": "Invalid login or password."}
var ErrAccountBlocked = fiber.Map{"error": "This account has been blocked."}

func authRoutes(router fiber.Router) {
	router.Post("/auth", doAuth)
	router.Post("/auth/register", doRegister)
	router.Patch("/auth", JwtRequired, doRefreshToken)
}

func doRegister(c *fiber.Ctx) error {
	var r RegistrationRequest

	if err := c.BodyParser(&r); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrInvalidRequestBody)
	}

	if !LoginRegex.MatchString(r.Login) {
		return c.Status(http.StatusBadRequest).JSON(ErrLoginDoesNotMatchPattern)
	}

	if len(r.Password) < 8 {
		return c.Status(http.StatusBadRequest).JSON(ErrPasswordTooShort)
	}

	var existing models.User
	tx := DatabaseConnection.Where("login = ?", r.Login).First(&existing)

	if tx.Error == nil {
		return c.Status(http.StatusConflict).JSON(ErrLoginTaken)
	} else if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		logger.Error("lookup user", zap.String("login", r.Login), zap.Error(tx.Error))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	hash, err := argon2id.CreateHash(r.Password, &Argon2IdParams)

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	displayName := strings.TrimSpace(r.DisplayName)
	if displayName == "" {
		displayName = r.Login
	}

	u := models.User{
		Login:        r.Login,
		DisplayName:  displayName,
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		PasswordHash: hash,
		Roles:        pq.StringArray{models.RoleParticipant},
		LastSeen:     time.Now(),
	}

	if tx := DatabaseConnection.Create(&u); tx.Error != nil {
		logger.Error("create user", zap.String("login", r.Login), zap.Error(tx.Error))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return respondWithToken(c, http.StatusCreated, u.ID, uuid.NewString())
}

func doAuth(c *fiber.Ctx) error {
	var a AuthenticationRequest
	var u models.User

	if err := c.BodyParser(&a); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrInvalidRequestBody)
	}

	if !LoginRegex.MatchString(a.Login) {
		return c.Status(http.StatusBadRequest).JSON(ErrLoginDoesNotMatchPattern)
	}

	tx := DatabaseConnection.Where("login = ?", a.Login).First(&u)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return c.Status(http.StatusUnauthorized).JSON(ErrInvalidPassword)
	} else if tx.Error != nil {
		logger.Error("lookup user", zap.String("login", a.Login), zap.Error(tx.Error))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	// Imported accounts keep their bcrypt hash until the first successful login.
	if strings.HasPrefix(u.PasswordHash, "$2") {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(a.Password)) != nil {
			return c.Status(http.StatusUnauthorized).JSON(ErrInvalidPassword)
		}

		hash, err := argon2id.CreateHash(a.Password, &Argon2IdParams)

		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
		}

		u.PasswordHash = hash
	} else {
		match, err := argon2id.ComparePasswordAndHash(a.Password, u.PasswordHash)

		if err != nil {
			logger.Warn("compare password hash", zap.Uint("user_id", u.ID), zap.Error(err))
			return c.Status(http.StatusUnauthorized).JSON(ErrInvalidPassword)
		}

		if !match {
			return c.Status(http.StatusUnauthorized).JSON(ErrInvalidPassword)
		}
	}

	if u.HasRole(models.RoleBlocked) {
		return c.Status(http.StatusForbidden).JSON(ErrAccountBlocked)
	}

	u.LastSeen = time.Now()
	DatabaseConnection.Save(&u)

	return respondWithToken(c, http.StatusOK, u.ID, uuid.NewString())
}

func doRefreshToken(c *fiber.Ctx) error {
	var u models.User

	tx := DatabaseConnection.First(&u, CurrentUserId(c))

	if tx.Error != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{})
	}

	u.LastSeen = time.Now()
	DatabaseConnection.Save(&u)

	return respondWithToken(c, http.StatusOK, u.ID, CurrentSession(c))
}

func respondWithToken(c *fiber.Ctx, status int, userId uint, session string) error {
	token, err := IssueToken(userId, session, c.IP())

	if err != nil {
		logger.Error("issue token", zap.Uint("user_id", userId), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return c.Status(status).JSON(AuthenticationResponse{
		Token:  token,
		UserId: userId,
	})
}
