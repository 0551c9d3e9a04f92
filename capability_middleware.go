package main

import (
	"bbpApi/models"
	"errors"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"net/http"
)

var ErrInsufficientPermissions = fiber.Map{"error": "You do not have sufficient permissions to access this page."}

// GetUser returns nil for anonymous requests and unknown users.
func GetUser(userId uint) (*models.User, error) {
	if userId == 0 {
		return nil, nil
	}

	var u models.User
	err := DatabaseConnection.First(&u, userId).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return &u, nil
}

// CanEditUser reports whether actor may change the favorites and
// subscriptions owned by targetId.
func CanEditUser(actor *models.User, targetId uint) bool {
	if actor == nil || actor.HasRole(models.RoleBlocked) {
		return false
	}

	if actor.HasRole(models.RoleAdministrator) {
		return true
	}

	return actor.ID == targetId
}

func CanManageOptions(actor *models.User) bool {
	return actor != nil && actor.HasRole(models.RoleAdministrator) && !actor.HasRole(models.RoleBlocked)
}

// RequireManageOptions must run after JwtRequired.
func RequireManageOptions(c *fiber.Ctx) error {
	u, err := GetUser(CurrentUserId(c))

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if !CanManageOptions(u) {
		return c.Status(http.StatusForbidden).JSON(ErrInsufficientPermissions)
	}

	return c.Next()
}
