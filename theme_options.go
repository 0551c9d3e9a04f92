package main

import (
	"bbpApi/models"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"net/http"
	"regexp"
	"strings"
)

const (
	optionSidebarElement = "epicweb_sidebar_element"
	optionContentElement = "epicweb_content_element"
	optionMenuElement    = "epicweb_menu_element"

	themeOptionsCacheKey = "theme_options"
)

// SelectorRegex limits theme options to plain selector lists; the values end up
// inside inline <style> and <script> blocks.
var SelectorRegex = regexp.MustCompile(`^[A-Za-z0-9#._\- ,]{0,200}$`)

var ErrInvalidSelector = fiber.Map{"error": "Element options must be plain CSS selectors."}

type ThemeOptions struct {
	SidebarElement string `json:"epicweb_sidebar_element"`
	ContentElement string `json:"epicweb_content_element"`
	MenuElement    string `json:"epicweb_menu_element"`
}

func themeOptionRoutes(router fiber.Router) {
	router.Get("/admin/theme-options", JwtRequired, RequireManageOptions, GetThemeOptionsPage)
	router.Post("/admin/theme-options", JwtRequired, RequireManageOptions, SaveThemeOptions)
}

func GetThemeOptionsPage(c *fiber.Ctx) error {
	o, err := LoadThemeOptions()

	if err != nil {
		logger.Error("load theme options", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return c.Status(http.StatusOK).JSON(ThemeOptionsResponse{
		SidebarElement: o.SidebarElement,
		ContentElement: o.ContentElement,
		MenuElement:    o.MenuElement,
	})
}

func SaveThemeOptions(c *fiber.Ctx) error {
	var r ThemeOptionsRequest

	if err := c.BodyParser(&r); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrInvalidRequestBody)
	}

	o := ThemeOptions{
		SidebarElement: strings.TrimSpace(r.SidebarElement),
		ContentElement: strings.TrimSpace(r.ContentElement),
		MenuElement:    strings.TrimSpace(r.MenuElement),
	}

	for _, v := range []string{o.SidebarElement, o.ContentElement, o.MenuElement} {
		if !SelectorRegex.MatchString(v) {
			return c.Status(http.StatusBadRequest).JSON(ErrInvalidSelector)
		}
	}

	if err := StoreThemeOptions(o); err != nil {
		logger.Error("store theme options", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	return c.Status(http.StatusOK).JSON(ThemeOptionsResponse{
		SidebarElement: o.SidebarElement,
		ContentElement: o.ContentElement,
		MenuElement:    o.MenuElement,
		Message:        "Settings saved.",
	})
}

func GetOption(name string) (string, error) {
	var o models.Option
	tx := DatabaseConnection.Where("name = ?", name).Limit(1).Find(&o)

	return o.Value, tx.Error
}

func UpdateOption(db *gorm.DB, name string, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.Option{Name: name, Value: value}).Error
}

// LoadThemeOptions reads through the Redis document cache when Redis is
// configured.
func LoadThemeOptions() (ThemeOptions, error) {
	var o ThemeOptions

	if ReJsonClient != nil {
		res, err := ReJsonClient.JSONGet(themeOptionsCacheKey, ".")

		if err == nil && res != nil {
			var b []byte
			switch v := res.(type) {
			case []byte:
				b = v
			case string:
				b = []byte(v)
			}

			if b != nil && sonic.Unmarshal(b, &o) == nil {
				return o, nil
			}
		} else if err != nil && err != goredis.Nil {
			logger.Warn("read theme options cache", zap.Error(err))
		}
	}

	var err error
	if o.SidebarElement, err = GetOption(optionSidebarElement); err != nil {
		return o, err
	}
	if o.ContentElement, err = GetOption(optionContentElement); err != nil {
		return o, err
	}
	if o.MenuElement, err = GetOption(optionMenuElement); err != nil {
		return o, err
	}

	cacheThemeOptions(o)
	return o, nil
}

func StoreThemeOptions(o ThemeOptions) error {
	err := DatabaseConnection.Transaction(func(tx *gorm.DB) error {
		if err := UpdateOption(tx, optionSidebarElement, o.SidebarElement); err != nil {
			return err
		}
		if err := UpdateOption(tx, optionContentElement, o.ContentElement); err != nil {
			return err
		}
		return UpdateOption(tx, optionMenuElement, o.MenuElement)
	})

	if err != nil {
		return err
	}

	cacheThemeOptions(o)
	return nil
}

func cacheThemeOptions(o ThemeOptions) {
	if ReJsonClient == nil {
		return
	}

	if _, err := ReJsonClient.JSONSet(themeOptionsCacheKey, ".", o); err != nil {
		logger.Warn("write theme options cache", zap.Error(err))
	}
}
