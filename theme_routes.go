package main

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"html/template"
	"net/http"
	"strings"
)

const genericAjaxError = "Something went wrong. Refresh your browser and try again."

const (
	ViewSingleForum    = "single-forum"
	ViewSingleTopic    = "single-topic"
	ViewSingleUserEdit = "single-user-edit"
)

const (
	mainContentBefore = `
		<div id="bbp-container">
			<div id="bbp-content" role="main">
`
	mainContentAfter = `
			</div><!-- #bbp-content -->
		</div><!-- #bbp-container -->
`
)

var themeTemplates = template.Must(template.New("theme").Parse(`
{{define "head"}}<style type='text/css'>
	{{.SidebarElement}} { display: none !important; }
	{{.ContentElement}} { width: 100%; }
</style>{{end}}
{{define "footer"}}<script type='text/javascript'> if(typeof jQuery == 'undefined'){ document.write('<script type="text/javascript" src="https://ajax.aspnetcdn.com/ajax/jQuery/jquery-1.7.1.min.js"></'+'script>'); } </script>
<script type='text/javascript'>
	jQuery('{{.MenuElement}}').children('ul').append('<li><a href="{{.ForumsPath}}">Forums</a></li>');
</script>{{end}}
`))

type ThemeAsset struct {
	Handle       string   `json:"handle"`
	File         string   `json:"file"`
	Dependencies []string `json:"dependencies"`
	Version      string   `json:"version"`
	Media        string   `json:"media"`
}

func themeRoutes(router fiber.Router) {
	router.Get("/theme/assets", GetThemeAssets)
	router.Get("/theme/wrapper", GetThemeWrapper)
	router.Get("/theme/head", GetThemeHead)
	router.Get("/theme/footer", GetThemeFooter)
	router.Get("/forums/:id/script", JwtOptional, GetForumScriptVars)
	router.Get("/topics/:id/script", JwtOptional, GetTopicScriptVars)
}

func newThemeAsset(handle string, file string, dependencies ...string) ThemeAsset {
	if dependencies == nil {
		dependencies = []string{}
	}

	return ThemeAsset{
		Handle:       handle,
		File:         file,
		Dependencies: dependencies,
		Version:      ServiceConfig.Theme.Version,
		Media:        "screen",
	}
}

func ThemeStyles(rtl bool, debug bool) []ThemeAsset {
	suffix := ""
	if rtl {
		suffix = "-rtl"
	}
	if !debug {
		suffix += ".min"
	}

	return []ThemeAsset{newThemeAsset("bbp-default", "css/bbpress"+suffix+".css")}
}

// ThemeScripts lists the scripts a page of the given view needs, in
// enqueue order.
func ThemeScripts(view string, debug bool) []ThemeAsset {
	suffix := ".min"
	if debug {
		suffix = ""
	}

	scripts := []ThemeAsset{}

	if ServiceConfig.Features.UseWpEditor {
		scripts = append(scripts, newThemeAsset("bbpress-editor", "js/editor"+suffix+".js", "jquery"))
	}

	switch view {
	case ViewSingleForum:
		scripts = append(scripts, newThemeAsset("bbpress-forum", "js/forum"+suffix+".js", "jquery"))
	case ViewSingleTopic:
		scripts = append(scripts, newThemeAsset("bbpress-topic", "js/topic"+suffix+".js", "jquery"))

		if ServiceConfig.Features.ThreadReplies {
			scripts = append(scripts, newThemeAsset("bbpress-reply", "js/reply"+suffix+".js", "jquery"))
		}
	case ViewSingleUserEdit:
		scripts = append(scripts, newThemeAsset("bbpress-user", "js/user"+suffix+".js", "user-query"))
	}

	return scripts
}

func GetThemeAssets(c *fiber.Ctx) error {
	debug := c.QueryBool("debug", false)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"styles":  ThemeStyles(c.QueryBool("rtl", false), debug),
		"scripts": ThemeScripts(c.Query("view"), debug),
	})
}

func GetThemeWrapper(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"before": mainContentBefore,
		"after":  mainContentAfter,
	})
}

// HideSidebarCss returns an empty string until both selectors are configured.
func HideSidebarCss(o ThemeOptions) (string, error) {
	if o.SidebarElement == "" || o.ContentElement == "" {
		return "", nil
	}

	// Both values already matched SelectorRegex, which keeps them inside a
	// selector list, so they are emitted as-is.
	var b strings.Builder
	err := themeTemplates.ExecuteTemplate(&b, "head", struct {
		SidebarElement template.CSS
		ContentElement template.CSS
	}{
		SidebarElement: template.CSS(o.SidebarElement),
		ContentElement: template.CSS(o.ContentElement),
	})

	return b.String(), err
}

func ForumLinkScript(o ThemeOptions) (string, error) {
	if o.MenuElement == "" {
		return "", nil
	}

	var b strings.Builder
	err := themeTemplates.ExecuteTemplate(&b, "footer", struct {
		MenuElement string
		ForumsPath  string
	}{
		MenuElement: o.MenuElement,
		ForumsPath:  "/" + strings.Trim(ServiceConfig.Theme.ForumRoot, "/") + "/",
	})

	return b.String(), err
}

func GetThemeHead(c *fiber.Ctx) error {
	return renderThemeFragment(c, HideSidebarCss)
}

func GetThemeFooter(c *fiber.Ctx) error {
	return renderThemeFragment(c, ForumLinkScript)
}

func renderThemeFragment(c *fiber.Ctx, render func(ThemeOptions) (string, error)) error {
	o, err := LoadThemeOptions()

	if err != nil {
		logger.Error("load theme options", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	html, err := render(o)

	if err != nil {
		logger.Error("render theme fragment", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	c.Type("html")
	return c.Status(http.StatusOK).SendString(html)
}

func GetForumScriptVars(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")

	if err != nil || id <= 0 {
		return c.Status(http.StatusNotFound).JSON(ErrForumNotFound)
	}

	forum, err := GetForum(uint(id))

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if forum == nil {
		return c.Status(http.StatusNotFound).JSON(ErrForumNotFound)
	}

	userId, session := CurrentUserId(c), CurrentSession(c)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"bbpForumJS": fiber.Map{
			"bbp_ajaxurl":        AjaxUrl(),
			"generic_ajax_error": genericAjaxError,
			"is_user_logged_in":  userId != 0,
			"subs_nonce":         CreateNonce(ToggleNonceAction(kindSubscription, forum.ID), userId, session),
		},
	})
}

func GetTopicScriptVars(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")

	if err != nil || id <= 0 {
		return c.Status(http.StatusNotFound).JSON(ErrTopicNotFound)
	}

	topic, err := GetTopic(uint(id))

	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(ErrInternalServerError)
	}

	if topic == nil {
		return c.Status(http.StatusNotFound).JSON(ErrTopicNotFound)
	}

	userId, session := CurrentUserId(c), CurrentSession(c)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"bbpTopicJS": fiber.Map{
			"bbp_ajaxurl":        AjaxUrl(),
			"generic_ajax_error": genericAjaxError,
			"is_user_logged_in":  userId != 0,
			"fav_nonce":          CreateNonce(ToggleNonceAction(kindFavorite, topic.ID), userId, session),
			"subs_nonce":         CreateNonce(ToggleNonceAction(kindSubscription, topic.ID), userId, session),
		},
	})
}
