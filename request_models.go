package main

import "github.com/gofiber/fiber/v2"

var ErrInvalidRequestBody = fiber.Map{"error": "Invalid request body."}
var ErrInternalServerError = fiber.Map{"error": "Internal server error."}
var ErrForumNotFound = fiber.Map{"error": "The forum could not be found."}
var ErrTopicNotFound = fiber.Map{"error": "The topic could not be found."}
var ErrUserNotFound = fiber.Map{"error": "The user could not be found."}

type AuthenticationRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegistrationRequest struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type AuthenticationResponse struct {
	Token  string `json:"token"`
	UserId uint   `json:"user_id"`
}

// AjaxResponse is the envelope every AJAX toggle exit path writes.
type AjaxResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Code    int    `json:"code"`
}

type ThemeOptionsRequest struct {
	SidebarElement string `json:"epicweb_sidebar_element" form:"epicweb_sidebar_element"`
	ContentElement string `json:"epicweb_content_element" form:"epicweb_content_element"`
	MenuElement    string `json:"epicweb_menu_element" form:"epicweb_menu_element"`
}

type ThemeOptionsResponse struct {
	SidebarElement string `json:"epicweb_sidebar_element"`
	ContentElement string `json:"epicweb_content_element"`
	MenuElement    string `json:"epicweb_menu_element"`
	Message        string `json:"message,omitempty"`
}

type RelationshipListResponse struct {
	Topics []TopicSummary `json:"topics"`
	Forums []ForumSummary `json:"forums,omitempty"`
}

type TopicSummary struct {
	TopicId   uint   `json:"topic_id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

type ForumSummary struct {
	ForumId   uint   `json:"forum_id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}
