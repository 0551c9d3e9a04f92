package main

import (
	"bbpApi/models"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

func forumBase() string {
	return strings.TrimRight(ServiceConfig.Theme.SiteUrl, "/") + "/" + strings.Trim(ServiceConfig.Theme.ForumRoot, "/")
}

func ForumPermalink(f *models.Forum) string {
	return fmt.Sprintf("%s/forum/%s/", forumBase(), f.Slug)
}

func TopicPermalink(t *models.Topic) string {
	return fmt.Sprintf("%s/topic/%s/", forumBase(), t.Slug)
}

func UserProfileUrl(u *models.User) string {
	return fmt.Sprintf("%s/users/%s/", forumBase(), u.Login)
}

func AjaxUrl() string {
	return strings.TrimRight(ServiceConfig.Theme.SiteUrl, "/") + "/api/v1/ajax"
}

// AvatarUrl follows the gravatar scheme WordPress uses for get_avatar.
func AvatarUrl(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%s?s=%d&d=mm&r=g", hex.EncodeToString(sum[:]), size)
}
