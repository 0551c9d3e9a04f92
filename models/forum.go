package models

import "time"

type Forum struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ParentID   uint   `gorm:"index" json:"parent_id"`
	Title      string `json:"title"`
	Slug       string `gorm:"index" json:"slug"`
	Content    string `json:"content"`
	IsCategory bool   `json:"is_category"`
	MenuOrder  int    `json:"menu_order"`
	CreatedAt  time.Time
}

type Topic struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ForumID           uint      `gorm:"index" json:"forum_id"`
	Title             string    `gorm:"index" json:"title"`
	Slug              string    `gorm:"index" json:"slug"`
	AuthorID          uint      `gorm:"index" json:"author_id"`
	ReplyCount        int       `json:"reply_count"`
	LastReplyID       uint      `json:"last_reply_id"`
	LastReplyAuthorID uint      `json:"last_reply_author_id"`
	LastActiveTime    time.Time `gorm:"index" json:"last_active_time"`
	CreatedAt         time.Time `json:"created_at"`
}

// LimitedTopic is the document stored in the search index.
type LimitedTopic struct {
	TopicId  uint   `json:"topic_id"`
	ForumId  uint   `json:"forum_id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	AuthorId uint   `json:"author_id"`
}

func (t *Topic) GetLimitedTopic() *LimitedTopic {
	return &LimitedTopic{
		TopicId:  t.ID,
		ForumId:  t.ForumID,
		Title:    t.Title,
		Slug:     t.Slug,
		AuthorId: t.AuthorID,
	}
}

// LastActiveAuthorID is the author of the newest post in the topic, which is
// the topic author until somebody replies.
func (t *Topic) LastActiveAuthorID() uint {
	if t.LastReplyID != 0 {
		return t.LastReplyAuthorID
	}

	return t.AuthorID
}

// PostCount counts the lead topic post along with its replies.
func (t *Topic) PostCount() int {
	return t.ReplyCount + 1
}
