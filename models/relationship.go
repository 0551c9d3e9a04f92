package models

import "time"

type SubscriptionObject string

const (
	SubscriptionTopic SubscriptionObject = "topic"
	SubscriptionForum SubscriptionObject = "forum"
)

type Favorite struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	TopicID   uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

type Subscription struct {
	UserID     uint               `gorm:"primaryKey;autoIncrement:false"`
	ObjectID   uint               `gorm:"primaryKey;autoIncrement:false;index"`
	ObjectType SubscriptionObject `gorm:"primaryKey;size:16"`
	CreatedAt  time.Time
}

type Option struct {
	Name  string `gorm:"primaryKey;size:191"`
	Value string
}
