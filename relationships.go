package main

import (
	"bbpApi/models"
	"errors"
	"gorm.io/gorm"
)

// ErrRelationshipUnchanged is returned when a remove finds nothing to remove,
// which means another request flipped the same relationship first.
var ErrRelationshipUnchanged = errors.New("relationship unchanged")

func IsUserFavorite(userId uint, topicId uint) (bool, error) {
	return isUserFavorite(DatabaseConnection, userId, topicId)
}

func AddUserFavorite(userId uint, topicId uint) error {
	return addUserFavorite(DatabaseConnection, userId, topicId)
}

func RemoveUserFavorite(userId uint, topicId uint) error {
	return removeUserFavorite(DatabaseConnection, userId, topicId)
}

// ToggleUserFavorite flips the favorite inside one transaction and returns the
// new state.
func ToggleUserFavorite(userId uint, topicId uint) (bool, error) {
	favorited := false

	err := DatabaseConnection.Transaction(func(tx *gorm.DB) error {
		is, err := isUserFavorite(tx, userId, topicId)
		if err != nil {
			return err
		}

		if is {
			return removeUserFavorite(tx, userId, topicId)
		}

		favorited = true
		return addUserFavorite(tx, userId, topicId)
	})

	return favorited, err
}

func isUserFavorite(db *gorm.DB, userId uint, topicId uint) (bool, error) {
	var n int64
	tx := db.Model(&models.Favorite{}).Where("user_id = ? AND topic_id = ?", userId, topicId).Count(&n)

	return n > 0, tx.Error
}

func addUserFavorite(db *gorm.DB, userId uint, topicId uint) error {
	return db.Create(&models.Favorite{UserID: userId, TopicID: topicId}).Error
}

func removeUserFavorite(db *gorm.DB, userId uint, topicId uint) error {
	tx := db.Where("user_id = ? AND topic_id = ?", userId, topicId).Delete(&models.Favorite{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected != 1 {
		return ErrRelationshipUnchanged
	}

	return nil
}

func IsUserSubscribed(userId uint, object models.SubscriptionObject, objectId uint) (bool, error) {
	return isUserSubscribed(DatabaseConnection, userId, object, objectId)
}

func AddUserSubscription(userId uint, object models.SubscriptionObject, objectId uint) error {
	return addUserSubscription(DatabaseConnection, userId, object, objectId)
}

func RemoveUserSubscription(userId uint, object models.SubscriptionObject, objectId uint) error {
	return removeUserSubscription(DatabaseConnection, userId, object, objectId)
}

func ToggleUserSubscription(userId uint, object models.SubscriptionObject, objectId uint) (bool, error) {
	subscribed := false

	err := DatabaseConnection.Transaction(func(tx *gorm.DB) error {
		is, err := isUserSubscribed(tx, userId, object, objectId)
		if err != nil {
			return err
		}

		if is {
			return removeUserSubscription(tx, userId, object, objectId)
		}

		subscribed = true
		return addUserSubscription(tx, userId, object, objectId)
	})

	return subscribed, err
}

func isUserSubscribed(db *gorm.DB, userId uint, object models.SubscriptionObject, objectId uint) (bool, error) {
	var n int64
	tx := db.Model(&models.Subscription{}).
		Where("user_id = ? AND object_id = ? AND object_type = ?", userId, objectId, object).
		Count(&n)

	return n > 0, tx.Error
}

func addUserSubscription(db *gorm.DB, userId uint, object models.SubscriptionObject, objectId uint) error {
	return db.Create(&models.Subscription{UserID: userId, ObjectID: objectId, ObjectType: object}).Error
}

func removeUserSubscription(db *gorm.DB, userId uint, object models.SubscriptionObject, objectId uint) error {
	tx := db.Where("user_id = ? AND object_id = ? AND object_type = ?", userId, objectId, object).
		Delete(&models.Subscription{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected != 1 {
		return ErrRelationshipUnchanged
	}

	return nil
}

func GetUserFavorites(userId uint) ([]models.Topic, error) {
	var topics []models.Topic

	tx := DatabaseConnection.
		Joins("JOIN favorites ON favorites.topic_id = topics.id").
		Where("favorites.user_id = ?", userId).
		Order("favorites.created_at DESC").
		Find(&topics)

	return topics, tx.Error
}

func GetUserTopicSubscriptions(userId uint) ([]models.Topic, error) {
	var topics []models.Topic

	tx := DatabaseConnection.
		Joins("JOIN subscriptions ON subscriptions.object_id = topics.id AND subscriptions.object_type = ?", models.SubscriptionTopic).
		Where("subscriptions.user_id = ?", userId).
		Order("subscriptions.created_at DESC").
		Find(&topics)

	return topics, tx.Error
}

func GetUserForumSubscriptions(userId uint) ([]models.Forum, error) {
	var forums []models.Forum

	tx := DatabaseConnection.
		Joins("JOIN subscriptions ON subscriptions.object_id = forums.id AND subscriptions.object_type = ?", models.SubscriptionForum).
		Where("subscriptions.user_id = ?", userId).
		Order("subscriptions.created_at DESC").
		Find(&forums)

	return forums, tx.Error
}
