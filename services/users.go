package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// FindOrCreateUser resolves a Slack user id to a local user record, creating
// one the first time the id is seen. The Slack profile lookup on creation is
// best effort: if it fails the user is created with an empty name.
func FindOrCreateUser(db *gorm.DB, cache *UserCache, slackUserID string) (*models.User, error) {
	if user := cache.Get(slackUserID); user != nil {
		return user, nil
	}

	var user models.User
	err := db.Where("slack_user_id = ?", slackUserID).First(&user).Error
	if err == nil {
		cache.Put(&user)
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name, email, err := GetSlackUserInfo(slackUserID)
	if err != nil {
		log.Printf("slack user info lookup failed (user: %s): %v", slackUserID, err)
		name, email = "", ""
	}

	user = models.User{
		SlackUserID: slackUserID,
		Name:        name,
		Email:       email,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	log.Printf("user created: id=%d, slack=%s, name=%s", user.ID, slackUserID, name)
	cache.Put(&user)
	return &user, nil
}
