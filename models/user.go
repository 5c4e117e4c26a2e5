package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a local identity record for a Slack workspace member.
// Created lazily the first time a Slack id reacts or clicks an action;
// never deleted afterwards.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SlackUserID string `gorm:"uniqueIndex" json:"slackUserId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Session     string `json:"-"` // opaque dashboard session blob
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
