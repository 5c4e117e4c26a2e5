package models

import (
	"time"

	"gorm.io/gorm"
)

// Review statuses. A CodeReview moves between these; a roster entry only
// ever uses pending, approved or change.
const (
	StatusPending    = "pending"
	StatusInProgress = "inprogress"
	StatusReady      = "ready"
	StatusApproved   = "approved"
	StatusChange     = "change"
	StatusClosed     = "closed"
	StatusRemoved    = "removed"
)

// CodeReview is one pull request under review. The pull request URL is the
// natural key: re-posting the same URL in another thread reuses the row
// instead of creating a duplicate.
type CodeReview struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	PullRequestLink string `gorm:"uniqueIndex" json:"pullRequestLink"`
	UserID          uint   `json:"userId"`
	User            *User  `json:"user,omitempty"`
	Title           string `json:"title"`
	SlackChannelID  string `json:"slackChannelId"`
	SlackMsgID      string `json:"slackMsgId"`
	SlackThreadTs   string `json:"slackThreadTs"`
	BroadcastTs     string `json:"broadcastTs"` // ts of the bot's own announcement in the notify channel
	Permalink       string `json:"permalink"`
	JiraTicket      string `json:"jiraTicket"`
	Note            string `json:"note"`
	Status          string `json:"status"`

	// Reviewers mirrors the roster rows for this review. Loaded with the
	// review so stats can be recomputed without a re-fetch.
	Reviewers []CodeReviewRelation `gorm:"foreignKey:CodeReviewID" json:"reviewers,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CodeReviewRelation is a roster entry: one user's current stance on one
// review. Unique on (code review, user), so re-claiming overwrites the prior
// stance rather than adding a second row.
type CodeReviewRelation struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CodeReviewID uint   `gorm:"index:idx_review_user,unique" json:"codeReviewId"`
	UserID       uint   `gorm:"index:idx_review_user,unique" json:"userId"`
	User         *User  `json:"user,omitempty"`
	Status       string `json:"status"` // pending, approved or change
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
