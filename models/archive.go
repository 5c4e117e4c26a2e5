package models

import "time"

// Archive is a denormalized snapshot of a closed review and its roster,
// written once when the review is closed and never updated.
type Archive struct {
	ID              string `gorm:"primaryKey" json:"id"`
	CodeReviewID    uint   `gorm:"index" json:"codeReviewId"`
	PullRequestLink string `json:"pullRequestLink"`
	Snapshot        string `json:"snapshot"` // JSON blob of the review and roster
	CreatedAt       time.Time `json:"createdAt"`
}
