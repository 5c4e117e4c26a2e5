package models

import (
	"time"

	"gorm.io/gorm"
)

// RepoConfig holds per-repository settings: which channel gets broadcast
// notifications and the reviewer/approval thresholds an admin has asked for.
//
// TODO: the stats recalculation still uses the fixed threshold of 2 and does
// not read these overrides.
type RepoConfig struct {
	ID                string `gorm:"primaryKey"`
	RepositoryName    string `gorm:"uniqueIndex"` // "owner/repo"
	SlackChannelID    string
	ReviewerThreshold int
	ApprovalThreshold int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}
