package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

type archiveEntry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type archiveSnapshot struct {
	PullRequestLink string         `json:"pullRequestLink"`
	Title           string         `json:"title"`
	JiraTicket      string         `json:"jiraTicket,omitempty"`
	Owner           string         `json:"owner"`
	Status          string         `json:"status"`
	Roster          []archiveEntry `json:"roster"`
	ClosedAt        time.Time      `json:"closedAt"`
}

// ArchiveCodeReview writes the one-shot reporting snapshot for a closed
// review: the review fields plus the roster with resolved user names.
// The row is immutable once written.
func ArchiveCodeReview(db *gorm.DB, review *models.CodeReview) error {
	snapshot := archiveSnapshot{
		PullRequestLink: review.PullRequestLink,
		Title:           review.Title,
		JiraTicket:      review.JiraTicket,
		Status:          review.Status,
		ClosedAt:        time.Now(),
	}
	if review.User != nil {
		snapshot.Owner = review.User.Name
	}
	for _, rel := range review.Reviewers {
		entry := archiveEntry{Status: rel.Status}
		if rel.User != nil {
			entry.Name = rel.User.Name
		}
		snapshot.Roster = append(snapshot.Roster, entry)
	}

	blob, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	archive := models.Archive{
		ID:              uuid.NewString(),
		CodeReviewID:    review.ID,
		PullRequestLink: review.PullRequestLink,
		Snapshot:        string(blob),
	}
	return db.Create(&archive).Error
}
