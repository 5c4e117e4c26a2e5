package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// staleAfter is how long a review may sit in pending before a reminder is
// posted in its thread.
const staleAfter = 24 * time.Hour

// CheckStaleReviews posts a thread reminder for reviews that have been
// pending with no reviewer activity for too long, then touches their
// updated_at so each sweep nags at most once per interval.
func CheckStaleReviews(db *gorm.DB) {
	var reviews []models.CodeReview
	cutoff := time.Now().Add(-staleAfter)

	result := db.Where("status = ? AND updated_at < ?", models.StatusPending, cutoff).
		Find(&reviews)
	if result.Error != nil {
		log.Printf("stale review check error: %v", result.Error)
		return
	}

	for _, review := range reviews {
		if review.SlackChannelID == "" || review.SlackMsgID == "" {
			continue
		}

		err := PostToThread(review.SlackChannelID, review.SlackMsgID,
			"this pull request is still waiting for reviewers: "+review.PullRequestLink)
		if err != nil {
			log.Printf("stale reminder send error (review: %d): %v", review.ID, err)
			continue
		}

		if err := db.Model(&review).Update("updated_at", time.Now()).Error; err != nil {
			log.Printf("stale reminder touch error (review: %d): %v", review.ID, err)
		}
		log.Printf("stale reminder sent (review: %d, link: %s)", review.ID, review.PullRequestLink)
	}
}

// RunStaleReviewChecker runs the stale sweep on a fixed interval until stop
// is closed.
func RunStaleReviewChecker(db *gorm.DB, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			CheckStaleReviews(db)
		case <-stop:
			return
		}
	}
}
