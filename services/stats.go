package services

import (
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// reviewerThreshold is how many participants a review needs before its status
// starts moving, and how many approvals make it ready.
const reviewerThreshold = 2

// ReviewStats are the aggregate counts derived from a review's roster.
type ReviewStats struct {
	ApprovalCount int `json:"approvalCount"`
	ReviewerCount int `json:"reviewerCount"`
}

// CountRoster scans the roster mirror on the review. ApprovalCount is the
// number of approved entries; ReviewerCount is the number of still-active
// non-approved entries (claimed or requesting changes).
func CountRoster(review *models.CodeReview) ReviewStats {
	var stats ReviewStats
	for _, rel := range review.Reviewers {
		switch rel.Status {
		case models.StatusApproved:
			stats.ApprovalCount++
		case models.StatusPending, models.StatusChange:
			stats.ReviewerCount++
		}
	}
	return stats
}

// RecalculateReviewStats recomputes the roster counts and applies the status
// transition rule: once approvals plus active reviewers reach the threshold,
// the review is ready when the approvals alone reach it, in progress
// otherwise. Below the threshold the status is left as it was. The new status
// is persisted immediately.
func RecalculateReviewStats(db *gorm.DB, review *models.CodeReview) (ReviewStats, error) {
	stats := CountRoster(review)

	if stats.ApprovalCount+stats.ReviewerCount >= reviewerThreshold {
		status := models.StatusInProgress
		if stats.ApprovalCount >= reviewerThreshold {
			status = models.StatusReady
		}
		if err := setReviewStatus(db, review, status); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// recalculateAfterExit is the withdraw/finish variant: same counting, but a
// reviewer leaving never promotes the review to ready.
func recalculateAfterExit(db *gorm.DB, review *models.CodeReview) (ReviewStats, error) {
	stats := CountRoster(review)

	if stats.ApprovalCount+stats.ReviewerCount >= reviewerThreshold {
		if err := setReviewStatus(db, review, models.StatusInProgress); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func setReviewStatus(db *gorm.DB, review *models.CodeReview, status string) error {
	if review.Status == status {
		return nil
	}
	review.Status = status
	return db.Model(review).Update("status", status).Error
}
