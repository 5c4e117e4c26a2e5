package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// SetReviewerStatus upserts the single roster row for (review, user). A user
// has exactly one stance per review: re-claiming or re-approving overwrites
// the prior row. A newly created row is appended to the roster mirror on the
// review so the caller can recompute stats without a re-fetch.
func SetReviewerStatus(db *gorm.DB, review *models.CodeReview, user *models.User, status string) (*models.CodeReviewRelation, error) {
	var rel models.CodeReviewRelation
	err := db.Where("code_review_id = ? AND user_id = ?", review.ID, user.ID).First(&rel).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		rel = models.CodeReviewRelation{
			CodeReviewID: review.ID,
			UserID:       user.ID,
			User:         user,
			Status:       status,
		}
		if err := db.Create(&rel).Error; err != nil {
			return nil, err
		}
		review.Reviewers = append(review.Reviewers, rel)
		return &rel, nil
	}

	rel.Status = status
	if err := db.Save(&rel).Error; err != nil {
		return nil, err
	}
	for i := range review.Reviewers {
		if review.Reviewers[i].UserID == user.ID {
			review.Reviewers[i].Status = status
		}
	}
	return &rel, nil
}

// removeReviewer deletes the user's roster row, if any. When keepApproved is
// set an approved row is left in place so the approval keeps counting.
// Reports whether a row was deleted.
func removeReviewer(db *gorm.DB, review *models.CodeReview, user *models.User, keepApproved bool) (bool, error) {
	var rel models.CodeReviewRelation
	err := db.Where("code_review_id = ? AND user_id = ?", review.ID, user.ID).First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if keepApproved && rel.Status == models.StatusApproved {
		return false, nil
	}

	if err := db.Delete(&rel).Error; err != nil {
		return false, err
	}
	remaining := review.Reviewers[:0]
	for _, r := range review.Reviewers {
		if r.UserID != user.ID {
			remaining = append(remaining, r)
		}
	}
	review.Reviewers = remaining
	return true, nil
}
