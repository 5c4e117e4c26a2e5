package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// ReviewRef identifies a review either by pull request link (reaction events)
// or by numeric id (dashboard actions). Exactly one field is set.
type ReviewRef struct {
	ID              uint
	PullRequestLink string
}

// ReviewRequest carries everything a new review needs from the Slack message
// the review reaction landed on.
type ReviewRequest struct {
	PullRequestLink string
	SlackChannelID  string
	SlackMsgID      string
	SlackThreadTs   string
	Permalink       string
	Note            string
}

// FindCodeReviewByPullRequestLink looks a review up by its pull request URL.
// A missing review is a normal outcome: (nil, nil).
func FindCodeReviewByPullRequestLink(db *gorm.DB, link string) (*models.CodeReview, error) {
	var review models.CodeReview
	err := db.Preload("Reviewers").Preload("Reviewers.User").Preload("User").
		Where("pull_request_link = ?", link).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindCodeReviewByID loads a review with its roster eager-loaded.
// A missing review is a normal outcome: (nil, nil).
func FindCodeReviewByID(db *gorm.DB, id uint) (*models.CodeReview, error) {
	var review models.CodeReview
	err := db.Preload("Reviewers").Preload("Reviewers.User").Preload("User").
		First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func findReview(db *gorm.DB, ref ReviewRef) (*models.CodeReview, error) {
	if ref.PullRequestLink != "" {
		return FindCodeReviewByPullRequestLink(db, ref.PullRequestLink)
	}
	return FindCodeReviewByID(db, ref.ID)
}

// CreateOrResetCodeReview inserts a pending review for an unseen pull request
// URL. If a review for the URL already exists its roster is wiped and its
// status reset to pending: re-submitting a pull request starts the approval
// count over.
func CreateOrResetCodeReview(db *gorm.DB, req ReviewRequest, owner *models.User) (*models.CodeReview, error) {
	existing, err := FindCodeReviewByPullRequestLink(db, req.PullRequestLink)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := db.Where("code_review_id = ?", existing.ID).
			Delete(&models.CodeReviewRelation{}).Error; err != nil {
			return nil, err
		}
		existing.Reviewers = nil
		existing.Status = models.StatusPending
		existing.SlackChannelID = req.SlackChannelID
		existing.SlackMsgID = req.SlackMsgID
		existing.SlackThreadTs = req.SlackThreadTs
		existing.Note = req.Note
		existing.JiraTicket = FindJiraTicket(req.Note)
		if req.Permalink != "" {
			existing.Permalink = req.Permalink
		}
		if err := db.Save(existing).Error; err != nil {
			return nil, err
		}
		log.Printf("review reset: id=%d, link=%s", existing.ID, req.PullRequestLink)
		return existing, nil
	}

	review := models.CodeReview{
		PullRequestLink: req.PullRequestLink,
		UserID:          owner.ID,
		User:            owner,
		SlackChannelID:  req.SlackChannelID,
		SlackMsgID:      req.SlackMsgID,
		SlackThreadTs:   req.SlackThreadTs,
		Permalink:       req.Permalink,
		Note:            req.Note,
		JiraTicket:      FindJiraTicket(req.Note),
		Status:          models.StatusPending,
	}
	if err := db.Create(&review).Error; err != nil {
		return nil, err
	}

	log.Printf("review created: id=%d, link=%s, owner=%d", review.ID, req.PullRequestLink, owner.ID)
	return &review, nil
}
