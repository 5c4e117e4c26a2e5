package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// ActionResult is what every action hands back to its dispatcher: the acting
// user, a display message for the thread reply or the API response, and the
// review in its new state. A missing review produces a message-only result.
type ActionResult struct {
	User       *models.User       `json:"user"`
	Message    string             `json:"message"`
	CodeReview *models.CodeReview `json:"codeReview,omitempty"`
}

func reviewNotFound() *ActionResult {
	return &ActionResult{Message: "that pull request is not under review"}
}

// RequestReview registers (or re-registers) a pull request for review. The
// acting user becomes the owner. Re-requesting an already-tracked URL resets
// it to pending with an empty roster.
func RequestReview(db *gorm.DB, cache *UserCache, req ReviewRequest, slackUserID string) (*ActionResult, error) {
	if req.PullRequestLink == "" {
		return &ActionResult{Message: "no pull request link found in that message"}, nil
	}

	owner, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	review, err := CreateOrResetCodeReview(db, req, owner)
	if err != nil {
		return nil, err
	}

	if !IsTestMode && review.Title == "" {
		if title, err := FetchPRTitle(review.PullRequestLink); err == nil {
			review.Title = title
			db.Model(review).Update("title", title)
		} else {
			log.Printf("pr title fetch failed (link: %s): %v", review.PullRequestLink, err)
		}
	}

	return &ActionResult{
		User:       owner,
		Message:    fmt.Sprintf("review requested: %d reviewers needed", reviewerThreshold),
		CodeReview: review,
	}, nil
}

// ClaimReview records the acting user as a reviewer who has not approved yet.
func ClaimReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	review, err := findReview(db, ref)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return reviewNotFound(), nil
	}

	user, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	if _, err := SetReviewerStatus(db, review, user, models.StatusPending); err != nil {
		return nil, err
	}
	stats, err := RecalculateReviewStats(db, review)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("review has %d reviewers", stats.ApprovalCount+stats.ReviewerCount)
	if stats.ApprovalCount+stats.ReviewerCount == 1 {
		message = "claimed: one more reviewer needed"
	}
	return &ActionResult{User: user, Message: message, CodeReview: review}, nil
}

// ApproveReview records the acting user's approval.
func ApproveReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	review, err := findReview(db, ref)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return reviewNotFound(), nil
	}

	user, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	if _, err := SetReviewerStatus(db, review, user, models.StatusApproved); err != nil {
		return nil, err
	}
	stats, err := RecalculateReviewStats(db, review)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("review has %d approvals, ready to merge", stats.ApprovalCount)
	if stats.ApprovalCount == 1 {
		message = "approved: one more approval needed"
	}
	return &ActionResult{User: user, Message: message, CodeReview: review}, nil
}

// RequestChanges records a change request from the acting user. The aggregate
// counts are not recomputed: asking for changes never moves the review
// forward on its own.
func RequestChanges(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	review, err := findReview(db, ref)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return reviewNotFound(), nil
	}

	user, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	if _, err := SetReviewerStatus(db, review, user, models.StatusChange); err != nil {
		return nil, err
	}
	return &ActionResult{User: user, Message: "changes requested", CodeReview: review}, nil
}

// RemoveReview takes the review out of circulation. The status flips to
// removed directly on the review; roster rows are left as they are.
func RemoveReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	review, err := findReview(db, ref)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return reviewNotFound(), nil
	}

	user, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	if err := setReviewStatus(db, review, models.StatusRemoved); err != nil {
		return nil, err
	}
	return &ActionResult{User: user, Message: "review removed", CodeReview: review}, nil
}

// WithdrawReview drops the acting user from the roster entirely, whatever
// their stance was. A reviewer leaving never promotes the review to ready.
func WithdrawReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	return exitReview(db, cache, ref, slackUserID, false, "reviewer withdrew")
}

// FinishReview is the reviewer-is-done exit: like a withdraw, except an
// approved stance stays on the roster so the approval keeps counting.
func FinishReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	return exitReview(db, cache, ref, slackUserID, true, "reviewer finished")
}

func exitReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string, keepApproved bool, verb string) (*ActionResult, error) {
	review, err := findReview(db, ref)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return reviewNotFound(), nil
	}

	user, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	if _, err := removeReviewer(db, review, user, keepApproved); err != nil {
		return nil, err
	}
	stats, err := recalculateAfterExit(db, review)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("%s: review has %d reviewers and %d approvals",
		verb, stats.ReviewerCount, stats.ApprovalCount)
	return &ActionResult{User: user, Message: message, CodeReview: review}, nil
}

// RunAction dispatches a parsed review action against a resolved target.
// Request is not dispatched here: it needs the full message context, not just
// a reference.
func RunAction(db *gorm.DB, cache *UserCache, action ReviewAction, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	switch action {
	case ActionClaim:
		return ClaimReview(db, cache, ref, slackUserID)
	case ActionApprove:
		return ApproveReview(db, cache, ref, slackUserID)
	case ActionRequestChanges:
		return RequestChanges(db, cache, ref, slackUserID)
	case ActionRemove:
		return RemoveReview(db, cache, ref, slackUserID)
	case ActionWithdraw:
		return WithdrawReview(db, cache, ref, slackUserID)
	case ActionFinish:
		return FinishReview(db, cache, ref, slackUserID)
	case ActionClose:
		return CloseReview(db, cache, ref, slackUserID)
	}
	return nil, fmt.Errorf("unknown review action: %s", action)
}

// CloseReview closes the review and writes its archive snapshot. The status
// flip is a conditional update, so when two close events race only the one
// that actually performed the transition gets a notification message; the
// loser gets an empty one.
func CloseReview(db *gorm.DB, cache *UserCache, ref ReviewRef, slackUserID string) (*ActionResult, error) {
	review, err := findReview(db, ref)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return reviewNotFound(), nil
	}

	user, err := FindOrCreateUser(db, cache, slackUserID)
	if err != nil {
		return nil, err
	}

	res := db.Model(&models.CodeReview{}).
		Where("id = ? AND status <> ?", review.ID, models.StatusClosed).
		Update("status", models.StatusClosed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race: someone else already closed it.
		review.Status = models.StatusClosed
		return &ActionResult{User: user, CodeReview: review}, nil
	}
	review.Status = models.StatusClosed

	if err := ArchiveCodeReview(db, review); err != nil {
		log.Printf("archive write failed (review: %d): %v", review.ID, err)
	}

	return &ActionResult{User: user, Message: "review closed", CodeReview: review}, nil
}
