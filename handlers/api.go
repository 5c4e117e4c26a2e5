package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
	"github.com/penske-media-corp/code-review-bot/services"
)

// ReviewSummary is one row of the dashboard review table, with the roster
// flattened into name arrays.
type ReviewSummary struct {
	ID              uint     `json:"id"`
	PullRequestLink string   `json:"pullRequestLink"`
	Title           string   `json:"title"`
	JiraTicket      string   `json:"jiraTicket"`
	Owner           string   `json:"owner"`
	Status          string   `json:"status"`
	Permalink       string   `json:"permalink"`
	Reviewers       []string `json:"reviewers"`
	Approvers       []string `json:"approvers"`
	RequestChanges  []string `json:"requestChanges"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

func summarize(review *models.CodeReview) ReviewSummary {
	summary := ReviewSummary{
		ID:              review.ID,
		PullRequestLink: review.PullRequestLink,
		Title:           review.Title,
		JiraTicket:      review.JiraTicket,
		Status:          review.Status,
		Permalink:       review.Permalink,
		Reviewers:       []string{},
		Approvers:       []string{},
		RequestChanges:  []string{},
		CreatedAt:       review.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       review.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if review.User != nil {
		summary.Owner = review.User.Name
	}

	for _, rel := range review.Reviewers {
		name := ""
		if rel.User != nil {
			name = rel.User.Name
		}
		switch rel.Status {
		case models.StatusApproved:
			summary.Approvers = append(summary.Approvers, name)
		case models.StatusChange:
			summary.RequestChanges = append(summary.RequestChanges, name)
			summary.Reviewers = append(summary.Reviewers, name)
		case models.StatusPending:
			summary.Reviewers = append(summary.Reviewers, name)
		}
	}
	return summary
}

// HandleListReviews serves the dashboard review table: paged, newest first,
// optionally filtered by status.
func HandleListReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		status := c.Query("status")

		countQuery := db.Model(&models.CodeReview{})
		if status != "" {
			countQuery = countQuery.Where("status = ?", status)
		}
		var total int64
		if err := countQuery.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count reviews"})
			return
		}

		query := db.Preload("User").Preload("Reviewers").Preload("Reviewers.User")
		if status != "" {
			query = query.Where("status = ?", status)
		}

		var reviews []models.CodeReview
		err := query.Order("updated_at DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&reviews).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
			return
		}

		summaries := make([]ReviewSummary, 0, len(reviews))
		for i := range reviews {
			summaries = append(summaries, summarize(&reviews[i]))
		}

		c.JSON(http.StatusOK, gin.H{
			"reviews": summaries,
			"total":   total,
			"page":    page,
			"limit":   limit,
		})
	}
}

// HandleGetReview serves one review with its roster.
func HandleGetReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		review, err := services.FindCodeReviewByID(db, uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load review"})
			return
		}
		if review == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
			return
		}

		c.JSON(http.StatusOK, summarize(review))
	}
}

// ReviewActionRequest is the dashboard action-button body.
type ReviewActionRequest struct {
	Action      string `json:"action" binding:"required"`
	SlackUserID string `json:"slackUserId" binding:"required"`
}

// HandleReviewAction runs a dashboard-initiated action against a review id.
// The result mirrors what the Slack thread reply would say.
func HandleReviewAction(db *gorm.DB, cache *services.UserCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		var req ReviewActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action and slackUserId are required"})
			return
		}

		action := services.ParseDashboardAction(req.Action)
		if action == services.ActionUnknown {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
			return
		}

		ref := services.ReviewRef{ID: uint(id)}
		result, err := services.RunAction(db, cache, action, ref, req.SlackUserID)
		if err != nil {
			log.Printf("dashboard action %s failed (review: %d): %v", action, id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// RepoConfigRequest is the settings upsert body.
type RepoConfigRequest struct {
	RepositoryName    string `json:"repositoryName" binding:"required"`
	SlackChannelID    string `json:"slackChannelId"`
	ReviewerThreshold int    `json:"reviewerThreshold"`
	ApprovalThreshold int    `json:"approvalThreshold"`
	IsActive          *bool  `json:"isActive"`
}

// HandleGetRepoConfig serves the settings for one repository.
func HandleGetRepoConfig(db *gorm.DB, cache *services.ConfigCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		repository := c.Query("repository")
		if repository == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "repository is required"})
			return
		}

		config, err := services.GetRepoConfig(db, cache, repository)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
			return
		}
		if config == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no config for " + repository})
			return
		}

		c.JSON(http.StatusOK, config)
	}
}

// HandleSaveRepoConfig creates or updates repository settings.
func HandleSaveRepoConfig(db *gorm.DB, cache *services.ConfigCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RepoConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "repositoryName is required"})
			return
		}

		config := models.RepoConfig{
			RepositoryName:    req.RepositoryName,
			SlackChannelID:    req.SlackChannelID,
			ReviewerThreshold: req.ReviewerThreshold,
			ApprovalThreshold: req.ApprovalThreshold,
			IsActive:          true,
		}
		if req.IsActive != nil {
			config.IsActive = *req.IsActive
		}

		if err := services.SaveRepoConfig(db, cache, &config); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
			return
		}

		c.JSON(http.StatusOK, config)
	}
}
