package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
	"github.com/penske-media-corp/code-review-bot/services"
)

func apiRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	cache := services.NewUserCache()
	configCache := services.NewConfigCache()
	r.GET("/api/reviews", HandleListReviews(db))
	r.GET("/api/review/:id", HandleGetReview(db))
	r.POST("/api/review/:id/action", HandleReviewAction(db, cache))
	r.GET("/api/config", HandleGetRepoConfig(db, configCache))
	r.POST("/api/config", HandleSaveRepoConfig(db, configCache))
	return r
}

func seedReview(t *testing.T, db *gorm.DB) *models.CodeReview {
	owner := models.User{SlackUserID: "U_OWNER", Name: "owner"}
	alice := models.User{SlackUserID: "U_A", Name: "alice"}
	bob := models.User{SlackUserID: "U_B", Name: "bob"}
	carol := models.User{SlackUserID: "U_C", Name: "carol"}
	for _, u := range []*models.User{&owner, &alice, &bob, &carol} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("fail to seed user: %v", err)
		}
	}

	review := models.CodeReview{
		PullRequestLink: "https://github.com/org/repo/pull/1",
		UserID:          owner.ID,
		Title:           "Fix pagination",
		Status:          models.StatusInProgress,
	}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("fail to seed review: %v", err)
	}

	rels := []models.CodeReviewRelation{
		{CodeReviewID: review.ID, UserID: alice.ID, Status: models.StatusPending},
		{CodeReviewID: review.ID, UserID: bob.ID, Status: models.StatusApproved},
		{CodeReviewID: review.ID, UserID: carol.ID, Status: models.StatusChange},
	}
	for _, rel := range rels {
		if err := db.Create(&rel).Error; err != nil {
			t.Fatalf("fail to seed roster: %v", err)
		}
	}
	return &review
}

func TestListReviewsComputesNameArrays(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter(db)
	seedReview(t, db)

	req := httptest.NewRequest("GET", "/api/reviews", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Reviews []ReviewSummary `json:"reviews"`
		Total   int64           `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.Total)
	assert.Len(t, response.Reviews, 1)

	summary := response.Reviews[0]
	assert.Equal(t, "owner", summary.Owner)
	assert.ElementsMatch(t, []string{"alice", "carol"}, summary.Reviewers)
	assert.Equal(t, []string{"bob"}, summary.Approvers)
	assert.Equal(t, []string{"carol"}, summary.RequestChanges)
}

func TestListReviewsStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter(db)
	seedReview(t, db)

	req := httptest.NewRequest("GET", "/api/reviews?status=closed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Reviews []ReviewSummary `json:"reviews"`
		Total   int64           `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(0), response.Total)
	assert.Empty(t, response.Reviews)
}

func TestGetReview(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter(db)
	review := seedReview(t, db)

	req := httptest.NewRequest("GET", "/api/review/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var summary ReviewSummary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, review.ID, summary.ID)
	assert.Equal(t, "Fix pagination", summary.Title)

	req = httptest.NewRequest("GET", "/api/review/999", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("GET", "/api/review/notanumber", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewActionEndpoint(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter(db)
	review := seedReview(t, db)
	db.Create(&models.User{SlackUserID: "U_D", Name: "dave"})

	w := postJSON(t, r, "/api/review/1/action", map[string]interface{}{
		"action":      "approve",
		"slackUserId": "U_D",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var result services.ActionResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotNil(t, result.User)
	assert.Contains(t, result.Message, "2 approvals")

	var count int64
	db.Model(&models.CodeReviewRelation{}).
		Where("code_review_id = ? AND status = ?", review.ID, models.StatusApproved).
		Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestReviewActionValidation(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter(db)
	seedReview(t, db)

	// Unknown action name.
	w := postJSON(t, r, "/api/review/1/action", map[string]interface{}{
		"action":      "explode",
		"slackUserId": "U_A",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing fields.
	w = postJSON(t, r, "/api/review/1/action", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing review: soft result, not an HTTP error.
	w = postJSON(t, r, "/api/review/999/action", map[string]interface{}{
		"action":      "claim",
		"slackUserId": "U_A",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var result services.ActionResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Nil(t, result.CodeReview)
	assert.NotEmpty(t, result.Message)
}

func TestRepoConfigEndpoints(t *testing.T) {
	db := setupTestDB(t)
	r := apiRouter(db)

	w := postJSON(t, r, "/api/config", map[string]interface{}{
		"repositoryName":    "org/repo",
		"slackChannelId":    "C12345",
		"reviewerThreshold": 3,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest("GET", "/api/config?repository=org/repo", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var config models.RepoConfig
	assert.NoError(t, json.Unmarshal(w2.Body.Bytes(), &config))
	assert.Equal(t, 3, config.ReviewerThreshold)
	assert.True(t, config.IsActive)

	req = httptest.NewRequest("GET", "/api/config?repository=org/unknown", nil)
	w2 = httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotFound, w2.Code)

	req = httptest.NewRequest("GET", "/api/config", nil)
	w2 = httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}
