package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/services"
)

// SlackActionPayload is the interactive-message payload posted when someone
// clicks a button on a review message.
type SlackActionPayload struct {
	Type string `json:"type"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	Container struct {
		ChannelID string `json:"channel_id"`
	} `json:"container"`
	Message struct {
		Ts string `json:"ts"`
	} `json:"message"`
}

// HandleSlackAction processes claim/approve button clicks on review messages.
func HandleSlackAction(db *gorm.DB, cache *services.UserCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		payloadStr := strings.TrimSpace(c.PostForm("payload"))

		var payload SlackActionPayload
		if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if len(payload.Actions) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no action in payload"})
			return
		}

		var action services.ReviewAction
		switch payload.Actions[0].ActionID {
		case "review_claim":
			action = services.ActionClaim
		case "review_approve":
			action = services.ActionApprove
		default:
			c.Status(http.StatusOK)
			return
		}

		reviewID, err := strconv.ParseUint(payload.Actions[0].Value, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
			return
		}

		ref := services.ReviewRef{ID: uint(reviewID)}
		result, err := services.RunAction(db, cache, action, ref, payload.User.ID)
		if err != nil {
			log.Printf("slack action %s failed (user: %s): %v", action, payload.User.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed"})
			return
		}

		if result.Message != "" && payload.Container.ChannelID != "" {
			if err := services.PostToThread(payload.Container.ChannelID, payload.Message.Ts, result.Message); err != nil {
				log.Printf("thread reply failed (channel: %s): %v", payload.Container.ChannelID, err)
			}
		}

		c.Status(http.StatusOK)
	}
}
