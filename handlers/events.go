package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack/slackevents"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/services"
)

// HandleSlackEvents processes the Slack Events API callback: the
// url_verification handshake and reaction added/removed events. Reactions are
// dispatched to review actions; everything else is acknowledged and ignored.
func HandleSlackEvents(db *gorm.DB, cache *services.UserCache, configCache *services.ConfigCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}

		if !services.ValidateSlackRequest(c.Request, body) {
			log.Println("invalid slack signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid slack signature"})
			return
		}

		event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
		if err != nil {
			log.Printf("slack event parse error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		if event.Type == slackevents.URLVerification {
			var challenge slackevents.ChallengeResponse
			if err := json.Unmarshal(body, &challenge); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge"})
				return
			}
			c.String(http.StatusOK, challenge.Challenge)
			return
		}

		if event.Type == slackevents.CallbackEvent {
			switch ev := event.InnerEvent.Data.(type) {
			case *slackevents.ReactionAddedEvent:
				handleReaction(db, cache, configCache, ev.User, ev.Reaction, ev.Item.Channel, ev.Item.Timestamp, false)
			case *slackevents.ReactionRemovedEvent:
				handleReaction(db, cache, configCache, ev.User, ev.Reaction, ev.Item.Channel, ev.Item.Timestamp, true)
			}
		}

		c.Status(http.StatusOK)
	}
}

// handleReaction runs one pass of fetch, mutate and reply for a reaction
// event. Failures are logged and the event dropped; there are no retries.
func handleReaction(db *gorm.DB, cache *services.UserCache, configCache *services.ConfigCache, slackUserID, reaction, channel, ts string, removed bool) {
	action := services.ParseReaction(reaction, removed)
	if action == services.ActionUnknown {
		return
	}

	text, err := services.GetMessageText(channel, ts)
	if err != nil {
		log.Printf("message text fetch failed (channel: %s, ts: %s): %v", channel, ts, err)
		return
	}
	link := services.FindPullRequestLink(text)

	var result *services.ActionResult
	if action == services.ActionRequest {
		req := services.ReviewRequest{
			PullRequestLink: link,
			SlackChannelID:  channel,
			SlackMsgID:      ts,
			Note:            text,
		}
		if !services.IsTestMode {
			if permalink, err := services.GetPermalink(channel, ts); err == nil {
				req.Permalink = permalink
			}
		}
		result, err = services.RequestReview(db, cache, req, slackUserID)
		if err == nil && result.CodeReview != nil {
			if berr := services.BroadcastReviewMessage(db, configCache, result.CodeReview); berr != nil {
				log.Printf("review broadcast failed (review: %d): %v", result.CodeReview.ID, berr)
			}
		}
	} else {
		if link == "" {
			log.Printf("no pull request link under reaction %s (channel: %s, ts: %s)", reaction, channel, ts)
			return
		}
		ref := services.ReviewRef{PullRequestLink: link}
		result, err = services.RunAction(db, cache, action, ref, slackUserID)
	}

	if err != nil {
		log.Printf("review action %s failed (user: %s): %v", action, slackUserID, err)
		return
	}

	if result.Message != "" {
		if err := services.PostToThread(channel, ts, result.Message); err != nil {
			log.Printf("thread reply failed (channel: %s, ts: %s): %v", channel, ts, err)
		}
	}
}
