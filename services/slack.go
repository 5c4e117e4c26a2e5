package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// IsTestMode suppresses outbound Slack calls in handler tests.
var IsTestMode = false

const slackAPIBase = "https://slack.com/api"

type slackPostResponse struct {
	OK      bool   `json:"ok"`
	Channel string `json:"channel"`
	Ts      string `json:"ts"`
	Error   string `json:"error,omitempty"`
}

func slackGet(method string, params url.Values, out interface{}) error {
	req, err := http.NewRequest("GET", slackAPIBase+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("SLACK_BOT_TOKEN"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	return json.Unmarshal(bodyBytes, out)
}

func slackPost(method string, body map[string]interface{}, out interface{}) error {
	jsonData, _ := json.Marshal(body)
	req, err := http.NewRequest("POST", slackAPIBase+"/"+method, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("SLACK_BOT_TOKEN"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	return json.Unmarshal(bodyBytes, out)
}

// GetSlackUserInfo fetches display name and email for a Slack user id.
func GetSlackUserInfo(slackUserID string) (name string, email string, err error) {
	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		User  struct {
			Name    string `json:"name"`
			Profile struct {
				DisplayName string `json:"display_name"`
				RealName    string `json:"real_name"`
				Email       string `json:"email"`
			} `json:"profile"`
		} `json:"user"`
	}

	params := url.Values{}
	params.Set("user", slackUserID)
	if err := slackGet("users.info", params, &result); err != nil {
		return "", "", err
	}
	if !result.OK {
		return "", "", fmt.Errorf("slack error: %s", result.Error)
	}

	name = result.User.Profile.DisplayName
	if name == "" {
		name = result.User.Profile.RealName
	}
	if name == "" {
		name = result.User.Name
	}
	return name, result.User.Profile.Email, nil
}

// GetMessageText fetches the text of the message a reaction landed on.
func GetMessageText(channel, ts string) (string, error) {
	var result struct {
		OK       bool   `json:"ok"`
		Error    string `json:"error"`
		Messages []struct {
			Text string `json:"text"`
		} `json:"messages"`
	}

	params := url.Values{}
	params.Set("channel", channel)
	params.Set("latest", ts)
	params.Set("inclusive", "true")
	params.Set("limit", "1")
	if err := slackGet("conversations.history", params, &result); err != nil {
		return "", err
	}
	if !result.OK {
		return "", fmt.Errorf("slack error: %s", result.Error)
	}
	if len(result.Messages) == 0 {
		return "", fmt.Errorf("no message found at %s in %s", ts, channel)
	}
	return result.Messages[0].Text, nil
}

// GetPermalink resolves the permanent URL of a Slack message.
func GetPermalink(channel, ts string) (string, error) {
	var result struct {
		OK        bool   `json:"ok"`
		Error     string `json:"error"`
		Permalink string `json:"permalink"`
	}

	params := url.Values{}
	params.Set("channel", channel)
	params.Set("message_ts", ts)
	if err := slackGet("chat.getPermalink", params, &result); err != nil {
		return "", err
	}
	if !result.OK {
		return "", fmt.Errorf("slack error: %s", result.Error)
	}
	return result.Permalink, nil
}

// PostToThread posts a plain text reply in the thread of the given message.
func PostToThread(channel, ts, message string) error {
	if IsTestMode {
		return nil
	}

	var resp slackPostResponse
	body := map[string]interface{}{
		"channel":   channel,
		"thread_ts": ts,
		"text":      message,
	}
	if err := slackPost("chat.postMessage", body, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("slack error: %s", resp.Error)
	}
	return nil
}

// PostReviewMessage posts the review status message with claim and approve
// buttons to a channel and returns the message timestamp.
func PostReviewMessage(channel string, review *models.CodeReview, stats ReviewStats) (string, error) {
	if IsTestMode {
		return "", nil
	}

	var resp slackPostResponse
	body := map[string]interface{}{
		"channel": channel,
		"blocks":  ReviewMessageBlocks(review, stats),
	}
	if err := slackPost("chat.postMessage", body, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("slack error: %s", resp.Error)
	}
	return resp.Ts, nil
}

// BroadcastReviewMessage announces a review in the notify channel configured
// for its repository and records the posted message timestamp on the review.
// Repositories without an active config are skipped.
func BroadcastReviewMessage(db *gorm.DB, cache *ConfigCache, review *models.CodeReview) error {
	owner, repo, _, err := ParseRepoAndPRNumber(review.PullRequestLink)
	if err != nil {
		return err
	}

	config, err := GetRepoConfig(db, cache, owner+"/"+repo)
	if err != nil {
		return err
	}
	if config == nil || config.SlackChannelID == "" {
		return nil
	}

	ts, err := PostReviewMessage(config.SlackChannelID, review, CountRoster(review))
	if err != nil {
		return err
	}
	if ts == "" {
		return nil
	}

	review.BroadcastTs = ts
	return db.Model(review).Update("broadcast_ts", ts).Error
}

// ValidateSlackRequest verifies the Slack signing-secret signature on an
// inbound request. Requests older than five minutes are rejected. When no
// signing secret is configured the check is skipped.
func ValidateSlackRequest(r *http.Request, body []byte) bool {
	secret := os.Getenv("SLACK_SIGNING_SECRET")
	if secret == "" {
		return true
	}

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	signature := r.Header.Get("X-Slack-Signature")
	if timestamp == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if math.Abs(float64(time.Now().Unix()-ts)) > 60*5 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
