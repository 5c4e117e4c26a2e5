package services

import (
	"fmt"
	"strconv"

	"github.com/penske-media-corp/code-review-bot/models"
)

// SlackBlockBuilder assembles Block Kit payloads for review messages.
type SlackBlockBuilder struct {
	blocks []map[string]interface{}
}

func NewSlackBlockBuilder() *SlackBlockBuilder {
	return &SlackBlockBuilder{blocks: make([]map[string]interface{}, 0)}
}

// AddSection appends a mrkdwn section block.
func (b *SlackBlockBuilder) AddSection(text string) *SlackBlockBuilder {
	b.blocks = append(b.blocks, map[string]interface{}{
		"type": "section",
		"text": map[string]interface{}{
			"type": "mrkdwn",
			"text": text,
		},
	})
	return b
}

// AddActions appends an actions block with the given elements.
func (b *SlackBlockBuilder) AddActions(elements ...map[string]interface{}) *SlackBlockBuilder {
	if len(elements) == 0 {
		return b
	}
	b.blocks = append(b.blocks, map[string]interface{}{
		"type":     "actions",
		"elements": elements,
	})
	return b
}

func (b *SlackBlockBuilder) Build() []map[string]interface{} {
	return b.blocks
}

// CreateButton builds a button element.
func CreateButton(text, actionID, value, style string) map[string]interface{} {
	button := map[string]interface{}{
		"type": "button",
		"text": map[string]interface{}{
			"type": "plain_text",
			"text": text,
		},
		"action_id": actionID,
		"value":     value,
	}
	if style != "" {
		button["style"] = style
	}
	return button
}

// ReviewMessageBlocks is the pure mapping from a review and its roster counts
// to the ordered display blocks of its channel message.
func ReviewMessageBlocks(review *models.CodeReview, stats ReviewStats) []map[string]interface{} {
	title := review.Title
	if title == "" {
		title = review.PullRequestLink
	}

	text := fmt.Sprintf("*%s*\n*link*: <%s>\n*status*: %s\n*reviewers*: %d / *approvals*: %d",
		title, review.PullRequestLink, review.Status, stats.ReviewerCount, stats.ApprovalCount)
	if review.JiraTicket != "" {
		text += fmt.Sprintf("\n*ticket*: %s", review.JiraTicket)
	}

	id := strconv.FormatUint(uint64(review.ID), 10)
	return NewSlackBlockBuilder().
		AddSection(text).
		AddActions(
			CreateButton("Claim", "review_claim", id, "primary"),
			CreateButton("Approve", "review_approve", id, ""),
		).
		Build()
}
