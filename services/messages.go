package services

import "regexp"

var (
	pullRequestLinkRe = regexp.MustCompile(`https://github\.com/[^/\s<>|]+/[^/\s<>|]+/pull/\d+`)
	jiraTicketRe      = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)
)

// FindPullRequestLink extracts the first pull request URL from a Slack
// message. Returns "" when the message has none.
func FindPullRequestLink(text string) string {
	return pullRequestLinkRe.FindString(text)
}

// FindJiraTicket extracts the first Jira issue key (e.g. "PMC-1234") from a
// Slack message. Returns "" when none is present.
func FindJiraTicket(text string) string {
	return jiraTicketRe.FindString(text)
}
