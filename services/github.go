package services

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/google/go-github/v71/github"
	"golang.org/x/oauth2"
)

var prURLRe = regexp.MustCompile(`https://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// NewGitHubClient builds a GitHub API client, authenticated when a token is
// configured.
func NewGitHubClient() *github.Client {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return github.NewClient(nil)
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// ParseRepoAndPRNumber extracts owner, repository and PR number from a pull
// request URL of the form https://github.com/owner/repo/pull/123.
func ParseRepoAndPRNumber(prURL string) (owner string, repo string, prNumber int, err error) {
	matches := prURLRe.FindStringSubmatch(prURL)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid PR URL format: %s", prURL)
	}

	owner = matches[1]
	repo = matches[2]

	var prNum int
	if _, err := fmt.Sscanf(matches[3], "%d", &prNum); err != nil {
		return "", "", 0, fmt.Errorf("failed to parse PR number: %v", err)
	}
	return owner, repo, prNum, nil
}

// FetchPRTitle fetches the pull request title from GitHub. Best effort; the
// caller tolerates failure.
func FetchPRTitle(prURL string) (string, error) {
	owner, repo, prNumber, err := ParseRepoAndPRNumber(prURL)
	if err != nil {
		return "", err
	}

	client := NewGitHubClient()
	pr, _, err := client.PullRequests.Get(context.Background(), owner, repo, prNumber)
	if err != nil {
		return "", err
	}
	return pr.GetTitle(), nil
}
