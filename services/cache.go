package services

import (
	"sync"

	"github.com/penske-media-corp/code-review-bot/models"
)

// UserCache maps Slack user ids to already-resolved users so repeated
// reactions from the same person skip the database lookup. Handlers receive
// the cache explicitly; there is no package-level instance.
type UserCache struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[string]*models.User)}
}

func (c *UserCache) Get(slackUserID string) *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.users[slackUserID]
}

func (c *UserCache) Put(user *models.User) {
	if user == nil || user.SlackUserID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.SlackUserID] = user
}

// Invalidate drops a single entry, for when a user record is edited outside
// the reaction path.
func (c *UserCache) Invalidate(slackUserID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, slackUserID)
}

func (c *UserCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = make(map[string]*models.User)
}

// ConfigCache caches RepoConfig rows by repository name.
type ConfigCache struct {
	mu      sync.RWMutex
	configs map[string]*models.RepoConfig
}

func NewConfigCache() *ConfigCache {
	return &ConfigCache{configs: make(map[string]*models.RepoConfig)}
}

func (c *ConfigCache) Get(repositoryName string) *models.RepoConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configs[repositoryName]
}

func (c *ConfigCache) Put(config *models.RepoConfig) {
	if config == nil || config.RepositoryName == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[config.RepositoryName] = config
}

func (c *ConfigCache) Invalidate(repositoryName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.configs, repositoryName)
}
