package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/models"
)

// GetRepoConfig returns the active settings for a repository, going through
// the cache first. A missing or inactive config is a normal outcome:
// (nil, nil).
func GetRepoConfig(db *gorm.DB, cache *ConfigCache, repositoryName string) (*models.RepoConfig, error) {
	if config := cache.Get(repositoryName); config != nil {
		return config, nil
	}

	var config models.RepoConfig
	err := db.Where("repository_name = ? AND is_active = ?", repositoryName, true).
		First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache.Put(&config)
	return &config, nil
}

// SaveRepoConfig creates or updates the settings row for a repository and
// invalidates its cache entry.
func SaveRepoConfig(db *gorm.DB, cache *ConfigCache, config *models.RepoConfig) error {
	var existing models.RepoConfig
	err := db.Where("repository_name = ?", config.RepositoryName).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if config.ID == "" {
			config.ID = uuid.NewString()
		}
		if err := db.Create(config).Error; err != nil {
			return err
		}
	} else {
		config.ID = existing.ID
		if err := db.Save(config).Error; err != nil {
			return err
		}
	}

	cache.Invalidate(config.RepositoryName)
	log.Printf("repo config saved: %s (reviewers=%d, approvals=%d)",
		config.RepositoryName, config.ReviewerThreshold, config.ApprovalThreshold)
	return nil
}
