package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupModelTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &CodeReview{}, &CodeReviewRelation{}); err != nil {
		t.Fatalf("fail to migrate test db: %v", err)
	}
	return db
}

func TestRosterRowUniquePerReviewAndUser(t *testing.T) {
	db := setupModelTestDB(t)

	user := User{SlackUserID: "U1", Name: "alice"}
	assert.NoError(t, db.Create(&user).Error)
	review := CodeReview{PullRequestLink: "https://github.com/org/repo/pull/1", Status: StatusPending}
	assert.NoError(t, db.Create(&review).Error)

	first := CodeReviewRelation{CodeReviewID: review.ID, UserID: user.ID, Status: StatusPending}
	assert.NoError(t, db.Create(&first).Error)

	// The composite unique index rejects a second stance row for the same
	// pair.
	dup := CodeReviewRelation{CodeReviewID: review.ID, UserID: user.ID, Status: StatusApproved}
	assert.Error(t, db.Create(&dup).Error)

	// A different user on the same review is fine.
	other := User{SlackUserID: "U2", Name: "bob"}
	assert.NoError(t, db.Create(&other).Error)
	second := CodeReviewRelation{CodeReviewID: review.ID, UserID: other.ID, Status: StatusPending}
	assert.NoError(t, db.Create(&second).Error)
}

func TestPullRequestLinkUnique(t *testing.T) {
	db := setupModelTestDB(t)

	assert.NoError(t, db.Create(&CodeReview{
		PullRequestLink: "https://github.com/org/repo/pull/1",
		Status:          StatusPending,
	}).Error)
	assert.Error(t, db.Create(&CodeReview{
		PullRequestLink: "https://github.com/org/repo/pull/1",
		Status:          StatusPending,
	}).Error)
}

func TestSlackUserIDUnique(t *testing.T) {
	db := setupModelTestDB(t)

	assert.NoError(t, db.Create(&User{SlackUserID: "U1"}).Error)
	assert.Error(t, db.Create(&User{SlackUserID: "U1"}).Error)
}
