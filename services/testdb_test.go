package services

import (
	"path/filepath"
	"testing"
	"time"

	"recipe-challenge-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.RecipeLike{},
		&models.Challenge{},
		&models.RecipeSubmission{},
		&models.GlobalLeaderboardEntry{},
		&models.FeaturedWinner{},
	))
	return db
}

func dateUTC(daysFromNow int) time.Time {
	now := time.Now().UTC().AddDate(0, 0, daysFromNow)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func seedUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Username: username, Badges: models.BadgeMap{}}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedRecipe(t *testing.T, db *gorm.DB, author string, likes int) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{Title: "Recipe by " + author, AuthorEmail: author, Likes: likes}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func seedChallenge(t *testing.T, db *gorm.DB, title string, deadline time.Time, points, maxSubs int, featured bool) *models.Challenge {
	t.Helper()
	ch := &models.Challenge{
		Title:          title,
		Deadline:       deadline,
		Points:         points,
		MaxSubmissions: maxSubs,
		Active:         true,
		Featured:       featured,
	}
	require.NoError(t, db.Create(ch).Error)
	return ch
}

func seedSubmission(t *testing.T, db *gorm.DB, challengeID, recipeID uint, email string) *models.RecipeSubmission {
	t.Helper()
	sub := &models.RecipeSubmission{
		ChallengeID:    challengeID,
		RecipeID:       recipeID,
		UserEmail:      email,
		SubmissionDate: time.Now(),
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}
