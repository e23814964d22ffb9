package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"recipe-challenge-system/models"
	"recipe-challenge-system/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	leaderboardService := services.NewLeaderboardService(db)
	app := fiber.New()
	SetupChallengeRoutes(app, services.NewChallengeService(db, leaderboardService), leaderboardService)
	SetupRecipeRoutes(app, services.NewRecipeService(db, leaderboardService))
	return app, db
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSubmitRoute_UnknownChallengeIs404(t *testing.T) {
	app, db := newTestApp(t)
	require.NoError(t, db.Create(&models.Recipe{Title: "Soup", AuthorEmail: "a@example.com"}).Error)

	req := jsonRequest(http.MethodPost, "/challenges/42/submissions", fiber.Map{"recipe_id": 1})
	req.Header.Set("X-User-Email", "a@example.com")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitRoute_DuplicateRecipeIs409(t *testing.T) {
	app, db := newTestApp(t)
	ch := &models.Challenge{Title: "Soup Week", Deadline: time.Now().AddDate(0, 0, 7), Points: 100, MaxSubmissions: 3, Active: true}
	require.NoError(t, db.Create(ch).Error)
	recipe := &models.Recipe{Title: "Soup", AuthorEmail: "a@example.com"}
	require.NoError(t, db.Create(recipe).Error)

	target := fmt.Sprintf("/challenges/%d/submissions", ch.ID)
	payload := fiber.Map{"recipe_id": recipe.ID}

	req := jsonRequest(http.MethodPost, target, payload)
	req.Header.Set("X-User-Email", "a@example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	req = jsonRequest(http.MethodPost, target, payload)
	req.Header.Set("X-User-Email", "b@example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmitRoute_RequiresUserContext(t *testing.T) {
	app, _ := newTestApp(t)

	req := jsonRequest(http.MethodPost, "/challenges/1/submissions", fiber.Map{"recipe_id": 1})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	app, _ := newTestApp(t)

	payload := fiber.Map{
		"title":           "Soup Week",
		"deadline":        time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		"points":          100,
		"max_submissions": 3,
	}

	req := jsonRequest(http.MethodPost, "/admin/challenges", payload)
	req.Header.Set("X-User-Email", "user@example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = jsonRequest(http.MethodPost, "/admin/challenges", payload)
	req.Header.Set("X-User-Email", "admin@example.com")
	req.Header.Set("X-User-Roles", "admin")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Challenge
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "soup-week", created.Slug)
}

func TestLeaderboardRoute_ReturnsStoredOrder(t *testing.T) {
	app, db := newTestApp(t)
	require.NoError(t, db.Create(&models.GlobalLeaderboardEntry{
		Position: 1, UserEmail: "a@example.com", Username: "a", TotalPoints: 90,
	}).Error)
	require.NoError(t, db.Create(&models.GlobalLeaderboardEntry{
		Position: 2, UserEmail: "b@example.com", Username: "b", TotalPoints: 40,
	}).Error)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.GlobalLeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "a@example.com", entries[0].UserEmail)
}

func TestLikeRoute_TogglesAndReportsCount(t *testing.T) {
	app, db := newTestApp(t)
	require.NoError(t, db.Create(&models.User{Email: "fan@example.com", Username: "fan", Badges: models.BadgeMap{}}).Error)
	recipe := &models.Recipe{Title: "Soup", AuthorEmail: "cook@example.com"}
	require.NoError(t, db.Create(recipe).Error)

	target := fmt.Sprintf("/recipes/%d/like", recipe.ID)
	req := jsonRequest(http.MethodPost, target, nil)
	req.Header.Set("X-User-Email", "fan@example.com")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Liked bool `json:"liked"`
		Likes int  `json:"likes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.Likes)
}
