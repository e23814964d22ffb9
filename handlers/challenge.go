// handlers/challenge.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"recipe-challenge-system/middleware"
	"recipe-challenge-system/models"
	"recipe-challenge-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService, leaderboardService *services.LeaderboardService) {
	// Public reads — identity still flows through the gateway but is not
	// required for browsing.
	app.Get("/challenges", func(c *fiber.Ctx) error {
		challenges, err := challengeService.GetAllChallenges()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list challenges",
				"cause": err.Error(),
			})
		}
		return c.JSON(challenges)
	})

	app.Get("/challenges/featured", func(c *fiber.Ctx) error {
		ch, err := challengeService.GetFeaturedChallenge()
		if err != nil {
			return respondServiceError(c, "no featured challenge", err)
		}
		return c.JSON(ch)
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		ch, err := challengeService.GetChallengeByID(id)
		if err != nil {
			return respondServiceError(c, "failed to get challenge", err)
		}
		return c.JSON(ch)
	})

	app.Get("/challenges/:id/recipes", func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		recipes, err := challengeService.GetSubmittedRecipes(id)
		if err != nil {
			return respondServiceError(c, "failed to list submitted recipes", err)
		}
		return c.JSON(recipes)
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := leaderboardService.GetGlobalLeaderboard()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(entries)
	})

	app.Get("/featured-winners", func(c *fiber.Ctx) error {
		winners, err := challengeService.GetFeaturedWinners()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load featured winners",
				"cause": err.Error(),
			})
		}
		return c.JSON(winners)
	})

	// Secured routes — require user context forwarded by the gateway.
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/challenges/:id/submissions", func(c *fiber.Ctx) error {
		userEmail, ok := c.Locals("user_email").(string)
		if !ok || userEmail == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing user context",
			})
		}
		challengeID, ok := parseID(c, "id")
		if !ok {
			return nil
		}

		type Req struct {
			RecipeID uint `json:"recipe_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		submission, err := challengeService.SubmitRecipe(challengeID, req.RecipeID, userEmail)
		if err != nil {
			return respondServiceError(c, "submission rejected", err)
		}
		return c.Status(fiber.StatusCreated).JSON(submission)
	})

	// Admin endpoints
	adminGroup := app.Group("/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/challenges", func(c *fiber.Ctx) error {
		if !isAdmin(c) {
			return respondServiceError(c, "admin role required", services.ErrNotPermitted)
		}
		req, ok := parseChallengeBody(c)
		if !ok {
			return nil
		}
		if err := challengeService.CreateChallenge(req); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create challenge",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	})

	adminGroup.Put("/challenges/:id", func(c *fiber.Ctx) error {
		if !isAdmin(c) {
			return respondServiceError(c, "admin role required", services.ErrNotPermitted)
		}
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		req, ok := parseChallengeBody(c)
		if !ok {
			return nil
		}
		updated, err := challengeService.UpdateChallenge(id, req)
		if err != nil {
			return respondServiceError(c, "failed to update challenge", err)
		}
		return c.JSON(updated)
	})

	adminGroup.Delete("/challenges/:id", func(c *fiber.Ctx) error {
		if !isAdmin(c) {
			return respondServiceError(c, "admin role required", services.ErrNotPermitted)
		}
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		if err := challengeService.DeleteChallenge(id); err != nil {
			return respondServiceError(c, "failed to delete challenge", err)
		}
		if err := leaderboardService.Recalculate(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "challenge deleted but leaderboard recalculation failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "challenge deleted"})
	})

	adminGroup.Post("/challenges/:id/feature", func(c *fiber.Ctx) error {
		if !isAdmin(c) {
			return respondServiceError(c, "admin role required", services.ErrNotPermitted)
		}
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		if err := challengeService.FeatureChallenge(id); err != nil {
			return respondServiceError(c, "failed to feature challenge", err)
		}
		return c.JSON(fiber.Map{"message": "challenge featured"})
	})

	adminGroup.Delete("/challenges/:id/feature", func(c *fiber.Ctx) error {
		if !isAdmin(c) {
			return respondServiceError(c, "admin role required", services.ErrNotPermitted)
		}
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		if err := challengeService.UnfeatureChallenge(id); err != nil {
			return respondServiceError(c, "failed to unfeature challenge", err)
		}
		return c.JSON(fiber.Map{"message": "challenge unfeatured"})
	})
}

// parseChallengeBody reads the admin create/update payload. On a bad
// request it writes the 400 response itself and returns ok=false.
func parseChallengeBody(c *fiber.Ctx) (*models.Challenge, bool) {
	type Req struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		ImageURL       string `json:"image_url"`
		Deadline       string `json:"deadline"` // YYYY-MM-DD
		Points         int    `json:"points"`
		MaxSubmissions int    `json:"max_submissions"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON",
			"cause": err.Error(),
		})
		return nil, false
	}
	deadline, err := time.Parse("2006-01-02", req.Deadline)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid deadline, expected YYYY-MM-DD",
			"cause": err.Error(),
		})
		return nil, false
	}
	return &models.Challenge{
		Title:          req.Title,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		Deadline:       deadline,
		Points:         req.Points,
		MaxSubmissions: req.MaxSubmissions,
	}, true
}

// parseID reads a numeric path parameter, writing the 400 response
// itself when it is malformed.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
			"cause": raw,
		})
		return 0, false
	}
	return uint(id), true
}

func isAdmin(c *fiber.Ctx) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// respondServiceError translates the services package's sentinel errors
// into HTTP statuses; anything unrecognized is a 500.
func respondServiceError(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrChallengeNotFound),
		errors.Is(err, services.ErrRecipeNotFound),
		errors.Is(err, services.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrRecipeAlreadySubmitted),
		errors.Is(err, services.ErrSubmissionLimitReached):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNotPermitted):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}
