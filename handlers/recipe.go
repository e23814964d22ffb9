// handlers/recipe.go
package handlers

import (
	"recipe-challenge-system/middleware"
	"recipe-challenge-system/models"
	"recipe-challenge-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRecipeRoutes(app *fiber.App, recipeService *services.RecipeService) {
	app.Get("/recipes/:id", func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		recipe, err := recipeService.GetRecipeByID(id)
		if err != nil {
			return respondServiceError(c, "failed to get recipe", err)
		}
		return c.JSON(recipe)
	})

	app.Get("/recipes/:id/likes", func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}
		likes, err := recipeService.GetLikeCount(id)
		if err != nil {
			return respondServiceError(c, "failed to get like count", err)
		}
		return c.JSON(fiber.Map{"recipe_id": id, "likes": likes})
	})

	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/recipes", func(c *fiber.Ctx) error {
		userEmail, _ := c.Locals("user_email").(string)
		if userEmail == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing user context",
			})
		}

		type Req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			ImageURL    string `json:"image_url"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		recipe := &models.Recipe{
			Title:       req.Title,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			AuthorEmail: userEmail,
		}
		if err := recipeService.CreateRecipe(recipe); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create recipe",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(recipe)
	})

	// Toggle: first call likes, second call unlikes. Either way the
	// global leaderboard is recomputed before the response goes out.
	securedGroup.Post("/recipes/:id/like", func(c *fiber.Ctx) error {
		userEmail, _ := c.Locals("user_email").(string)
		if userEmail == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing user context",
			})
		}
		id, ok := parseID(c, "id")
		if !ok {
			return nil
		}

		liked, likes, err := recipeService.ToggleLike(id, userEmail)
		if err != nil {
			return respondServiceError(c, "failed to toggle like", err)
		}
		return c.JSON(fiber.Map{
			"recipe_id": id,
			"liked":     liked,
			"likes":     likes,
		})
	})
}
