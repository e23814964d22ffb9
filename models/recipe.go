package models

import (
	"time"
)

// Recipe is the collaborator surface the challenge engine needs: identity
// plus a denormalized like counter. Full recipe content (ingredients,
// steps, images) lives with the recipe service and is opaque here.
type Recipe struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	AuthorEmail string    `json:"author_email" gorm:"index"`
	Likes       int       `json:"likes" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RecipeLike records one user's like of one recipe, so the like endpoint
// can toggle instead of double-count. Recipe.Likes is kept in step with
// the row count inside the same transaction.
type RecipeLike struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_recipe_liker,priority:1"`
	UserEmail string    `json:"user_email" gorm:"not null;uniqueIndex:idx_recipe_liker,priority:2"`
	LikedAt   time.Time `json:"liked_at" gorm:"autoCreateTime"`
}
