package models

import (
	"time"
)

// Challenge is a time-boxed cooking competition. Deadline is compared at
// date granularity; Active is recomputed from the deadline on every read,
// never trusted from storage.
type Challenge struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string    `json:"title" gorm:"not null"`
	Slug           string    `json:"slug" gorm:"index"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url"`
	Deadline       time.Time `json:"deadline" gorm:"not null"`
	Points         int       `json:"points" gorm:"default:0"` // budget paid to the top finisher
	MaxSubmissions int       `json:"max_submissions" gorm:"default:1"`
	Active         bool      `json:"active" gorm:"default:true"`
	Featured       bool      `json:"featured" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Submissions []RecipeSubmission `json:"submissions,omitempty" gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE"`

	// Calculated fields (not stored in DB)
	SubmissionCount int64 `json:"submission_count,omitempty" gorm:"-"`
}

// IsOpen reports whether the challenge still accepts the given day.
func (c *Challenge) IsOpen(now time.Time) bool {
	return !now.Truncate(24 * time.Hour).After(c.Deadline)
}

// RecipeSubmission is one entry of a recipe into a challenge. Rows are
// immutable once created; the auto-increment id doubles as the tie-break
// key (smaller id = earlier entry).
type RecipeSubmission struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ChallengeID    uint      `json:"challenge_id" gorm:"not null;index;uniqueIndex:idx_challenge_recipe,priority:1"`
	RecipeID       uint      `json:"recipe_id" gorm:"not null;uniqueIndex:idx_challenge_recipe,priority:2"`
	UserEmail      string    `json:"user_email" gorm:"not null;index"`
	SubmissionDate time.Time `json:"submission_date"`
}

// GlobalLeaderboardEntry is a materialized view row. The whole table is
// replaced on every recalculation; Position records the computed order so
// reads never re-sort.
type GlobalLeaderboardEntry struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Position    int    `json:"position" gorm:"index"`
	UserEmail   string `json:"user_email" gorm:"not null"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
}

// FeaturedWinner is a snapshot of a top-3 leaderboard row taken when a
// featured challenge retires. Kept until the next featured retirement.
type FeaturedWinner struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserEmail   string    `json:"user_email" gorm:"not null"`
	Username    string    `json:"username"`
	TotalPoints int       `json:"total_points"`
	WonAt       time.Time `json:"won_at" gorm:"autoCreateTime"`
}

// MiniChallenge is a brief summary for list views.
type MiniChallenge struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	ImageURL string    `json:"image_url"`
	Deadline time.Time `json:"deadline"`
	Points   int       `json:"points"`
	Active   bool      `json:"active"`
	Featured bool      `json:"featured"`
}
