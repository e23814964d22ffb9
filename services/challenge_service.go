package services

import (
	"errors"
	"log"
	"time"

	"recipe-challenge-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardService
}

func NewChallengeService(db *gorm.DB, leaderboard *LeaderboardService) *ChallengeService {
	return &ChallengeService{DB: db, Leaderboard: leaderboard}
}

// CreateChallenge persists a new challenge. Active is derived from the
// deadline, never taken from the caller; Featured stays false — only the
// lifecycle scheduler (or an explicit admin feature call) sets it.
func (s *ChallengeService) CreateChallenge(ch *models.Challenge) error {
	ch.Slug = slug.Make(ch.Title)
	ch.Active = ch.IsOpen(time.Now())
	ch.Featured = false
	if ch.MaxSubmissions < 1 {
		ch.MaxSubmissions = 1
	}
	return s.DB.Create(ch).Error
}

func (s *ChallengeService) GetChallengeByID(id uint) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	ch.Active = ch.IsOpen(time.Now())
	if err := s.DB.Model(&models.RecipeSubmission{}).
		Where("challenge_id = ?", ch.ID).
		Count(&ch.SubmissionCount).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *ChallengeService) GetAllChallenges() ([]models.MiniChallenge, error) {
	var challenges []models.Challenge
	if err := s.DB.Order("deadline ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	minis := make([]models.MiniChallenge, 0, len(challenges))
	for _, ch := range challenges {
		minis = append(minis, models.MiniChallenge{
			ID:       ch.ID,
			Title:    ch.Title,
			Slug:     ch.Slug,
			ImageURL: ch.ImageURL,
			Deadline: ch.Deadline,
			Points:   ch.Points,
			Active:   ch.IsOpen(now),
			Featured: ch.Featured,
		})
	}
	return minis, nil
}

// UpdateChallenge edits the mutable fields of a challenge. Submissions are
// immutable facts and are not touched here.
func (s *ChallengeService) UpdateChallenge(id uint, updated *models.Challenge) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	ch.Title = updated.Title
	ch.Slug = slug.Make(updated.Title)
	ch.Description = updated.Description
	ch.ImageURL = updated.ImageURL
	ch.Deadline = updated.Deadline
	ch.Points = updated.Points
	ch.MaxSubmissions = updated.MaxSubmissions
	ch.Active = ch.IsOpen(time.Now())

	if err := s.DB.Save(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// DeleteChallenge removes a challenge and, with it, every submission it
// owns. Past points from those submissions disappear on the next
// recalculation; the caller is expected to trigger one.
func (s *ChallengeService) DeleteChallenge(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.First(&ch, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}
		if err := tx.Where("challenge_id = ?", id).Delete(&models.RecipeSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ch).Error
	})
}

// FeatureChallenge marks a challenge featured, unsetting any other so at
// most one challenge is featured at a time.
func (s *ChallengeService) FeatureChallenge(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.First(&ch, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}
		if err := tx.Model(&models.Challenge{}).
			Where("featured = ? AND id <> ?", true, id).
			Update("featured", false).Error; err != nil {
			return err
		}
		return tx.Model(&ch).Update("featured", true).Error
	})
}

func (s *ChallengeService) UnfeatureChallenge(id uint) error {
	var ch models.Challenge
	if err := s.DB.First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return err
	}
	return s.DB.Model(&ch).Update("featured", false).Error
}

// GetFeaturedChallenge returns the currently featured challenge, or
// ErrChallengeNotFound when none is featured.
func (s *ChallengeService) GetFeaturedChallenge() (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.Where("featured = ?", true).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	ch.Active = ch.IsOpen(time.Now())
	return &ch, nil
}

// SubmitRecipe enters a recipe into a challenge. Preconditions run in
// order, each with its own error: challenge exists, recipe exists, the
// recipe is not already in this challenge (by anyone), and the user is
// under the per-user cap. No ranking happens here; points exist only at
// recalculation time.
func (s *ChallengeService) SubmitRecipe(challengeID, recipeID uint, userEmail string) (*models.RecipeSubmission, error) {
	var submission *models.RecipeSubmission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.First(&ch, challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}

		var recipe models.Recipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		var duplicates int64
		if err := tx.Model(&models.RecipeSubmission{}).
			Where("challenge_id = ? AND recipe_id = ?", challengeID, recipeID).
			Count(&duplicates).Error; err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrRecipeAlreadySubmitted
		}

		var userCount int64
		if err := tx.Model(&models.RecipeSubmission{}).
			Where("challenge_id = ? AND user_email = ?", challengeID, userEmail).
			Count(&userCount).Error; err != nil {
			return err
		}
		if userCount >= int64(ch.MaxSubmissions) {
			return ErrSubmissionLimitReached
		}

		submission = &models.RecipeSubmission{
			ChallengeID:    challengeID,
			RecipeID:       recipeID,
			UserEmail:      userEmail,
			SubmissionDate: time.Now(),
		}
		return tx.Create(submission).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Challenges] %s submitted recipe %d to challenge %d", userEmail, recipeID, challengeID)
	return submission, nil
}

// GetSubmittedRecipes lists the recipes entered into a challenge, joined
// explicitly rather than walked through back-references.
func (s *ChallengeService) GetSubmittedRecipes(challengeID uint) ([]models.Recipe, error) {
	var ch models.Challenge
	if err := s.DB.First(&ch, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	var recipes []models.Recipe
	err := s.DB.Raw(`
		SELECT r.* FROM recipes r
		INNER JOIN recipe_submissions rs ON rs.recipe_id = r.id
		WHERE rs.challenge_id = ?
		ORDER BY rs.id ASC
	`, challengeID).Scan(&recipes).Error
	return recipes, err
}

// GetFeaturedWinners returns the snapshot from the last featured
// retirement, best first.
func (s *ChallengeService) GetFeaturedWinners() ([]models.FeaturedWinner, error) {
	var winners []models.FeaturedWinner
	err := s.DB.Order("total_points DESC").Find(&winners).Error
	return winners, err
}
