package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"recipe-challenge-system/models"

	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsername resolves a display name for leaderboard and winner rows.
// Falls back to the email when the local mirror has no row yet (the sync
// worker may simply not have caught up).
func (s *UserService) GetUsername(email string) string {
	user, err := s.GetByEmail(email)
	if err != nil || user.Username == "" {
		return email
	}
	return user.Username
}

// IncrementBadge bumps the per-user counter for a badge. Names are
// normalized (trimmed, lowercased) so "Master Chef" and "master chef"
// share one counter. Awarding is an increment, never a set-to-1.
func (s *UserService) IncrementBadge(email, badge string) error {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("award badge %q: %w", badge, ErrUserNotFound)
		}
		return err
	}

	if user.Badges == nil {
		user.Badges = models.BadgeMap{}
	}
	normalized := strings.ToLower(strings.TrimSpace(badge))
	user.Badges[normalized]++

	if err := s.DB.Model(&user).Update("badges", user.Badges).Error; err != nil {
		return err
	}
	log.Printf("[Badges] Awarded %q to %s (count now %d)", normalized, email, user.Badges[normalized])
	return nil
}
