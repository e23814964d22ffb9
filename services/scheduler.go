// services/scheduler.go
package services

import (
	"errors"
	"log"
	"time"

	"recipe-challenge-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Badge titles handed to the top three finishers when a featured
// challenge retires, by rank.
var winnerBadges = [3]string{"Master Chef", "Elite Cook", "Challenger Star"}

// LifecycleScheduler runs the daily challenge rotation: expire stale
// challenges, snapshot and reward the featured challenge's winners,
// promote the next featured challenge, then rebuild the leaderboard.
type LifecycleScheduler struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardService

	sched gocron.Scheduler
}

func NewLifecycleScheduler(db *gorm.DB, leaderboard *LeaderboardService) *LifecycleScheduler {
	return &LifecycleScheduler{DB: db, Leaderboard: leaderboard}
}

// Start schedules the rotation once daily at midnight. Singleton mode
// guarantees a run still in progress is never overlapped by the next
// trigger; the late trigger is rescheduled, not dropped on top.
func (s *LifecycleScheduler) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			if err := s.RunRotation(time.Now()); err != nil {
				log.Printf("[Scheduler] Rotation failed, will retry next run: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.sched = sched
	sched.Start()
	log.Println("[Scheduler] Challenge rotation scheduled daily at midnight")
	return nil
}

func (s *LifecycleScheduler) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}

// RunRotation performs one full rotation as of the given time. The whole
// sequence holds the leaderboard mutex — a like arriving mid-rotation
// waits rather than interleaving with the delete/insert phases — and runs
// in a single transaction, so a failure at any step rolls the entire
// rotation back and the next scheduled run re-attempts it.
func (s *LifecycleScheduler) RunRotation(now time.Time) error {
	s.Leaderboard.mu.Lock()
	defer s.Leaderboard.mu.Unlock()

	// Deadlines are dates (UTC midnight); compare at the same granularity.
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.expireStaleChallenges(tx, today); err != nil {
			return err
		}
		if err := s.retireFeaturedChallenge(tx, today); err != nil {
			return err
		}
		if err := s.promoteNextFeatured(tx, today); err != nil {
			return err
		}
		// Rebuild unconditionally so standings reflect the post-rotation
		// challenge set.
		return s.Leaderboard.recalculate(tx)
	})
}

// expireStaleChallenges retires every active, non-featured challenge whose
// deadline has passed. Their submissions are purged, which permanently
// removes their contribution from future recalculations.
func (s *LifecycleScheduler) expireStaleChallenges(tx *gorm.DB, today time.Time) error {
	var expired []models.Challenge
	if err := tx.Where("featured = ? AND active = ? AND deadline < ?", false, true, today).
		Find(&expired).Error; err != nil {
		return err
	}
	for i := range expired {
		ch := &expired[i]
		if err := tx.Where("challenge_id = ?", ch.ID).Delete(&models.RecipeSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Model(ch).Update("active", false).Error; err != nil {
			return err
		}
		log.Printf("[Scheduler] Expired challenge %d (%s), submissions purged", ch.ID, ch.Title)
	}
	return nil
}

// retireFeaturedChallenge handles the featured challenge once its deadline
// is reached: snapshot the top three leaderboard rows as featured winners,
// award their badges, purge the challenge's submissions, clear the
// leaderboard, and unset the featured flag.
func (s *LifecycleScheduler) retireFeaturedChallenge(tx *gorm.DB, today time.Time) error {
	var featured models.Challenge
	err := tx.Where("featured = ?", true).First(&featured).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if featured.Deadline.After(today) {
		return nil // still running
	}

	if err := tx.Where("1 = 1").Delete(&models.FeaturedWinner{}).Error; err != nil {
		return err
	}

	var top []models.GlobalLeaderboardEntry
	if err := tx.Order("position ASC").Limit(3).Find(&top).Error; err != nil {
		return err
	}
	if len(top) == 0 {
		log.Println("[Scheduler] No leaderboard entries; skipping winner snapshot and badges")
	}
	users := &UserService{DB: tx}
	for rank, entry := range top {
		winner := models.FeaturedWinner{
			UserEmail:   entry.UserEmail,
			Username:    entry.Username,
			TotalPoints: entry.TotalPoints,
		}
		if err := tx.Create(&winner).Error; err != nil {
			return err
		}
		if err := users.IncrementBadge(entry.UserEmail, winnerBadges[rank]); err != nil {
			return err
		}
		log.Printf("[Scheduler] Featured winner #%d: %s (%d points, badge %q)",
			rank+1, entry.UserEmail, entry.TotalPoints, winnerBadges[rank])
	}

	if err := tx.Where("challenge_id = ?", featured.ID).Delete(&models.RecipeSubmission{}).Error; err != nil {
		return err
	}
	if err := tx.Where("1 = 1").Delete(&models.GlobalLeaderboardEntry{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&featured).Updates(map[string]interface{}{
		"featured": false,
		"active":   false,
	}).Error; err != nil {
		return err
	}

	log.Printf("[Scheduler] Retired featured challenge %d (%s)", featured.ID, featured.Title)
	return nil
}

// promoteNextFeatured marks the not-yet-featured challenge with the
// nearest strictly-future deadline as featured. Skipped while another
// challenge is still featured, so at most one ever carries the flag.
func (s *LifecycleScheduler) promoteNextFeatured(tx *gorm.DB, today time.Time) error {
	var count int64
	if err := tx.Model(&models.Challenge{}).Where("featured = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var next models.Challenge
	err := tx.Where("featured = ? AND deadline > ?", false, today).
		Order("deadline ASC").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("[Scheduler] No upcoming challenge to feature")
		return nil
	}
	if err != nil {
		return err
	}

	if err := tx.Model(&next).Update("featured", true).Error; err != nil {
		return err
	}
	log.Printf("[Scheduler] New featured challenge: %d (%s), deadline %s",
		next.ID, next.Title, next.Deadline.Format("2006-01-02"))
	return nil
}
