package services

import (
	"log"
	"sort"
	"sync"

	"recipe-challenge-system/models"

	"gorm.io/gorm"
)

// LeaderboardService owns the global leaderboard: a materialized view that
// is recomputed from scratch and fully replaced, never patched in place.
//
// The delete-all/insert-all replacement is not safe under concurrent
// invocation, so every recomputation — whether triggered by a like toggle
// or by the nightly rotation — runs under mu. The lifecycle scheduler
// holds the same mutex for its entire multi-step run.
type LeaderboardService struct {
	DB    *gorm.DB
	Users *UserService

	mu sync.Mutex
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db, Users: NewUserService(db)}
}

// scoredSubmissionRow joins a submission with its recipe's current like
// count. Relationships stay explicit joins; no back-pointers are loaded.
type scoredSubmissionRow struct {
	ID          uint
	ChallengeID uint
	UserEmail   string
	Likes       int
}

// Recalculate rebuilds the global leaderboard from every challenge still
// holding submissions. Safe to call from any goroutine, any number of
// times; calls are serialized and each one is a full, idempotent rebuild.
func (s *LeaderboardService) Recalculate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recalculate(s.DB)
}

// recalculate is the unguarded body; callers must hold mu. The scheduler
// invokes it with its rotation transaction so the whole run commits as one.
func (s *LeaderboardService) recalculate(db *gorm.DB) error {
	var challenges []models.Challenge
	if err := db.Find(&challenges).Error; err != nil {
		return err
	}

	var rows []scoredSubmissionRow
	if err := db.Raw(`
		SELECT rs.id, rs.challenge_id, rs.user_email, r.likes
		FROM recipe_submissions rs
		INNER JOIN recipes r ON r.id = rs.recipe_id
	`).Scan(&rows).Error; err != nil {
		return err
	}

	subsByChallenge := make(map[uint][]ScoredSubmission)
	for _, row := range rows {
		subsByChallenge[row.ChallengeID] = append(subsByChallenge[row.ChallengeID], ScoredSubmission{
			ID:        row.ID,
			UserEmail: row.UserEmail,
			Likes:     row.Likes,
		})
	}

	totals := make(map[string]int)
	earliest := make(map[string]uint)
	for _, ch := range challenges {
		subs := subsByChallenge[ch.ID]
		if len(subs) == 0 {
			continue
		}
		scores := ScoreChallenge(ch.Points, subs)
		for email, pts := range scores.Points {
			totals[email] += pts
			if id, ok := scores.EarliestSubs[email]; ok {
				if current, seen := earliest[email]; !seen || id < current {
					earliest[email] = id
				}
			}
		}
	}

	usernames, err := s.usernamesFor(db, totals)
	if err != nil {
		return err
	}

	entries := make([]models.GlobalLeaderboardEntry, 0, len(totals))
	for email, pts := range totals {
		username := usernames[email]
		if username == "" {
			username = email
		}
		entries = append(entries, models.GlobalLeaderboardEntry{
			UserEmail:   email,
			Username:    username,
			TotalPoints: pts,
		})
	}

	// Points descending; ties go to the earlier contributing submission.
	// A user with no recorded earliest id sorts last among their tie group.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		idI, okI := earliest[entries[i].UserEmail]
		idJ, okJ := earliest[entries[j].UserEmail]
		if okI != okJ {
			return okI
		}
		return idI < idJ
	})
	for i := range entries {
		entries[i].Position = i + 1
	}

	// Replace the whole table in one commit so a failure never leaves a
	// half-overwritten leaderboard behind.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.GlobalLeaderboardEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return err
	}

	log.Printf("[Leaderboard] Recalculated: %d ranked user(s) across %d challenge(s)", len(entries), len(challenges))
	return nil
}

func (s *LeaderboardService) usernamesFor(db *gorm.DB, totals map[string]int) (map[string]string, error) {
	usernames := make(map[string]string, len(totals))
	if len(totals) == 0 {
		return usernames, nil
	}
	emails := make([]string, 0, len(totals))
	for email := range totals {
		emails = append(emails, email)
	}
	var users []models.User
	if err := db.Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		usernames[u.Email] = u.Username
	}
	return usernames, nil
}

// GetGlobalLeaderboard returns the stored ranking in its computed order.
func (s *LeaderboardService) GetGlobalLeaderboard() ([]models.GlobalLeaderboardEntry, error) {
	var entries []models.GlobalLeaderboardEntry
	err := s.DB.Order("position ASC").Find(&entries).Error
	return entries, err
}
