package services

import (
	"sort"
)

// ScoredSubmission is the slice of a submission the ranking math needs:
// the immutable row id (smaller = earlier), the submitting user, and the
// recipe's like count at scoring time.
type ScoredSubmission struct {
	ID        uint
	UserEmail string
	Likes     int
}

// ChallengeScores is the outcome of scoring one challenge: points earned
// per user, and per user the earliest submission id that earned them —
// the aggregator uses the latter for global tie-breaking.
type ChallengeScores struct {
	Points       map[string]int
	EarliestSubs map[string]uint
}

// ScoreChallenge converts a challenge's submissions into points against a
// budget. Three steps:
//
//  1. keep one best entry per user (more likes wins, equal likes → earlier id),
//  2. rank best entries by likes descending, id ascending,
//  3. pay out down the curve; entries with zero likes earn nothing.
func ScoreChallenge(budget int, subs []ScoredSubmission) ChallengeScores {
	scores := ChallengeScores{
		Points:       make(map[string]int),
		EarliestSubs: make(map[string]uint),
	}
	if len(subs) == 0 {
		return scores
	}

	best := make(map[string]ScoredSubmission)
	for _, sub := range subs {
		current, ok := best[sub.UserEmail]
		if !ok || sub.Likes > current.Likes ||
			(sub.Likes == current.Likes && sub.ID < current.ID) {
			best[sub.UserEmail] = sub
		}
	}

	ranked := make([]ScoredSubmission, 0, len(best))
	for _, sub := range best {
		ranked = append(ranked, sub)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Likes != ranked[j].Likes {
			return ranked[i].Likes > ranked[j].Likes
		}
		return ranked[i].ID < ranked[j].ID
	})

	for rank, sub := range ranked {
		if sub.Likes <= 0 {
			continue
		}
		scores.Points[sub.UserEmail] = PointsForRank(budget, rank)
		if earliest, ok := scores.EarliestSubs[sub.UserEmail]; !ok || sub.ID < earliest {
			scores.EarliestSubs[sub.UserEmail] = sub.ID
		}
	}
	return scores
}

// PointsForRank applies the payout curve: full budget for 1st, then 70%,
// 50%, and a flat 10% for everyone from 4th place down. Fractions truncate.
func PointsForRank(budget, rank int) int {
	switch rank {
	case 0:
		return budget
	case 1:
		return int(float64(budget) * 0.7)
	case 2:
		return int(float64(budget) * 0.5)
	default:
		return int(float64(budget) * 0.1)
	}
}
