package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreChallenge_PayoutOrder(t *testing.T) {
	// Three users, like counts 10, 10, 5, submitted as ids 1, 2, 3.
	// The tie between ids 1 and 2 goes to the earlier submission.
	scores := ScoreChallenge(100, []ScoredSubmission{
		{ID: 1, UserEmail: "alice@example.com", Likes: 10},
		{ID: 2, UserEmail: "bob@example.com", Likes: 10},
		{ID: 3, UserEmail: "carol@example.com", Likes: 5},
	})

	require.Len(t, scores.Points, 3)
	assert.Equal(t, 100, scores.Points["alice@example.com"])
	assert.Equal(t, 70, scores.Points["bob@example.com"])
	assert.Equal(t, 50, scores.Points["carol@example.com"])
}

func TestScoreChallenge_OneBestEntryPerUser(t *testing.T) {
	// One user with several entries contributes exactly once. Among the
	// equal-like entries the earlier id is the best one.
	scores := ScoreChallenge(80, []ScoredSubmission{
		{ID: 1, UserEmail: "alice@example.com", Likes: 5},
		{ID: 2, UserEmail: "alice@example.com", Likes: 9},
		{ID: 3, UserEmail: "alice@example.com", Likes: 9},
	})

	require.Len(t, scores.Points, 1)
	assert.Equal(t, 80, scores.Points["alice@example.com"])
	assert.Equal(t, uint(2), scores.EarliestSubs["alice@example.com"])
}

func TestScoreChallenge_ZeroLikesEarnNothing(t *testing.T) {
	scores := ScoreChallenge(100, []ScoredSubmission{
		{ID: 1, UserEmail: "alice@example.com", Likes: 3},
		{ID: 2, UserEmail: "bob@example.com", Likes: 0},
	})

	assert.Equal(t, 100, scores.Points["alice@example.com"])
	_, bobScored := scores.Points["bob@example.com"]
	assert.False(t, bobScored)
	_, bobTracked := scores.EarliestSubs["bob@example.com"]
	assert.False(t, bobTracked)
}

func TestScoreChallenge_RanksBelowPodiumShareFlatRate(t *testing.T) {
	subs := []ScoredSubmission{
		{ID: 1, UserEmail: "u1@example.com", Likes: 50},
		{ID: 2, UserEmail: "u2@example.com", Likes: 40},
		{ID: 3, UserEmail: "u3@example.com", Likes: 30},
		{ID: 4, UserEmail: "u4@example.com", Likes: 20},
		{ID: 5, UserEmail: "u5@example.com", Likes: 10},
	}
	scores := ScoreChallenge(100, subs)

	assert.Equal(t, 10, scores.Points["u4@example.com"])
	assert.Equal(t, 10, scores.Points["u5@example.com"])
}

func TestScoreChallenge_Empty(t *testing.T) {
	scores := ScoreChallenge(100, nil)
	assert.Empty(t, scores.Points)
	assert.Empty(t, scores.EarliestSubs)
}

func TestPointsForRank_CurveIsNonIncreasing(t *testing.T) {
	const budget = 73
	prev := PointsForRank(budget, 0)
	assert.Equal(t, budget, prev)
	for rank := 1; rank <= 6; rank++ {
		pts := PointsForRank(budget, rank)
		assert.LessOrEqual(t, pts, prev, "rank %d pays more than rank %d", rank, rank-1)
		prev = pts
	}
	// Everyone from 4th place down earns the same flat cut.
	assert.Equal(t, PointsForRank(budget, 3), PointsForRank(budget, 10))
}

func TestPointsForRank_TruncatesFractions(t *testing.T) {
	assert.Equal(t, 70, PointsForRank(101, 1)) // floor(101 * 0.7)
	assert.Equal(t, 50, PointsForRank(101, 2))
	assert.Equal(t, 10, PointsForRank(105, 3))
}
