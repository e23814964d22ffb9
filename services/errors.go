package services

import "errors"

// Admission-control and lookup failures callers are expected to branch on.
// Handlers map these to HTTP statuses; anything else is a 500.
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrUserNotFound      = errors.New("user not found")

	// ErrRecipeAlreadySubmitted: a recipe is a single competitive entry per
	// challenge, regardless of who submits it.
	ErrRecipeAlreadySubmitted = errors.New("recipe already submitted to this challenge")

	// ErrSubmissionLimitReached: the user is at the challenge's per-user cap.
	ErrSubmissionLimitReached = errors.New("submission limit reached for this challenge")

	// ErrNotPermitted: the caller lacks the role or subscription for the
	// operation. Authorization itself happens at the gateway; this only
	// covers role checks on forwarded context.
	ErrNotPermitted = errors.New("operation not permitted")
)
