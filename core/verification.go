package core

import "time"

const (
	// TokenTTL is how long a humanity token stays valid after it is minted or refreshed
	TokenTTL = 24 * time.Hour

	// MintThreshold is the number of correct answers required to mint a token
	MintThreshold = 3

	// RefreshThreshold is the number of correct answers required to refresh a token
	RefreshThreshold = 1
)

// Color is a single cell colour of a challenge grid
type Color string

const (
	Red    Color = "R"
	Blue   Color = "B"
	Green  Color = "G"
	Yellow Color = "Y"
)

// Grid is a row-major matrix of colours
type Grid [][]Color

// ChallengeType classifies the pattern a challenge asks about
type ChallengeType string

const (
	ChallengeRotation       ChallengeType = "rotation"
	ChallengeSequence       ChallengeType = "sequence"
	ChallengeTransformation ChallengeType = "transformation"
)

// Challenge is a visual pattern puzzle with exactly one correct option
type Challenge struct {
	ID            string        `json:"id"`
	Grid          Grid          `json:"grid"`
	Options       []Grid        `json:"options"`
	CorrectAnswer uint8         `json:"correct_answer"`
	Type          ChallengeType `json:"challenge_type"`
}

// Session tracks an identity's progress through the challenge sequence
type Session struct {
	Identity            string     `json:"identity"`
	ChallengesCompleted uint8      `json:"challenges_completed"`
	CurrentChallenge    *Challenge `json:"current_challenge,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// HumanityToken is the time-limited credential earned by passing verification
type HumanityToken struct {
	Identity   string    `json:"identity"`
	VerifiedAt time.Time `json:"verified_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewHumanityToken creates a token for identity valid from now for TokenTTL
func NewHumanityToken(identity string, now time.Time) HumanityToken {
	return HumanityToken{
		Identity:   identity,
		VerifiedAt: now,
		ExpiresAt:  now.Add(TokenTTL),
	}
}

// ValidAt reports whether the token is still valid at the given instant
func (t HumanityToken) ValidAt(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

// Post is a short text post written by a verified identity
type Post struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Author         string    `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
	AuthorVerified bool      `json:"author_verified"`

	// Seq orders posts created within the same clock tick
	Seq uint64 `json:"seq"`
}

// NewSession creates a fresh session with no progress
func NewSession(identity string, now time.Time) *Session {
	return &Session{
		Identity:  identity,
		StartedAt: now,
	}
}

// RecordAnswer checks answer against the current challenge. The challenge id
// must match the current challenge exactly. A correct answer increments the
// completion counter; when clearOnCorrect is set the current challenge is
// also dropped so the same id cannot be credited twice.
func (s *Session) RecordAnswer(challengeID string, answer uint8, clearOnCorrect bool) (bool, error) {
	if s.CurrentChallenge == nil || s.CurrentChallenge.ID != challengeID {
		return false, ErrInvalidChallenge
	}

	if s.CurrentChallenge.CorrectAnswer != answer {
		return false, nil
	}

	if s.ChallengesCompleted < ^uint8(0) {
		s.ChallengesCompleted++
	}
	if clearOnCorrect {
		s.CurrentChallenge = nil
	}
	return true, nil
}

// MarkCompleted records the first time the session was used to mint a token
func (s *Session) MarkCompleted(now time.Time) {
	if s.CompletedAt == nil {
		s.CompletedAt = &now
	}
}
