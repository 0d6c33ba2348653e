package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDifficulty indicates an unrecognized difficulty label.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidRequest indicates a malformed study request.
	ErrInvalidRequest = errors.New("invalid study request")
)

// Difficulty is the ordinal cognitive weight of a subject.
type Difficulty int

const (
	DifficultyLow Difficulty = iota + 1
	DifficultyMedium
	DifficultyHigh
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyLow:
		return "low"
	case DifficultyMedium:
		return "medium"
	case DifficultyHigh:
		return "high"
	default:
		return "unknown"
	}
}

// IsValid reports whether d is one of the defined difficulty levels.
func (d Difficulty) IsValid() bool {
	return d >= DifficultyLow && d <= DifficultyHigh
}

// ParseDifficulty converts a string label to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return DifficultyLow, nil
	case "medium":
		return DifficultyMedium, nil
	case "high":
		return DifficultyHigh, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
}

// subjectWeights maps well-known subject names to a 1-10 cognitive load
// rating. Unknown subjects rate 5.
var subjectWeights = map[string]int{
	"math": 9, "mathematics": 9, "calculus": 9, "algebra": 8,
	"physics": 8, "chemistry": 7, "biology": 6,
	"computer science": 8, "programming": 8, "algorithms": 9,
	"english": 5, "literature": 5, "history": 6,
	"psychology": 6, "sociology": 5, "philosophy": 7,
}

// DifficultyForSubject guesses a difficulty level from a subject name, for
// callers that do not supply one explicitly.
func DifficultyForSubject(subject string) Difficulty {
	weight, ok := subjectWeights[strings.ToLower(strings.TrimSpace(subject))]
	if !ok {
		weight = 5
	}
	switch {
	case weight >= 8:
		return DifficultyHigh
	case weight >= 6:
		return DifficultyMedium
	default:
		return DifficultyLow
	}
}

// StudyRequest asks the optimizer to place one uninterrupted study block.
type StudyRequest struct {
	subject    string
	duration   time.Duration
	difficulty Difficulty
}

// NewStudyRequest creates a study request, validating subject, duration,
// and difficulty.
func NewStudyRequest(subject string, duration time.Duration, difficulty Difficulty) (StudyRequest, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return StudyRequest{}, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if duration <= 0 {
		return StudyRequest{}, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidRequest, duration)
	}
	if !difficulty.IsValid() {
		return StudyRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, ErrInvalidDifficulty)
	}
	return StudyRequest{subject: subject, duration: duration, difficulty: difficulty}, nil
}

func (r StudyRequest) Subject() string         { return r.subject }
func (r StudyRequest) Duration() time.Duration { return r.duration }
func (r StudyRequest) Difficulty() Difficulty  { return r.difficulty }
